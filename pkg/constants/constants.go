package constants

// Gin context keys set by the auth middleware.
const (
	Token  = "token"
	UserID = "user_id"
	TeamID = "team_id"
)
