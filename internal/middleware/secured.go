package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"incident-service/helper"
	"incident-service/pkg/constants"
)

// Secured validates the bearer token and stores the caller's opaque
// user/team identifiers in the request context. Credentials themselves are
// issued and validated upstream; here only signature and expiry are checked.
func Secured(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			helper.SendError(c, http.StatusUnauthorized, errors.New("missing token"), helper.ErrUnauthorized)
			c.Abort()
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			helper.SendError(c, http.StatusUnauthorized, errors.New("invalid token"), helper.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			helper.SendError(c, http.StatusUnauthorized, errors.New("invalid claims"), helper.ErrUnauthorized)
			c.Abort()
			return
		}

		userID := claimString(claims, "user_id")
		if userID == "" {
			userID = claimString(claims, "sub")
		}
		if userID == "" {
			helper.SendError(c, http.StatusUnauthorized, errors.New("missing user identity"), helper.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(constants.UserID, userID)
		c.Set(constants.TeamID, claimString(claims, "team_id"))
		c.Set(constants.Token, raw)

		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to the token
// query parameter for websocket clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
