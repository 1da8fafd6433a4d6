package directory

// Reference records owned by the administrative CRUD layer. This service
// only reads them to resolve notification recipients and display names.

type User struct {
	ID          string `bson:"_id" json:"id"`
	UserName    string `bson:"user_name" json:"user_name"`
	EmployeeID  string `bson:"employee_id" json:"employee_id"`
	Email       string `bson:"email" json:"email"`
	PhoneNumber string `bson:"phone_number" json:"phone_number"`
	TeamID      string `bson:"team_id" json:"team_id"`
	IsActive    bool   `bson:"is_active" json:"is_active"`
	IsDeleted   bool   `bson:"is_deleted" json:"is_deleted"`
}

type Team struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

type IncidentType struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Image string `bson:"image" json:"image"`
}

type BusinessUnit struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

type Tank struct {
	ID         string `bson:"_id" json:"id"`
	Name       string `bson:"name" json:"name"`
	TankNumber string `bson:"tank_number" json:"tank_number"`
}

type Message struct {
	ID          string `bson:"_id" json:"id"`
	Description string `bson:"description" json:"description"`
}
