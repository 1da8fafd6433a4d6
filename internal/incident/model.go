package incident

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusOpen  Status = "OPEN"
	StatusClose Status = "CLOSE"
	// StatusTest marks drill incidents. They acknowledge and notify like
	// OPEN ones but are filtered out of operational reporting downstream.
	StatusTest Status = "TEST"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClose, StatusTest:
		return true
	}
	return false
}

type Incident struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Code           string             `bson:"code" json:"code"`
	Counter        int64              `bson:"counter" json:"counter"`
	IncidentTypeID string             `bson:"incident_type_id" json:"incident_type_id"`
	UnitID         string             `bson:"unit_id" json:"unit_id"`
	UserID         string             `bson:"user_id" json:"user_id"`
	MessageID      string             `bson:"message_id" json:"message_id"`
	TankID         string             `bson:"tank_id,omitempty" json:"tank_id,omitempty"`

	ReporterName           string `bson:"reporter_name,omitempty" json:"reporter_name,omitempty"`
	ReporterContactDetails string `bson:"reporter_contact_details,omitempty" json:"reporter_contact_details,omitempty"`
	Team                   string `bson:"team,omitempty" json:"team,omitempty"`
	CustomMessage          string `bson:"custom_message,omitempty" json:"custom_message,omitempty"`
	Action                 string `bson:"action,omitempty" json:"action,omitempty"`
	Description            string `bson:"description,omitempty" json:"description,omitempty"`

	TimeOfTurnout  *time.Time `bson:"time_of_turnout,omitempty" json:"time_of_turnout,omitempty"`
	TimeOfArrival  *time.Time `bson:"time_of_arrival,omitempty" json:"time_of_arrival,omitempty"`
	TimeOfAllClear *time.Time `bson:"time_of_all_clear,omitempty" json:"time_of_all_clear,omitempty"`

	Status    Status     `bson:"status" json:"status"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	ClosedAt  *time.Time `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
}

// Acknowledgement is one responder's answer to an incident. There is at
// most one per (incident, user); a repeat acknowledgement overwrites the
// ETA and status in place.
type Acknowledgement struct {
	ID                    primitive.ObjectID `bson:"_id" json:"id"`
	IncidentID            primitive.ObjectID `bson:"incident_id" json:"incident_id"`
	UserID                string             `bson:"user_id" json:"user_id"`
	ETA                   string             `bson:"eta,omitempty" json:"eta,omitempty"`
	AcknowledgementStatus string             `bson:"acknowledgement_status,omitempty" json:"acknowledgement_status,omitempty"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
}
