package incident

import "time"

type CreateIncidentRequest struct {
	IncidentTypeID string `json:"incident_type_id"`
	UnitID         string `json:"unit_id"`
	MessageID      string `json:"message_id"`
	TankID         string `json:"tank_id,omitempty"`

	ReporterName           string `json:"reporter_name,omitempty"`
	ReporterContactDetails string `json:"reporter_contact_details,omitempty"`
	Team                   string `json:"team,omitempty"`
	CustomMessage          string `json:"custom_message,omitempty"`
	Action                 string `json:"action,omitempty"`
	Description            string `json:"description,omitempty"`

	TimeOfTurnout  *time.Time `json:"time_of_turnout,omitempty"`
	TimeOfArrival  *time.Time `json:"time_of_arrival,omitempty"`
	TimeOfAllClear *time.Time `json:"time_of_all_clear,omitempty"`
}

// UpdateIncidentRequest is a sparse patch: nil means "leave it alone",
// so every field is a pointer.
type UpdateIncidentRequest struct {
	IncidentTypeID *string `json:"incident_type_id,omitempty"`
	UnitID         *string `json:"unit_id,omitempty"`
	MessageID      *string `json:"message_id,omitempty"`
	TankID         *string `json:"tank_id,omitempty"`

	ReporterName           *string `json:"reporter_name,omitempty"`
	ReporterContactDetails *string `json:"reporter_contact_details,omitempty"`
	Team                   *string `json:"team,omitempty"`
	CustomMessage          *string `json:"custom_message,omitempty"`
	Action                 *string `json:"action,omitempty"`
	Description            *string `json:"description,omitempty"`

	TimeOfTurnout  *time.Time `json:"time_of_turnout,omitempty"`
	TimeOfArrival  *time.Time `json:"time_of_arrival,omitempty"`
	TimeOfAllClear *time.Time `json:"time_of_all_clear,omitempty"`

	Status *Status `json:"status,omitempty"`
}

type AcknowledgeRequest struct {
	ETA                   string `json:"eta,omitempty"`
	AcknowledgementStatus string `json:"acknowledgement_status,omitempty"`
}

// ListFilter narrows GetAll; zero values mean "no filter".
type ListFilter struct {
	Status *Status
	From   *time.Time
	To     *time.Time
}
