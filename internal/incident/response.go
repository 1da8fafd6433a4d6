package incident

import "time"

// unknownName is substituted when a referenced lookup record has been
// deleted or renamed; reads never fail over a dangling reference.
const unknownName = "Unknown"

type Response struct {
	ID                string `json:"id"`
	Code              string `json:"code"`
	Counter           int64  `json:"counter"`
	IncidentTypeID    string `json:"incident_type_id"`
	IncidentTypeName  string `json:"incident_type_name"`
	IncidentTypeImage string `json:"incident_type_image,omitempty"`
	UnitID            string `json:"unit_id"`
	UnitName          string `json:"unit_name"`
	UserID            string `json:"user_id"`
	UserName          string `json:"user_name"`
	UserEmployeeID    string `json:"user_employee_id,omitempty"`
	MessageID         string `json:"message_id"`
	MessageText       string `json:"message_text"`
	TankID            string `json:"tank_id,omitempty"`
	TankName          string `json:"tank_name,omitempty"`
	TankNumber        string `json:"tank_number,omitempty"`

	ReporterName           string `json:"reporter_name,omitempty"`
	ReporterContactDetails string `json:"reporter_contact_details,omitempty"`
	Team                   string `json:"team,omitempty"`
	CustomMessage          string `json:"custom_message,omitempty"`
	Action                 string `json:"action,omitempty"`
	Description            string `json:"description,omitempty"`

	TimeOfTurnout  *time.Time `json:"time_of_turnout,omitempty"`
	TimeOfArrival  *time.Time `json:"time_of_arrival,omitempty"`
	TimeOfAllClear *time.Time `json:"time_of_all_clear,omitempty"`

	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`

	Acknowledgements []AcknowledgementResponse `json:"acknowledgements"`
}

type AcknowledgementResponse struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"user_id"`
	UserName              string    `json:"user_name"`
	UserEmployeeID        string    `json:"user_employee_id,omitempty"`
	ETA                   string    `json:"eta,omitempty"`
	AcknowledgementStatus string    `json:"acknowledgement_status,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}
