package alert

// SendAlertRequest fans a message out to one or more teams. The channel
// flags default to true when omitted, so a bare request hits every
// enabled channel.
type SendAlertRequest struct {
	Message              string   `json:"message"`
	TeamIDs              []string `json:"team_ids"`
	SendPushNotification *bool    `json:"send_push_notification,omitempty"`
	SendEmail            *bool    `json:"send_email,omitempty"`
	SendSms              *bool    `json:"send_sms,omitempty"`
}

func flagOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
