package devicetoken

type RegisterRequest struct {
	DeviceToken string `json:"device_token"`
	DeviceType  string `json:"device_type"`
	DeviceName  string `json:"device_name"`
}

type DeactivateRequest struct {
	DeviceToken string `json:"device_token"`
}
