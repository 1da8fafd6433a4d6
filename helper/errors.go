package helper

import "errors"

// Sentinel errors shared across services. Handlers translate these into
// HTTP status codes; everything else maps to 500.
var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrValidationFailed = errors.New("validation failed")
)
