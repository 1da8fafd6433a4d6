package devicetoken

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeviceToken is one registered push-capable device for a user. The
// (user_id, device_token) pair is unique; re-registration refreshes the
// existing record instead of duplicating it.
type DeviceToken struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	UserID       string             `bson:"user_id" json:"user_id"`
	DeviceToken  string             `bson:"device_token" json:"device_token"`
	DeviceType   string             `bson:"device_type" json:"device_type"` // "iOS", "Android", "Web"
	DeviceName   string             `bson:"device_name" json:"device_name"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	RegisteredAt time.Time          `bson:"registered_at" json:"registered_at"`
	LastUsedAt   time.Time          `bson:"last_used_at" json:"last_used_at"`
}
