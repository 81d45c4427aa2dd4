package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types shown to the recipient.
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"userId"`
	Type      string              `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Read      bool                `bson:"read" json:"read"`
	TargetID  *primitive.ObjectID `bson:"target_id,omitempty" json:"targetId,omitempty"` // originating record, informational only
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time           `bson:"expires_at" json:"expiresAt"`
}
