package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	TypeSessionRequested NotificationType = "session_requested"
	TypeSessionUpdated   NotificationType = "session_updated"
	TypeSessionReminder  NotificationType = "session_reminder"
	TypeReviewReceived   NotificationType = "review_received"
	TypeMentorApproved   NotificationType = "mentor_approved"
	TypePayment          NotificationType = "payment"
	TypeSystem           NotificationType = "system"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Type      NotificationType   `bson:"type" json:"type"`
	Link      string             `bson:"link,omitempty" json:"link,omitempty"`
	IsRead    bool               `bson:"is_read" json:"is_read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ReadAt    *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
}

// SendRequest is the admin broadcast body.
type SendRequest struct {
	UserID  string `json:"user_id" validate:"required,len=24,hexadecimal"`
	Title   string `json:"title" validate:"required,max=120"`
	Message string `json:"message" validate:"required,max=1000"`
	Link    string `json:"link" validate:"omitempty,max=300"`
}
