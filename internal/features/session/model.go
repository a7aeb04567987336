package session

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
)

const (
	MinDurationMinutes = 30
	MaxDurationMinutes = 180
)

type Session struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID       string             `bson:"student_id" json:"student_id"`
	StudentName     string             `bson:"student_name" json:"student_name"`
	MentorID        string             `bson:"mentor_id" json:"mentor_id"`
	MentorName      string             `bson:"mentor_name" json:"mentor_name"`
	Subject         string             `bson:"subject" json:"subject"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	ScheduledAt     time.Time          `bson:"scheduled_at" json:"scheduled_at"`
	EndsAt          time.Time          `bson:"ends_at" json:"ends_at"`
	DurationMinutes int                `bson:"duration_minutes" json:"duration_minutes"`
	PriceCents      int64              `bson:"price_cents" json:"price_cents"`
	Status          Status             `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus      `bson:"payment_status" json:"payment_status"`
	StatusReason    string             `bson:"status_reason,omitempty" json:"status_reason,omitempty"`
	ReminderSentAt  *time.Time         `bson:"reminder_sent_at,omitempty" json:"reminder_sent_at,omitempty"`
	CompletedAt     *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// OwnerFor returns the participant id that matches the caller, or the student id otherwise.
func (s *Session) OwnerFor(userID string) string {
	if userID == s.MentorID {
		return s.MentorID
	}
	return s.StudentID
}

type BookRequest struct {
	MentorID        string    `json:"mentor_id" validate:"required,len=24,hexadecimal"`
	Subject         string    `json:"subject" validate:"required,max=60"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gte=30,lte=180"`
	Notes           string    `json:"notes" validate:"omitempty,max=1000"`
}

type StatusUpdateRequest struct {
	Status Status `json:"status" validate:"required,oneof=confirmed rejected cancelled completed"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type ListFilter struct {
	StudentID string
	MentorID  string
	Status    Status
	From      *time.Time
	To        *time.Time
}
