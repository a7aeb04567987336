package payment

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID     string             `bson:"session_id" json:"session_id"`
	StudentID     string             `bson:"student_id" json:"student_id"`
	StudentName   string             `bson:"student_name" json:"student_name"`
	MentorID      string             `bson:"mentor_id" json:"mentor_id"`
	MentorName    string             `bson:"mentor_name" json:"mentor_name"`
	Subject       string             `bson:"subject" json:"subject"`
	ScheduledAt   time.Time          `bson:"scheduled_at" json:"scheduled_at"`
	AmountCents   int64              `bson:"amount_cents" json:"amount_cents"`
	Currency      string             `bson:"currency" json:"currency"`
	IntentID      string             `bson:"intent_id" json:"intent_id"`
	ClientSecret  string             `bson:"client_secret" json:"client_secret,omitempty"`
	Status        Status             `bson:"status" json:"status"`
	FailureReason string             `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	PaidAt        *time.Time         `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// FormattedAmount renders the amount as "USD 45.00".
func (p *Payment) FormattedAmount() string {
	return fmt.Sprintf("%s %d.%02d", strings.ToUpper(p.Currency), p.AmountCents/100, p.AmountCents%100)
}

// Redacted drops the client secret for listings.
func (p Payment) Redacted() Payment {
	p.ClientSecret = ""
	return p
}

type CreateRequest struct {
	SessionID string `json:"session_id" validate:"required,len=24,hexadecimal"`
}
