package email

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmailStatus string

const (
	EmailQueued EmailStatus = "queued"
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

type Email struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From       string             `bson:"from" json:"from"`
	To         []string           `bson:"to" json:"to"`
	Subject    string             `bson:"subject" json:"subject"`
	HtmlBody   string             `bson:"html_body,omitempty" json:"html_body,omitempty"`
	Template   TemplateName       `bson:"template,omitempty" json:"template,omitempty"`
	Attachment string             `bson:"attachment,omitempty" json:"attachment,omitempty"`
	Status     EmailStatus        `bson:"status" json:"status"`
	ErrorMsg   string             `bson:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	SentAt     *time.Time         `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}

// Attachment is an in-memory file attached to an outgoing email.
type Attachment struct {
	Name string
	Data []byte
}
