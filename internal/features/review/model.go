package review

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   string             `bson:"session_id" json:"session_id"`
	StudentID   string             `bson:"student_id" json:"student_id"`
	StudentName string             `bson:"student_name" json:"student_name"`
	MentorID    string             `bson:"mentor_id" json:"mentor_id"`
	Rating      int                `bson:"rating" json:"rating"`
	Comment     string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Hidden      bool               `bson:"hidden" json:"hidden"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

type CreateRequest struct {
	SessionID string `json:"session_id" validate:"required,len=24,hexadecimal"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment" validate:"omitempty,max=2000"`
}

type ModerateRequest struct {
	Hidden *bool `json:"hidden" validate:"required"`
}

// RatingSummary is the aggregate of a mentor's visible reviews.
type RatingSummary struct {
	Average float64
	Count   int
}
