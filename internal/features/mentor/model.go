package mentor

import (
	"time"

	"eduvibe/internal/features/recommendation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MentorProfile shares its _id with the owning user.
type MentorProfile struct {
	ID              primitive.ObjectID                `bson:"_id" json:"id"`
	Name            string                            `bson:"name" json:"name"`
	Bio             string                            `bson:"bio" json:"bio"`
	Subjects        []string                          `bson:"subjects" json:"subjects"`
	HourlyRate      float64                           `bson:"hourly_rate" json:"hourly_rate"`
	Rating          float64                           `bson:"rating" json:"rating"`
	TotalReviews    int                               `bson:"total_reviews" json:"total_reviews"`
	TotalSessions   int                               `bson:"total_sessions" json:"total_sessions"`
	ExperienceLevel recommendation.ExperienceLevel    `bson:"experience_level" json:"experience_level"`
	ResponseTime    string                            `bson:"response_time" json:"response_time"`
	Languages       []string                          `bson:"languages" json:"languages"`
	Location        *string                           `bson:"location,omitempty" json:"location,omitempty"`
	Availability    []recommendation.AvailabilitySlot `bson:"availability" json:"availability"`
	IsApproved      bool                              `bson:"is_approved" json:"is_approved"`
	IsActive        bool                              `bson:"is_active" json:"is_active"`
	CreatedAt       time.Time                         `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time                         `bson:"updated_at" json:"updated_at"`
}

// Eligible reports whether the mentor can be booked and recommended.
func (p *MentorProfile) Eligible() bool {
	return p.IsActive && p.IsApproved
}

func (p *MentorProfile) ToCandidate() recommendation.MentorCandidate {
	return recommendation.MentorCandidate{
		ID:              p.ID.Hex(),
		Name:            p.Name,
		Bio:             p.Bio,
		Subjects:        p.Subjects,
		HourlyRate:      p.HourlyRate,
		Rating:          p.Rating,
		TotalReviews:    p.TotalReviews,
		TotalSessions:   p.TotalSessions,
		ExperienceLevel: p.ExperienceLevel,
		ResponseTime:    p.ResponseTime,
		Languages:       p.Languages,
		Location:        p.Location,
		Availability:    p.Availability,
	}
}

type ListFilter struct {
	Subject string
	Search  string
	// IncludeHidden lists unapproved and inactive profiles too. Admin only.
	IncludeHidden bool
}

type UpsertProfileRequest struct {
	Bio             string                            `json:"bio" validate:"required,min=20,max=2000"`
	Subjects        []string                          `json:"subjects" validate:"required,min=1,max=15,dive,required,max=60"`
	HourlyRate      float64                           `json:"hourly_rate" validate:"gt=0,lte=1000"`
	ExperienceLevel string                            `json:"experience_level" validate:"required,oneof=beginner intermediate advanced expert"`
	ResponseTime    string                            `json:"response_time" validate:"omitempty,max=40"`
	Languages       []string                          `json:"languages" validate:"required,min=1,max=10,dive,required,max=40"`
	Location        *string                           `json:"location" validate:"omitempty,max=120"`
	Availability    []recommendation.AvailabilitySlot `json:"availability" validate:"omitempty,max=50,dive"`
}

type ApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

type StatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
