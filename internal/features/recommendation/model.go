package recommendation

import "context"

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceExpert       ExperienceLevel = "expert"
)

type AvailabilitySlot struct {
	Day       string `json:"day" bson:"day"`
	StartTime string `json:"start_time" bson:"start_time"`
	EndTime   string `json:"end_time" bson:"end_time"`
}

// MentorCandidate is the read-only projection of a mentor profile used for scoring.
type MentorCandidate struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Bio             string             `json:"bio"`
	Subjects        []string           `json:"subjects"`
	HourlyRate      float64            `json:"hourly_rate"`
	Rating          float64            `json:"rating"`
	TotalReviews    int                `json:"total_reviews"`
	TotalSessions   int                `json:"total_sessions"`
	ExperienceLevel ExperienceLevel    `json:"experience_level"`
	ResponseTime    string             `json:"response_time"`
	Languages       []string           `json:"languages"`
	Location        *string            `json:"location,omitempty"`
	Availability    []AvailabilitySlot `json:"availability"`
}

type PriceRange struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gte=0,gtefield=Min"`
}

// Filters are hard constraints. A nil or empty field leaves that dimension open.
type Filters struct {
	Subjects        []string         `json:"subjects,omitempty" validate:"omitempty,dive,required"`
	ExperienceLevel *ExperienceLevel `json:"experience_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	PriceRange      *PriceRange      `json:"price_range,omitempty" validate:"omitempty"`
	Rating          *float64         `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Location        *string          `json:"location,omitempty"`
	Languages       []string         `json:"languages,omitempty" validate:"omitempty,dive,required"`
	Limit           int              `json:"limit,omitempty" validate:"omitempty,gte=1,lte=50"`
}

type MentorRecommendation struct {
	MentorCandidate
	MatchScore   float64  `json:"match_score"`
	MatchReasons []string `json:"match_reasons"`
}

// Result never carries a Go error past the service boundary; callers check Success.
type Result struct {
	Success         bool                   `json:"success"`
	Error           string                 `json:"error,omitempty"`
	Recommendations []MentorRecommendation `json:"recommendations"`
}

type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// StudentProfile holds the soft preferences used when the caller's filters leave a dimension open.
type StudentProfile struct {
	StudentID      string
	Interests      []string
	Languages      []string
	BookedSubjects []string
}

// MentorSource supplies the candidate pool.
type MentorSource interface {
	ListEligibleMentors(ctx context.Context) ([]MentorCandidate, error)
}

// ProfileSource supplies a student's preferences and history.
type ProfileSource interface {
	GetStudentProfile(ctx context.Context, studentID string) (*StudentProfile, error)
}
