package user

import (
	"context"

	"eduvibe/internal/features/recommendation"
)

// SubjectHistory lists the subjects of a student's past sessions.
type SubjectHistory interface {
	BookedSubjects(ctx context.Context, studentID string) ([]string, error)
}

// StudentProfileSource builds recommendation profiles from the user record and booking history.
type StudentProfileSource struct {
	users   UserRepository
	history SubjectHistory
}

func NewStudentProfileSource(users UserRepository, history SubjectHistory) *StudentProfileSource {
	return &StudentProfileSource{users: users, history: history}
}

func (s *StudentProfileSource) GetStudentProfile(ctx context.Context, studentID string) (*recommendation.StudentProfile, error) {
	u, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	profile := &recommendation.StudentProfile{
		StudentID: studentID,
		Interests: u.Interests,
		Languages: u.Languages,
	}

	if s.history != nil {
		booked, err := s.history.BookedSubjects(ctx, studentID)
		if err != nil {
			return nil, err
		}
		profile.BookedSubjects = booked
	}
	return profile, nil
}

// NameDirectory resolves user ids to display names straight from the repository,
// so features the user service depends on can use it too.
type NameDirectory struct {
	users UserRepository
}

func NewNameDirectory(users UserRepository) *NameDirectory {
	return &NameDirectory{users: users}
}

func (d *NameDirectory) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	users, err := d.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID.Hex()] = u.Name
	}
	return names, nil
}
