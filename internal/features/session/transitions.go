package session

import (
	"fmt"

	"eduvibe/pkg/apperrors"
)

// Participant is the side of a session acting on it.
type Participant string

const (
	ByStudent Participant = "student"
	ByMentor  Participant = "mentor"
	// BySystem covers admins and scheduled jobs; it may take any edge in the table.
	BySystem Participant = "system"
)

var transitions = map[Status]map[Status][]Participant{
	StatusPending: {
		StatusConfirmed: {ByMentor},
		StatusRejected:  {ByMentor},
		StatusCancelled: {ByStudent, ByMentor},
	},
	StatusConfirmed: {
		StatusCancelled: {ByStudent, ByMentor},
		StatusCompleted: {ByMentor},
	},
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status Status) bool {
	return len(transitions[status]) == 0
}

// CheckTransition returns a Conflict error when from->to is not in the table and
// Forbidden when the edge exists but not for this participant.
func CheckTransition(from, to Status, by Participant) error {
	allowed, ok := transitions[from][to]
	if !ok {
		return apperrors.WithMessage(apperrors.ErrConflict, fmt.Sprintf("cannot move a %s session to %s", from, to))
	}
	if by == BySystem {
		return nil
	}
	for _, p := range allowed {
		if p == by {
			return nil
		}
	}
	return apperrors.WithMessage(apperrors.ErrForbidden, fmt.Sprintf("the %s cannot mark a session %s", by, to))
}
