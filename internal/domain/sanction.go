package domain

import "time"

type SanctionCategory int

const (
	CategoryAdminIssued SanctionCategory = iota
	CategoryQuitPenalty
	CategoryRatingViolation
)

func (c SanctionCategory) String() string {
	switch c {
	case CategoryQuitPenalty:
		return "quit-penalty"
	case CategoryRatingViolation:
		return "rating-violation"
	default:
		return "admin-issued"
	}
}

// Sanction is a time-bounded ban on a subject. At most one active sanction
// exists per subject; Expires is always after Created.
type Sanction struct {
	Subject  string
	IssuedBy string
	Created  time.Time
	Expires  time.Time
	Category SanctionCategory
}

// Expired reports whether the sanction has lapsed at the given instant.
func (s Sanction) Expired(now time.Time) bool {
	return !now.Before(s.Expires)
}
