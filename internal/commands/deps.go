package commands

import (
	"context"

	"console-warden/internal/domain"
	"console-warden/internal/sanctions"
	"console-warden/internal/storage"
)

// Console is the slice of the console writer the handlers need.
type Console interface {
	Say(ctx context.Context, message string) error
	Kick(ctx context.Context, name string) error
	WriteLine(ctx context.Context, text string, delayed bool) error
}

// Roster is the slice of the roster manager the handlers need.
type Roster interface {
	Players() []domain.Player
	Lookup(name string) (domain.Player, bool)
	Len() int
	SetGreeting(text string)
}

// Sanctions is the slice of the sanction scheduler the handlers need.
type Sanctions interface {
	Add(ctx context.Context, subject, issuer string, magnitude float64, scale string, category domain.SanctionCategory) (sanctions.Outcome, *domain.Sanction)
	Remove(ctx context.Context, subject string) error
	Check(ctx context.Context, subject string) (*domain.Sanction, error)
	List(ctx context.Context) ([]domain.Sanction, error)
}

// Ratings is the slice of the rating service the handlers need.
type Ratings interface {
	Mode() domain.GameMode
	Limits() (min, max int)
	SetLimits(min, max int) error
	ClearLimits()
	Cycle(ctx context.Context)
}

// Deps carries everything the handler set closes over.
type Deps struct {
	Store     storage.Store
	Console   Console
	Roster    Roster
	Sanctions Sanctions
	Ratings   Ratings

	BotName   string
	OwnerName string

	// Shutdown stops the whole process; wired to the application's
	// cancel function.
	Shutdown context.CancelFunc
}
