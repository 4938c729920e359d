package storage

import (
	"context"
	"errors"
	"time"

	"console-warden/internal/domain"
)

// ErrNotFound is returned when a keyed record does not exist. Lookups by
// name are case-insensitive across all tables.
var ErrNotFound = errors.New("record not found")

type UserRecord struct {
	Name      string
	Level     domain.Level
	AddedBy   string
	DateAdded time.Time
}

type Store interface {
	GetAccessLevel(ctx context.Context, name string) (domain.Level, error)
	SetAccessLevel(ctx context.Context, name string, level domain.Level, addedBy string) error
	RemoveAccess(ctx context.Context, name string) error
	ListUsers(ctx context.Context) ([]UserRecord, error)

	SaveSanction(ctx context.Context, s domain.Sanction) error
	GetSanction(ctx context.Context, subject string) (*domain.Sanction, error)
	DeleteSanction(ctx context.Context, subject string) error
	ListSanctions(ctx context.Context) ([]domain.Sanction, error)

	GetEloRecord(ctx context.Context, subject string) (*domain.EloRecord, error)
	UpsertEloRecord(ctx context.Context, subject string, rec domain.EloRecord) error

	Close()
}
