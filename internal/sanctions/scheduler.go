// Package sanctions computes, persists, and reaps time-bounded bans.
package sanctions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"console-warden/internal/domain"
	"console-warden/internal/metrics"
	"console-warden/internal/storage"
)

type Outcome int

const (
	Success Outcome = iota
	AlreadyExists
	InternalError
)

// Console is the slice of the console writer the scheduler needs: lifting
// the console-level ban when a sanction ends.
type Console interface {
	Unban(ctx context.Context, name string) error
}

// Scheduler owns the sanction lifecycle. Expired records are reaped lazily
// on Check and List rather than by a background timer, so the unban action
// fires exactly once per record.
type Scheduler struct {
	store   storage.Store
	console Console
	clock   Clock
}

func NewScheduler(store storage.Store, console Console) *Scheduler {
	return &Scheduler{
		store:   store,
		console: console,
		clock:   realClock{},
	}
}

// Expiry computes now + magnitude in the given scale. Month and year use
// calendar arithmetic with the magnitude truncated to an integer.
func Expiry(now time.Time, magnitude float64, scale string) (time.Time, error) {
	if magnitude <= 0 {
		return time.Time{}, fmt.Errorf("magnitude must be positive, got %v", magnitude)
	}

	switch normalizeScale(scale) {
	case "sec":
		return now.Add(time.Duration(magnitude * float64(time.Second))), nil
	case "min":
		return now.Add(time.Duration(magnitude * float64(time.Minute))), nil
	case "hour":
		return now.Add(time.Duration(magnitude * float64(time.Hour))), nil
	case "day":
		return now.Add(time.Duration(magnitude * 24 * float64(time.Hour))), nil
	case "month":
		if int(magnitude) == 0 {
			return time.Time{}, fmt.Errorf("magnitude %v truncates to zero months", magnitude)
		}
		return now.AddDate(0, int(magnitude), 0), nil
	case "year":
		if int(magnitude) == 0 {
			return time.Time{}, fmt.Errorf("magnitude %v truncates to zero years", magnitude)
		}
		return now.AddDate(int(magnitude), 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown time scale %q", scale)
	}
}

// ValidScale reports whether the token names a supported time scale.
func ValidScale(scale string) bool {
	return normalizeScale(scale) != ""
}

func normalizeScale(scale string) string {
	switch strings.ToLower(scale) {
	case "sec", "secs", "second", "seconds":
		return "sec"
	case "min", "mins", "minute", "minutes":
		return "min"
	case "hour", "hours":
		return "hour"
	case "day", "days":
		return "day"
	case "month", "months":
		return "month"
	case "year", "years":
		return "year"
	default:
		return ""
	}
}

// Add persists a new sanction. A pre-existing active sanction for the
// subject yields AlreadyExists and must be removed first; an expired
// leftover is reaped in passing.
func (s *Scheduler) Add(ctx context.Context, subject, issuer string, magnitude float64, scale string, category domain.SanctionCategory) (Outcome, *domain.Sanction) {
	now := s.clock.Now()

	existing, err := s.store.GetSanction(ctx, subject)
	switch {
	case err == nil && !existing.Expired(now):
		return AlreadyExists, existing
	case err == nil:
		if err := s.reap(ctx, *existing); err != nil {
			slog.Error("Failed to reap expired sanction", "subject", subject, "error", err)
			return InternalError, nil
		}
	case !errors.Is(err, storage.ErrNotFound):
		slog.Error("Failed to look up sanction", "subject", subject, "error", err)
		return InternalError, nil
	}

	expires, err := Expiry(now, magnitude, scale)
	if err != nil {
		slog.Error("Rejected sanction parameters", "subject", subject, "error", err)
		return InternalError, nil
	}

	sanction := domain.Sanction{
		Subject:  subject,
		IssuedBy: issuer,
		Created:  now,
		Expires:  expires,
		Category: category,
	}
	if err := s.store.SaveSanction(ctx, sanction); err != nil {
		slog.Error("Failed to persist sanction", "subject", subject, "error", err)
		return InternalError, nil
	}

	metrics.SanctionsIssued.WithLabelValues(category.String()).Inc()
	slog.Info("Sanction added", "subject", subject, "issuer", issuer,
		"expires", expires, "category", category.String())
	return Success, &sanction
}

// Remove deletes the record and immediately lifts the console ban.
func (s *Scheduler) Remove(ctx context.Context, subject string) error {
	if err := s.store.DeleteSanction(ctx, subject); err != nil {
		return err
	}
	if err := s.console.Unban(ctx, subject); err != nil {
		slog.Error("Failed to issue unban", "subject", subject, "error", err)
		return err
	}
	slog.Info("Sanction removed", "subject", subject)
	return nil
}

// Check reports the subject's active sanction, reaping it first if it has
// expired. A nil sanction with nil error means no active sanction.
func (s *Scheduler) Check(ctx context.Context, subject string) (*domain.Sanction, error) {
	sanction, err := s.store.GetSanction(ctx, subject)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if sanction.Expired(s.clock.Now()) {
		if err := s.reap(ctx, *sanction); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return sanction, nil
}

// List reaps every expired record, then returns the remaining active ones.
func (s *Scheduler) List(ctx context.Context) ([]domain.Sanction, error) {
	all, err := s.store.ListSanctions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	active := all[:0]
	for _, sanction := range all {
		if sanction.Expired(now) {
			if err := s.reap(ctx, sanction); err != nil {
				slog.Error("Failed to reap expired sanction", "subject", sanction.Subject, "error", err)
			}
			continue
		}
		active = append(active, sanction)
	}
	return active, nil
}

func (s *Scheduler) reap(ctx context.Context, sanction domain.Sanction) error {
	if err := s.store.DeleteSanction(ctx, sanction.Subject); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if err := s.console.Unban(ctx, sanction.Subject); err != nil {
		return err
	}
	slog.Info("Expired sanction reaped", "subject", sanction.Subject)
	return nil
}
