package elo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"console-warden/internal/domain"
	"console-warden/internal/formatting"
	"console-warden/internal/metrics"
	"console-warden/internal/storage"
)

// Roster is the slice of the roster manager the service needs.
type Roster interface {
	Players() []domain.Player
	SetElo(name string, rec domain.EloRecord) bool
}

// Console is the slice of the console writer the service needs to
// eject rating violators.
type Console interface {
	Say(ctx context.Context, message string) error
	Kick(ctx context.Context, name string) error
}

// Fetcher abstracts the rating service client.
type Fetcher interface {
	GetRatings(ctx context.Context, names []string) (map[string]domain.EloRecord, error)
	FetchProfile(ctx context.Context, name string) (*domain.EloRecord, error)
}

// Options configure the enrichment service at construction time. Min
// and Max of zero disable the respective bound.
type Options struct {
	Mode      domain.GameMode
	Min       int
	Max       int
	TTL       time.Duration
	BotName   string
	OwnerName string
}

// Service keeps roster players enriched with ratings and enforces the
// configured admission band for the active game mode. Limits are
// mutable at runtime through the access commands.
type Service struct {
	store   storage.Store
	roster  Roster
	console Console
	fetcher Fetcher

	mu   sync.Mutex
	mode domain.GameMode
	min  int
	max  int

	ttl       time.Duration
	botName   string
	ownerName string
	now       func() time.Time
}

func NewService(store storage.Store, roster Roster, console Console, fetcher Fetcher, opts Options) *Service {
	return &Service{
		store:     store,
		roster:    roster,
		console:   console,
		fetcher:   fetcher,
		mode:      opts.Mode,
		min:       opts.Min,
		max:       opts.Max,
		ttl:       opts.TTL,
		botName:   opts.BotName,
		ownerName: opts.OwnerName,
		now:       time.Now,
	}
}

// Mode returns the active game mode.
func (s *Service) Mode() domain.GameMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Limits returns the active admission band. Zero means unbounded.
func (s *Service) Limits() (min, max int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.min, s.max
}

// SetLimits installs a new admission band. The band applies from the
// next enforcement cycle.
func (s *Service) SetLimits(min, max int) error {
	if min < 0 || max < 0 {
		return fmt.Errorf("limits must be non-negative")
	}
	if max != 0 && min > max {
		return fmt.Errorf("minimum %d exceeds maximum %d", min, max)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.min, s.max = min, max
	return nil
}

// ClearLimits disables admission control.
func (s *Service) ClearLimits() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.min, s.max = 0, 0
}

// Cycle refreshes ratings for the current roster and then enforces the
// admission band. A failed refresh skips enforcement so nobody is
// ejected on absent data.
func (s *Service) Cycle(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		slog.Error("Rating refresh failed, skipping enforcement", "error", err)
		return
	}
	s.Enforce(ctx)
}

// Refresh fetches ratings for roster players lacking a valid record,
// consulting the persistent cache before the rating service, and
// merges results into both the roster and the cache.
func (s *Service) Refresh(ctx context.Context) error {
	now := s.now()

	var stale []string
	for _, p := range s.roster.Players() {
		if p.Elo != nil && p.Elo.Valid(now, s.ttl) {
			continue
		}
		key := domain.Key(p.Name)

		cached, err := s.store.GetEloRecord(ctx, key)
		if err == nil && cached.Valid(now, s.ttl) {
			s.roster.SetElo(key, *cached)
			continue
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Error("Failed to read rating cache", "subject", key, "error", err)
		}

		stale = append(stale, key)
	}

	if len(stale) == 0 {
		return nil
	}

	fetched, err := s.fetcher.GetRatings(ctx, stale)
	if err != nil {
		slog.Warn("Batch rating fetch failed, falling back to profile scrape", "error", err)
		fetched, err = s.scrapeAll(ctx, stale)
		if err != nil {
			return err
		}
	}

	for key, rec := range fetched {
		rec.LastRefresh = now
		s.roster.SetElo(key, rec)
		if err := s.store.UpsertEloRecord(ctx, key, rec); err != nil {
			slog.Error("Failed to cache rating record", "subject", key, "error", err)
		}
	}

	slog.Debug("Rating refresh complete", "requested", len(stale), "fetched", len(fetched))
	return nil
}

func (s *Service) scrapeAll(ctx context.Context, names []string) (map[string]domain.EloRecord, error) {
	out := make(map[string]domain.EloRecord, len(names))
	for _, name := range names {
		rec, err := s.fetcher.FetchProfile(ctx, name)
		if err != nil {
			slog.Warn("Profile scrape failed", "subject", name, "error", err)
			continue
		}
		out[name] = *rec
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("rating service unreachable for all %d subjects", len(names))
	}
	return out, nil
}

// Enforce kicks roster players whose rating for the active mode falls
// outside the admission band. SuperUser-or-higher players, the owner
// and the bot itself are exempt; players without a populated record
// are left alone.
func (s *Service) Enforce(ctx context.Context) {
	s.mu.Lock()
	mode, min, max := s.mode, s.min, s.max
	s.mu.Unlock()

	if min == 0 && max == 0 {
		return
	}

	for _, p := range s.roster.Players() {
		if s.exempt(ctx, p.Name) {
			continue
		}
		if p.Elo == nil || !p.Elo.Complete() {
			continue
		}

		rating := p.Elo.Rating(mode)
		if (min == 0 || rating >= min) && (max == 0 || rating <= max) {
			continue
		}

		if err := s.console.Say(ctx, formatting.MsgEloKick(p.Name, rating, min, max)); err != nil {
			slog.Error("Failed to announce ejection", "subject", p.Name, "error", err)
		}
		if err := s.console.Kick(ctx, p.Name); err != nil {
			slog.Error("Failed to kick rating violator", "subject", p.Name, "error", err)
			continue
		}
		metrics.PlayersEjected.WithLabelValues("rating").Inc()
		slog.Info("Ejected rating violator", "subject", p.Name, "mode", mode,
			"rating", rating, "min", min, "max", max)
	}
}

func (s *Service) exempt(ctx context.Context, name string) bool {
	key := domain.Key(name)
	if key == domain.Key(s.botName) {
		return true
	}
	if s.ownerName != "" && key == domain.Key(s.ownerName) {
		return true
	}

	level, err := s.store.GetAccessLevel(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("Failed to resolve access level", "subject", key, "error", err)
		}
		return false
	}
	return level >= domain.LevelSuperUser
}
