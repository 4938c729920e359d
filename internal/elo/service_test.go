package elo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"console-warden/internal/domain"
	"console-warden/internal/storage"
)

type fakeRoster struct {
	mu      sync.Mutex
	players []domain.Player
	setElo  map[string]domain.EloRecord
}

func newFakeRoster(players ...domain.Player) *fakeRoster {
	return &fakeRoster{players: players, setElo: make(map[string]domain.EloRecord)}
}

func (f *fakeRoster) Players() []domain.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Player, len(f.players))
	copy(out, f.players)
	return out
}

func (f *fakeRoster) SetElo(name string, rec domain.EloRecord) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setElo[name] = rec
	for i := range f.players {
		if domain.Key(f.players[i].Name) == name {
			r := rec
			f.players[i].Elo = &r
		}
	}
	return true
}

type fakeConsole struct {
	mu    sync.Mutex
	said  []string
	kicks []string
}

func (f *fakeConsole) Say(ctx context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.said = append(f.said, message)
	return nil
}

func (f *fakeConsole) Kick(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicks = append(f.kicks, name)
	return nil
}

type fakeFetcher struct {
	getRatingsFunc   func(ctx context.Context, names []string) (map[string]domain.EloRecord, error)
	fetchProfileFunc func(ctx context.Context, name string) (*domain.EloRecord, error)
	batchCalls       int
}

func (f *fakeFetcher) GetRatings(ctx context.Context, names []string) (map[string]domain.EloRecord, error) {
	f.batchCalls++
	if f.getRatingsFunc != nil {
		return f.getRatingsFunc(ctx, names)
	}
	return map[string]domain.EloRecord{}, nil
}

func (f *fakeFetcher) FetchProfile(ctx context.Context, name string) (*domain.EloRecord, error) {
	if f.fetchProfileFunc != nil {
		return f.fetchProfileFunc(ctx, name)
	}
	return nil, fmt.Errorf("no profile")
}

type stubStore struct {
	levels  map[string]domain.Level
	records map[string]domain.EloRecord
	upserts map[string]domain.EloRecord
}

func newStubStore() *stubStore {
	return &stubStore{
		levels:  make(map[string]domain.Level),
		records: make(map[string]domain.EloRecord),
		upserts: make(map[string]domain.EloRecord),
	}
}

func (s *stubStore) GetAccessLevel(ctx context.Context, name string) (domain.Level, error) {
	level, ok := s.levels[strings.ToLower(name)]
	if !ok {
		return domain.LevelNone, storage.ErrNotFound
	}
	return level, nil
}

func (s *stubStore) SetAccessLevel(ctx context.Context, name string, level domain.Level, addedBy string) error {
	return nil
}

func (s *stubStore) RemoveAccess(ctx context.Context, name string) error { return nil }

func (s *stubStore) ListUsers(ctx context.Context) ([]storage.UserRecord, error) { return nil, nil }

func (s *stubStore) SaveSanction(ctx context.Context, sanction domain.Sanction) error { return nil }

func (s *stubStore) GetSanction(ctx context.Context, subject string) (*domain.Sanction, error) {
	return nil, storage.ErrNotFound
}

func (s *stubStore) DeleteSanction(ctx context.Context, subject string) error { return nil }

func (s *stubStore) ListSanctions(ctx context.Context) ([]domain.Sanction, error) { return nil, nil }

func (s *stubStore) GetEloRecord(ctx context.Context, subject string) (*domain.EloRecord, error) {
	rec, ok := s.records[strings.ToLower(subject)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &rec, nil
}

func (s *stubStore) UpsertEloRecord(ctx context.Context, subject string, rec domain.EloRecord) error {
	s.upserts[strings.ToLower(subject)] = rec
	return nil
}

func (s *stubStore) Close() {}

func fullRecord(ca int, refreshed time.Time) *domain.EloRecord {
	return &domain.EloRecord{Duel: 1200, FFA: 1200, TDM: 1200, CA: ca, CTF: 1200, LastRefresh: refreshed}
}

func testOptions() Options {
	return Options{Mode: domain.ModeCA, Min: 600, Max: 0, TTL: time.Hour, BotName: "warden"}
}

func TestEnforce_EjectsBelowMinimum(t *testing.T) {
	now := time.Now()
	roster := newFakeRoster(
		domain.Player{Name: "dave", Elo: fullRecord(550, now)},
		domain.Player{Name: "carol", Elo: fullRecord(900, now)},
	)
	console := &fakeConsole{}
	svc := NewService(newStubStore(), roster, console, &fakeFetcher{}, testOptions())

	svc.Enforce(context.Background())

	if len(console.kicks) != 1 || console.kicks[0] != "dave" {
		t.Errorf("Expected only dave kicked, got %v", console.kicks)
	}
	if len(console.said) != 1 || !strings.Contains(console.said[0], "Dave") {
		t.Errorf("Expected ejection announcement, got %v", console.said)
	}
}

func TestEnforce_AboveMaximum(t *testing.T) {
	now := time.Now()
	roster := newFakeRoster(domain.Player{Name: "smurf", Elo: fullRecord(2100, now)})
	console := &fakeConsole{}

	opts := testOptions()
	opts.Min, opts.Max = 0, 2000
	svc := NewService(newStubStore(), roster, console, &fakeFetcher{}, opts)

	svc.Enforce(context.Background())

	if len(console.kicks) != 1 {
		t.Errorf("Expected kick above maximum, got %v", console.kicks)
	}
}

func TestEnforce_SuperUserNeverEjected(t *testing.T) {
	now := time.Now()
	store := newStubStore()
	store.levels["boss"] = domain.LevelSuperUser

	roster := newFakeRoster(
		domain.Player{Name: "boss", Elo: fullRecord(100, now)},
		domain.Player{Name: "ghost"}, // unfetched, zero ratings
	)
	console := &fakeConsole{}
	svc := NewService(store, roster, console, &fakeFetcher{}, testOptions())

	svc.Enforce(context.Background())

	if len(console.kicks) != 0 {
		t.Errorf("Expected no kicks, got %v", console.kicks)
	}
}

func TestEnforce_BotAndOwnerExempt(t *testing.T) {
	now := time.Now()
	roster := newFakeRoster(
		domain.Player{Name: "warden", Elo: fullRecord(100, now)},
		domain.Player{Name: "TheOwner", Elo: fullRecord(100, now)},
	)
	console := &fakeConsole{}

	opts := testOptions()
	opts.OwnerName = "theowner"
	svc := NewService(newStubStore(), roster, console, &fakeFetcher{}, opts)

	svc.Enforce(context.Background())

	if len(console.kicks) != 0 {
		t.Errorf("Expected no kicks, got %v", console.kicks)
	}
}

func TestEnforce_DisabledLimits(t *testing.T) {
	roster := newFakeRoster(domain.Player{Name: "dave", Elo: fullRecord(100, time.Now())})
	console := &fakeConsole{}

	opts := testOptions()
	opts.Min, opts.Max = 0, 0
	svc := NewService(newStubStore(), roster, console, &fakeFetcher{}, opts)

	svc.Enforce(context.Background())

	if len(console.kicks) != 0 {
		t.Errorf("Expected no kicks with limits disabled, got %v", console.kicks)
	}
}

func TestRefresh_UsesPersistentCache(t *testing.T) {
	store := newStubStore()
	store.records["dave"] = *fullRecord(1500, time.Now())

	roster := newFakeRoster(domain.Player{Name: "dave"})
	fetcher := &fakeFetcher{}
	svc := NewService(store, roster, &fakeConsole{}, fetcher, testOptions())

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if fetcher.batchCalls != 0 {
		t.Errorf("Expected no fetch with fresh cache, got %d calls", fetcher.batchCalls)
	}
	if rec, ok := roster.setElo["dave"]; !ok || rec.CA != 1500 {
		t.Errorf("Expected cached record merged into roster, got %+v", roster.setElo)
	}
}

func TestRefresh_StaleCacheRefetched(t *testing.T) {
	store := newStubStore()
	store.records["dave"] = *fullRecord(1500, time.Now().Add(-2*time.Hour))

	roster := newFakeRoster(domain.Player{Name: "dave"})
	fetcher := &fakeFetcher{
		getRatingsFunc: func(ctx context.Context, names []string) (map[string]domain.EloRecord, error) {
			return map[string]domain.EloRecord{"dave": *fullRecord(1600, time.Time{})}, nil
		},
	}
	svc := NewService(store, roster, &fakeConsole{}, fetcher, testOptions())

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rec, ok := store.upserts["dave"]
	if !ok {
		t.Fatal("Expected refetched record persisted")
	}
	if rec.CA != 1600 {
		t.Errorf("Expected CA 1600, got %d", rec.CA)
	}
	if rec.LastRefresh.IsZero() {
		t.Error("Expected refresh timestamp stamped on fetch")
	}
}

func TestRefresh_ValidRosterRecordSkipped(t *testing.T) {
	roster := newFakeRoster(domain.Player{Name: "dave", Elo: fullRecord(1500, time.Now())})
	fetcher := &fakeFetcher{}
	svc := NewService(newStubStore(), roster, &fakeConsole{}, fetcher, testOptions())

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fetcher.batchCalls != 0 {
		t.Errorf("Expected no fetch for valid roster records, got %d calls", fetcher.batchCalls)
	}
}

func TestRefresh_ScrapeFallback(t *testing.T) {
	roster := newFakeRoster(domain.Player{Name: "dave"})
	fetcher := &fakeFetcher{
		getRatingsFunc: func(ctx context.Context, names []string) (map[string]domain.EloRecord, error) {
			return nil, fmt.Errorf("api down")
		},
		fetchProfileFunc: func(ctx context.Context, name string) (*domain.EloRecord, error) {
			return fullRecord(1500, time.Time{}), nil
		},
	}
	svc := NewService(newStubStore(), roster, &fakeConsole{}, fetcher, testOptions())

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Expected scrape fallback to succeed, got %v", err)
	}
	if rec, ok := roster.setElo["dave"]; !ok || rec.CA != 1500 {
		t.Errorf("Expected scraped record merged, got %+v", roster.setElo)
	}
}

func TestCycle_FetchFailureSkipsEnforcement(t *testing.T) {
	roster := newFakeRoster(domain.Player{Name: "dave"})
	console := &fakeConsole{}
	fetcher := &fakeFetcher{
		getRatingsFunc: func(ctx context.Context, names []string) (map[string]domain.EloRecord, error) {
			return nil, fmt.Errorf("api down")
		},
	}
	svc := NewService(newStubStore(), roster, console, fetcher, testOptions())

	svc.Cycle(context.Background())

	if len(console.kicks) != 0 {
		t.Errorf("Expected no kicks after failed refresh, got %v", console.kicks)
	}
}

func TestSetLimits(t *testing.T) {
	svc := NewService(newStubStore(), newFakeRoster(), &fakeConsole{}, &fakeFetcher{}, testOptions())

	if err := svc.SetLimits(800, 1600); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	min, max := svc.Limits()
	if min != 800 || max != 1600 {
		t.Errorf("Expected 800/1600, got %d/%d", min, max)
	}

	if err := svc.SetLimits(1600, 800); err == nil {
		t.Error("Expected error for inverted band")
	}
	if err := svc.SetLimits(-1, 0); err == nil {
		t.Error("Expected error for negative minimum")
	}

	svc.ClearLimits()
	if min, max := svc.Limits(); min != 0 || max != 0 {
		t.Errorf("Expected cleared limits, got %d/%d", min, max)
	}
}
