package roster

import (
	"context"
	"sync"
	"testing"
	"time"

	"console-warden/internal/domain"
	"console-warden/internal/events"
)

type mockConsole struct {
	mu       sync.Mutex
	said     []string
	listings int
}

func (m *mockConsole) Say(ctx context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.said = append(m.said, message)
	return nil
}

func (m *mockConsole) RequestListing(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings++
	return nil
}

func (m *mockConsole) listingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listings
}

func sampleListing() events.RosterListing {
	return events.RosterListing{
		Source: events.SourcePlayers,
		Players: []events.ListedPlayer{
			{ID: 0, Team: domain.TeamRed, Clan: "ZZ", Name: "alice"},
			{ID: 1, Team: domain.TeamBlue, Name: "bob"},
			{ID: 2, Team: domain.TeamSpectator, Name: "carol"},
		},
	}
}

func TestManager_ApplyListing(t *testing.T) {
	m := NewManager(&mockConsole{}, "")

	m.Apply(context.Background(), sampleListing())

	if m.Len() != 3 {
		t.Fatalf("Expected 3 players, got %d", m.Len())
	}

	p, ok := m.Lookup("alice")
	if !ok {
		t.Fatal("Expected alice in roster")
	}
	if p.Team != domain.TeamRed || p.Clan != "ZZ" || p.ID != 0 {
		t.Errorf("Unexpected player: %+v", p)
	}
}

func TestManager_ApplyListing_Idempotent(t *testing.T) {
	m := NewManager(&mockConsole{}, "")
	ctx := context.Background()

	m.Apply(ctx, sampleListing())
	before := m.Players()

	m.Apply(ctx, sampleListing())
	after := m.Players()

	if len(before) != len(after) {
		t.Fatalf("Replay changed roster size: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("Replay changed player %d: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestManager_ApplyListing_DropsAbsentPlayers(t *testing.T) {
	m := NewManager(&mockConsole{}, "")
	ctx := context.Background()

	m.Apply(ctx, sampleListing())

	smaller := events.RosterListing{
		Source: events.SourcePlayers,
		Players: []events.ListedPlayer{
			{ID: 0, Team: domain.TeamRed, Name: "alice"},
		},
	}
	m.Apply(ctx, smaller)

	if m.Len() != 1 {
		t.Fatalf("Expected 1 player after shrink, got %d", m.Len())
	}
	if _, ok := m.Lookup("bob"); ok {
		t.Error("Expected bob to be dropped")
	}
}

func TestManager_StatusListingPreservesTeams(t *testing.T) {
	m := NewManager(&mockConsole{}, "")
	ctx := context.Background()

	m.Apply(ctx, sampleListing())

	status := events.RosterListing{
		Source: events.SourceStatus,
		Players: []events.ListedPlayer{
			{ID: 4, Name: "alice"},
			{ID: 5, Name: "bob"},
		},
	}
	m.Apply(ctx, status)

	p, ok := m.Lookup("alice")
	if !ok {
		t.Fatal("Expected alice in roster")
	}
	if p.Team != domain.TeamRed || p.Clan != "ZZ" {
		t.Errorf("Status listing lost team detail: %+v", p)
	}
	if p.ID != 4 {
		t.Errorf("Expected refreshed id 4, got %d", p.ID)
	}
}

func TestManager_ListingPreservesElo(t *testing.T) {
	m := NewManager(&mockConsole{}, "")
	ctx := context.Background()

	m.Apply(ctx, sampleListing())
	rec := domain.EloRecord{Duel: 1200, FFA: 1, TDM: 1, CA: 1500, CTF: 1, LastRefresh: time.Now()}
	if !m.SetElo("alice", rec) {
		t.Fatal("SetElo failed")
	}

	m.Apply(ctx, sampleListing())

	p, _ := m.Lookup("alice")
	if p.Elo == nil || p.Elo.CA != 1500 {
		t.Errorf("Expected rating record to survive listing replay: %+v", p.Elo)
	}
}

func TestManager_ReadyToggleAndMapReset(t *testing.T) {
	m := NewManager(&mockConsole{}, "")
	ctx := context.Background()

	m.Apply(ctx, sampleListing())
	m.Apply(ctx, events.ReadyChanged{Name: "alice", Ready: true})

	if p, _ := m.Lookup("alice"); !p.Ready {
		t.Error("Expected alice marked ready")
	}
	if p, _ := m.Lookup("bob"); p.Ready {
		t.Error("Expected bob untouched")
	}

	// Ready state survives a listing replay.
	m.Apply(ctx, sampleListing())
	if p, _ := m.Lookup("alice"); !p.Ready {
		t.Error("Expected ready flag to survive listing replay")
	}

	m.Apply(ctx, events.ReadyChanged{Name: "alice", Ready: false})
	if p, _ := m.Lookup("alice"); p.Ready {
		t.Error("Expected alice unready after toggle")
	}

	// Unknown names are a no-op.
	m.Apply(ctx, events.ReadyChanged{Name: "ghost", Ready: true})
	if m.Len() != 3 {
		t.Errorf("Expected roster unchanged, got %d players", m.Len())
	}
}

func TestManager_MapLoadClearsReady(t *testing.T) {
	m := NewManager(&mockConsole{}, "")
	ctx := context.Background()

	m.Apply(ctx, sampleListing())
	m.Apply(ctx, events.ReadyChanged{Name: "alice", Ready: true})
	m.Apply(ctx, events.ReadyChanged{Name: "bob", Ready: true})

	m.Apply(ctx, events.MapLoaded{Map: "bloodrun"})

	for _, p := range m.Players() {
		if p.Ready {
			t.Errorf("Expected %s unready after map change", p.Name)
		}
	}
}

func TestManager_ConnectTriggersListingAndGreeting(t *testing.T) {
	console := &mockConsole{}
	m := NewManager(console, "Welcome, {name}!")

	m.Apply(context.Background(), events.Connected{Name: "dave"})

	if console.listingCount() != 1 {
		t.Errorf("Expected 1 listing request, got %d", console.listingCount())
	}
	if len(console.said) != 1 || console.said[0] != "Welcome, Dave!" {
		t.Errorf("Unexpected greeting: %v", console.said)
	}

	// Entry materializes only once the listing response classifies.
	if _, ok := m.Lookup("dave"); ok {
		t.Error("Connect must not materialize the entry directly")
	}
}

func TestManager_DisconnectRemovesAndRefreshes(t *testing.T) {
	console := &mockConsole{}
	m := NewManager(console, "")
	ctx := context.Background()

	m.Apply(ctx, sampleListing())
	m.Apply(ctx, events.Disconnected{Name: "bob"})

	if _, ok := m.Lookup("bob"); ok {
		t.Error("Expected bob removed after disconnect")
	}
	if console.listingCount() != 1 {
		t.Errorf("Expected a refresh request, got %d", console.listingCount())
	}
}

func TestManager_LookupStripsClanAndCase(t *testing.T) {
	m := NewManager(&mockConsole{}, "")
	m.Apply(context.Background(), sampleListing())

	tests := []string{"alice", "ALICE", "ZZ alice", "Alice"}
	for _, query := range tests {
		if _, ok := m.Lookup(query); !ok {
			t.Errorf("Lookup(%q) failed", query)
		}
	}
}
