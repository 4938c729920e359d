// Package roster tracks the set of players currently on the server, fed by
// classified console events.
package roster

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"console-warden/internal/domain"
	"console-warden/internal/events"
	"console-warden/internal/formatting"
)

// Console is the slice of the console writer the roster needs: greeting
// new players and requesting listing refreshes.
type Console interface {
	Say(ctx context.Context, message string) error
	RequestListing(ctx context.Context) error
}

// Manager owns the roster map. All mutation happens under one mutex so
// concurrently executing handlers observe a consistent roster; events from
// one poll tick are applied in document order.
type Manager struct {
	mu       sync.Mutex
	players  map[string]*domain.Player
	console  Console
	greeting string
}

func NewManager(console Console, greeting string) *Manager {
	return &Manager{
		players:  make(map[string]*domain.Player),
		console:  console,
		greeting: greeting,
	}
}

// Apply mutates roster state from a classified event.
func (m *Manager) Apply(ctx context.Context, ev events.Event) {
	switch e := ev.(type) {
	case events.RosterListing:
		m.applyListing(e)
	case events.Connected:
		m.applyConnect(ctx, e)
	case events.Disconnected:
		m.applyDisconnect(ctx, e)
	case events.ReadyChanged:
		m.applyReady(e)
	case events.MapLoaded:
		m.clearReady()
	}
}

// applyListing is a bulk replace: the listing is the canonical full roster,
// so names absent from it are dropped and replaying an identical listing is
// a no-op. Enrichment state (ratings, ready flag) survives for players that
// persist, as does team/clan detail when a status-format listing carries
// neither.
func (m *Manager) applyListing(listing events.RosterListing) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]*domain.Player, len(listing.Players))
	for _, lp := range listing.Players {
		k := domain.Key(lp.Name)
		if _, dup := next[k]; dup {
			continue
		}

		p := &domain.Player{
			Name: lp.Name,
			Clan: lp.Clan,
			Team: lp.Team,
			ID:   lp.ID,
		}
		if old, ok := m.players[k]; ok {
			p.Elo = old.Elo
			p.Ready = old.Ready
			if listing.Source == events.SourceStatus {
				p.Team = old.Team
				p.Clan = old.Clan
			}
		}
		next[k] = p
	}

	m.players = next
	slog.Debug("Roster listing applied", "players", len(next))
}

// applyConnect does not materialize the entry directly; the fresh listing
// response carries the authoritative attributes.
func (m *Manager) applyConnect(ctx context.Context, e events.Connected) {
	slog.Info("Player connected", "name", e.Name)

	m.mu.Lock()
	greeting := m.greeting
	m.mu.Unlock()

	if greeting != "" {
		if err := m.console.Say(ctx, formatting.MsgGreeting(greeting, e.Name)); err != nil {
			slog.Error("Failed to send greeting", "name", e.Name, "error", err)
		}
	}

	if err := m.console.RequestListing(ctx); err != nil {
		slog.Error("Failed to request roster listing", "error", err)
	}
}

// applyDisconnect removes the entry and asks for a refresh to reconcile
// cascading effects such as a team reshuffle.
func (m *Manager) applyDisconnect(ctx context.Context, e events.Disconnected) {
	m.mu.Lock()
	delete(m.players, domain.Key(e.Name))
	m.mu.Unlock()

	slog.Info("Player left", "name", e.Name, "kicked", e.Kicked)

	if err := m.console.RequestListing(ctx); err != nil {
		slog.Error("Failed to request roster listing", "error", err)
	}
}

func (m *Manager) applyReady(e events.ReadyChanged) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[domain.Key(e.Name)]
	if !ok {
		return
	}
	p.Ready = e.Ready
	slog.Debug("Ready state changed", "name", e.Name, "ready", e.Ready)
}

// clearReady resets every ready flag; readiness does not survive a map
// change.
func (m *Manager) clearReady() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.players {
		p.Ready = false
	}
}

// Lookup finds a player by name, case-insensitively and ignoring any
// clan-tag prefix.
func (m *Manager) Lookup(name string) (domain.Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[domain.Key(name)]
	if !ok {
		return domain.Player{}, false
	}
	return *p, true
}

// Players returns a name-sorted snapshot of the roster.
func (m *Manager) Players() []domain.Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetElo attaches a rating record to a roster member, reporting whether the
// member was present.
func (m *Manager) SetElo(name string, rec domain.EloRecord) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[domain.Key(name)]
	if !ok {
		return false
	}
	p.Elo = &rec
	return true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players)
}

// SetGreeting replaces the connect greeting. An empty string disables it.
func (m *Manager) SetGreeting(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.greeting = text
}
