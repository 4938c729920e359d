// Package events turns raw console output deltas into typed domain events.
package events

import "console-warden/internal/domain"

type Event interface {
	EventType() string
}

// ListingSource distinguishes the two roster listing formats the console
// produces, depending on which query was issued.
type ListingSource int

const (
	// SourcePlayers is the `players` query: client id, team, optional
	// clan tag, name.
	SourcePlayers ListingSource = iota
	// SourceStatus is the `status` query: client id, score, ping, name.
	SourceStatus
)

// ListedPlayer is one player line inside a roster listing.
type ListedPlayer struct {
	ID   int
	Team domain.Team
	Clan string
	Name string
}

// RosterListing aggregates all player lines matched within one delta.
type RosterListing struct {
	Source  ListingSource
	Players []ListedPlayer
}

func (RosterListing) EventType() string { return "roster_listing" }

type Connected struct {
	Name string
}

func (Connected) EventType() string { return "connected" }

type Disconnected struct {
	Name   string
	Kicked bool
}

func (Disconnected) EventType() string { return "disconnected" }

// ReadyChanged is a player toggling match readiness in warmup.
type ReadyChanged struct {
	Name  string
	Ready bool
}

func (ReadyChanged) EventType() string { return "ready_changed" }

type Chat struct {
	Name    string
	Message string
}

func (Chat) EventType() string { return "chat" }

type MapLoaded struct {
	Map string
}

func (MapLoaded) EventType() string { return "map_loaded" }

type VoteCalled struct {
	Caller string
	Vote   string
}

func (VoteCalled) EventType() string { return "vote_called" }

type VoteTally struct {
	Yes int
	No  int
}

func (VoteTally) EventType() string { return "vote_tally" }

type VoteResult struct {
	Passed bool
}

func (VoteResult) EventType() string { return "vote_result" }
