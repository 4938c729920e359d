package domain

import "strings"

type Team int

const (
	TeamNone Team = iota
	TeamFree
	TeamRed
	TeamBlue
	TeamSpectator
)

func (t Team) String() string {
	switch t {
	case TeamFree:
		return "free"
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	case TeamSpectator:
		return "spectator"
	default:
		return "none"
	}
}

// ParseTeam maps a console team token to a Team. Unknown tokens map to
// TeamNone rather than failing, since listing formats vary between queries.
func ParseTeam(token string) Team {
	switch strings.ToUpper(token) {
	case "FREE":
		return TeamFree
	case "RED":
		return TeamRed
	case "BLUE":
		return TeamBlue
	case "SPECTATOR", "SPEC":
		return TeamSpectator
	default:
		return TeamNone
	}
}

// Player is one entry in the server roster. Name is the unique key and is
// compared case-insensitively. ID is the console-assigned client number and
// is authoritative only immediately after a roster refresh.
type Player struct {
	Name  string
	Clan  string
	Team  Team
	ID    int
	Elo   *EloRecord
	Ready bool
}

// Key returns the canonical roster key for a name: lowercased, with any
// clan-tag prefix stripped. Some console events carry the full decorated
// name while others carry the short name only.
func Key(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, " "); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}
