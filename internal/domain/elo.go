package domain

import "time"

// GameMode identifies which per-mode rating applies for admission control.
type GameMode string

const (
	ModeDuel GameMode = "duel"
	ModeFFA  GameMode = "ffa"
	ModeTDM  GameMode = "tdm"
	ModeCA   GameMode = "ca"
	ModeCTF  GameMode = "ctf"
)

// ParseGameMode maps a mode token to a GameMode, returning false for
// unknown tokens.
func ParseGameMode(token string) (GameMode, bool) {
	switch GameMode(token) {
	case ModeDuel, ModeFFA, ModeTDM, ModeCA, ModeCTF:
		return GameMode(token), true
	default:
		return "", false
	}
}

// EloRecord holds the five per-mode ratings fetched from the rating service.
type EloRecord struct {
	Duel        int
	FFA         int
	TDM         int
	CA          int
	CTF         int
	LastRefresh time.Time
}

// Rating returns the rating for the given mode.
func (e EloRecord) Rating(mode GameMode) int {
	switch mode {
	case ModeDuel:
		return e.Duel
	case ModeFFA:
		return e.FFA
	case ModeTDM:
		return e.TDM
	case ModeCA:
		return e.CA
	case ModeCTF:
		return e.CTF
	default:
		return 0
	}
}

// Complete reports whether all five ratings are populated. A record with
// any zero rating is treated as unfetched.
func (e EloRecord) Complete() bool {
	return e.Duel != 0 && e.FFA != 0 && e.TDM != 0 && e.CA != 0 && e.CTF != 0
}

// Valid reports whether the record is usable without a refetch: fully
// populated and refreshed within ttl of now.
func (e EloRecord) Valid(now time.Time, ttl time.Duration) bool {
	return e.Complete() && now.Sub(e.LastRefresh) <= ttl
}
