package events

import (
	"regexp"
	"strconv"
	"strings"

	"console-warden/internal/domain"
	"console-warden/internal/metrics"
)

// echoMarker prefixes lines the console echoes back for commands we wrote
// ourselves. They are filtered before classification so our own output can
// never feed back into the dispatcher.
const echoMarker = "]"

// rule pairs a pattern with an event constructor. Rules are applied in
// order and are mutually exclusive per line: the first match wins.
type rule struct {
	name  string
	re    *regexp.Regexp
	build func(m []string) Event
}

// Rule order is the classification priority: roster listings first (their
// player lines would otherwise be misread as chat), then connection
// traffic, chat, map loads, and vote fragments.
var rules = []rule{
	{
		name: "listing_players",
		re:   regexp.MustCompile(`^\s*(\d+)\s+(FREE|RED|BLUE|SPECTATOR)\s+(?:\((\S+)\)\s+)?(\S+)\s*$`),
		build: func(m []string) Event {
			id, _ := strconv.Atoi(m[1])
			return playerLine{listed: ListedPlayer{
				ID:   id,
				Team: domain.ParseTeam(m[2]),
				Clan: m[3],
				Name: m[4],
			}, source: SourcePlayers}
		},
	},
	{
		name: "listing_status",
		re:   regexp.MustCompile(`^\s*(\d+)\s+(-?\d+)\s+(\d+)\s+(\S+)\s*$`),
		build: func(m []string) Event {
			id, _ := strconv.Atoi(m[1])
			return playerLine{listed: ListedPlayer{
				ID:   id,
				Name: m[4],
			}, source: SourceStatus}
		},
	},
	{
		name: "connected",
		re:   regexp.MustCompile(`^(\S+) connected\s*$`),
		build: func(m []string) Event {
			return Connected{Name: m[1]}
		},
	},
	{
		name: "disconnected",
		re:   regexp.MustCompile(`^(\S+) disconnected\s*$`),
		build: func(m []string) Event {
			return Disconnected{Name: m[1]}
		},
	},
	{
		name: "kicked",
		re:   regexp.MustCompile(`^(\S+) was kicked\s*$`),
		build: func(m []string) Event {
			return Disconnected{Name: m[1], Kicked: true}
		},
	},
	{
		name: "ready",
		re:   regexp.MustCompile(`^(\S+) is ready\s*$`),
		build: func(m []string) Event {
			return ReadyChanged{Name: m[1], Ready: true}
		},
	},
	{
		name: "notready",
		re:   regexp.MustCompile(`^(\S+) is not ready\s*$`),
		build: func(m []string) Event {
			return ReadyChanged{Name: m[1], Ready: false}
		},
	},
	{
		name: "chat",
		re:   regexp.MustCompile(`^(?:\(\S+\)\s+)?([^\s:]+): (.+)$`),
		build: func(m []string) Event {
			// Vote tally and InitGame lines share this surface shape;
			// rejecting here lets classification fall through to the
			// later rules.
			if m[1] == "Vote" || m[1] == "InitGame" {
				return nil
			}
			return Chat{Name: m[1], Message: m[2]}
		},
	},
	{
		name: "map_loading",
		re:   regexp.MustCompile(`^Loading map: (\S+)\s*$`),
		build: func(m []string) Event {
			return MapLoaded{Map: m[1]}
		},
	},
	{
		name: "map_init",
		re:   regexp.MustCompile(`^InitGame: .*\\mapname\\([^\\]+)`),
		build: func(m []string) Event {
			return MapLoaded{Map: m[1]}
		},
	},
	{
		name: "vote_called",
		re:   regexp.MustCompile(`^(\S+) called a vote: (.+)$`),
		build: func(m []string) Event {
			return VoteCalled{Caller: m[1], Vote: m[2]}
		},
	},
	{
		name: "vote_tally",
		re:   regexp.MustCompile(`^Vote: Yes:(\d+) No:(\d+)\s*$`),
		build: func(m []string) Event {
			yes, _ := strconv.Atoi(m[1])
			no, _ := strconv.Atoi(m[2])
			return VoteTally{Yes: yes, No: no}
		},
	},
	{
		name: "vote_result",
		re:   regexp.MustCompile(`^Vote (passed|failed)\.?\s*$`),
		build: func(m []string) Event {
			return VoteResult{Passed: m[1] == "passed"}
		},
	},
}

// playerLine is an internal intermediate: listing rules match one player
// per line, and Classify folds consecutive matches from the same query into
// a single RosterListing event.
type playerLine struct {
	listed ListedPlayer
	source ListingSource
}

func (playerLine) EventType() string { return "player_line" }

// Classify applies the rule table to a delta and returns the typed events
// in document order. Listing lines are aggregated into one RosterListing
// per source format, positioned where the first player line appeared.
// Unmatched lines are ignored.
func Classify(delta string) []Event {
	var out []Event
	listings := make(map[ListingSource]*RosterListing)

	for _, line := range strings.Split(delta, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, echoMarker) {
			continue
		}

		ev := classifyLine(line)
		if ev == nil {
			continue
		}

		if pl, ok := ev.(playerLine); ok {
			listing, exists := listings[pl.source]
			if !exists {
				listing = &RosterListing{Source: pl.source}
				listings[pl.source] = listing
				out = append(out, listing)
			}
			listing.Players = append(listing.Players, pl.listed)
			continue
		}

		metrics.EventsClassified.WithLabelValues(ev.EventType()).Inc()
		out = append(out, ev)
	}

	// Deref the aggregated listings so callers see value events.
	for i, ev := range out {
		if listing, ok := ev.(*RosterListing); ok {
			metrics.EventsClassified.WithLabelValues(listing.EventType()).Inc()
			out[i] = *listing
		}
	}

	return out
}

func classifyLine(line string) Event {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if ev := r.build(m); ev != nil {
			return ev
		}
	}
	return nil
}
