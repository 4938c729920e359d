package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"console-warden/internal/domain"
	"console-warden/internal/formatting"
)

const elolimitUsage = "elolimit set <min> [max] | clear | status"

func newElolimit(deps Deps) *command {
	return &command{
		minArgs: 1,
		level:   domain.LevelAdmin,
		bridge:  true,
		usage:   elolimitUsage,
		run: func(ctx context.Context, inv Invocation) (string, error) {
			switch strings.ToLower(inv.Args[0]) {
			case "set":
				return elolimitSet(ctx, deps, inv)
			case "clear":
				deps.Ratings.ClearLimits()
				slog.Info("Rating limits cleared", "issuer", inv.Issuer)
				return formatting.MsgEloLimit(deps.Ratings.Mode(), 0, 0), nil
			case "status":
				min, max := deps.Ratings.Limits()
				return formatting.MsgEloLimit(deps.Ratings.Mode(), min, max), nil
			default:
				return formatting.MsgUsage(inv.Name, elolimitUsage), nil
			}
		},
	}
}

func elolimitSet(ctx context.Context, deps Deps, inv Invocation) (string, error) {
	if len(inv.Args) < 2 {
		return formatting.MsgUsage(inv.Name, elolimitUsage), nil
	}

	min, err := strconv.Atoi(inv.Args[1])
	if err != nil {
		return formatting.MsgUsage(inv.Name, elolimitUsage), nil
	}
	max := 0
	if len(inv.Args) >= 3 {
		max, err = strconv.Atoi(inv.Args[2])
		if err != nil {
			return formatting.MsgUsage(inv.Name, elolimitUsage), nil
		}
	}

	if err := deps.Ratings.SetLimits(min, max); err != nil {
		return formatting.MsgUsage(inv.Name, elolimitUsage), nil
	}
	slog.Info("Rating limits set", "issuer", inv.Issuer, "min", min, "max", max)

	// Apply the new band to whoever is on the server right now.
	deps.Ratings.Cycle(ctx)

	return formatting.MsgEloLimit(deps.Ratings.Mode(), min, max), nil
}
