package commands

import (
	"context"
	"fmt"
	"strings"

	"console-warden/internal/domain"
	"console-warden/internal/formatting"
)

func newHelp(r *Registry) *command {
	return &command{
		level:  domain.LevelUser,
		bridge: true,
		usage:  "help",
		run: func(ctx context.Context, inv Invocation) (string, error) {
			names := r.Names(inv.Level)
			return "[INFO] Available commands: " + strings.Join(names, ", "), nil
		},
	}
}

func newAbout(botName string) *command {
	return &command{
		level:  domain.LevelUser,
		bridge: true,
		usage:  "about",
		run: func(ctx context.Context, inv Invocation) (string, error) {
			return fmt.Sprintf("[INFO] %s: console administration bot.",
				formatting.DisplayName(botName)), nil
		},
	}
}

func newPlayers(roster Roster, ratings Ratings) *command {
	return &command{
		level:  domain.LevelUser,
		bridge: true,
		usage:  "players",
		run: func(ctx context.Context, inv Invocation) (string, error) {
			players := roster.Players()

			var b strings.Builder
			b.WriteString(formatting.MsgPlayerCount(len(players)))
			mode := ratings.Mode()
			for _, p := range players {
				b.WriteString("\n  ")
				b.WriteString(fmt.Sprintf("%-9s %s", p.Team, formatting.DisplayName(p.Name)))
				if p.Clan != "" {
					b.WriteString(fmt.Sprintf(" [%s]", p.Clan))
				}
				if p.Elo != nil && p.Elo.Complete() {
					b.WriteString(fmt.Sprintf(" (%s %d)", mode, p.Elo.Rating(mode)))
				}
			}
			return b.String(), nil
		},
	}
}

func newElo(roster Roster) *command {
	return &command{
		minArgs: 1,
		level:   domain.LevelUser,
		bridge:  true,
		usage:   "elo <name>",
		run: func(ctx context.Context, inv Invocation) (string, error) {
			name := inv.Args[0]
			p, ok := roster.Lookup(name)
			if !ok {
				return formatting.MsgUnknownSubject(name), nil
			}
			if p.Elo == nil || !p.Elo.Complete() {
				return formatting.MsgEloUnknown(p.Name), nil
			}
			return formatting.MsgElo(p.Name, *p.Elo), nil
		},
	}
}

func newSay(console Console) *command {
	return &command{
		minArgs: 1,
		level:   domain.LevelAdmin,
		bridge:  true,
		usage:   "say <text>",
		run: func(ctx context.Context, inv Invocation) (string, error) {
			return "", console.Say(ctx, strings.Join(inv.Args, " "))
		},
	}
}
