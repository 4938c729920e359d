package commands

import (
	"context"
	"log/slog"
	"strings"

	"console-warden/internal/domain"
)

// newShutdown stops the process. Owner-only and console-only so a
// compromised bridge channel cannot take the bot down.
func newShutdown(deps Deps) *command {
	return &command{
		level:  domain.LevelOwner,
		bridge: false,
		usage:  "shutdown",
		run: func(ctx context.Context, inv Invocation) (string, error) {
			slog.Info("Shutdown requested", "issuer", inv.Issuer)
			deps.Shutdown()
			return "", nil
		},
	}
}

// newGreeting replaces the connect greeting at runtime. "off" disables
// it; {name} in the text is substituted with the joining player.
func newGreeting(deps Deps) *command {
	return &command{
		minArgs: 1,
		level:   domain.LevelOwner,
		bridge:  true,
		usage:   "greeting <text|off>",
		run: func(ctx context.Context, inv Invocation) (string, error) {
			text := strings.Join(inv.Args, " ")
			if strings.EqualFold(text, "off") {
				deps.Roster.SetGreeting("")
				return "[SUCCESS] Greeting disabled.", nil
			}
			deps.Roster.SetGreeting(text)
			return "[SUCCESS] Greeting updated.", nil
		},
	}
}
