package commands

import (
	"context"
	"strings"

	"console-warden/internal/domain"
)

// newPassthrough builds a handler that forwards a console command
// verbatim, appending the invocation's arguments. Most admin commands
// are plain console passthroughs and differ only in token, arity and
// whether the console's reply is large enough to warrant the settle
// delay.
func newPassthrough(console Console, consoleCmd string, minArgs int, level domain.Level, usage string, delayed bool) *command {
	return &command{
		minArgs: minArgs,
		level:   level,
		bridge:  true,
		usage:   usage,
		run: func(ctx context.Context, inv Invocation) (string, error) {
			line := consoleCmd
			if len(inv.Args) > 0 {
				line += " " + strings.Join(inv.Args, " ")
			}
			return "", console.WriteLine(ctx, line, delayed)
		},
	}
}

// registerPassthroughs wires the closed set of console passthrough
// commands.
func registerPassthroughs(r *Registry, console Console) error {
	type spec struct {
		name       string
		consoleCmd string
		minArgs    int
		level      domain.Level
		usage      string
		delayed    bool
	}

	specs := []spec{
		{"kick", "kick", 1, domain.LevelAdmin, "kick <name>", false},
		{"mute", "mute", 1, domain.LevelAdmin, "mute <name>", false},
		{"unmute", "unmute", 1, domain.LevelAdmin, "unmute <name>", false},
		{"map", "map", 1, domain.LevelAdmin, "map <mapname>", false},
		{"nextmap", "nextmap", 0, domain.LevelAdmin, "nextmap", false},
		{"restart", "map_restart", 0, domain.LevelAdmin, "restart", false},
		{"pause", "pause", 0, domain.LevelAdmin, "pause", false},
		{"unpause", "unpause", 0, domain.LevelAdmin, "unpause", false},
		{"lock", "lock", 0, domain.LevelAdmin, "lock [team]", false},
		{"unlock", "unlock", 0, domain.LevelAdmin, "unlock [team]", false},
		{"allready", "allready", 0, domain.LevelAdmin, "allready", false},
		{"abort", "abort", 0, domain.LevelAdmin, "abort", false},
		{"veto", "veto", 0, domain.LevelAdmin, "veto", false},
		{"passvote", "passvote", 0, domain.LevelAdmin, "passvote", false},
		{"teamsize", "teamsize", 1, domain.LevelAdmin, "teamsize <n>", false},
		{"invite", "invite", 1, domain.LevelAdmin, "invite <name>", false},
		{"shuffle", "shuffle", 0, domain.LevelAdmin, "shuffle", false},
		{"serverinfo", "serverinfo", 0, domain.LevelUser, "serverinfo", true},
		{"voteinfo", "voteinfo", 0, domain.LevelUser, "voteinfo", true},
	}

	for _, s := range specs {
		h := newPassthrough(console, s.consoleCmd, s.minArgs, s.level, s.usage, s.delayed)
		if err := r.Register(s.name, h); err != nil {
			return err
		}
	}
	return nil
}
