package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"console-warden/internal/domain"
	"console-warden/internal/formatting"
	"console-warden/internal/storage"
)

const accessUsage = "access add <name> <user|superuser|admin> | del <name> | list"

// newAccess manages the users table. Owner-only and never available
// from the bridge: access grants ride on console identity, which the
// bridge cannot vouch for.
func newAccess(deps Deps) *command {
	return &command{
		minArgs: 1,
		level:   domain.LevelOwner,
		bridge:  false,
		usage:   accessUsage,
		run: func(ctx context.Context, inv Invocation) (string, error) {
			switch strings.ToLower(inv.Args[0]) {
			case "add":
				return accessAdd(ctx, deps, inv)
			case "del":
				return accessDel(ctx, deps, inv)
			case "list":
				return accessList(ctx, deps)
			default:
				return formatting.MsgUsage(inv.Name, accessUsage), nil
			}
		},
	}
}

func accessAdd(ctx context.Context, deps Deps, inv Invocation) (string, error) {
	if len(inv.Args) < 3 {
		return formatting.MsgUsage(inv.Name, accessUsage), nil
	}
	subject := inv.Args[1]

	level, ok := domain.ParseLevel(strings.ToLower(inv.Args[2]))
	if !ok || level >= domain.LevelOwner {
		return formatting.MsgUsage(inv.Name, accessUsage), nil
	}

	if err := deps.Store.SetAccessLevel(ctx, subject, level, domain.Key(inv.Issuer)); err != nil {
		return "", err
	}
	return formatting.MsgAccessSet(subject, level), nil
}

func accessDel(ctx context.Context, deps Deps, inv Invocation) (string, error) {
	if len(inv.Args) < 2 {
		return formatting.MsgUsage(inv.Name, accessUsage), nil
	}
	subject := inv.Args[1]

	err := deps.Store.RemoveAccess(ctx, subject)
	if errors.Is(err, storage.ErrNotFound) {
		return formatting.MsgUnknownSubject(subject), nil
	}
	if err != nil {
		return "", err
	}
	return formatting.MsgAccessRemoved(subject), nil
}

func accessList(ctx context.Context, deps Deps) (string, error) {
	users, err := deps.Store.ListUsers(ctx)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "[INFO] No users on record.", nil
	}

	lines := make([]string, 0, len(users))
	for _, u := range users {
		lines = append(lines, fmt.Sprintf("[INFO] %s: %s (added by %s)",
			formatting.DisplayName(u.Name), u.Level, formatting.DisplayName(u.AddedBy)))
	}
	return strings.Join(lines, "\n"), nil
}
