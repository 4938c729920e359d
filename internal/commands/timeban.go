package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"console-warden/internal/domain"
	"console-warden/internal/formatting"
	"console-warden/internal/sanctions"
	"console-warden/internal/storage"
)

const timebanUsage = "timeban add <name> <amount> <secs|mins|hours|days|months|years> | del <name> | check <name> | list"

func newTimeban(deps Deps) *command {
	return &command{
		minArgs: 1,
		level:   domain.LevelAdmin,
		bridge:  true,
		usage:   timebanUsage,
		run: func(ctx context.Context, inv Invocation) (string, error) {
			switch strings.ToLower(inv.Args[0]) {
			case "add":
				return timebanAdd(ctx, deps, inv)
			case "del":
				return timebanDel(ctx, deps, inv)
			case "check":
				return timebanCheck(ctx, deps, inv)
			case "list":
				return timebanList(ctx, deps)
			default:
				return formatting.MsgUsage(inv.Name, timebanUsage), nil
			}
		},
	}
}

func timebanAdd(ctx context.Context, deps Deps, inv Invocation) (string, error) {
	if len(inv.Args) < 4 {
		return formatting.MsgUsage(inv.Name, timebanUsage), nil
	}
	subject := inv.Args[1]

	magnitude, err := strconv.ParseFloat(inv.Args[2], 64)
	if err != nil || magnitude <= 0 {
		return formatting.MsgUsage(inv.Name, timebanUsage), nil
	}
	scale := inv.Args[3]
	if !sanctions.ValidScale(scale) {
		return formatting.MsgUsage(inv.Name, timebanUsage), nil
	}

	if protected, err := sanctionProtected(ctx, deps, inv.Level, subject); err != nil {
		return "", err
	} else if protected {
		return formatting.MsgSanctionProtected(subject), nil
	}

	outcome, sanction := deps.Sanctions.Add(ctx, domain.Key(subject), domain.Key(inv.Issuer),
		magnitude, scale, domain.CategoryAdminIssued)
	switch outcome {
	case sanctions.AlreadyExists:
		return formatting.MsgSanctionExists(subject), nil
	case sanctions.InternalError:
		return "", fmt.Errorf("failed to add sanction for %q", subject)
	}

	if err := deps.Console.Kick(ctx, domain.Key(subject)); err != nil {
		slog.Error("Failed to kick sanctioned player", "subject", subject, "error", err)
	}
	return formatting.MsgSanctionAdded(subject, sanction.Expires), nil
}

func timebanDel(ctx context.Context, deps Deps, inv Invocation) (string, error) {
	if len(inv.Args) < 2 {
		return formatting.MsgUsage(inv.Name, timebanUsage), nil
	}
	subject := inv.Args[1]

	err := deps.Sanctions.Remove(ctx, domain.Key(subject))
	if errors.Is(err, storage.ErrNotFound) {
		return formatting.MsgNoSanction(subject), nil
	}
	if err != nil {
		return "", err
	}
	return formatting.MsgSanctionRemoved(subject), nil
}

func timebanCheck(ctx context.Context, deps Deps, inv Invocation) (string, error) {
	if len(inv.Args) < 2 {
		return formatting.MsgUsage(inv.Name, timebanUsage), nil
	}
	subject := inv.Args[1]

	sanction, err := deps.Sanctions.Check(ctx, domain.Key(subject))
	if err != nil {
		return "", err
	}
	if sanction == nil {
		return formatting.MsgNoSanction(subject), nil
	}
	return formatting.MsgSanctionStatus(*sanction), nil
}

func timebanList(ctx context.Context, deps Deps) (string, error) {
	active, err := deps.Sanctions.List(ctx)
	if err != nil {
		return "", err
	}
	if len(active) == 0 {
		return formatting.MsgNoActiveSanctions, nil
	}

	lines := make([]string, 0, len(active))
	for _, s := range active {
		lines = append(lines, formatting.MsgSanctionStatus(s))
	}
	return strings.Join(lines, "\n"), nil
}

// sanctionProtected reports whether the subject is off-limits for this
// issuer: Admin-or-higher subjects and the owner may only be
// sanctioned by the owner.
func sanctionProtected(ctx context.Context, deps Deps, issuerLevel domain.Level, subject string) (bool, error) {
	if issuerLevel >= domain.LevelOwner {
		return false, nil
	}
	if deps.OwnerName != "" && domain.Key(subject) == domain.Key(deps.OwnerName) {
		return true, nil
	}

	level, err := deps.Store.GetAccessLevel(ctx, subject)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return level >= domain.LevelAdmin, nil
}
