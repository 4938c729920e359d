// Package formatting holds the user-facing response strings. Replies carry
// a bracketed severity tag followed by a human-readable message; outer
// surfaces (console, bridge) must preserve this convention.
package formatting

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"console-warden/internal/domain"
)

const (
	MsgInsufficientAccess = "[ERROR] You do not have permission to use this command."
	MsgBridgeForbidden    = "[ERROR] This command cannot be used from the bridge channel."
	MsgInternalError      = "[ERROR] Internal error, the action was not applied."
	MsgNoActiveSanctions  = "[INFO] There are no active time bans."
)

var titleCaser = cases.Title(language.English)

// DisplayName title-cases a subject name for user-facing replies.
func DisplayName(name string) string {
	return titleCaser.String(strings.ToLower(name))
}

func MsgUsage(command, usage string) string {
	return fmt.Sprintf("[ERROR] Usage: %s %s", command, usage)
}

func MsgUnknownSubject(name string) string {
	return fmt.Sprintf("[ERROR] %s was not found.", DisplayName(name))
}

func MsgSanctionAdded(subject string, expires time.Time) string {
	return fmt.Sprintf("[SUCCESS] %s is banned until %s.",
		DisplayName(subject), expires.UTC().Format("2006-01-02 15:04:05 MST"))
}

func MsgSanctionExists(subject string) string {
	return fmt.Sprintf("[ERROR] %s already has an active ban; remove it first.", DisplayName(subject))
}

func MsgSanctionRemoved(subject string) string {
	return fmt.Sprintf("[SUCCESS] The ban on %s was removed.", DisplayName(subject))
}

func MsgSanctionStatus(s domain.Sanction) string {
	return fmt.Sprintf("[INFO] %s is banned by %s until %s (%s).",
		DisplayName(s.Subject), DisplayName(s.IssuedBy),
		s.Expires.UTC().Format("2006-01-02 15:04:05 MST"), s.Category)
}

func MsgNoSanction(subject string) string {
	return fmt.Sprintf("[INFO] %s has no active ban.", DisplayName(subject))
}

func MsgSanctionProtected(subject string) string {
	return fmt.Sprintf("[ERROR] %s is an admin and cannot be banned.", DisplayName(subject))
}

func MsgAccessSet(subject string, level domain.Level) string {
	return fmt.Sprintf("[SUCCESS] %s now has %s access.", DisplayName(subject), level)
}

func MsgAccessRemoved(subject string) string {
	return fmt.Sprintf("[SUCCESS] Access for %s was removed.", DisplayName(subject))
}

func MsgElo(name string, rec domain.EloRecord) string {
	return fmt.Sprintf("%s: duel %d / ffa %d / tdm %d / ca %d / ctf %d",
		DisplayName(name), rec.Duel, rec.FFA, rec.TDM, rec.CA, rec.CTF)
}

func MsgEloUnknown(name string) string {
	return fmt.Sprintf("[INFO] No ratings on record for %s yet.", DisplayName(name))
}

func MsgEloLimit(mode domain.GameMode, min, max int) string {
	switch {
	case min == 0 && max == 0:
		return fmt.Sprintf("[INFO] No rating limits are active for %s.", mode)
	case max == 0:
		return fmt.Sprintf("[INFO] Rating limit for %s: minimum %d.", mode, min)
	case min == 0:
		return fmt.Sprintf("[INFO] Rating limit for %s: maximum %d.", mode, max)
	default:
		return fmt.Sprintf("[INFO] Rating limit for %s: %d-%d.", mode, min, max)
	}
}

func MsgEloKick(name string, rating, min, max int) string {
	return fmt.Sprintf("%s was removed: rating %d is outside the allowed band %d-%d.",
		DisplayName(name), rating, min, max)
}

func MsgGreeting(greeting, name string) string {
	return strings.ReplaceAll(greeting, "{name}", DisplayName(name))
}

func MsgPlayerCount(n int) string {
	if n == 1 {
		return "[INFO] 1 player on the server:"
	}
	return fmt.Sprintf("[INFO] %d players on the server:", n)
}
