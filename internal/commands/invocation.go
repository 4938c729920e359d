// Package commands parses prefixed chat lines into invocations and
// dispatches them to registered handlers under argument and permission
// checks.
package commands

import "console-warden/internal/domain"

// Origin distinguishes where an invocation entered from. Bridged
// invocations carry one extra leading alias token and reply to the
// bridge channel instead of the console.
type Origin int

const (
	OriginConsole Origin = iota
	OriginBridge
)

func (o Origin) String() string {
	if o == OriginBridge {
		return "bridge"
	}
	return "console"
}

// Invocation is an immutable per-invocation value. Level is the
// issuer's resolved permission level, filled in by the dispatcher.
type Invocation struct {
	Name   string
	Args   []string
	Issuer string
	Origin Origin
	Level  domain.Level
	Raw    string
}
