package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"console-warden/internal/domain"
)

// Handler is the capability object behind one command token. Execute
// returns the reply text for the invocation's origin; an empty reply
// means the command produced its effect silently.
type Handler interface {
	MinArgs() int
	MinLevel() domain.Level
	BridgeAllowed() bool
	Usage() string
	Execute(ctx context.Context, inv Invocation) (string, error)
}

// command is the one concrete Handler; every registered token is built
// from it with a run closure over the dispatcher's dependencies.
type command struct {
	minArgs int
	level   domain.Level
	bridge  bool
	usage   string
	run     func(ctx context.Context, inv Invocation) (string, error)
}

func (c *command) MinArgs() int           { return c.minArgs }
func (c *command) MinLevel() domain.Level { return c.level }
func (c *command) BridgeAllowed() bool    { return c.bridge }
func (c *command) Usage() string          { return c.usage }

func (c *command) Execute(ctx context.Context, inv Invocation) (string, error) {
	return c.run(ctx, inv)
}

// Registry maps command tokens to handlers. Registration happens once
// at startup; lookups afterwards are read-only.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(name string, h Handler) error {
	name = strings.ToLower(name)
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	r.handlers[name] = h
	return nil
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[strings.ToLower(name)]
	return h, ok
}

// Names returns the registered tokens sorted, filtered to those the
// given level may use.
func (r *Registry) Names(level domain.Level) []string {
	out := make([]string, 0, len(r.handlers))
	for name, h := range r.handlers {
		if level >= h.MinLevel() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
