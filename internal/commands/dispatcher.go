package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"console-warden/internal/domain"
	"console-warden/internal/events"
	"console-warden/internal/formatting"
	"console-warden/internal/metrics"
	"console-warden/internal/storage"
)

// Replier delivers a reply to one origin's destination.
type Replier func(ctx context.Context, message string) error

// Dispatcher routes chat lines to handlers. Handlers execute as
// independent tasks so a slow external call never stalls ingestion of
// further console output; replies go to exactly one destination chosen
// by the invocation's origin.
type Dispatcher struct {
	registry *Registry
	store    storage.Store

	prefix      string
	botName     string
	ownerName   string
	bridgeAlias string

	// rejectUnauthorized controls whether a denied issuer gets an
	// explicit rejection instead of silence.
	rejectUnauthorized bool

	consoleReply Replier
	bridgeReply  Replier

	wg sync.WaitGroup
}

type DispatcherOptions struct {
	Prefix             string
	BotName            string
	OwnerName          string
	BridgeAlias        string
	RejectUnauthorized bool
	ConsoleReply       Replier
	BridgeReply        Replier
}

func NewDispatcher(registry *Registry, store storage.Store, opts DispatcherOptions) *Dispatcher {
	return &Dispatcher{
		registry:           registry,
		store:              store,
		prefix:             opts.Prefix,
		botName:            opts.BotName,
		ownerName:          opts.OwnerName,
		bridgeAlias:        opts.BridgeAlias,
		rejectUnauthorized: opts.RejectUnauthorized,
		consoleReply:       opts.ConsoleReply,
		bridgeReply:        opts.BridgeReply,
	}
}

// HandleChat inspects a classified chat event and, if it is a command
// invocation, dispatches it asynchronously.
func (d *Dispatcher) HandleChat(ctx context.Context, chat events.Chat, origin Origin) {
	inv, ok := d.Parse(chat, origin)
	if !ok {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Dispatch(ctx, inv)
	}()
}

// Wait blocks until all in-flight handlers have completed. Used during
// shutdown so handlers finish under their own context.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Parse turns a chat event into an invocation. The message must start
// with the prefix immediately followed by a registered-looking token;
// the bot's own lines are never invocations.
func (d *Dispatcher) Parse(chat events.Chat, origin Origin) (Invocation, bool) {
	if domain.Key(chat.Name) == domain.Key(d.botName) {
		return Invocation{}, false
	}
	if !strings.HasPrefix(chat.Message, d.prefix) {
		return Invocation{}, false
	}

	fields := strings.Fields(chat.Message[len(d.prefix):])
	if len(fields) == 0 {
		return Invocation{}, false
	}

	return Invocation{
		Name:   strings.ToLower(fields[0]),
		Args:   fields[1:],
		Issuer: chat.Name,
		Origin: origin,
		Raw:    chat.Message,
	}, true
}

// Dispatch runs the full check chain for one invocation and executes
// the handler synchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) {
	handler, ok := d.registry.Lookup(inv.Name)
	if !ok {
		return
	}

	// Bridged origin reserves one leading alias token naming the bot the
	// command is addressed to. A line without the token, or addressed to
	// another bot in a shared channel, is not ours to act on.
	if inv.Origin == OriginBridge {
		if len(inv.Args) == 0 {
			return
		}
		if d.bridgeAlias != "" && domain.Key(inv.Args[0]) != domain.Key(d.bridgeAlias) {
			return
		}
		inv.Args = inv.Args[1:]
	}
	if len(inv.Args) < handler.MinArgs() {
		metrics.CommandsDispatched.WithLabelValues(inv.Name, "bad_args").Inc()
		d.reply(ctx, inv, formatting.MsgUsage(inv.Name, handler.Usage()))
		return
	}

	level, err := d.resolveLevel(ctx, inv.Issuer)
	if err != nil {
		slog.Error("Failed to resolve issuer level", "issuer", inv.Issuer, "error", err)
		metrics.CommandsDispatched.WithLabelValues(inv.Name, "error").Inc()
		return
	}
	inv.Level = level

	if level < handler.MinLevel() {
		slog.Info("Command denied", "command", inv.Name, "issuer", inv.Issuer,
			"level", level.String(), "required", handler.MinLevel().String())
		metrics.CommandsDispatched.WithLabelValues(inv.Name, "denied").Inc()
		if d.rejectUnauthorized {
			d.reply(ctx, inv, formatting.MsgInsufficientAccess)
		}
		return
	}

	if inv.Origin == OriginBridge && !handler.BridgeAllowed() {
		metrics.CommandsDispatched.WithLabelValues(inv.Name, "bridge_forbidden").Inc()
		d.reply(ctx, inv, formatting.MsgBridgeForbidden)
		return
	}

	out, err := handler.Execute(ctx, inv)
	if err != nil {
		slog.Error("Command failed", "command", inv.Name, "issuer", inv.Issuer, "error", err)
		metrics.CommandsDispatched.WithLabelValues(inv.Name, "error").Inc()
		d.reply(ctx, inv, formatting.MsgInternalError)
		return
	}

	metrics.CommandsDispatched.WithLabelValues(inv.Name, "ok").Inc()
	if out != "" {
		d.reply(ctx, inv, out)
	}
}

// resolveLevel reads the issuer's access level. Names absent from the
// users table default to User; the configured owner is always Owner.
func (d *Dispatcher) resolveLevel(ctx context.Context, issuer string) (domain.Level, error) {
	if d.ownerName != "" && domain.Key(issuer) == domain.Key(d.ownerName) {
		return domain.LevelOwner, nil
	}

	level, err := d.store.GetAccessLevel(ctx, issuer)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.LevelUser, nil
	}
	if err != nil {
		return domain.LevelNone, err
	}
	return level, nil
}

func (d *Dispatcher) reply(ctx context.Context, inv Invocation, message string) {
	replier := d.consoleReply
	if inv.Origin == OriginBridge {
		replier = d.bridgeReply
	}
	if replier == nil {
		return
	}
	if err := replier(ctx, message); err != nil {
		slog.Error("Failed to deliver reply", "command", inv.Name,
			"origin", inv.Origin.String(), "error", err)
	}
}
