package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"console-warden/internal/metrics"
)

// Writer is the single outbound funnel to the console. All command text
// goes through one Writer so concurrently executing handlers cannot
// interleave partial lines; the remote console observes commands in the
// order they were serialized here.
type Writer struct {
	mu        sync.Mutex
	transport Transport
	settle    time.Duration
}

// NewWriter wraps a transport. settle is the bounded wait applied after
// delayed writes, giving large replies time to land before the next send
// (the console offers no completion signaling).
func NewWriter(transport Transport, settle time.Duration) *Writer {
	return &Writer{
		transport: transport,
		settle:    settle,
	}
}

func (w *Writer) WriteLine(ctx context.Context, text string, delayed bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.transport.WriteLine(ctx, text, delayed); err != nil {
		metrics.ConsoleWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("write console line: %w", err)
	}
	metrics.ConsoleWrites.WithLabelValues("ok").Inc()

	if delayed && w.settle > 0 {
		select {
		case <-time.After(w.settle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Say emits a public chat line from the bot.
func (w *Writer) Say(ctx context.Context, message string) error {
	return w.WriteLine(ctx, fmt.Sprintf("say %q", message), false)
}

// Kick removes a player from the server.
func (w *Writer) Kick(ctx context.Context, name string) error {
	return w.WriteLine(ctx, "kick "+name, false)
}

// Unban lifts a console-level ban on a player.
func (w *Writer) Unban(ctx context.Context, name string) error {
	return w.WriteLine(ctx, "unban "+name, false)
}

// RequestListing asks the console for the roster listing; the reply spans
// many lines, so the write is delayed.
func (w *Writer) RequestListing(ctx context.Context) error {
	return w.WriteLine(ctx, "players", true)
}
