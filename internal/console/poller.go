package console

import (
	"context"
	"log/slog"
	"time"

	"console-warden/internal/metrics"
)

// DeltaHandler receives each chunk of newly observed console output.
// Handlers derived from a delta run asynchronously so a slow external call
// never stalls ingestion; the context passed here is the poll loop's and is
// cancelled on shutdown.
type DeltaHandler func(ctx context.Context, delta string)

// Poller periodically reads the console buffer, isolates new content via
// the differ, and hands deltas to the handler. A transport read failure is
// fatal: the loop stops and the error surfaces on Err.
type Poller struct {
	transport Transport
	differ    *Differ
	interval  time.Duration
	handle    DeltaHandler
	errCh     chan error
}

func NewPoller(transport Transport, interval time.Duration, handle DeltaHandler) *Poller {
	return &Poller{
		transport: transport,
		differ:    NewDiffer(),
		interval:  interval,
		handle:    handle,
		errCh:     make(chan error, 1),
	}
}

// Err reports the fatal transport error that stopped the loop, if any.
func (p *Poller) Err() <-chan error {
	return p.errCh
}

func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("Console poller started", "interval", p.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.poll(ctx) {
				return
			}
		}
	}
}

func (p *Poller) poll(ctx context.Context) bool {
	buffer, length, err := p.transport.ReadBuffer(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		metrics.ConsolePolls.WithLabelValues("error").Inc()
		slog.Error("Console read failed, stopping poller", "error", err)
		p.errCh <- err
		return false
	}
	metrics.ConsolePolls.WithLabelValues("ok").Inc()

	delta, fresh := p.differ.Delta(buffer, length)
	if !fresh {
		return true
	}

	p.handle(ctx, delta)
	return true
}
