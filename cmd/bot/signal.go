package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// WaitForShutdown blocks until an operator signal arrives, the run
// context is cancelled (the shutdown command), or the console
// transport fails fatally.
func WaitForShutdown(ctx context.Context, fatal <-chan error) {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	select {
	case <-sc:
		slog.Info("Shutdown signal received")
	case <-ctx.Done():
		slog.Info("Shutdown requested")
	case err := <-fatal:
		slog.Error("Console transport failed", "error", err)
	}
}
