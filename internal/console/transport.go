// Package console provides access to the remote game-server console: a
// transport that reads the scrolling output buffer and injects command
// lines, a differ that isolates newly appended content, a serialized
// writer, and the polling loop that drives ingestion.
package console

import (
	"context"
	"errors"
)

// ErrTransportClosed is returned by transport operations after the
// underlying connection has gone away. It is fatal to the polling loop.
var ErrTransportClosed = errors.New("console transport closed")

// Transport is the narrow channel to the remote console. ReadBuffer returns
// the current accumulated output text and its length; WriteLine injects one
// command line. delayed marks commands whose replies are large (roster
// listing, server info) so the caller can wait for the reply to land before
// the next send.
type Transport interface {
	ReadBuffer(ctx context.Context) (text string, length int, err error)
	WriteLine(ctx context.Context, text string, delayed bool) error
	Close() error
}
