package console

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// maxBufferBytes bounds the accumulated console buffer. When exceeded the
// buffer is reset; the differ treats the shrink as an external reset and
// rebases.
const maxBufferBytes = 256 * 1024

// WSTransport adapts the server panel's console WebSocket to the Transport
// interface. The panel pushes console output as text frames; a background
// reader accumulates them into a buffer that ReadBuffer snapshots, and
// WriteLine sends command frames back.
type WSTransport struct {
	conn *websocket.Conn

	mu      sync.Mutex
	buf     []byte
	readErr error

	writeMu sync.Mutex
	done    chan struct{}
}

func DialWS(ctx context.Context, url string) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial console websocket: %w", err)
	}

	t := &WSTransport{
		conn: conn,
		done: make(chan struct{}),
	}
	go t.readLoop()

	return t, nil
}

func (t *WSTransport) readLoop() {
	defer close(t.done)
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			t.readErr = err
			t.mu.Unlock()
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		t.mu.Lock()
		t.buf = append(t.buf, data...)
		if len(data) == 0 || data[len(data)-1] != '\n' {
			t.buf = append(t.buf, '\n')
		}
		if len(t.buf) > maxBufferBytes {
			slog.Warn("Console buffer cap reached, resetting", "size", len(t.buf))
			t.buf = t.buf[:0]
		}
		t.mu.Unlock()
	}
}

func (t *WSTransport) ReadBuffer(ctx context.Context) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.readErr != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrTransportClosed, t.readErr)
	}
	text := string(t.buf)
	return text, len(text), nil
}

func (t *WSTransport) WriteLine(ctx context.Context, text string, delayed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.conn.WriteMessage(websocket.TextMessage, []byte(text+"\n")); err != nil {
		return fmt.Errorf("%w: %v", ErrTransportClosed, err)
	}
	return nil
}

func (t *WSTransport) Close() error {
	err := t.conn.Close()
	<-t.done
	return err
}
