package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeSocket records frames written by a connection's write loop.
type fakeSocket struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeSocket) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if messageType == websocket.TextMessage {
		buf := make([]byte, len(data))
		copy(buf, data)
		f.frames = append(f.frames, buf)
	}
	return nil
}

func (f *fakeSocket) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (f *fakeSocket) SetWriteDeadline(t time.Time) error { return nil }

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSocket) sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.frames))
	copy(out, f.frames)
	return out
}

// waitFrames polls until the socket has received at least n frames.
func waitFrames(t *testing.T, f *fakeSocket, n int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		frames := f.sent()
		if len(frames) >= n {
			return frames
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames, got %d", n, len(f.sent()))
	return nil
}

// waitNoFrames asserts the socket stays empty for a short settle window.
func waitNoFrames(t *testing.T, f *fakeSocket) {
	t.Helper()
	time.Sleep(50 * time.Millisecond)
	if frames := f.sent(); len(frames) != 0 {
		t.Fatalf("expected no frames, got %d: %s", len(frames), frames[0])
	}
}

func newTestConn(userID, participantID, conversationID string) (*Connection, *fakeSocket) {
	f := &fakeSocket{}
	conn := NewConnection(userID, participantID, conversationID, f)
	return conn, f
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eventType(t *testing.T, frame []byte) string {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("malformed frame %s: %v", frame, err)
	}
	return env.Type
}
