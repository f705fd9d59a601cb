package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// HandlerFunc processes one inbound event for a connection. The raw frame is
// passed through so each handler decodes its own payload shape. A returned
// error is reported to the sender as an error event; it never terminates the
// connection.
type HandlerFunc func(ctx context.Context, conn *Connection, raw json.RawMessage) error

// Dispatcher routes inbound frames to handlers by their declared type tag.
// Every failure mode short of a transport fault — malformed frame, unknown
// type, handler error, handler panic — is answered with a single error event
// to the sender while the connection stays open.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   *slog.Logger
}

// NewDispatcher constructs an empty Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

// Register binds a handler to an event type. Registration happens during
// construction, before any connection is served; it is not safe to call
// concurrently with Dispatch.
func (d *Dispatcher) Register(eventType string, h HandlerFunc) {
	d.handlers[eventType] = h
}

// Dispatch parses the frame, looks up the handler for its type and invokes
// it, isolating any failure to an error event on the same connection.
func (d *Dispatcher) Dispatch(ctx context.Context, conn *Connection, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		_ = conn.Send(NewErrorEvent("invalid event payload"))
		return
	}
	if env.Type == "" {
		_ = conn.Send(NewErrorEvent("event type is required"))
		return
	}

	handler, ok := d.handlers[env.Type]
	if !ok {
		_ = conn.Send(NewErrorEvent(fmt.Sprintf("unknown event type %q", env.Type)))
		return
	}

	if err := d.invoke(ctx, conn, handler, raw); err != nil {
		d.logger.Error("event handler failed",
			"event_type", env.Type,
			"connection_id", conn.ID,
			"user_id", conn.UserID,
			"error", err)
		_ = conn.Send(NewErrorEvent(err.Error()))
	}
}

// invoke runs the handler, converting a panic into an error so one bad event
// cannot take down the connection's read loop.
func (d *Dispatcher) invoke(ctx context.Context, conn *Connection, handler HandlerFunc, raw json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				"connection_id", conn.ID,
				"panic", r)
			err = fmt.Errorf("internal error while handling event")
		}
	}()
	return handler(ctx, conn, raw)
}
