package realtime

import (
	"log/slog"

	"github.com/gorilla/websocket"
)

// Broadcaster fans a payload out to connection subsets taken as registry
// snapshots. A delivery failure to one connection never aborts delivery to
// the rest; the failed connection is dropped as a side effect.
//
// No ordering is guaranteed across recipients. Per recipient, payloads
// arrive in the order broadcasts were issued because each connection has a
// single write loop.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger

	// drop handles a connection whose send failed. The hub wires this to a
	// full unregister with peer notification; the zero behavior is a plain
	// registry removal.
	drop func(*Connection)
}

// NewBroadcaster constructs a Broadcaster over the registry.
func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	b := &Broadcaster{registry: registry, logger: logger}
	b.drop = func(conn *Connection) {
		registry.Unregister(conn)
	}
	return b
}

// ToConversation delivers payload to every connection currently registered
// to the conversation, except exclude when non-nil. Returns the number of
// successful deliveries.
func (b *Broadcaster) ToConversation(conversationID string, payload []byte, exclude *Connection) int {
	conns := b.registry.ConversationConnections(conversationID)
	delivered := 0
	for _, conn := range conns {
		if conn == exclude {
			continue
		}
		if b.deliver(conn, payload) {
			delivered++
		}
	}
	return delivered
}

// ToUser delivers payload to every live connection of the user, covering
// multi-device fan-out. Returns the number of successful deliveries.
func (b *Broadcaster) ToUser(userID string, payload []byte) int {
	conns := b.registry.UserConnections(userID)
	delivered := 0
	for _, conn := range conns {
		if b.deliver(conn, payload) {
			delivered++
		}
	}
	return delivered
}

func (b *Broadcaster) deliver(conn *Connection, payload []byte) bool {
	if err := conn.Send(payload); err != nil {
		b.logger.Warn("dropping unreachable connection",
			"connection_id", conn.ID,
			"user_id", conn.UserID,
			"conversation_id", conn.ConversationID,
			"error", err)
		conn.Close(websocket.CloseGoingAway, "delivery failed")
		b.drop(conn)
		return false
	}
	return true
}
