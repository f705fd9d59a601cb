package realtime

import (
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
)

// presenceEvent announces a peer joining or leaving a conversation.
type presenceEvent struct {
	Type          string `json:"type"`
	Timestamp     string `json:"timestamp"`
	UserID        string `json:"user_id"`
	ParticipantID string `json:"participant_id,omitempty"`
}

// Hub composes the registry, broadcaster, presence view and notifier into
// the single entry point connection controllers talk to. Registering a
// connection announces the join to the rest of the conversation; removing it
// announces the leave. Both notices run on the notifier pool so the connect
// and disconnect paths never wait on fan-out.
type Hub struct {
	Registry    *Registry
	Broadcaster *Broadcaster
	Presence    *Presence

	notifier *Notifier
	logger   *slog.Logger
}

// NewHub wires a Hub with its own registry, broadcaster and notifier.
func NewHub(logger *slog.Logger) *Hub {
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, logger)
	hub := &Hub{
		Registry:    registry,
		Broadcaster: broadcaster,
		Presence:    NewPresence(registry),
		notifier:    NewNotifier(256, 2, logger),
		logger:      logger,
	}
	// A connection dropped mid-broadcast leaves like any other disconnect.
	broadcaster.drop = func(conn *Connection) {
		hub.Unregister(conn)
	}
	return hub
}

// Register adds the connection to the registry, starts its write loop and
// announces the join to the conversation's other connections. Notification
// failures never fail registration.
func (h *Hub) Register(conn *Connection) error {
	if err := h.Registry.Register(conn); err != nil {
		return err
	}
	conn.Start()

	payload, err := json.Marshal(presenceEvent{
		Type:          "participant_joined",
		Timestamp:     Timestamp(),
		UserID:        conn.UserID,
		ParticipantID: conn.ParticipantID,
	})
	if err != nil {
		h.logger.Error("encoding join notice failed",
			"connection_id", conn.ID,
			"error", err)
		return nil
	}
	h.notifier.Enqueue("participant_joined", func() {
		h.Broadcaster.ToConversation(conn.ConversationID, payload, conn)
	})
	return nil
}

// Unregister removes the connection and, when it was still tracked,
// announces the leave to the rest of the conversation. Safe to call more
// than once per connection; only the first call notifies.
func (h *Hub) Unregister(conn *Connection) {
	if !h.Registry.Unregister(conn) {
		return
	}

	payload, err := json.Marshal(presenceEvent{
		Type:          "participant_left",
		Timestamp:     Timestamp(),
		UserID:        conn.UserID,
		ParticipantID: conn.ParticipantID,
	})
	if err != nil {
		h.logger.Error("encoding leave notice failed",
			"connection_id", conn.ID,
			"error", err)
		return
	}
	conversationID := conn.ConversationID
	h.notifier.Enqueue("participant_left", func() {
		h.Broadcaster.ToConversation(conversationID, payload, nil)
	})
}

// Close tears down every tracked connection and stops the notifier.
func (h *Hub) Close() {
	conns := h.Registry.Drain()
	for _, conn := range conns {
		conn.Close(websocket.CloseGoingAway, "server shutting down")
	}
	h.notifier.Stop()
}
