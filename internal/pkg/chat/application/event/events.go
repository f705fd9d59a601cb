// Package event defines the outbound frame payloads shared by the socket
// handlers, the REST controllers and the background reply worker.
package event

import (
	"encoding/json"
	"time"

	"github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/realtime"
	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/usage"
)

// Message is broadcast to a conversation when a message is persisted.
type Message struct {
	Type           string          `json:"type"`
	Timestamp      string          `json:"timestamp"`
	MessageID      string          `json:"message_id"`
	ConversationID string          `json:"conversation_id"`
	Content        string          `json:"content"`
	Sender         chat.SenderInfo `json:"sender"`
	CreatedAt      time.Time       `json:"created_at"`
}

func NewMessage(msg chat.Message, sender chat.SenderInfo) []byte {
	payload, _ := json.Marshal(Message{
		Type:           "message",
		Timestamp:      realtime.Timestamp(),
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		Content:        msg.Content,
		Sender:         sender,
		CreatedAt:      msg.CreatedAt,
	})
	return payload
}

// UsageUpdate is sent to the sender only after each successful send.
type UsageUpdate struct {
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Usage     usage.Snapshot `json:"usage"`
}

func NewUsageUpdate(snap usage.Snapshot) []byte {
	payload, _ := json.Marshal(UsageUpdate{
		Type:      "usage_update",
		Timestamp: realtime.Timestamp(),
		Usage:     snap,
	})
	return payload
}

// Typing is the ephemeral indicator relayed to everyone but the typist.
type Typing struct {
	Type          string `json:"type"`
	Timestamp     string `json:"timestamp"`
	ParticipantID string `json:"participant_id"`
	UserID        string `json:"user_id"`
	IsTyping      bool   `json:"is_typing"`
}

func NewTyping(participantID, userID string, isTyping bool) []byte {
	payload, _ := json.Marshal(Typing{
		Type:          "typing",
		Timestamp:     realtime.Timestamp(),
		ParticipantID: participantID,
		UserID:        userID,
		IsTyping:      isTyping,
	})
	return payload
}

// Presence answers a presence-request with the requester's conversation view.
type Presence struct {
	Type        string                  `json:"type"`
	Timestamp   string                  `json:"timestamp"`
	ActiveUsers []realtime.UserPresence `json:"active_users"`
}

func NewPresence(active []realtime.UserPresence) []byte {
	payload, _ := json.Marshal(Presence{
		Type:        "presence",
		Timestamp:   realtime.Timestamp(),
		ActiveUsers: active,
	})
	return payload
}

// Pong answers a keepalive ping; requester only.
type Pong struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

func NewPong() []byte {
	payload, _ := json.Marshal(Pong{Type: "pong", Timestamp: realtime.Timestamp()})
	return payload
}

// MessageRead confirms a read-receipt to the conversation.
type MessageRead struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
}

func NewMessageRead(messageID, userID string) []byte {
	payload, _ := json.Marshal(MessageRead{
		Type:      "message_read",
		Timestamp: realtime.Timestamp(),
		MessageID: messageID,
		UserID:    userID,
	})
	return payload
}

// Reaction confirms a reaction to the conversation.
type Reaction struct {
	Type          string `json:"type"`
	Timestamp     string `json:"timestamp"`
	MessageID     string `json:"message_id"`
	ParticipantID string `json:"participant_id"`
	Emoji         string `json:"emoji"`
}

func NewReaction(messageID, participantID, emoji string) []byte {
	payload, _ := json.Marshal(Reaction{
		Type:          "reaction",
		Timestamp:     realtime.Timestamp(),
		MessageID:     messageID,
		ParticipantID: participantID,
		Emoji:         emoji,
	})
	return payload
}

// MessageEdited confirms an edit to the conversation.
type MessageEdited struct {
	Type      string    `json:"type"`
	Timestamp string    `json:"timestamp"`
	MessageID string    `json:"message_id"`
	Content   string    `json:"content"`
	EditedAt  time.Time `json:"edited_at"`
}

func NewMessageEdited(messageID, content string, editedAt time.Time) []byte {
	payload, _ := json.Marshal(MessageEdited{
		Type:      "message_edited",
		Timestamp: realtime.Timestamp(),
		MessageID: messageID,
		Content:   content,
		EditedAt:  editedAt,
	})
	return payload
}

// MessageDeleted confirms a deletion to the conversation.
type MessageDeleted struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	MessageID string `json:"message_id"`
}

func NewMessageDeleted(messageID string) []byte {
	payload, _ := json.Marshal(MessageDeleted{
		Type:      "message_deleted",
		Timestamp: realtime.Timestamp(),
		MessageID: messageID,
	})
	return payload
}

// Narrative is the tagged pass-through frame used by the quest, dialog and
// choice events. Data is relayed verbatim.
type Narrative struct {
	Type          string          `json:"type"`
	Timestamp     string          `json:"timestamp"`
	ParticipantID string          `json:"participant_id"`
	Data          json.RawMessage `json:"data,omitempty"`
}

func NewNarrative(eventType, participantID string, data json.RawMessage) []byte {
	payload, _ := json.Marshal(Narrative{
		Type:          eventType,
		Timestamp:     realtime.Timestamp(),
		ParticipantID: participantID,
		Data:          data,
	})
	return payload
}

// Connected acknowledges a successful handshake; requester only.
type Connected struct {
	Type           string `json:"type"`
	Timestamp      string `json:"timestamp"`
	ConversationID string `json:"conversation_id"`
	ParticipantID  string `json:"participant_id"`
}

func NewConnected(conversationID, participantID string) []byte {
	payload, _ := json.Marshal(Connected{
		Type:           "connected",
		Timestamp:      realtime.Timestamp(),
		ConversationID: conversationID,
		ParticipantID:  participantID,
	})
	return payload
}
