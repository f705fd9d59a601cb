package chat

import (
	"strings"
	"time"
)

// Message is one log entry in a conversation, written by a participant
// (human-controlled or AI-controlled character).
type Message struct {
	ID             string     `db:"id"`
	ConversationID string     `db:"conversation_id"`
	ParticipantID  string     `db:"participant_id"`
	Content        string     `db:"content"`
	FromAI         bool       `db:"from_ai"`
	CreatedAt      time.Time  `db:"created_at"`
	EditedAt       *time.Time `db:"edited_at"`
}

// NewMessage validates and normalizes a message before persistence. Content
// is trimmed; a message that is empty after trimming is rejected.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.ParticipantID == "" {
		return nil, ErrInvalidMessage
	}

	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" {
		return nil, ErrEmptyMessage
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return &m, nil
}
