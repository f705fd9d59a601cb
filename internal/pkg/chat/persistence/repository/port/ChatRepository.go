package repository

import (
	"context"
	"time"

	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
)

// ChatRepository defines the persistence operations the realtime core
// consumes. Conversations, participants and messages are owned by the wider
// product; this port only reads and mutates what the handlers need.
type ChatRepository interface {
	ConversationExists(ctx context.Context, conversationID string) (bool, error)

	// HasAccess reports whether the user may connect to the conversation.
	HasAccess(ctx context.Context, conversationID string, userID string) (bool, error)

	// Participant loads a participant, returning chat.ErrNotParticipant
	// when it does not exist.
	Participant(ctx context.Context, participantID string) (*chat.Participant, error)

	// AIParticipant returns the conversation's AI-controlled participant,
	// or nil when the conversation has none.
	AIParticipant(ctx context.Context, conversationID string) (*chat.Participant, error)

	SaveMessage(ctx context.Context, m chat.Message) (string, error)

	// SenderInfo resolves display metadata for the participant.
	SenderInfo(ctx context.Context, participantID string) (*chat.SenderInfo, error)

	// MessagesByConversation returns messages newest first.
	MessagesByConversation(ctx context.Context, conversationID string, limit int, offset int) ([]chat.Message, error)

	// MarkRead advances the user's read watermark in the conversation.
	MarkRead(ctx context.Context, conversationID string, userID string, messageID string) error

	AddReaction(ctx context.Context, messageID string, participantID string, emoji string) error

	// EditMessage rewrites content of a message owned by the participant
	// and returns the edit timestamp. chat.ErrMessageNotFound when the
	// message does not exist or belongs to someone else.
	EditMessage(ctx context.Context, messageID string, participantID string, content string) (time.Time, error)

	// DeleteMessage removes a message owned by the participant.
	DeleteMessage(ctx context.Context, messageID string, participantID string) error
}
