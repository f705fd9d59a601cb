package port

import "context"

// Turn is a single entry of conversation history handed to the responder.
type Turn struct {
	ParticipantID string `json:"participant_id"`
	Content       string `json:"content"`
	FromAI        bool   `json:"from_ai"`
}

// Responder produces an AI character's reply given recent conversation history,
// oldest turn first.
type Responder interface {
	Reply(ctx context.Context, conversationID string, history []Turn) (string, error)
}
