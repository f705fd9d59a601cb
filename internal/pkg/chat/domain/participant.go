package chat

// Participant is an identity (character) speaking in a conversation. A user
// may control several participants over time; an AI-controlled participant
// carries the agent that drives it.
type Participant struct {
	ID             string  `db:"id"`
	ConversationID string  `db:"conversation_id"`
	UserID         string  `db:"user_id"`
	CharacterID    string  `db:"character_id"`
	CharacterName  string  `db:"character_name"`
	IsAI           bool    `db:"is_ai"`
	AgentID        *string `db:"agent_id"`
}

// SenderInfo is the display metadata attached to an outbound message event.
type SenderInfo struct {
	ParticipantID string  `json:"participant_id"`
	CharacterID   string  `json:"character_id"`
	CharacterName string  `json:"character_name"`
	UserID        string  `json:"user_id"`
	AgentID       *string `json:"agent_id,omitempty"`
	IsAI          bool    `json:"is_ai"`
}
