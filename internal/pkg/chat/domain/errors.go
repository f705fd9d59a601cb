package chat

import "errors"

// Domain-level errors for chat behaviors.
var (
	ErrInvalidMessage       = errors.New("chat: conversation and participant are required")
	ErrEmptyMessage         = errors.New("chat: message content is empty")
	ErrNotParticipant       = errors.New("chat: participant does not belong to this conversation or user")
	ErrConversationNotFound = errors.New("chat: conversation not found")
	ErrAccessDenied         = errors.New("chat: user has no access to this conversation")
	ErrMessageNotFound      = errors.New("chat: message not found or not owned by sender")
)
