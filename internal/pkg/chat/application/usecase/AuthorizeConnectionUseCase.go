package usecase

import (
	"context"
	"fmt"

	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	repository "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/port"
	users "github.com/philipsolarz/chat-backend-sub000/internal/repository/port"
)

// AuthorizeConnectionInput carries the handshake parameters checked before a
// websocket session is registered.
type AuthorizeConnectionInput struct {
	ConversationID string
	UserID         string
	ParticipantID  string // optional
}

// AuthorizeConnectionUseCase runs the handshake checks in order: the user
// exists, the conversation exists, the user has access, and the optional
// participant belongs to both the conversation and the user. The sentinel
// error distinguishes the close code the controller answers with.
type AuthorizeConnectionUseCase struct {
	Repo  repository.ChatRepository
	Users users.UserRepository
}

func NewAuthorizeConnectionUseCase(repo repository.ChatRepository, userRepo users.UserRepository) *AuthorizeConnectionUseCase {
	return &AuthorizeConnectionUseCase{Repo: repo, Users: userRepo}
}

// Execute returns the verified participant, or nil when none was requested.
func (uc *AuthorizeConnectionUseCase) Execute(ctx context.Context, in AuthorizeConnectionInput) (*chat.Participant, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return nil, fmt.Errorf("conversation_id and user_id are required")
	}

	if _, err := uc.Users.FindByID(ctx, in.UserID); err != nil {
		if err == users.ErrUserNotFound {
			return nil, chat.ErrAccessDenied
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	exists, err := uc.Repo.ConversationExists(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !exists {
		return nil, chat.ErrConversationNotFound
	}

	allowed, err := uc.Repo.HasAccess(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !allowed {
		return nil, chat.ErrAccessDenied
	}

	if in.ParticipantID == "" {
		return nil, nil
	}

	participant, err := uc.Repo.Participant(ctx, in.ParticipantID)
	if err != nil {
		if err == chat.ErrNotParticipant {
			return nil, chat.ErrNotParticipant
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if participant.ConversationID != in.ConversationID || participant.UserID != in.UserID {
		return nil, chat.ErrNotParticipant
	}
	return participant, nil
}
