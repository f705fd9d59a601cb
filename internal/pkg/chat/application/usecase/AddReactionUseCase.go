package usecase

import (
	"context"
	"fmt"

	repository "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/port"
)

// AddReactionInput attaches an emoji reaction to a message.
type AddReactionInput struct {
	MessageID     string
	ParticipantID string
	Emoji         string
}

// AddReactionUseCase records a reaction; duplicates are idempotent.
type AddReactionUseCase struct {
	Repo repository.ChatRepository
}

func NewAddReactionUseCase(repo repository.ChatRepository) *AddReactionUseCase {
	return &AddReactionUseCase{Repo: repo}
}

func (uc *AddReactionUseCase) Execute(ctx context.Context, in AddReactionInput) error {
	if in.MessageID == "" || in.ParticipantID == "" || in.Emoji == "" {
		return fmt.Errorf("message_id, participant_id and emoji are required")
	}
	if err := uc.Repo.AddReaction(ctx, in.MessageID, in.ParticipantID, in.Emoji); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
