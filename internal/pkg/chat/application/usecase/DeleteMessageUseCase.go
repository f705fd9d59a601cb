package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	repository "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/port"
)

// DeleteMessageInput removes a message the participant owns.
type DeleteMessageInput struct {
	MessageID     string
	ParticipantID string
}

// DeleteMessageUseCase soft-deletes a message.
type DeleteMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewDeleteMessageUseCase(repo repository.ChatRepository) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{Repo: repo}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, in DeleteMessageInput) error {
	if in.MessageID == "" || in.ParticipantID == "" {
		return fmt.Errorf("message_id and participant_id are required")
	}
	if err := uc.Repo.DeleteMessage(ctx, in.MessageID, in.ParticipantID); err != nil {
		if errors.Is(err, chat.ErrMessageNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
