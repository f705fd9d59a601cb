package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	repository "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/port"
)

// MarkReadInput advances a user's read watermark to the given message.
type MarkReadInput struct {
	ConversationID string
	UserID         string
	MessageID      string
}

// MarkReadUseCase records a read receipt.
type MarkReadUseCase struct {
	Repo repository.ChatRepository
}

func NewMarkReadUseCase(repo repository.ChatRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) error {
	if in.ConversationID == "" || in.UserID == "" || in.MessageID == "" {
		return fmt.Errorf("conversation_id, user_id and message_id are required")
	}
	if err := uc.Repo.MarkRead(ctx, in.ConversationID, in.UserID, in.MessageID); err != nil {
		if errors.Is(err, chat.ErrNotParticipant) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
