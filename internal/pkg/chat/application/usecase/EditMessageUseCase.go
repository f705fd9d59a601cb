package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	repository "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/port"
)

// EditMessageInput rewrites the content of a message the participant owns.
type EditMessageInput struct {
	MessageID     string
	ParticipantID string
	Content       string
}

// EditMessageUseCase applies a message edit.
type EditMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewEditMessageUseCase(repo repository.ChatRepository) *EditMessageUseCase {
	return &EditMessageUseCase{Repo: repo}
}

func (uc *EditMessageUseCase) Execute(ctx context.Context, in EditMessageInput) (time.Time, error) {
	if in.MessageID == "" || in.ParticipantID == "" {
		return time.Time{}, fmt.Errorf("message_id and participant_id are required")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return time.Time{}, chat.ErrEmptyMessage
	}

	editedAt, err := uc.Repo.EditMessage(ctx, in.MessageID, in.ParticipantID, content)
	if err != nil {
		if errors.Is(err, chat.ErrMessageNotFound) {
			return time.Time{}, err
		}
		return time.Time{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return editedAt, nil
}
