package usecase

import (
	"context"
	"fmt"

	ai "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/ai/port"
	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	repository "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/port"
)

// replyHistoryDepth bounds how much context the responder sees.
const replyHistoryDepth = 20

// GenerateReplyInput asks for an AI participant's reply in a conversation.
type GenerateReplyInput struct {
	ConversationID  string
	AIParticipantID string
}

// GenerateReplyUseCase builds the recent history, asks the responder for a
// reply and persists it through the regular send path so it is quota-tallied
// and broadcast like any other message.
type GenerateReplyUseCase struct {
	Repo      repository.ChatRepository
	Responder ai.Responder
	Send      *SendMessageUseCase
}

func NewGenerateReplyUseCase(repo repository.ChatRepository, responder ai.Responder, send *SendMessageUseCase) *GenerateReplyUseCase {
	return &GenerateReplyUseCase{Repo: repo, Responder: responder, Send: send}
}

func (uc *GenerateReplyUseCase) Execute(ctx context.Context, in GenerateReplyInput) (*SendMessageOutput, error) {
	if in.ConversationID == "" || in.AIParticipantID == "" {
		return nil, fmt.Errorf("conversation_id and ai_participant_id are required")
	}

	participant, err := uc.Repo.Participant(ctx, in.AIParticipantID)
	if err != nil {
		return nil, fmt.Errorf("loading ai participant: %w", err)
	}
	if !participant.IsAI || participant.ConversationID != in.ConversationID {
		return nil, chat.ErrNotParticipant
	}

	recent, err := uc.Repo.MessagesByConversation(ctx, in.ConversationID, replyHistoryDepth, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Repo returns newest first; the responder wants chronological order.
	history := make([]ai.Turn, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		history = append(history, ai.Turn{
			ParticipantID: recent[i].ParticipantID,
			Content:       recent[i].Content,
			FromAI:        recent[i].FromAI,
		})
	}

	content, err := uc.Responder.Reply(ctx, in.ConversationID, history)
	if err != nil {
		return nil, fmt.Errorf("generating reply: %w", err)
	}

	return uc.Send.Execute(ctx, SendMessageInput{
		ConversationID: in.ConversationID,
		UserID:         participant.UserID,
		ParticipantID:  participant.ID,
		Content:        content,
		FromAI:         true,
	})
}
