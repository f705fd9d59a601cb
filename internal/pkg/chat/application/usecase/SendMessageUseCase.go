package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	repository "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/port"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/usage"
)

// QuotaGate is the slice of the usage service the send path depends on.
type QuotaGate interface {
	Reserve(ctx context.Context, userID string) (usage.Snapshot, error)
	Release(ctx context.Context, userID string) error
	TrackSent(ctx context.Context, userID string, fromAI bool) error
	Current(ctx context.Context, userID string) (usage.Snapshot, error)
}

// SendMessageInput carries the data needed to post a message. FromAI marks
// replies generated on behalf of an AI participant; those bypass the human
// quota and are tallied on the AI counter instead.
type SendMessageInput struct {
	ConversationID string
	UserID         string
	ParticipantID  string
	Content        string
	FromAI         bool
}

// SendMessageOutput is the persisted message with everything a handler
// needs to fan it out: sender display metadata, the sender's usage snapshot
// after the send, and the conversation's AI participant when one exists.
type SendMessageOutput struct {
	Message       chat.Message
	Sender        chat.SenderInfo
	Usage         usage.Snapshot
	AIParticipant *chat.Participant
}

// SendMessageUseCase validates, quota-gates and persists one message.
// Validation runs before the quota reservation so a rejected message never
// consumes allowance.
type SendMessageUseCase struct {
	Repo  repository.ChatRepository
	Quota QuotaGate
}

func NewSendMessageUseCase(repo repository.ChatRepository, quota QuotaGate) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Quota: quota}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	if in.ConversationID == "" || in.ParticipantID == "" {
		return nil, fmt.Errorf("conversation_id and participant_id are required")
	}

	participant, err := uc.Repo.Participant(ctx, in.ParticipantID)
	if err != nil {
		if errors.Is(err, chat.ErrNotParticipant) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if participant.ConversationID != in.ConversationID {
		return nil, chat.ErrNotParticipant
	}
	if !in.FromAI && participant.UserID != in.UserID {
		return nil, chat.ErrNotParticipant
	}

	msg, err := chat.NewMessage(chat.Message{
		ConversationID: in.ConversationID,
		ParticipantID:  in.ParticipantID,
		Content:        in.Content,
		FromAI:         in.FromAI,
	})
	if err != nil {
		return nil, err
	}

	var snap usage.Snapshot
	if in.FromAI {
		if err := uc.Quota.TrackSent(ctx, participant.UserID, true); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	} else {
		snap, err = uc.Quota.Reserve(ctx, in.UserID)
		if err != nil {
			// ErrQuotaExceeded passes through for the handler to answer
			// with a quota error event.
			return nil, err
		}
	}

	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		// The send counts only once the message is durably created; refund
		// the reservation so a storage outage does not burn allowance.
		if !in.FromAI {
			_ = uc.Quota.Release(ctx, in.UserID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	out := &SendMessageOutput{
		Message: *msg,
		Sender: chat.SenderInfo{
			ParticipantID: participant.ID,
			CharacterID:   participant.CharacterID,
			CharacterName: participant.CharacterName,
			UserID:        participant.UserID,
			AgentID:       participant.AgentID,
			IsAI:          participant.IsAI,
		},
		Usage: snap,
	}

	if !in.FromAI {
		// Best-effort: a failed lookup only means no AI reply gets queued.
		if aiParticipant, err := uc.Repo.AIParticipant(ctx, in.ConversationID); err == nil {
			out.AIParticipant = aiParticipant
		}
	}
	return out, nil
}
