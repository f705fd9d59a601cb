package task

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	qport "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/queue/port"
	"github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/realtime"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/event"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/usecase"
)

// GenerateReplyTaskType is the queue task name for producing an AI reply.
const GenerateReplyTaskType = "chat:generate_reply"

// GenerateReplyTaskPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
// OriginUserID is the user whose message triggered the reply; generation
// failures are surfaced to that user.
type GenerateReplyTaskPayload struct {
	ConversationID  string `json:"conversationId"`
	AIParticipantID string `json:"aiParticipantId"`
	OriginUserID    string `json:"originUserId"`
}

// RegisterGenerateReplyTask binds the reply handler to the provided server.
// Successful replies are broadcast to the conversation through the hub.
func RegisterGenerateReplyTask(srv qport.Server, uc *usecase.GenerateReplyUseCase, hub *realtime.Hub, logger *slog.Logger) {
	srv.Register(GenerateReplyTaskType, func(ctx context.Context, t qport.Task) error {
		var p GenerateReplyTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		// generation plus persistence gets one bounded time budget per run
		ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()

		out, err := uc.Execute(ctx, usecase.GenerateReplyInput{
			ConversationID:  p.ConversationID,
			AIParticipantID: p.AIParticipantID,
		})
		if err != nil {
			logger.Error("generate reply failed",
				"conversation_id", p.ConversationID,
				"participant_id", p.AIParticipantID,
				"error", err)
			if p.OriginUserID != "" {
				hub.Broadcaster.ToUser(p.OriginUserID, realtime.NewErrorEvent("reply generation failed"))
			}
			return err
		}

		hub.Broadcaster.ToConversation(p.ConversationID, event.NewMessage(out.Message, out.Sender), nil)
		return nil
	})
}

// EnqueueGenerateReply queues a reply generation run on the ai queue. A
// uniqueness window keeps rapid-fire sends from stacking duplicate runs.
func EnqueueGenerateReply(ctx context.Context, client qport.Client, conversationID, aiParticipantID, originUserID string) error {
	payload, err := json.Marshal(GenerateReplyTaskPayload{
		ConversationID:  conversationID,
		AIParticipantID: aiParticipantID,
		OriginUserID:    originUserID,
	})
	if err != nil {
		return err
	}
	_, err = client.Enqueue(ctx, qport.Task{Type: GenerateReplyTaskType, Payload: payload}, qport.EnqueueOption{
		Queue:     "ai",
		MaxRetry:  3,
		UniqueTTL: 5 * time.Second,
	})
	return err
}
