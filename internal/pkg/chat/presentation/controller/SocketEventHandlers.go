package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/realtime"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/event"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/task"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/usecase"
	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/usage"
)

// registerHandlers binds one handler per inbound event type. Narrative event
// types share a single pass-through handler.
func (ctl *ChatSocketController) registerHandlers() {
	ctl.dispatcher.Register("message", ctl.handleMessage)
	ctl.dispatcher.Register("typing", ctl.handleTyping)
	ctl.dispatcher.Register("presence", ctl.handlePresence)
	ctl.dispatcher.Register("ping", ctl.handlePing)
	ctl.dispatcher.Register("read_receipt", ctl.handleReadReceipt)
	ctl.dispatcher.Register("reaction", ctl.handleReaction)
	ctl.dispatcher.Register("edit_message", ctl.handleEdit)
	ctl.dispatcher.Register("delete_message", ctl.handleDelete)
	for _, t := range []string{"quest_start", "quest_update", "quest_complete", "dialog", "choice"} {
		ctl.dispatcher.Register(t, ctl.handleNarrative)
	}
}

// handleMessage quota-gates and persists the message, fans it out to the
// conversation and pushes the sender's refreshed usage snapshot back. A
// quota rejection is answered directly so the error can carry plan status.
func (ctl *ChatSocketController) handleMessage(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) error {
	var frame struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		return fmt.Errorf("invalid message payload")
	}
	if conn.ParticipantID == "" {
		return fmt.Errorf("connection has no participant voice")
	}

	out, err := ctl.sendUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: conn.ConversationID,
		UserID:         conn.UserID,
		ParticipantID:  conn.ParticipantID,
		Content:        frame.Content,
	})
	if err != nil {
		if errors.Is(err, usage.ErrQuotaExceeded) {
			snap, snapErr := ctl.quota.Current(ctx, conn.UserID)
			if snapErr != nil {
				return fmt.Errorf("daily message limit reached")
			}
			detail := fmt.Sprintf("daily message limit of %d reached", snap.Limit)
			_ = conn.Send(realtime.NewQuotaErrorEvent(detail, snap.Premium))
			return nil
		}
		if errors.Is(err, chat.ErrEmptyMessage) {
			return fmt.Errorf("message content must not be empty")
		}
		return err
	}

	ctl.hub.Broadcaster.ToConversation(conn.ConversationID, event.NewMessage(out.Message, out.Sender), nil)
	_ = conn.Send(event.NewUsageUpdate(out.Usage))

	if out.AIParticipant != nil {
		if err := task.EnqueueGenerateReply(ctx, ctl.queue, conn.ConversationID, out.AIParticipant.ID, conn.UserID); err != nil {
			ctl.logger.Error("enqueue reply generation failed",
				"conversation_id", conn.ConversationID,
				"error", err)
		}
	}
	return nil
}

// handleTyping relays the ephemeral indicator to everyone but the typist.
func (ctl *ChatSocketController) handleTyping(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) error {
	var frame struct {
		IsTyping bool `json:"is_typing"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		return fmt.Errorf("invalid typing payload")
	}
	ctl.hub.Broadcaster.ToConversation(conn.ConversationID, event.NewTyping(conn.ParticipantID, conn.UserID, frame.IsTyping), conn)
	return nil
}

// handlePresence answers the requester only with the live conversation view.
func (ctl *ChatSocketController) handlePresence(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) error {
	active := ctl.hub.Presence.ActiveUsers(conn.ConversationID)
	return conn.Send(event.NewPresence(active))
}

// handlePing answers the requester only; used to probe half-open connections.
func (ctl *ChatSocketController) handlePing(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) error {
	return conn.Send(event.NewPong())
}

func (ctl *ChatSocketController) handleReadReceipt(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) error {
	var frame struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil || frame.MessageID == "" {
		return fmt.Errorf("message_id is required")
	}

	err := ctl.markReadUC.Execute(ctx, usecase.MarkReadInput{
		ConversationID: conn.ConversationID,
		UserID:         conn.UserID,
		MessageID:      frame.MessageID,
	})
	if err != nil {
		return err
	}
	ctl.hub.Broadcaster.ToConversation(conn.ConversationID, event.NewMessageRead(frame.MessageID, conn.UserID), nil)
	return nil
}

func (ctl *ChatSocketController) handleReaction(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) error {
	var frame struct {
		MessageID string `json:"message_id"`
		Emoji     string `json:"emoji"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil || frame.MessageID == "" || frame.Emoji == "" {
		return fmt.Errorf("message_id and emoji are required")
	}
	if conn.ParticipantID == "" {
		return fmt.Errorf("connection has no participant voice")
	}

	err := ctl.reactionUC.Execute(ctx, usecase.AddReactionInput{
		MessageID:     frame.MessageID,
		ParticipantID: conn.ParticipantID,
		Emoji:         frame.Emoji,
	})
	if err != nil {
		return err
	}
	ctl.hub.Broadcaster.ToConversation(conn.ConversationID, event.NewReaction(frame.MessageID, conn.ParticipantID, frame.Emoji), nil)
	return nil
}

func (ctl *ChatSocketController) handleEdit(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) error {
	var frame struct {
		MessageID string `json:"message_id"`
		Content   string `json:"content"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil || frame.MessageID == "" {
		return fmt.Errorf("message_id is required")
	}
	if conn.ParticipantID == "" {
		return fmt.Errorf("connection has no participant voice")
	}

	editedAt, err := ctl.editUC.Execute(ctx, usecase.EditMessageInput{
		MessageID:     frame.MessageID,
		ParticipantID: conn.ParticipantID,
		Content:       frame.Content,
	})
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return fmt.Errorf("message content must not be empty")
		}
		return err
	}
	ctl.hub.Broadcaster.ToConversation(conn.ConversationID, event.NewMessageEdited(frame.MessageID, frame.Content, editedAt), nil)
	return nil
}

func (ctl *ChatSocketController) handleDelete(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) error {
	var frame struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil || frame.MessageID == "" {
		return fmt.Errorf("message_id is required")
	}
	if conn.ParticipantID == "" {
		return fmt.Errorf("connection has no participant voice")
	}

	err := ctl.deleteUC.Execute(ctx, usecase.DeleteMessageInput{
		MessageID:     frame.MessageID,
		ParticipantID: conn.ParticipantID,
	})
	if err != nil {
		return err
	}
	ctl.hub.Broadcaster.ToConversation(conn.ConversationID, event.NewMessageDeleted(frame.MessageID), nil)
	return nil
}

// handleNarrative relays quest, dialog and choice frames verbatim. These
// handlers hold no state; new narrative types only need a Register call.
func (ctl *ChatSocketController) handleNarrative(ctx context.Context, conn *realtime.Connection, raw json.RawMessage) error {
	var frame struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		return fmt.Errorf("invalid payload")
	}
	if len(frame.Data) == 0 {
		return fmt.Errorf("data is required")
	}
	ctl.hub.Broadcaster.ToConversation(conn.ConversationID, event.NewNarrative(frame.Type, conn.ParticipantID, frame.Data), nil)
	return nil
}
