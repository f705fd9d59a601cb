package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	qport "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/queue/port"
	"github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/realtime"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/event"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/task"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/usecase"
	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	repository "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/port"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/usage"

	"github.com/gin-gonic/gin"
)

// SendMessageController handles the REST send endpoint only (one controller
// per endpoint). It runs the same usecase as the websocket message handler,
// so quota, persistence and broadcast behave identically on both surfaces.
type SendMessageController struct {
	UC     *usecase.SendMessageUseCase
	hub    *realtime.Hub
	queue  qport.Client
	logger *slog.Logger
}

func NewSendMessageController(repo repository.ChatRepository, quota usecase.QuotaGate, hub *realtime.Hub, queue qport.Client, logger *slog.Logger) *SendMessageController {
	return &SendMessageController{
		UC:     usecase.NewSendMessageUseCase(repo, quota),
		hub:    hub,
		queue:  queue,
		logger: logger,
	}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	ParticipantID string `json:"participant_id" binding:"required"`
	Content       string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			UserID:         req.UserID,
			ParticipantID:  req.ParticipantID,
			Content:        req.Content,
		})
		if err != nil {
			switch {
			case errors.Is(err, usage.ErrQuotaExceeded):
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "daily message limit reached"})
			case errors.Is(err, chat.ErrNotParticipant):
				c.JSON(http.StatusForbidden, gin.H{"error": "not a participant in this conversation"})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		h.hub.Broadcaster.ToConversation(conversationID, event.NewMessage(out.Message, out.Sender), nil)

		if out.AIParticipant != nil {
			if err := task.EnqueueGenerateReply(ctx, h.queue, conversationID, out.AIParticipant.ID, req.UserID); err != nil {
				h.logger.Error("enqueue reply generation failed",
					"conversation_id", conversationID,
					"error", err)
			}
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":              out.Message.ID,
			"conversation_id": out.Message.ConversationID,
			"participant_id":  out.Message.ParticipantID,
			"content":         out.Message.Content,
			"created_at":      out.Message.CreatedAt,
			"sender":          out.Sender,
			"usage":           out.Usage,
		})
	}
}
