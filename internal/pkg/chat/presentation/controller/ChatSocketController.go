package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	qport "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/queue/port"
	"github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/realtime"
	authport "github.com/philipsolarz/chat-backend-sub000/internal/pkg/auth/port"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/event"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/usecase"
	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	repository "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/port"
	users "github.com/philipsolarz/chat-backend-sub000/internal/repository/port"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	defaultReadTimeout = 60 * time.Second
	inflightTimeout    = 10 * time.Second
	maxFrameSize       = 1 << 20 // 1MB payload cap
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when the frontend
		// origin list is settled.
		return true
	},
}

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic: token handshake, connection registration and the inbound event
// loop. One controller per endpoint.
type ChatSocketController struct {
	verifier    authport.TokenVerifier
	authorizeUC *usecase.AuthorizeConnectionUseCase
	sendUC      *usecase.SendMessageUseCase
	markReadUC  *usecase.MarkReadUseCase
	reactionUC  *usecase.AddReactionUseCase
	editUC      *usecase.EditMessageUseCase
	deleteUC    *usecase.DeleteMessageUseCase
	quota       usecase.QuotaGate
	hub         *realtime.Hub
	dispatcher  *realtime.Dispatcher
	queue       qport.Client
	logger      *slog.Logger
}

func NewChatSocketController(
	repo repository.ChatRepository,
	userRepo users.UserRepository,
	verifier authport.TokenVerifier,
	quota usecase.QuotaGate,
	hub *realtime.Hub,
	queue qport.Client,
	logger *slog.Logger,
) *ChatSocketController {
	ctl := &ChatSocketController{
		verifier:    verifier,
		authorizeUC: usecase.NewAuthorizeConnectionUseCase(repo, userRepo),
		sendUC:      usecase.NewSendMessageUseCase(repo, quota),
		markReadUC:  usecase.NewMarkReadUseCase(repo),
		reactionUC:  usecase.NewAddReactionUseCase(repo),
		editUC:      usecase.NewEditMessageUseCase(repo),
		deleteUC:    usecase.NewDeleteMessageUseCase(repo),
		quota:       quota,
		hub:         hub,
		dispatcher:  realtime.NewDispatcher(logger),
		queue:       queue,
		logger:      logger,
	}
	ctl.registerHandlers()
	return ctl
}

// Handle upgrades the HTTP connection, runs the handshake checks and pumps
// inbound frames through the dispatcher until the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		token := c.Query("token")
		participantID := c.Query("participant_id")

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		claims, err := ctl.verifier.Verify(token)
		if err != nil {
			closeSocket(ws, realtime.CloseUnauthenticated, "authentication failed")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), inflightTimeout)
		_, err = ctl.authorizeUC.Execute(ctx, usecase.AuthorizeConnectionInput{
			ConversationID: conversationID,
			UserID:         claims.UserID,
			ParticipantID:  participantID,
		})
		cancel()
		if err != nil {
			code, reason := closeCodeFor(err)
			closeSocket(ws, code, reason)
			return
		}

		conn := realtime.NewConnection(claims.UserID, participantID, conversationID, ws)
		if err := ctl.hub.Register(conn); err != nil {
			closeSocket(ws, realtime.CloseInternalFault, "registration failed")
			return
		}
		defer func() {
			ctl.hub.Unregister(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(maxFrameSize)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		_ = conn.Send(event.NewConnected(conversationID, participantID))

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			dctx, dcancel := context.WithTimeout(context.Background(), inflightTimeout)
			ctl.dispatcher.Dispatch(dctx, conn, data)
			dcancel()
		}
	}
}

// closeCodeFor maps handshake failures to close codes so clients can tell
// retryable from non-retryable closures.
func closeCodeFor(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrConversationNotFound):
		return realtime.CloseNotFound, "conversation not found"
	case errors.Is(err, chat.ErrAccessDenied):
		return realtime.CloseForbidden, "access denied"
	case errors.Is(err, chat.ErrNotParticipant):
		return realtime.CloseForbidden, "participant mismatch"
	case errors.Is(err, usecase.ErrPersistence):
		return realtime.CloseInternalFault, "internal error"
	default:
		return realtime.CloseForbidden, "handshake rejected"
	}
}

func closeSocket(ws *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = ws.Close()
}
