package http

import (
	"log/slog"

	cache "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/cache/port"
	qport "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/queue/port"
	"github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/realtime"
	authport "github.com/philipsolarz/chat-backend-sub000/internal/pkg/auth/port"
	repoAdapter "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/adapter"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/presentation/controller"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/usage"
	userAdapter "github.com/philipsolarz/chat-backend-sub000/internal/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the shared infrastructure the chat endpoints are built on.
type Deps struct {
	Pool     *pgxpool.Pool
	Counters cache.Cache
	Queue    qport.Client
	Hub      *realtime.Hub
	Verifier authport.TokenVerifier
	Logger   *slog.Logger
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	repo := repoAdapter.NewPgChatRepository(deps.Pool)
	userRepo := userAdapter.NewPgUserRepository(deps.Pool)
	quota := usage.NewService(deps.Counters, userRepo)

	sendMsgCtl := controller.NewSendMessageController(repo, quota, deps.Hub, deps.Queue, deps.Logger)
	getMsgCtl := controller.NewGetMessageController(repo)
	socketCtl := controller.NewChatSocketController(repo, userRepo, deps.Verifier, quota, deps.Hub, deps.Queue, deps.Logger)

	// POST /api/v1/chat/:conversationId/messages -> send a message
	g.POST("/chat/:conversationId/messages", sendMsgCtl.Handle())

	// GET /api/v1/chat/:conversationId/messages -> fetch message history
	g.GET("/chat/:conversationId/messages", getMsgCtl.Handle())

	// GET /api/v1/chat/:conversationId/ws -> websocket endpoint for realtime traffic
	g.GET("/chat/:conversationId/ws", socketCtl.Handle())
}
