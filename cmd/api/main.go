package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/philipsolarz/chat-backend-sub000/cmd/api/router/v1"
	aiAdapter "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/ai/adapter"
	cacheAdapter "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/cache/adapter"
	"github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/database"
	queueAdapter "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/queue/adapter"
	"github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/realtime"
	authAdapter "github.com/philipsolarz/chat-backend-sub000/internal/pkg/auth/adapter"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/task"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/persistence/repository/adapter"
	httpHandler "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/presentation/http"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/usage"
	userAdapter "github.com/philipsolarz/chat-backend-sub000/internal/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found or could not be loaded", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database on startup
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.NewPoolFromEnv(connectCtx)
	cancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	counters, err := cacheAdapter.NewRedisAdapter()
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer counters.Close()

	queueClient, err := queueAdapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Error("failed to build queue client", "error", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	verifier, err := authAdapter.NewJWTVerifierFromEnv()
	if err != nil {
		logger.Error("failed to build token verifier", "error", err)
		os.Exit(1)
	}

	hub := realtime.NewHub(logger)
	defer hub.Close()

	// Background worker: AI reply generation on the ai queue.
	queueServer, err := queueAdapter.NewAsynqServer(logger)
	if err != nil {
		logger.Error("failed to build queue server", "error", err)
		os.Exit(1)
	}
	responder, err := aiAdapter.NewHTTPResponderFromEnv()
	if err != nil {
		logger.Warn("reply generation disabled", "error", err)
	} else {
		repo := repoAdapter.NewPgChatRepository(pool)
		quota := usage.NewService(counters, userAdapter.NewPgUserRepository(pool))
		sendUC := usecase.NewSendMessageUseCase(repo, quota)
		replyUC := usecase.NewGenerateReplyUseCase(repo, responder, sendUC)
		task.RegisterGenerateReplyTask(queueServer, replyUC, hub, logger)
	}
	go func() {
		if err := queueServer.Run(ctx); err != nil {
			logger.Error("queue server stopped", "error", err)
		}
	}()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, httpHandler.Deps{
		Pool:     pool,
		Counters: counters,
		Queue:    queueClient,
		Hub:      hub,
		Verifier: verifier,
		Logger:   logger,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		logger.Info("server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
