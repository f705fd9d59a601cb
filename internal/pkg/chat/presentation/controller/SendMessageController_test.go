package controller

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"

	"github.com/gin-gonic/gin"
)

func newRestFixture(t *testing.T) (*gin.Engine, *socketFixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fx := newSocketFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := gin.New()
	sendCtl := NewSendMessageController(fx.repo, fx.quota, fx.hub, fx.queue, logger)
	getCtl := NewGetMessageController(fx.repo)
	r.POST("/chat/:conversationId/messages", sendCtl.Handle())
	r.GET("/chat/:conversationId/messages", getCtl.Handle())
	return r, fx
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRestSendMessageCreatedAndBroadcast(t *testing.T) {
	r, fx := newRestFixture(t)
	_, peerSock := fx.connect(t, "user-2", "part-2")

	w := postJSON(t, r, "/chat/conv-1/messages",
		`{"user_id":"user-1","participant_id":"part-1","content":"over rest"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	frame := waitFrame(t, peerSock, "message")
	if frame["content"] != "over rest" {
		t.Fatalf("broadcast frame = %v", frame)
	}
}

func TestRestSendMessageQuotaExceeded(t *testing.T) {
	r, fx := newRestFixture(t)
	fx.quota.sent["user-1"] = 50

	w := postJSON(t, r, "/chat/conv-1/messages",
		`{"user_id":"user-1","participant_id":"part-1","content":"hi"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestRestSendMessageForbidden(t *testing.T) {
	r, _ := newRestFixture(t)

	w := postJSON(t, r, "/chat/conv-1/messages",
		`{"user_id":"user-9","participant_id":"part-1","content":"hi"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRestGetMessagesNewestFirst(t *testing.T) {
	r, fx := newRestFixture(t)
	seedConversation(t, fx, "first", "second")

	req := httptest.NewRequest(http.MethodGet, "/chat/conv-1/messages?limit=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if strings.Index(body, "second") > strings.Index(body, "first") {
		t.Fatalf("expected newest first, got %s", body)
	}
}

func seedConversation(t *testing.T, fx *socketFixture, contents ...string) {
	t.Helper()
	for _, content := range contents {
		if _, err := fx.repo.SaveMessage(context.Background(), chat.Message{
			ConversationID: "conv-1",
			ParticipantID:  "part-1",
			Content:        content,
		}); err != nil {
			t.Fatalf("SaveMessage: %v", err)
		}
	}
}
