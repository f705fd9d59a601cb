package usecase

import (
	"context"
	"errors"
	"testing"

	ai "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/ai/port"
	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
)

type fakeResponder struct {
	reply   string
	err     error
	history []ai.Turn
}

func (f *fakeResponder) Reply(ctx context.Context, conversationID string, history []ai.Turn) (string, error) {
	f.history = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func replyFixture(t *testing.T) (*GenerateReplyUseCase, *fakeChatRepo, *fakeQuota, *fakeResponder) {
	t.Helper()
	repo := seededRepo()
	repo.addParticipant(chat.Participant{
		ID:             "part-ai",
		ConversationID: "conv-1",
		UserID:         "user-1",
		CharacterName:  "Narrator",
		IsAI:           true,
	})
	quota := newFakeQuota(50)
	responder := &fakeResponder{reply: "a cold wind answers"}
	send := NewSendMessageUseCase(repo, quota)
	return NewGenerateReplyUseCase(repo, responder, send), repo, quota, responder
}

func TestGenerateReplyPersistsAsAI(t *testing.T) {
	uc, repo, quota, _ := replyFixture(t)

	out, err := uc.Execute(context.Background(), GenerateReplyInput{
		ConversationID:  "conv-1",
		AIParticipantID: "part-ai",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.Message.FromAI || out.Message.Content != "a cold wind answers" {
		t.Fatalf("message = %+v, want AI reply", out.Message)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(repo.messages))
	}
	if quota.ai["user-1"] != 1 || quota.sent["user-1"] != 0 {
		t.Fatalf("counters = sent %d / ai %d, want 0 / 1", quota.sent["user-1"], quota.ai["user-1"])
	}
}

func TestGenerateReplyHistoryIsChronological(t *testing.T) {
	uc, repo, _, responder := replyFixture(t)

	send := NewSendMessageUseCase(repo, newFakeQuota(50))
	for _, content := range []string{"first", "second", "third"} {
		if _, err := send.Execute(context.Background(), SendMessageInput{
			ConversationID: "conv-1",
			UserID:         "user-1",
			ParticipantID:  "part-1",
			Content:        content,
		}); err != nil {
			t.Fatalf("seed send: %v", err)
		}
	}

	if _, err := uc.Execute(context.Background(), GenerateReplyInput{
		ConversationID:  "conv-1",
		AIParticipantID: "part-ai",
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(responder.history) != 3 {
		t.Fatalf("history length = %d, want 3", len(responder.history))
	}
	for i, want := range []string{"first", "second", "third"} {
		if responder.history[i].Content != want {
			t.Fatalf("history[%d] = %q, want %q", i, responder.history[i].Content, want)
		}
	}
}

func TestGenerateReplyRejectsHumanParticipant(t *testing.T) {
	uc, _, _, _ := replyFixture(t)

	_, err := uc.Execute(context.Background(), GenerateReplyInput{
		ConversationID:  "conv-1",
		AIParticipantID: "part-1",
	})
	if !errors.Is(err, chat.ErrNotParticipant) {
		t.Fatalf("err = %v, want ErrNotParticipant", err)
	}
}

func TestGenerateReplyResponderFailure(t *testing.T) {
	uc, repo, _, responder := replyFixture(t)
	responder.err = errors.New("model unavailable")

	_, err := uc.Execute(context.Background(), GenerateReplyInput{
		ConversationID:  "conv-1",
		AIParticipantID: "part-ai",
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(repo.messages) != 0 {
		t.Fatal("failed generation persisted a message")
	}
}
