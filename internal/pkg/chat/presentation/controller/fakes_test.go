package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/usage"
	users "github.com/philipsolarz/chat-backend-sub000/internal/repository/port"
)

// fakeChatRepo is an in-memory ChatRepository for handler tests.
type fakeChatRepo struct {
	mu sync.Mutex

	conversations map[string]bool
	access        map[string]bool
	participants  map[string]*chat.Participant
	messages      []chat.Message
	nextID        int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		conversations: make(map[string]bool),
		access:        make(map[string]bool),
		participants:  make(map[string]*chat.Participant),
	}
}

func (f *fakeChatRepo) addParticipant(p chat.Participant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := p
	f.participants[p.ID] = &cp
	f.conversations[p.ConversationID] = true
	f.access[p.ConversationID+"|"+p.UserID] = true
}

func (f *fakeChatRepo) ConversationExists(ctx context.Context, conversationID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conversations[conversationID], nil
}

func (f *fakeChatRepo) HasAccess(ctx context.Context, conversationID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access[conversationID+"|"+userID], nil
}

func (f *fakeChatRepo) Participant(ctx context.Context, participantID string) (*chat.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[participantID]
	if !ok {
		return nil, chat.ErrNotParticipant
	}
	cp := *p
	return &cp, nil
}

func (f *fakeChatRepo) AIParticipant(ctx context.Context, conversationID string) (*chat.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participants {
		if p.ConversationID == conversationID && p.IsAI {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeChatRepo) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = fmt.Sprintf("msg-%d", f.nextID)
	f.messages = append(f.messages, m)
	return m.ID, nil
}

func (f *fakeChatRepo) SenderInfo(ctx context.Context, participantID string) (*chat.SenderInfo, error) {
	p, err := f.Participant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	return &chat.SenderInfo{
		ParticipantID: p.ID,
		CharacterID:   p.CharacterID,
		CharacterName: p.CharacterName,
		UserID:        p.UserID,
		AgentID:       p.AgentID,
		IsAI:          p.IsAI,
	}, nil
}

func (f *fakeChatRepo) MessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Message
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].ConversationID == conversationID {
			out = append(out, f.messages[i])
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeChatRepo) MarkRead(ctx context.Context, conversationID, userID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.access[conversationID+"|"+userID] {
		return chat.ErrNotParticipant
	}
	return nil
}

func (f *fakeChatRepo) AddReaction(ctx context.Context, messageID, participantID, emoji string) error {
	return nil
}

func (f *fakeChatRepo) EditMessage(ctx context.Context, messageID, participantID, content string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == messageID && f.messages[i].ParticipantID == participantID {
			now := time.Now().UTC()
			f.messages[i].Content = content
			f.messages[i].EditedAt = &now
			return now, nil
		}
	}
	return time.Time{}, chat.ErrMessageNotFound
}

func (f *fakeChatRepo) DeleteMessage(ctx context.Context, messageID, participantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == messageID && f.messages[i].ParticipantID == participantID {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
	}
	return chat.ErrMessageNotFound
}

// fakeQuota is a QuotaGate with a fixed limit and in-memory counters.
type fakeQuota struct {
	mu      sync.Mutex
	limit   int
	premium bool
	sent    map[string]int
	ai      map[string]int
}

func newFakeQuota(limit int) *fakeQuota {
	return &fakeQuota{
		limit: limit,
		sent:  make(map[string]int),
		ai:    make(map[string]int),
	}
}

func (q *fakeQuota) Reserve(ctx context.Context, userID string) (usage.Snapshot, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.sent[userID] >= q.limit {
		return q.snapshot(userID), usage.ErrQuotaExceeded
	}
	q.sent[userID]++
	return q.snapshot(userID), nil
}

func (q *fakeQuota) Release(ctx context.Context, userID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent[userID]--
	return nil
}

func (q *fakeQuota) TrackSent(ctx context.Context, userID string, fromAI bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if fromAI {
		q.ai[userID]++
	} else {
		q.sent[userID]++
	}
	return nil
}

func (q *fakeQuota) Current(ctx context.Context, userID string) (usage.Snapshot, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshot(userID), nil
}

func (q *fakeQuota) snapshot(userID string) usage.Snapshot {
	remaining := q.limit - q.sent[userID]
	if remaining < 0 {
		remaining = 0
	}
	return usage.Snapshot{
		SentToday: q.sent[userID],
		AIToday:   q.ai[userID],
		Limit:     q.limit,
		Remaining: remaining,
		Premium:   q.premium,
	}
}

// fakeUserRepo maps user ids to plans.
type fakeUserRepo struct {
	users map[string]string
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*users.User, error) {
	plan, ok := f.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return &users.User{ID: id, Plan: plan, CreatedAt: time.Now()}, nil
}

func (f *fakeUserRepo) Plan(ctx context.Context, id string) (string, error) {
	plan, ok := f.users[id]
	if !ok {
		return "", users.ErrUserNotFound
	}
	return plan, nil
}
