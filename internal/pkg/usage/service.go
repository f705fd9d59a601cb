package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	cache "github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/cache/port"
)

// ErrQuotaExceeded signals that the user has no sends left today.
var ErrQuotaExceeded = errors.New("usage: daily message limit reached")

// counterTTL keeps daily keys around for two days so a key created just
// before midnight still covers its whole day.
const counterTTL = 48 * time.Hour

// PlanSource resolves a user's subscription tier.
type PlanSource interface {
	Plan(ctx context.Context, userID string) (string, error)
}

// Snapshot is the usage state pushed to clients after a send and attached to
// quota errors.
type Snapshot struct {
	SentToday int  `json:"messages_today"`
	AIToday   int  `json:"ai_messages_today"`
	Limit     int  `json:"daily_limit"`
	Remaining int  `json:"remaining"`
	Premium   bool `json:"is_premium"`
}

// Service tracks per-user daily message counters in the cache backend and
// compares them against the plan tier's ceiling.
//
// Reserve is the write path for human sends: a single atomic
// increment-then-compare, rolled back on over-limit, so concurrent sends
// from the same user cannot drift past the ceiling the way a separate
// check-then-increment would.
type Service struct {
	counters cache.Cache
	plans    PlanSource
	now      func() time.Time
}

// NewService constructs a Service over the given counter store and plan
// source.
func NewService(counters cache.Cache, plans PlanSource) *Service {
	return &Service{
		counters: counters,
		plans:    plans,
		now:      time.Now,
	}
}

// CanSend reports whether the user has quota left right now. Advisory only;
// Reserve makes the authoritative decision at send time.
func (s *Service) CanSend(ctx context.Context, userID string) (bool, error) {
	plan, err := s.plan(ctx, userID)
	if err != nil {
		return false, err
	}
	sent, err := s.count(ctx, s.sentKey(userID))
	if err != nil {
		return false, err
	}
	return sent < plan.DailyLimit(), nil
}

// Reserve claims one send for the user, returning the resulting snapshot.
// On over-limit the counter is rolled back and ErrQuotaExceeded is returned
// together with a snapshot describing the exhausted state.
func (s *Service) Reserve(ctx context.Context, userID string) (Snapshot, error) {
	plan, err := s.plan(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	key := s.sentKey(userID)
	n, err := s.counters.Incr(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("usage: reserve: %w", err)
	}
	if n == 1 {
		_ = s.counters.Expire(ctx, key, counterTTL)
	}

	limit := plan.DailyLimit()
	if n > int64(limit) {
		if _, err := s.counters.Decr(ctx, key); err != nil {
			return Snapshot{}, fmt.Errorf("usage: rollback: %w", err)
		}
		return s.snapshotFor(ctx, userID, limit, limit, plan), ErrQuotaExceeded
	}

	return s.snapshotFor(ctx, userID, int(n), limit, plan), nil
}

// Release refunds one reserved send. Called when the message failed to
// persist after Reserve succeeded, so a storage outage does not burn the
// user's allowance.
func (s *Service) Release(ctx context.Context, userID string) error {
	if _, err := s.counters.Decr(ctx, s.sentKey(userID)); err != nil {
		return fmt.Errorf("usage: release: %w", err)
	}
	return nil
}

// TrackSent records one delivered message on the human or AI counter. Called
// after the message is durably created; the human path normally counts via
// Reserve instead.
func (s *Service) TrackSent(ctx context.Context, userID string, fromAI bool) error {
	key := s.sentKey(userID)
	if fromAI {
		key = s.aiKey(userID)
	}
	n, err := s.counters.Incr(ctx, key)
	if err != nil {
		return fmt.Errorf("usage: track: %w", err)
	}
	if n == 1 {
		_ = s.counters.Expire(ctx, key, counterTTL)
	}
	return nil
}

// Remaining returns how many sends the user has left today.
func (s *Service) Remaining(ctx context.Context, userID string) (int, error) {
	snap, err := s.Current(ctx, userID)
	if err != nil {
		return 0, err
	}
	return snap.Remaining, nil
}

// IsPremium reports whether the user is on a paid tier.
func (s *Service) IsPremium(ctx context.Context, userID string) (bool, error) {
	plan, err := s.plan(ctx, userID)
	if err != nil {
		return false, err
	}
	return plan.Premium(), nil
}

// Current returns the user's usage snapshot without claiming a send.
func (s *Service) Current(ctx context.Context, userID string) (Snapshot, error) {
	plan, err := s.plan(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	sent, err := s.count(ctx, s.sentKey(userID))
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshotFor(ctx, userID, sent, plan.DailyLimit(), plan), nil
}

func (s *Service) snapshotFor(ctx context.Context, userID string, sent, limit int, plan Plan) Snapshot {
	remaining := limit - sent
	if remaining < 0 {
		remaining = 0
	}
	// AI tally is informational; a read failure degrades to zero.
	ai, _ := s.count(ctx, s.aiKey(userID))
	return Snapshot{
		SentToday: sent,
		AIToday:   ai,
		Limit:     limit,
		Remaining: remaining,
		Premium:   plan.Premium(),
	}
}

func (s *Service) plan(ctx context.Context, userID string) (Plan, error) {
	raw, err := s.plans.Plan(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("usage: plan lookup: %w", err)
	}
	return ParsePlan(raw), nil
}

func (s *Service) count(ctx context.Context, key string) (int, error) {
	raw, err := s.counters.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("usage: corrupt counter %q: %w", key, err)
	}
	return n, nil
}

func (s *Service) sentKey(userID string) string {
	return fmt.Sprintf("usage:%s:%s:sent", userID, s.day())
}

func (s *Service) aiKey(userID string) string {
	return fmt.Sprintf("usage:%s:%s:ai", userID, s.day())
}

func (s *Service) day() string {
	return s.now().UTC().Format("2006-01-02")
}
