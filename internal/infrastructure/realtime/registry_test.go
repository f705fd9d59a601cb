package realtime

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestRegisterIndexesBothWays(t *testing.T) {
	r := NewRegistry()

	// Same user on three connections across two conversations.
	var conns []*Connection
	for i, convID := range []string{"conv-1", "conv-1", "conv-2"} {
		conn, _ := newTestConn("user-a", fmt.Sprintf("part-%d", i), convID)
		if err := r.Register(conn); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		conns = append(conns, conn)
	}

	if got := len(r.UserConnections("user-a")); got != 3 {
		t.Fatalf("user index has %d connections, want 3", got)
	}
	if got := len(r.ConversationConnections("conv-1")); got != 2 {
		t.Fatalf("conv-1 has %d connections, want 2", got)
	}
	if got := len(r.ConversationConnections("conv-2")); got != 1 {
		t.Fatalf("conv-2 has %d connections, want 1", got)
	}
	_ = conns
}

func TestRegisterTwiceFails(t *testing.T) {
	r := NewRegistry()
	conn, _ := newTestConn("user-a", "", "conv-1")
	if err := r.Register(conn); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(conn); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("second register returned %v, want ErrAlreadyRegistered", err)
	}
}

func TestUnregisterPrunesEmptySets(t *testing.T) {
	r := NewRegistry()
	conn, _ := newTestConn("user-a", "part-1", "conv-1")
	if err := r.Register(conn); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !r.Unregister(conn) {
		t.Fatal("unregister reported connection as untracked")
	}
	if got := r.UserConnections("user-a"); got != nil {
		t.Fatalf("user entry not pruned: %v", got)
	}
	if got := r.ConversationConnections("conv-1"); got != nil {
		t.Fatalf("conversation entry not pruned: %v", got)
	}

	r.mu.RLock()
	_, userDangling := r.byUser["user-a"]
	_, convDangling := r.byConversation["conv-1"]
	r.mu.RUnlock()
	if userDangling || convDangling {
		t.Fatal("empty sets left behind after last unregister")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	conn, _ := newTestConn("user-a", "", "conv-1")
	if err := r.Register(conn); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !r.Unregister(conn) {
		t.Fatal("first unregister should report removal")
	}
	if r.Unregister(conn) {
		t.Fatal("second unregister should be a no-op")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	conn1, _ := newTestConn("user-a", "", "conv-1")
	conn2, _ := newTestConn("user-b", "", "conv-1")
	if err := r.Register(conn1); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(conn2); err != nil {
		t.Fatalf("register: %v", err)
	}

	snap := r.ConversationConnections("conv-1")
	r.Unregister(conn1)
	r.Unregister(conn2)

	if len(snap) != 2 {
		t.Fatalf("snapshot mutated by unregister, has %d entries", len(snap))
	}
}

func TestConcurrentRegisterUnregister(t *testing.T) {
	r := NewRegistry()

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", w%4)
			convID := fmt.Sprintf("conv-%d", w%3)
			for i := 0; i < perWorker; i++ {
				conn, _ := newTestConn(userID, "", convID)
				if err := r.Register(conn); err != nil {
					t.Errorf("register: %v", err)
					return
				}
				_ = r.ConversationConnections(convID)
				_ = r.UserConnections(userID)
				r.Unregister(conn)
			}
		}(w)
	}
	wg.Wait()

	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.byConversation) != 0 || len(r.byUser) != 0 {
		t.Fatalf("indices not empty after balanced churn: %d conversations, %d users",
			len(r.byConversation), len(r.byUser))
	}
}
