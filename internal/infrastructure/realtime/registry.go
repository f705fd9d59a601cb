package realtime

import (
	"errors"
	"sync"
)

// ErrAlreadyRegistered signals a connection registered twice. A connection
// belongs to exactly one conversation for its whole lifetime, so a second
// Register call is a caller bug, not a recoverable condition.
var ErrAlreadyRegistered = errors.New("realtime: connection already registered")

// Registry tracks live connections under two indices: by conversation and by
// user. A user may hold several simultaneous connections (multiple devices or
// tabs), each bound to one conversation. Both indices are guarded by a single
// RWMutex; snapshot reads never observe a partially applied mutation.
type Registry struct {
	mu             sync.RWMutex
	byConversation map[string]map[*Connection]struct{}
	byUser         map[string]map[*Connection]struct{}
}

// NewRegistry constructs an initialized Registry.
func NewRegistry() *Registry {
	return &Registry{
		byConversation: make(map[string]map[*Connection]struct{}),
		byUser:         make(map[string]map[*Connection]struct{}),
	}
}

// Register adds the connection to both indices.
func (r *Registry) Register(conn *Connection) error {
	if conn == nil || conn.ConversationID == "" || conn.UserID == "" {
		return errors.New("realtime: connection missing conversation or user")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if set := r.byConversation[conn.ConversationID]; set != nil {
		if _, ok := set[conn]; ok {
			return ErrAlreadyRegistered
		}
	}
	if set := r.byUser[conn.UserID]; set != nil {
		if _, ok := set[conn]; ok {
			return ErrAlreadyRegistered
		}
	}

	convSet := r.byConversation[conn.ConversationID]
	if convSet == nil {
		convSet = make(map[*Connection]struct{})
		r.byConversation[conn.ConversationID] = convSet
	}
	convSet[conn] = struct{}{}

	userSet := r.byUser[conn.UserID]
	if userSet == nil {
		userSet = make(map[*Connection]struct{})
		r.byUser[conn.UserID] = userSet
	}
	userSet[conn] = struct{}{}

	return nil
}

// Unregister removes the connection from both indices, pruning entries that
// become empty so no dangling sets persist. It reports whether the connection
// was still tracked; repeated calls for the same connection are no-ops.
func (r *Registry) Unregister(conn *Connection) bool {
	if conn == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	convSet, ok := r.byConversation[conn.ConversationID]
	if !ok {
		return false
	}
	if _, ok := convSet[conn]; !ok {
		return false
	}

	delete(convSet, conn)
	if len(convSet) == 0 {
		delete(r.byConversation, conn.ConversationID)
	}

	if userSet, ok := r.byUser[conn.UserID]; ok {
		delete(userSet, conn)
		if len(userSet) == 0 {
			delete(r.byUser, conn.UserID)
		}
	}

	return true
}

// ConversationConnections returns a point-in-time copy of the connections
// registered to the conversation. Iterating the result cannot race with
// concurrent Register/Unregister calls.
func (r *Registry) ConversationConnections(conversationID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshot(r.byConversation[conversationID])
}

// UserConnections returns a point-in-time copy of the user's live
// connections across all conversations.
func (r *Registry) UserConnections(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshot(r.byUser[userID])
}

// Drain empties both indices and returns every connection that was tracked.
// Used on shutdown; callers close the returned connections outside the lock.
func (r *Registry) Drain() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	var conns []*Connection
	for _, set := range r.byConversation {
		for conn := range set {
			conns = append(conns, conn)
		}
	}
	r.byConversation = make(map[string]map[*Connection]struct{})
	r.byUser = make(map[string]map[*Connection]struct{})
	return conns
}

func snapshot(set map[*Connection]struct{}) []*Connection {
	if len(set) == 0 {
		return nil
	}
	conns := make([]*Connection, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	return conns
}
