package realtime

import "sort"

// UserPresence summarizes one user's live connections to a conversation.
type UserPresence struct {
	UserID          string   `json:"user_id"`
	ConnectionCount int      `json:"connection_count"`
	ParticipantIDs  []string `json:"participant_ids"`
}

// Presence derives per-conversation activity summaries from the registry.
// It holds no state of its own; every call recomputes from a fresh snapshot.
type Presence struct {
	registry *Registry
}

// NewPresence constructs a Presence view over the registry.
func NewPresence(registry *Registry) *Presence {
	return &Presence{registry: registry}
}

// ActiveUsers groups the conversation's live connections by user, counting
// connections per user and collecting the distinct participant voices each
// user currently speaks as. Results are sorted by user id for stable output.
func (p *Presence) ActiveUsers(conversationID string) []UserPresence {
	conns := p.registry.ConversationConnections(conversationID)
	if len(conns) == 0 {
		return nil
	}

	byUser := make(map[string]*UserPresence)
	seen := make(map[string]map[string]struct{})
	for _, conn := range conns {
		entry := byUser[conn.UserID]
		if entry == nil {
			entry = &UserPresence{UserID: conn.UserID}
			byUser[conn.UserID] = entry
			seen[conn.UserID] = make(map[string]struct{})
		}
		entry.ConnectionCount++
		if conn.ParticipantID != "" {
			if _, ok := seen[conn.UserID][conn.ParticipantID]; !ok {
				seen[conn.UserID][conn.ParticipantID] = struct{}{}
				entry.ParticipantIDs = append(entry.ParticipantIDs, conn.ParticipantID)
			}
		}
	}

	users := make([]UserPresence, 0, len(byUser))
	for _, entry := range byUser {
		sort.Strings(entry.ParticipantIDs)
		users = append(users, *entry)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users
}
