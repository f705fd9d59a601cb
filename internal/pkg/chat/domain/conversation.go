package chat

import "time"

// Conversation is the addressable thread connections group under. Owned by
// the wider product's CRUD surface; referenced here by id.
type Conversation struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	WorldID   *string   `db:"world_id"`
	CreatedAt time.Time `db:"created_at"`
}
