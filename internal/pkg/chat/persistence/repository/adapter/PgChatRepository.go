package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/philipsolarz/chat-backend-sub000/internal/pkg/chat/domain"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

func (r *PgChatRepository) ConversationExists(ctx context.Context, conversationID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM chat.conversation WHERE id = $1::uuid)",
		conversationID,
	).Scan(&exists)
	return exists, err
}

func (r *PgChatRepository) HasAccess(ctx context.Context, conversationID string, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var allowed bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.participant
			WHERE conversation_id = $1::uuid AND user_id = $2::uuid
		)
	`, conversationID, userID).Scan(&allowed)
	return allowed, err
}

func (r *PgChatRepository) Participant(ctx context.Context, participantID string) (*chat.Participant, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var p chat.Participant
	err := r.pool.QueryRow(ctx, `
		SELECT p.id::text, p.conversation_id::text, p.user_id::text,
		       p.character_id::text, c.name, p.is_ai, p.agent_id::text
		FROM chat.participant p
		JOIN chat.character c ON c.id = p.character_id
		WHERE p.id = $1::uuid
	`, participantID).Scan(&p.ID, &p.ConversationID, &p.UserID, &p.CharacterID, &p.CharacterName, &p.IsAI, &p.AgentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, chat.ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgChatRepository) AIParticipant(ctx context.Context, conversationID string) (*chat.Participant, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var p chat.Participant
	err := r.pool.QueryRow(ctx, `
		SELECT p.id::text, p.conversation_id::text, p.user_id::text,
		       p.character_id::text, c.name, p.is_ai, p.agent_id::text
		FROM chat.participant p
		JOIN chat.character c ON c.id = p.character_id
		WHERE p.conversation_id = $1::uuid AND p.is_ai
		LIMIT 1
	`, conversationID).Scan(&p.ID, &p.ConversationID, &p.UserID, &p.CharacterID, &p.CharacterName, &p.IsAI, &p.AgentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, participant_id, content, from_ai, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		RETURNING id::text
	`, m.ConversationID, m.ParticipantID, m.Content, m.FromAI, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgChatRepository) SenderInfo(ctx context.Context, participantID string) (*chat.SenderInfo, error) {
	p, err := r.Participant(ctx, participantID)
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

func (r *PgChatRepository) MessagesByConversation(ctx context.Context, conversationID string, limit int, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, participant_id::text, content, from_ai, created_at, edited_at
		FROM chat.message
		WHERE conversation_id = $1::uuid AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.ParticipantID, &msg.Content, &msg.FromAI, &msg.CreatedAt, &msg.EditedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func (r *PgChatRepository) MarkRead(ctx context.Context, conversationID string, userID string, messageID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.participant
		SET last_read_message = $3::uuid
		WHERE conversation_id = $1::uuid AND user_id = $2::uuid
	`, conversationID, userID, messageID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return chat.ErrNotParticipant
	}
	return nil
}

func (r *PgChatRepository) AddReaction(ctx context.Context, messageID string, participantID string, emoji string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat.reaction (message_id, participant_id, emoji)
		VALUES ($1::uuid, $2::uuid, $3)
		ON CONFLICT (message_id, participant_id, emoji) DO NOTHING
	`, messageID, participantID, emoji)
	return err
}

func (r *PgChatRepository) EditMessage(ctx context.Context, messageID string, participantID string, content string) (time.Time, error) {
	if r == nil || r.pool == nil {
		return time.Time{}, errors.New("PgChatRepository: nil pool")
	}
	var editedAt time.Time
	err := r.pool.QueryRow(ctx, `
		UPDATE chat.message
		SET content = $3, edited_at = now()
		WHERE id = $1::uuid AND participant_id = $2::uuid AND deleted_at IS NULL
		RETURNING edited_at
	`, messageID, participantID, content).Scan(&editedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, chat.ErrMessageNotFound
	}
	return editedAt, err
}

func (r *PgChatRepository) DeleteMessage(ctx context.Context, messageID string, participantID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.message
		SET deleted_at = now()
		WHERE id = $1::uuid AND participant_id = $2::uuid AND deleted_at IS NULL
	`, messageID, participantID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return chat.ErrMessageNotFound
	}
	return nil
}
