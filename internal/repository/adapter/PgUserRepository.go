package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	repository "github.com/philipsolarz/chat-backend-sub000/internal/repository/port"
)

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

var _ repository.UserRepository = (*PgUserRepository)(nil)

func (r *PgUserRepository) FindByID(ctx context.Context, id string) (*repository.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgUserRepository: nil pool")
	}
	var u repository.User
	err := r.pool.QueryRow(ctx, `
		SELECT u.id::text, u.email, u.display_name, COALESCE(s.plan, 'free'), u.created_at
		FROM app.user u
		LEFT JOIN app.subscription s ON s.user_id = u.id AND s.active
		WHERE u.id = $1::uuid
	`, id).Scan(&u.ID, &u.Email, &u.DisplayName, &u.Plan, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) Plan(ctx context.Context, id string) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgUserRepository: nil pool")
	}
	var plan string
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(s.plan, 'free')
		FROM app.user u
		LEFT JOIN app.subscription s ON s.user_id = u.id AND s.active
		WHERE u.id = $1::uuid
	`, id).Scan(&plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", repository.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return plan, nil
}
