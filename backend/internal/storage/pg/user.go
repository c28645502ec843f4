package pg

import (
	"context"
	"fmt"

	"github.com/itchan-dev/threads/backend/internal/storage/populate"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/lib/pq"
)

const userColumns = `id, username, name, image, bio, onboarded, threads`

// =========================================================================
// Public Methods (satisfy the service.UserStorage interface)
// =========================================================================

// SaveUser creates the user or updates its profile fields. Threads are never overwritten.
func (s *Storage) SaveUser(ctx context.Context, user domain.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.saveUser(ctx, s.db, user)
}

// GetUser returns nil if the user does not exist.
func (s *Storage) GetUser(ctx context.Context, id domain.UserId) (*domain.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.user(ctx, s.db, id)
}

// UserThreads returns the user and the threads listed in its threads column,
// newest first, each with one level of children populated.
func (s *Storage) UserThreads(ctx context.Context, id domain.UserId) (*domain.User, []*domain.Thread, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.user(ctx, s.db, id)
	if err != nil || user == nil {
		return nil, nil, err
	}
	if len(user.Threads) == 0 {
		return user, []*domain.Thread{}, nil
	}

	threads, err := s.queryThreads(ctx, s.db, `
		SELECT `+threadColumns+`
		FROM threads
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at DESC, id DESC
	`, pq.Array(user.Threads))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch user threads: %w", err)
	}

	if err := populate.Populate(ctx, s, threads, populate.UserThreads); err != nil {
		return nil, nil, err
	}
	return user, threads, nil
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) saveUser(ctx context.Context, q Querier, user domain.User) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (id, username, name, image, bio, onboarded)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			name = EXCLUDED.name,
			image = EXCLUDED.image,
			bio = EXCLUDED.bio,
			onboarded = EXCLUDED.onboarded
	`, user.Id, user.Username, user.Name, user.Image, user.Bio, user.Onboarded)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *Storage) user(ctx context.Context, q Querier, id domain.UserId) (*domain.User, error) {
	users, err := s.queryUsers(ctx, q, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (s *Storage) queryUsers(ctx context.Context, q Querier, query string, args ...interface{}) ([]domain.User, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			u       domain.User
			threads []string
		)
		if err := rows.Scan(&u.Id, &u.Username, &u.Name, &u.Image, &u.Bio, &u.Onboarded, pq.Array(&threads)); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		if threads == nil {
			threads = []string{}
		}
		u.Threads = threads
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return users, nil
}
