package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/itchan-dev/threads/backend/internal/storage/populate"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/lib/pq"
)

// ThreadsByIds fetches the threads referenced by a level of the tree in one query.
// Ids that are not uuids cannot match and are dropped before querying.
func (s *Storage) ThreadsByIds(ctx context.Context, ids []domain.ThreadId) ([]domain.Thread, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil, nil // No threads to load
	}

	threads, err := s.queryThreads(ctx, s.db,
		`SELECT `+threadColumns+` FROM threads WHERE id = ANY($1::uuid[])`,
		pq.Array(valid))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threads by ids: %w", err)
	}

	out := make([]domain.Thread, len(threads))
	for i, t := range threads {
		out[i] = *t
	}
	return out, nil
}

// UsersByIds fetches the authors referenced by a level of the tree in one query.
// The summary projection only selects id, name and image.
func (s *Storage) UsersByIds(ctx context.Context, ids []domain.UserId, projection populate.Projection) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil // No users to load
	}

	if projection == populate.AuthorSummary {
		return s.userSummaries(ctx, s.db, ids)
	}
	users, err := s.queryUsers(ctx, s.db,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users by ids: %w", err)
	}
	return users, nil
}

func (s *Storage) userSummaries(ctx context.Context, q Querier, ids []domain.UserId) ([]domain.User, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, image FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user summaries: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Id, &u.Name, &u.Image); err != nil {
			return nil, fmt.Errorf("failed to scan user summary row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
