package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	internal_errors "github.com/itchan-dev/threads/backend/internal/errors"
	"github.com/itchan-dev/threads/backend/internal/storage/populate"
	"github.com/itchan-dev/threads/shared/domain"
	shared_pg "github.com/itchan-dev/threads/shared/storage/pg"
	"github.com/lib/pq"
)

var _ populate.Loader = (*Storage)(nil)

const threadColumns = `id, text, author_id, community_id, parent_id, children, created_at`

// =========================================================================
// Public Methods (satisfy the service.ThreadStorage interface)
// =========================================================================

// CreateThread inserts a top-level thread and appends it to the author's
// threads in one transaction.
func (s *Storage) CreateThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.ThreadId, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id domain.ThreadId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.createThread(ctx, tx, creationData)
		return err
	})
	return id, err
}

// CreateReply inserts a reply and appends it to the parent's children in one transaction.
func (s *Storage) CreateReply(ctx context.Context, creationData domain.ReplyCreationData) (domain.ThreadId, error) {
	if _, err := uuid.Parse(creationData.ParentId); err != nil {
		return "", internal_errors.NotFoundf("parent thread %s", creationData.ParentId)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id domain.ThreadId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.createReply(ctx, tx, creationData)
		return err
	})
	return id, err
}

// RootThreads returns one window of top-level threads, newest first,
// with full authors and one level of children populated.
func (s *Storage) RootThreads(ctx context.Context, window domain.Window) ([]*domain.Thread, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	threads, err := s.queryThreads(ctx, s.db, `
		SELECT `+threadColumns+`
		FROM threads
		WHERE parent_id IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, window.Limit, window.Skip)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch root threads: %w", err)
	}

	if err := populate.Populate(ctx, s, threads, populate.Feed); err != nil {
		return nil, err
	}
	return threads, nil
}

func (s *Storage) RootThreadCount(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM threads WHERE parent_id IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count root threads: %w", err)
	}
	return n, nil
}

// GetThread returns the thread with two levels of children populated,
// or nil if no thread has this id.
func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	threads, err := s.queryThreads(ctx, s.db, `SELECT `+threadColumns+` FROM threads WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}
	if len(threads) == 0 {
		return nil, nil
	}

	if err := populate.Populate(ctx, s, threads, populate.ThreadPage); err != nil {
		return nil, err
	}
	return threads[0], nil
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) createThread(ctx context.Context, q Querier, creationData domain.ThreadCreationData) (domain.ThreadId, error) {
	id := uuid.New().String()
	_, err := q.ExecContext(ctx, `
		INSERT INTO threads (id, text, author_id, community_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, creationData.Text, creationData.AuthorId, creationData.CommunityId, createdAt())
	if err != nil {
		if shared_pg.IsForeignKeyViolation(err) {
			return "", internal_errors.NotFoundf("author %s", creationData.AuthorId)
		}
		return "", fmt.Errorf("failed to insert thread: %w", err)
	}

	result, err := q.ExecContext(ctx,
		`UPDATE users SET threads = array_append(threads, $1::uuid) WHERE id = $2`,
		id, creationData.AuthorId)
	if err != nil {
		return "", fmt.Errorf("failed to link thread to author: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return "", internal_errors.NotFoundf("author %s", creationData.AuthorId)
	}
	return id, nil
}

func (s *Storage) createReply(ctx context.Context, q Querier, creationData domain.ReplyCreationData) (domain.ThreadId, error) {
	// Lock the parent so concurrent replies append in insertion order.
	var parentId string
	err := q.QueryRowContext(ctx, `SELECT id FROM threads WHERE id = $1 FOR UPDATE`, creationData.ParentId).Scan(&parentId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", internal_errors.NotFoundf("parent thread %s", creationData.ParentId)
		}
		return "", fmt.Errorf("failed to fetch parent thread: %w", err)
	}

	id := uuid.New().String()
	_, err = q.ExecContext(ctx, `
		INSERT INTO threads (id, text, author_id, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, creationData.Text, creationData.AuthorId, parentId, createdAt())
	if err != nil {
		if shared_pg.IsForeignKeyViolation(err) {
			return "", internal_errors.NotFoundf("author %s", creationData.AuthorId)
		}
		return "", fmt.Errorf("failed to insert reply: %w", err)
	}

	if _, err := q.ExecContext(ctx,
		`UPDATE threads SET children = array_append(children, $1::uuid) WHERE id = $2`,
		id, parentId); err != nil {
		return "", fmt.Errorf("failed to link reply to parent: %w", err)
	}
	return id, nil
}

func (s *Storage) queryThreads(ctx context.Context, q Querier, query string, args ...interface{}) ([]*domain.Thread, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []*domain.Thread
	for rows.Next() {
		var (
			t         domain.Thread
			community sql.NullString
			parent    sql.NullString
			children  []string
		)
		if err := rows.Scan(&t.Id, &t.Text, &t.AuthorId, &community, &parent, pq.Array(&children), &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan thread row: %w", err)
		}
		if community.Valid {
			t.CommunityId = &community.String
		}
		if parent.Valid {
			t.ParentId = &parent.String
		}
		if children == nil {
			children = []string{}
		}
		t.ChildIds = children
		t.CreatedAt = t.CreatedAt.UTC()
		threads = append(threads, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return threads, nil
}
