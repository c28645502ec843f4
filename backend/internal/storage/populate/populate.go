// Package populate resolves thread references (authors, children) into records.
//
// Each nesting level costs one batched lookup for threads and one for users,
// independent of how many threads the level holds.
package populate

import (
	"context"
	"fmt"

	"github.com/itchan-dev/threads/shared/domain"
)

// Projection selects which user fields a lookup returns.
type Projection int

const (
	None Projection = iota
	FullUser
	AuthorSummary // id, name, image
)

// Loader fetches records by id. Missing ids are simply absent from the result.
// Both storage backends implement it.
type Loader interface {
	ThreadsByIds(ctx context.Context, ids []domain.ThreadId) ([]domain.Thread, error)
	UsersByIds(ctx context.Context, ids []domain.UserId, projection Projection) ([]domain.User, error)
}

// Plan describes how deep and with which author projection a thread tree is populated.
type Plan struct {
	Author   Projection
	Children *Plan
}

var (
	// Feed: full root authors, children with their author summary.
	Feed = Plan{
		Author:   FullUser,
		Children: &Plan{Author: AuthorSummary},
	}
	// ThreadPage: summaries everywhere, two levels of children.
	ThreadPage = Plan{
		Author: AuthorSummary,
		Children: &Plan{
			Author:   AuthorSummary,
			Children: &Plan{Author: AuthorSummary},
		},
	}
	// UserThreads: authored threads with one level of children.
	UserThreads = Plan{
		Children: &Plan{Author: AuthorSummary},
	}
)

// Populate fills Author and Children of threads level by level according to plan.
// Children keep the order of ChildIds; ids that no longer resolve are skipped.
func Populate(ctx context.Context, l Loader, threads []*domain.Thread, plan Plan) error {
	if len(threads) == 0 {
		return nil
	}

	if plan.Author != None {
		if err := populateAuthors(ctx, l, threads, plan.Author); err != nil {
			return err
		}
	}

	if plan.Children == nil {
		return nil
	}

	childIds := collectChildIds(threads)
	if len(childIds) == 0 {
		for _, t := range threads {
			t.Children = []*domain.Thread{}
		}
		return nil
	}
	children, err := l.ThreadsByIds(ctx, childIds)
	if err != nil {
		return fmt.Errorf("failed to load children: %w", err)
	}
	idToChild := make(map[domain.ThreadId]domain.Thread, len(children))
	for _, c := range children {
		idToChild[c.Id] = c
	}

	var next []*domain.Thread
	for _, t := range threads {
		t.Children = make([]*domain.Thread, 0, len(t.ChildIds))
		for _, id := range t.ChildIds {
			c, ok := idToChild[id]
			if !ok {
				continue
			}
			child := c
			t.Children = append(t.Children, &child)
			next = append(next, &child)
		}
	}

	return Populate(ctx, l, next, *plan.Children)
}

func populateAuthors(ctx context.Context, l Loader, threads []*domain.Thread, projection Projection) error {
	seen := make(map[domain.UserId]struct{}, len(threads))
	ids := make([]domain.UserId, 0, len(threads))
	for _, t := range threads {
		if _, ok := seen[t.AuthorId]; ok {
			continue
		}
		seen[t.AuthorId] = struct{}{}
		ids = append(ids, t.AuthorId)
	}

	users, err := l.UsersByIds(ctx, ids, projection)
	if err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}
	idToUser := make(map[domain.UserId]domain.User, len(users))
	for _, u := range users {
		if projection == AuthorSummary {
			u = u.AuthorSummary()
		}
		idToUser[u.Id] = u
	}

	for _, t := range threads {
		if u, ok := idToUser[t.AuthorId]; ok {
			author := u
			t.Author = &author
		}
	}
	return nil
}

func collectChildIds(threads []*domain.Thread) []domain.ThreadId {
	seen := make(map[domain.ThreadId]struct{})
	var ids []domain.ThreadId
	for _, t := range threads {
		for _, id := range t.ChildIds {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
