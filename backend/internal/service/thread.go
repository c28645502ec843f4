package service

import (
	"context"

	internal_errors "github.com/itchan-dev/threads/backend/internal/errors"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/itchan-dev/threads/shared/metrics"
)

// to mock service in tests
type ThreadService interface {
	Create(ctx context.Context, creationData domain.ThreadCreationData, path string) (domain.ThreadId, error)
	Reply(ctx context.Context, creationData domain.ReplyCreationData, path string) (domain.ThreadId, error)
	Feed(ctx context.Context, page domain.Page) (domain.Feed, error)
	Get(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
}

type Thread struct {
	storage     ThreadStorage
	revalidator Revalidator
	cfg         config.Public
}

type ThreadStorage interface {
	CreateThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.ThreadId, error)
	CreateReply(ctx context.Context, creationData domain.ReplyCreationData) (domain.ThreadId, error)
	RootThreads(ctx context.Context, window domain.Window) ([]*domain.Thread, error)
	RootThreadCount(ctx context.Context) (int64, error)
	GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
}

// Revalidator is told which rendered view became stale after a write.
type Revalidator interface {
	Revalidate(ctx context.Context, path string) error
}

func NewThread(storage ThreadStorage, revalidator Revalidator, cfg config.Public) ThreadService {
	return &Thread{storage: storage, revalidator: revalidator, cfg: cfg}
}

// Create stores a top-level thread and links it to its author.
func (s *Thread) Create(ctx context.Context, creationData domain.ThreadCreationData, path string) (id domain.ThreadId, err error) {
	done := metrics.Track("create_thread")
	defer func() { done(err) }()

	id, err = s.storage.CreateThread(ctx, creationData)
	if err != nil {
		logger.Log.Error("failed to create thread", "component", "thread", "author_id", creationData.AuthorId, "error", err)
		return "", &internal_errors.ThreadCreationError{Err: err}
	}
	logger.Log.Info("thread created", "component", "thread", "thread_id", id, "author_id", creationData.AuthorId)

	s.revalidate(ctx, path)
	return id, nil
}

// Reply stores a reply and appends it to the parent's children.
func (s *Thread) Reply(ctx context.Context, creationData domain.ReplyCreationData, path string) (id domain.ThreadId, err error) {
	done := metrics.Track("create_reply")
	defer func() { done(err) }()

	id, err = s.storage.CreateReply(ctx, creationData)
	if err != nil {
		logger.Log.Error("failed to create reply", "component", "thread", "parent_id", creationData.ParentId, "error", err)
		return "", &internal_errors.ThreadCreationError{Err: err}
	}
	logger.Log.Info("reply created", "component", "thread", "thread_id", id, "parent_id", creationData.ParentId)

	s.revalidate(ctx, path)
	return id, nil
}

// Feed returns one page of top-level threads, newest first.
func (s *Thread) Feed(ctx context.Context, page domain.Page) (feed domain.Feed, err error) {
	done := metrics.Track("feed")
	defer func() { done(err) }()

	window, ok := Window(normalizePage(page, s.cfg))
	if !ok {
		return domain.Feed{Posts: []*domain.Thread{}, HasNext: false}, nil
	}

	posts, err := s.storage.RootThreads(ctx, window)
	if err != nil {
		return domain.Feed{}, &internal_errors.ThreadFetchError{Err: err}
	}
	total, err := s.storage.RootThreadCount(ctx)
	if err != nil {
		return domain.Feed{}, &internal_errors.ThreadFetchError{Err: err}
	}

	if posts == nil {
		posts = []*domain.Thread{}
	}
	return domain.Feed{Posts: posts, HasNext: HasNext(total, window, len(posts))}, nil
}

// Get returns the thread with two levels of replies, or nil if it does not exist.
func (s *Thread) Get(ctx context.Context, id domain.ThreadId) (thread *domain.Thread, err error) {
	done := metrics.Track("get_thread")
	defer func() { done(err) }()

	thread, err = s.storage.GetThread(ctx, id)
	if err != nil {
		return nil, &internal_errors.ThreadFetchError{Err: err}
	}
	return thread, nil
}

// revalidate is best effort: the write already succeeded.
func (s *Thread) revalidate(ctx context.Context, path string) {
	if path == "" || s.revalidator == nil {
		return
	}
	if err := s.revalidator.Revalidate(ctx, path); err != nil {
		logger.Log.Warn("failed to revalidate path", "component", "thread", "path", path, "error", err)
	}
}
