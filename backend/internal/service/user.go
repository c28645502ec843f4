package service

import (
	"context"

	internal_errors "github.com/itchan-dev/threads/backend/internal/errors"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/itchan-dev/threads/shared/metrics"
)

type UserService interface {
	Save(ctx context.Context, user domain.User) error
	Get(ctx context.Context, id domain.UserId) (*domain.User, error)
	Threads(ctx context.Context, id domain.UserId) (*domain.User, []*domain.Thread, error)
}

type User struct {
	storage UserStorage
}

type UserStorage interface {
	SaveUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, id domain.UserId) (*domain.User, error)
	UserThreads(ctx context.Context, id domain.UserId) (*domain.User, []*domain.Thread, error)
}

func NewUser(storage UserStorage) UserService {
	return &User{storage: storage}
}

// Save creates or updates the profile. The user's thread list is left untouched.
func (s *User) Save(ctx context.Context, user domain.User) (err error) {
	done := metrics.Track("save_user")
	defer func() { done(err) }()

	if err = s.storage.SaveUser(ctx, user); err != nil {
		logger.Log.Error("failed to save user", "component", "user", "user_id", user.Id, "error", err)
		return &internal_errors.UserSaveError{Err: err}
	}
	return nil
}

// Get returns nil if the user does not exist.
func (s *User) Get(ctx context.Context, id domain.UserId) (user *domain.User, err error) {
	done := metrics.Track("get_user")
	defer func() { done(err) }()

	user, err = s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, &internal_errors.ThreadFetchError{Err: err}
	}
	return user, nil
}

// Threads returns the user with the threads they authored, newest first.
// A missing user yields (nil, nil, nil).
func (s *User) Threads(ctx context.Context, id domain.UserId) (user *domain.User, threads []*domain.Thread, err error) {
	done := metrics.Track("user_threads")
	defer func() { done(err) }()

	user, threads, err = s.storage.UserThreads(ctx, id)
	if err != nil {
		return nil, nil, &internal_errors.ThreadFetchError{Err: err}
	}
	return user, threads, nil
}
