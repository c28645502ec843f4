package service

import (
	"context"
	"errors"
	"testing"

	internal_errors "github.com/itchan-dev/threads/backend/internal/errors"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockUserStorage mocks the UserStorage interface.
type MockUserStorage struct {
	saveUserFunc    func(user domain.User) error
	getUserFunc     func(id domain.UserId) (*domain.User, error)
	userThreadsFunc func(id domain.UserId) (*domain.User, []*domain.Thread, error)
}

func (m *MockUserStorage) SaveUser(ctx context.Context, user domain.User) error {
	if m.saveUserFunc != nil {
		return m.saveUserFunc(user)
	}
	return nil
}

func (m *MockUserStorage) GetUser(ctx context.Context, id domain.UserId) (*domain.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(id)
	}
	return &domain.User{Id: id}, nil
}

func (m *MockUserStorage) UserThreads(ctx context.Context, id domain.UserId) (*domain.User, []*domain.Thread, error) {
	if m.userThreadsFunc != nil {
		return m.userThreadsFunc(id)
	}
	return &domain.User{Id: id}, []*domain.Thread{}, nil
}

func TestUserSave(t *testing.T) {
	ctx := context.Background()
	user := domain.User{Id: "u1", Username: "alice", Name: "Alice"}

	t.Run("Success", func(t *testing.T) {
		storage := &MockUserStorage{}
		called := false
		storage.saveUserFunc = func(got domain.User) error {
			called = true
			assert.Equal(t, user, got)
			return nil
		}

		require.NoError(t, NewUser(storage).Save(ctx, user))
		assert.True(t, called)
	})

	t.Run("StorageError", func(t *testing.T) {
		storage := &MockUserStorage{}
		cause := errors.New("boom")
		storage.saveUserFunc = func(domain.User) error { return cause }

		err := NewUser(storage).Save(ctx, user)

		assert.ErrorIs(t, err, cause)
		assert.True(t, internal_errors.Is[*internal_errors.UserSaveError](err))
		assert.Equal(t, "Failed to save user: boom", err.Error())
	})
}

func TestUserGet(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing", func(t *testing.T) {
		storage := &MockUserStorage{}
		storage.getUserFunc = func(domain.UserId) (*domain.User, error) { return nil, nil }

		user, err := NewUser(storage).Get(ctx, "ghost")

		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("StorageError", func(t *testing.T) {
		storage := &MockUserStorage{}
		cause := errors.New("timeout")
		storage.getUserFunc = func(domain.UserId) (*domain.User, error) { return &domain.User{Id: "u1"}, cause }

		user, err := NewUser(storage).Get(ctx, "u1")

		assert.Nil(t, user)
		assert.True(t, internal_errors.Is[*internal_errors.ThreadFetchError](err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestUserThreads(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		storage := &MockUserStorage{}
		storage.userThreadsFunc = func(id domain.UserId) (*domain.User, []*domain.Thread, error) {
			assert.Equal(t, domain.UserId("u1"), id)
			return &domain.User{Id: id}, threads("t2", "t1"), nil
		}

		user, got, err := NewUser(storage).Threads(ctx, "u1")

		require.NoError(t, err)
		assert.Equal(t, domain.UserId("u1"), user.Id)
		require.Len(t, got, 2)
		assert.Equal(t, domain.ThreadId("t2"), got[0].Id)
	})

	t.Run("StorageError", func(t *testing.T) {
		storage := &MockUserStorage{}
		cause := errors.New("boom")
		storage.userThreadsFunc = func(domain.UserId) (*domain.User, []*domain.Thread, error) {
			return nil, nil, cause
		}

		user, got, err := NewUser(storage).Threads(ctx, "u1")

		assert.Nil(t, user)
		assert.Nil(t, got)
		assert.True(t, internal_errors.Is[*internal_errors.ThreadFetchError](err))
		assert.ErrorIs(t, err, cause)
	})
}
