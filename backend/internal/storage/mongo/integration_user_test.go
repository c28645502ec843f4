package mongo

import (
	"context"
	"testing"

	"github.com/itchan-dev/threads/backend/internal/storage/populate"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUser(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	saveUser(t, s, "u1", "Alice")
	id := createThread(t, s, "u1", "hello")

	updated := domain.User{Id: "u1", Username: "alice2", Name: "Alice B", Onboarded: true}
	require.NoError(t, s.SaveUser(ctx, updated))

	user, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", user.Name)
	assert.Equal(t, "alice2", user.Username)
	assert.Equal(t, []domain.ThreadId{id}, user.Threads, "saving a profile keeps the thread list")
}

func TestGetUserNotFound(t *testing.T) {
	s := newStorage(t)
	user, err := s.GetUser(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserThreads(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	saveUser(t, s, "u1", "Alice")
	saveUser(t, s, "u2", "Bob")
	older := createThread(t, s, "u1", "older")
	newer := createThread(t, s, "u1", "newer")
	createThread(t, s, "u2", "not mine")
	reply := createReply(t, s, older, "u2", "reply")

	user, threads, err := s.UserThreads(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Alice", user.Name)

	require.Len(t, threads, 2)
	assert.Equal(t, newer, threads[0].Id)
	assert.Equal(t, older, threads[1].Id)
	require.Len(t, threads[1].Children, 1)
	assert.Equal(t, reply, threads[1].Children[0].Id)
	assert.Equal(t, "Bob", threads[1].Children[0].Author.Name)

	t.Run("NoThreads", func(t *testing.T) {
		saveUser(t, s, "u3", "Carol")
		user, threads, err := s.UserThreads(ctx, "u3")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Empty(t, threads)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		user, threads, err := s.UserThreads(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Nil(t, threads)
	})
}

func TestUsersByIdsProjection(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	saveUser(t, s, "u1", "Alice")
	createThread(t, s, "u1", "hello")

	full, err := s.UsersByIds(ctx, []domain.UserId{"u1", "ghost"}, populate.FullUser)
	require.NoError(t, err)
	require.Len(t, full, 1)
	assert.Equal(t, "bio of Alice", full[0].Bio)
	assert.Len(t, full[0].Threads, 1)

	summary, err := s.UsersByIds(ctx, []domain.UserId{"u1"}, populate.AuthorSummary)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, domain.User{Id: "u1", Name: "Alice", Image: "Alice.png", Threads: []domain.ThreadId{}}, summary[0])
}
