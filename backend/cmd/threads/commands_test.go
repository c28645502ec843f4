package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/itchan-dev/threads/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeThreads struct {
	created  domain.ThreadCreationData
	replied  domain.ReplyCreationData
	path     string
	page     domain.Page
	thread   *domain.Thread
	feedPage domain.Feed
}

func (f *fakeThreads) Create(ctx context.Context, data domain.ThreadCreationData, path string) (domain.ThreadId, error) {
	f.created, f.path = data, path
	return "t1", nil
}

func (f *fakeThreads) Reply(ctx context.Context, data domain.ReplyCreationData, path string) (domain.ThreadId, error) {
	f.replied, f.path = data, path
	return "r1", nil
}

func (f *fakeThreads) Feed(ctx context.Context, page domain.Page) (domain.Feed, error) {
	f.page = page
	return f.feedPage, nil
}

func (f *fakeThreads) Get(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	return f.thread, nil
}

type fakeUsers struct {
	saved domain.User
}

func (f *fakeUsers) Save(ctx context.Context, user domain.User) error {
	f.saved = user
	return nil
}

func (f *fakeUsers) Get(ctx context.Context, id domain.UserId) (*domain.User, error) {
	return &domain.User{Id: id}, nil
}

func (f *fakeUsers) Threads(ctx context.Context, id domain.UserId) (*domain.User, []*domain.Thread, error) {
	return &domain.User{Id: id}, []*domain.Thread{{Id: "t1"}}, nil
}

func TestRunCreate(t *testing.T) {
	threads := &fakeThreads{}
	var out bytes.Buffer

	err := run(context.Background(), threads, &fakeUsers{}, &out, "create", []string{"-author", "u1", "-text", "hi", "-community", "go"})

	require.NoError(t, err)
	assert.Equal(t, "u1", threads.created.AuthorId)
	require.NotNil(t, threads.created.CommunityId)
	assert.Equal(t, "go", *threads.created.CommunityId)
	assert.Equal(t, "/", threads.path)
	assert.JSONEq(t, `{"id":"t1"}`, out.String())
}

func TestRunReplyDefaultPath(t *testing.T) {
	threads := &fakeThreads{}
	var out bytes.Buffer

	err := run(context.Background(), threads, &fakeUsers{}, &out, "reply", []string{"-parent", "t1", "-author", "u2", "-text", "yo"})

	require.NoError(t, err)
	assert.Equal(t, "/thread/t1", threads.path)
	assert.Equal(t, domain.ReplyCreationData{ParentId: "t1", AuthorId: "u2", Text: "yo"}, threads.replied)
}

func TestRunFeed(t *testing.T) {
	threads := &fakeThreads{feedPage: domain.Feed{Posts: []*domain.Thread{{Id: "t1"}}, HasNext: true}}
	var out bytes.Buffer

	err := run(context.Background(), threads, &fakeUsers{}, &out, "feed", []string{"-page", "3", "-size", "5"})

	require.NoError(t, err)
	assert.Equal(t, domain.Page{Number: 3, Size: 5}, threads.page)
	var feed domain.Feed
	require.NoError(t, json.Unmarshal(out.Bytes(), &feed))
	assert.True(t, feed.HasNext)
	assert.Len(t, feed.Posts, 1)
}

func TestRunGetMissingPrintsNull(t *testing.T) {
	var out bytes.Buffer

	err := run(context.Background(), &fakeThreads{}, &fakeUsers{}, &out, "get", []string{"-id", "nope"})

	require.NoError(t, err)
	assert.Equal(t, "null\n", out.String())
}

func TestRunSaveUser(t *testing.T) {
	users := &fakeUsers{}
	var out bytes.Buffer

	err := run(context.Background(), &fakeThreads{}, users, &out, "save-user", []string{"-id", "u1", "-name", "Alice", "-onboarded"})

	require.NoError(t, err)
	assert.Equal(t, domain.User{Id: "u1", Name: "Alice", Onboarded: true}, users.saved)
}

func TestRunUsageErrors(t *testing.T) {
	testCases := []struct {
		name    string
		command string
		args    []string
	}{
		{"Unknown command", "delete", nil},
		{"Create without author", "create", []string{"-text", "x"}},
		{"Reply without parent", "reply", []string{"-author", "u1"}},
		{"Get without id", "get", nil},
		{"User threads without id", "user-threads", nil},
		{"Save user without id", "save-user", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(context.Background(), &fakeThreads{}, &fakeUsers{}, &out, tc.command, tc.args)
			assert.ErrorIs(t, err, errUsage)
		})
	}
}
