package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/itchan-dev/threads/backend/internal/service"
	"github.com/itchan-dev/threads/shared/domain"
)

var errUsage = errors.New("invalid arguments")

func run(ctx context.Context, threads service.ThreadService, users service.UserService, w io.Writer, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(w)

	switch command {
	case "save-user":
		var user domain.User
		fs.StringVar(&user.Id, "id", "", "user id (required)")
		fs.StringVar(&user.Username, "username", "", "username")
		fs.StringVar(&user.Name, "name", "", "display name")
		fs.StringVar(&user.Image, "image", "", "avatar url")
		fs.StringVar(&user.Bio, "bio", "", "bio")
		fs.BoolVar(&user.Onboarded, "onboarded", false, "onboarding finished")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if user.Id == "" {
			return fmt.Errorf("%w: -id is required", errUsage)
		}
		if err := users.Save(ctx, user); err != nil {
			return err
		}
		return writeJSON(w, user)

	case "create":
		var data domain.ThreadCreationData
		var community, path string
		fs.StringVar(&data.AuthorId, "author", "", "author user id (required)")
		fs.StringVar(&data.Text, "text", "", "thread text")
		fs.StringVar(&community, "community", "", "community id")
		fs.StringVar(&path, "path", "/", "view path to revalidate")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if data.AuthorId == "" {
			return fmt.Errorf("%w: -author is required", errUsage)
		}
		if community != "" {
			data.CommunityId = &community
		}
		id, err := threads.Create(ctx, data, path)
		if err != nil {
			return err
		}
		return writeJSON(w, map[string]domain.ThreadId{"id": id})

	case "reply":
		var data domain.ReplyCreationData
		var path string
		fs.StringVar(&data.ParentId, "parent", "", "parent thread id (required)")
		fs.StringVar(&data.AuthorId, "author", "", "author user id (required)")
		fs.StringVar(&data.Text, "text", "", "reply text")
		fs.StringVar(&path, "path", "", "view path to revalidate (default /thread/<parent>)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if data.ParentId == "" || data.AuthorId == "" {
			return fmt.Errorf("%w: -parent and -author are required", errUsage)
		}
		if path == "" {
			path = "/thread/" + data.ParentId
		}
		id, err := threads.Reply(ctx, data, path)
		if err != nil {
			return err
		}
		return writeJSON(w, map[string]domain.ThreadId{"id": id})

	case "feed":
		var page domain.Page
		fs.IntVar(&page.Number, "page", 1, "page number, starting at 1")
		fs.IntVar(&page.Size, "size", 0, "page size (0 uses feed_page_size)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		feed, err := threads.Feed(ctx, page)
		if err != nil {
			return err
		}
		return writeJSON(w, feed)

	case "get":
		var id string
		fs.StringVar(&id, "id", "", "thread id (required)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if id == "" {
			return fmt.Errorf("%w: -id is required", errUsage)
		}
		thread, err := threads.Get(ctx, id)
		if err != nil {
			return err
		}
		return writeJSON(w, thread)

	case "user-threads":
		var id string
		fs.StringVar(&id, "id", "", "user id (required)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if id == "" {
			return fmt.Errorf("%w: -id is required", errUsage)
		}
		user, list, err := users.Threads(ctx, id)
		if err != nil {
			return err
		}
		return writeJSON(w, struct {
			User    *domain.User     `json:"user"`
			Threads []*domain.Thread `json:"threads"`
		}{user, list})

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}
