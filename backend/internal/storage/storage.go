// Package storage selects the configured storage backend.
package storage

import (
	"context"
	"fmt"

	"github.com/itchan-dev/threads/backend/internal/service"
	"github.com/itchan-dev/threads/backend/internal/storage/mongo"
	"github.com/itchan-dev/threads/backend/internal/storage/pg"
	"github.com/itchan-dev/threads/shared/config"
)

// Storage is what both backends provide to the services.
type Storage interface {
	service.ThreadStorage
	service.UserStorage
	Ping(ctx context.Context) error
	Cleanup() error
}

var (
	_ Storage = (*mongo.Storage)(nil)
	_ Storage = (*pg.Storage)(nil)
)

// New opens the backend named by cfg.Public.Storage. The mongo backend
// connects lazily on first use; pg connects and applies its schema here.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Public.Storage {
	case config.StorageMongo:
		return mongo.New(cfg), nil
	case config.StoragePg:
		s, err := pg.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Public.Storage)
	}
}
