package setup

import (
	"context"

	"github.com/go-redis/redis"
	"github.com/itchan-dev/threads/backend/internal/revalidate"
	"github.com/itchan-dev/threads/backend/internal/service"
	"github.com/itchan-dev/threads/backend/internal/storage"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/logger"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage storage.Storage
	Thread  service.ThreadService
	User    service.UserService

	redis *redis.Client
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{Storage: store}

	var revalidator service.Revalidator = revalidate.Log{}
	if cfg.Public.Revalidation.Enabled {
		client, err := revalidate.NewRedisClient(cfg.Private.Redis)
		if err != nil {
			store.Cleanup()
			return nil, err
		}
		deps.redis = client
		revalidator = revalidate.NewRedis(client, cfg.Public.Revalidation.Channel)
		logger.Log.Info("revalidation enabled", "component", "setup", "channel", cfg.Public.Revalidation.Channel)
	}

	deps.Thread = service.NewThread(store, revalidator, cfg.Public)
	deps.User = service.NewUser(store)
	return deps, nil
}

// Cleanup releases the storage and redis connections.
func (d *Dependencies) Cleanup() {
	if err := d.Storage.Cleanup(); err != nil {
		logger.Log.Error("failed to close storage", "component", "setup", "error", err)
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			logger.Log.Error("failed to close redis", "component", "setup", "error", err)
		}
	}
}
