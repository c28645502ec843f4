package setup

import (
	"context"
	"testing"

	"github.com/itchan-dev/threads/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDependencies(t *testing.T) {
	ctx := context.Background()

	t.Run("Mongo without revalidation", func(t *testing.T) {
		cfg := &config.Config{
			Public: config.Public{
				Storage:      config.StorageMongo,
				FeedPageSize: 20,
				Mongo:        config.MongoPublic{Database: "threads"},
			},
			Private: config.Private{Mongo: config.MongoPrivate{URI: "mongodb://127.0.0.1:1"}},
		}

		deps, err := SetupDependencies(ctx, cfg)
		require.NoError(t, err)
		assert.NotNil(t, deps.Thread)
		assert.NotNil(t, deps.User)
		assert.Nil(t, deps.redis)
		deps.Cleanup()
	})

	t.Run("Unreachable redis", func(t *testing.T) {
		cfg := &config.Config{
			Public: config.Public{
				Storage:      config.StorageMongo,
				FeedPageSize: 20,
				Mongo:        config.MongoPublic{Database: "threads"},
				Revalidation: config.Revalidation{Enabled: true, Channel: "revalidate"},
			},
			Private: config.Private{
				Mongo: config.MongoPrivate{URI: "mongodb://127.0.0.1:1"},
				Redis: config.Redis{Addr: "127.0.0.1:1"},
			},
		}

		deps, err := SetupDependencies(ctx, cfg)
		assert.Error(t, err)
		assert.Nil(t, deps)
	})
}
