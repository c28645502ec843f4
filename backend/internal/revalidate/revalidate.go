// Package revalidate tells the rendering layer which view paths are stale.
package revalidate

import (
	"context"
	"fmt"

	"github.com/go-redis/redis"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/logger"
)

// publisher is the part of *redis.Client used here.
type publisher interface {
	Publish(channel string, message interface{}) *redis.IntCmd
}

// Redis publishes stale paths on a pub/sub channel.
type Redis struct {
	client  publisher
	channel string
}

func NewRedis(client *redis.Client, channel string) *Redis {
	return &Redis{client: client, channel: channel}
}

func (r *Redis) Revalidate(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	receivers, err := r.client.Publish(r.channel, path).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %q to %s: %w", path, r.channel, err)
	}
	logger.Log.Debug("revalidation published", "component", "revalidate", "path", path, "receivers", receivers)
	return nil
}

// Log only records stale paths. Used when revalidation is disabled.
type Log struct{}

func (Log) Revalidate(ctx context.Context, path string) error {
	logger.Log.Debug("revalidation skipped", "component", "revalidate", "path", path)
	return nil
}

// NewRedisClient opens a client for the configured server and checks it answers.
func NewRedisClient(cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
