// Package pg stores threads and users in PostgreSQL, mirroring the document
// layout: reference lists are kept as ordered uuid arrays.
package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/logger"
	shared_pg "github.com/itchan-dev/threads/shared/storage/pg"
)

//go:embed migrations/init.sql
var schema string

type Querier = shared_pg.Querier

type Storage struct {
	db      *sql.DB
	timeout time.Duration
}

func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	return newStorage(ctx, cfg, shared_pg.DefaultConnectionConfig())
}

func newStorage(ctx context.Context, cfg *config.Config, connCfg shared_pg.ConnectionConfig) (*Storage, error) {
	logger.Log.Info("connecting to db", "component", "pg", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
	db, err := shared_pg.Connect(ctx, cfg.Private.Pg, connCfg)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Log.Info("successfully connected to db", "component", "pg")

	return &Storage{db: db, timeout: cfg.OperationTimeout()}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Storage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return shared_pg.WithTx(ctx, s.db, fn)
}

// createdAt rounds to the microsecond precision postgres stores.
func createdAt() time.Time {
	return time.Now().UTC().Round(time.Microsecond)
}
