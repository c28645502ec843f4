// Package mongo stores threads and users as MongoDB documents.
package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	threadsCollection = "threads"
	usersCollection   = "users"
)

// Client owns the process-wide connection. The connection is opened on first use
// and reused afterwards; Connect on a connected client is a no-op.
type Client struct {
	uri            string
	database       string
	connectTimeout time.Duration

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

func NewClient(uri, database string, connectTimeout time.Duration) *Client {
	return &Client{uri: uri, database: database, connectTimeout: connectTimeout}
}

// Connect returns the database handle, connecting first if needed.
// A failed attempt leaves the client unconnected, so the next call retries.
func (c *Client) Connect(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(c.database)
	if err := createIndexes(ctx, db); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	c.client = client
	c.db = db
	logger.Log.Info("connected to document store", "component", "mongo", "database", c.database)
	return db, nil
}

// Connected reports whether a connection has been established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db != nil
}

func (c *Client) Ping(ctx context.Context) error {
	db, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, nil)
}

// Disconnect closes the connection if one is open. The client can connect again later.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongo: %w", err)
	}
	c.client = nil
	c.db = nil
	logger.Log.Info("disconnected from document store", "component", "mongo")
	return nil
}

func createIndexes(ctx context.Context, db *mongo.Database) error {
	threadIndexes := []mongo.IndexModel{
		{
			// feed: root posts newest first
			Keys: bson.D{{Key: "parentId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "author", Value: 1}},
		},
	}
	if _, err := db.Collection(threadsCollection).Indexes().CreateMany(ctx, threadIndexes); err != nil {
		return fmt.Errorf("failed to create threads indexes: %w", err)
	}
	return nil
}

type Storage struct {
	client       *Client
	transactions bool
	timeout      time.Duration
}

// New creates the storage without connecting; the first operation connects.
func New(cfg *config.Config) *Storage {
	return &Storage{
		client:       NewClient(cfg.Private.Mongo.URI, cfg.Public.Mongo.Database, cfg.MongoConnectTimeout()),
		transactions: cfg.Public.Mongo.Transactions,
		timeout:      cfg.OperationTimeout(),
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Storage) Cleanup() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// begin ensures the connection and applies the configured operation timeout.
func (s *Storage) begin(ctx context.Context) (*mongo.Database, context.Context, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	db, err := s.client.Connect(ctx)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return db, ctx, cancel, nil
}

// withTx runs fn in a session transaction when transactions are enabled
// (replica set deployments). Otherwise fn runs its writes one by one.
func (s *Storage) withTx(ctx context.Context, db *mongo.Database, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}

	session, err := db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
