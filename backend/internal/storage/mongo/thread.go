package mongo

import (
	"context"
	"errors"
	"fmt"

	internal_errors "github.com/itchan-dev/threads/backend/internal/errors"
	"github.com/itchan-dev/threads/backend/internal/storage/populate"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/itchan-dev/threads/shared/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ populate.Loader = (*Storage)(nil)

// rootFilter matches threads whose parentId is null or missing.
func rootFilter() bson.M {
	return bson.M{"parentId": nil}
}

// CreateThread inserts a top-level thread and appends it to the author's threads.
func (s *Storage) CreateThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.ThreadId, error) {
	db, ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	doc := threadDocument{
		ID:        primitive.NewObjectID(),
		Text:      creationData.Text,
		Author:    creationData.AuthorId,
		Community: creationData.CommunityId,
		Children:  []primitive.ObjectID{},
		CreatedAt: now(),
	}

	inserted := false
	err = s.withTx(ctx, db, func(ctx context.Context) error {
		if _, err := db.Collection(threadsCollection).InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("failed to insert thread: %w", err)
		}
		inserted = true

		result, err := db.Collection(usersCollection).UpdateOne(ctx,
			bson.M{"_id": creationData.AuthorId},
			bson.M{"$push": bson.M{"threads": doc.ID}},
		)
		if err != nil {
			return fmt.Errorf("failed to link thread to author: %w", err)
		}
		if result.MatchedCount == 0 {
			return internal_errors.NotFoundf("author %s", creationData.AuthorId)
		}
		return nil
	})
	if err != nil {
		if inserted && !s.transactions {
			logger.Log.Warn("thread stored without author link",
				"component", "mongo",
				"thread_id", doc.ID.Hex(),
				"author_id", creationData.AuthorId,
				"error", err)
		}
		return "", err
	}
	return doc.ID.Hex(), nil
}

// CreateReply inserts a thread under ParentId and appends it to the parent's children.
// An unknown parent or author fails with NotFound before anything is written.
func (s *Storage) CreateReply(ctx context.Context, creationData domain.ReplyCreationData) (domain.ThreadId, error) {
	parentId, err := primitive.ObjectIDFromHex(creationData.ParentId)
	if err != nil {
		return "", internal_errors.NotFoundf("parent thread %s", creationData.ParentId)
	}

	db, ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	threads := db.Collection(threadsCollection)

	err = threads.FindOne(ctx, bson.M{"_id": parentId}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", internal_errors.NotFoundf("parent thread %s", creationData.ParentId)
		}
		return "", fmt.Errorf("failed to fetch parent thread: %w", err)
	}

	err = db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": creationData.AuthorId}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", internal_errors.NotFoundf("author %s", creationData.AuthorId)
		}
		return "", fmt.Errorf("failed to fetch author: %w", err)
	}

	doc := threadDocument{
		ID:        primitive.NewObjectID(),
		Text:      creationData.Text,
		Author:    creationData.AuthorId,
		ParentID:  &parentId,
		Children:  []primitive.ObjectID{},
		CreatedAt: now(),
	}

	inserted := false
	err = s.withTx(ctx, db, func(ctx context.Context) error {
		if _, err := threads.InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("failed to insert reply: %w", err)
		}
		inserted = true

		result, err := threads.UpdateOne(ctx,
			bson.M{"_id": parentId},
			bson.M{"$push": bson.M{"children": doc.ID}},
		)
		if err != nil {
			return fmt.Errorf("failed to link reply to parent: %w", err)
		}
		if result.MatchedCount == 0 {
			return internal_errors.NotFoundf("parent thread %s", creationData.ParentId)
		}
		return nil
	})
	if err != nil {
		if inserted && !s.transactions {
			logger.Log.Warn("reply stored without parent link",
				"component", "mongo",
				"thread_id", doc.ID.Hex(),
				"parent_id", creationData.ParentId,
				"error", err)
		}
		return "", err
	}
	return doc.ID.Hex(), nil
}

// RootThreads returns one window of top-level threads, newest first,
// with full authors and one level of children populated.
func (s *Storage) RootThreads(ctx context.Context, window domain.Window) ([]*domain.Thread, error) {
	db, ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(window.Skip).
		SetLimit(window.Limit)

	threads, err := findThreads(ctx, db, rootFilter(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch root threads: %w", err)
	}

	if err := populate.Populate(ctx, s, threads, populate.Feed); err != nil {
		return nil, err
	}
	return threads, nil
}

func (s *Storage) RootThreadCount(ctx context.Context) (int64, error) {
	db, ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	n, err := db.Collection(threadsCollection).CountDocuments(ctx, rootFilter())
	if err != nil {
		return 0, fmt.Errorf("failed to count root threads: %w", err)
	}
	return n, nil
}

// GetThread returns the thread with two levels of children populated,
// or nil if no thread has this id.
func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	db, ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var doc threadDocument
	err = db.Collection(threadsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}

	thread := doc.toDomain()
	if err := populate.Populate(ctx, s, []*domain.Thread{&thread}, populate.ThreadPage); err != nil {
		return nil, err
	}
	return &thread, nil
}

// ThreadsByIds implements populate.Loader.
func (s *Storage) ThreadsByIds(ctx context.Context, ids []domain.ThreadId) ([]domain.Thread, error) {
	oids := objectIds(ids)
	if len(oids) == 0 {
		return nil, nil
	}

	db, err := s.client.Connect(ctx)
	if err != nil {
		return nil, err
	}

	threads, err := findThreads(ctx, db, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
	if err != nil {
		return nil, err
	}
	out := make([]domain.Thread, len(threads))
	for i, t := range threads {
		out[i] = *t
	}
	return out, nil
}

func findThreads(ctx context.Context, db *mongo.Database, filter interface{}, opts *options.FindOptions) ([]*domain.Thread, error) {
	cursor, err := db.Collection(threadsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []threadDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode threads: %w", err)
	}

	threads := make([]*domain.Thread, len(docs))
	for i, d := range docs {
		t := d.toDomain()
		threads[i] = &t
	}
	return threads, nil
}
