package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchan-dev/threads/backend/internal/storage/populate"
	"github.com/itchan-dev/threads/shared/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SaveUser creates the user or updates its profile fields. Threads are never overwritten.
func (s *Storage) SaveUser(ctx context.Context, user domain.User) error {
	db, ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	_, err = db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": user.Id},
		bson.M{
			"$set": bson.M{
				"username":  user.Username,
				"name":      user.Name,
				"image":     user.Image,
				"bio":       user.Bio,
				"onboarded": user.Onboarded,
			},
			"$setOnInsert": bson.M{"threads": bson.A{}},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser returns nil if the user does not exist.
func (s *Storage) GetUser(ctx context.Context, id domain.UserId) (*domain.User, error) {
	db, ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	return getUser(ctx, db, id)
}

// UserThreads returns the user and the threads listed in its threads field,
// newest first, each with one level of children populated.
func (s *Storage) UserThreads(ctx context.Context, id domain.UserId) (*domain.User, []*domain.Thread, error) {
	db, ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer cancel()

	user, err := getUser(ctx, db, id)
	if err != nil || user == nil {
		return nil, nil, err
	}

	oids := objectIds(user.Threads)
	if len(oids) == 0 {
		return user, []*domain.Thread{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	threads, err := findThreads(ctx, db, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch user threads: %w", err)
	}

	if err := populate.Populate(ctx, s, threads, populate.UserThreads); err != nil {
		return nil, nil, err
	}
	return user, threads, nil
}

// UsersByIds implements populate.Loader.
func (s *Storage) UsersByIds(ctx context.Context, ids []domain.UserId, projection populate.Projection) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db, err := s.client.Connect(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if projection == populate.AuthorSummary {
		opts.SetProjection(bson.D{{Key: "name", Value: 1}, {Key: "image", Value: 1}})
	}

	cursor, err := db.Collection(usersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]domain.User, len(docs))
	for i, d := range docs {
		users[i] = d.toDomain()
	}
	return users, nil
}

func getUser(ctx context.Context, db *mongo.Database, id domain.UserId) (*domain.User, error) {
	var doc userDocument
	err := db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	user := doc.toDomain()
	return &user, nil
}
