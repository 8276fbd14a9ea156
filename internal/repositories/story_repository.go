package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/lumora-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoryRepository extends ContentRepository with the lifecycle queries the
// purge sweep and the active-stories listing need.
type StoryRepository interface {
	ContentRepository
	Deactivate(ctx context.Context, id string) error
	// FindPurgeable returns stories with expires_at <= now (inclusive) or
	// is_active == false.
	FindPurgeable(ctx context.Context, now time.Time) ([]models.ContentItem, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	// ListActive returns stories with expires_at > now and is_active == true,
	// oldest first.
	ListActive(ctx context.Context, now time.Time) ([]models.ContentItem, error)
}

// MongoStoryRepository implements StoryRepository over the stories collection.
type MongoStoryRepository struct {
	MongoContentRepository
}

// NewMongoStoryRepository creates the stories repository.
func NewMongoStoryRepository(db *mongo.Database) *MongoStoryRepository {
	return &MongoStoryRepository{
		MongoContentRepository: *NewMongoContentRepository(db, "stories", models.KindStory),
	}
}

// Deactivate marks a story inactive. The record stays until the next purge.
func (r *MongoStoryRepository) Deactivate(ctx context.Context, id string) error {
	objID, err := r.objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("story %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *MongoStoryRepository) FindPurgeable(ctx context.Context, now time.Time) ([]models.ContentItem, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"expires_at": bson.M{"$lte": now}},
		bson.M{"is_active": false},
	}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []models.ContentItem
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *MongoStoryRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoStoryRepository) ListActive(ctx context.Context, now time.Time) ([]models.ContentItem, error) {
	filter := bson.M{
		"expires_at": bson.M{"$gt": now},
		"is_active":  true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []models.ContentItem
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}
