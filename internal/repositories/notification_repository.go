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

// NotificationRepository defines the interface for notification operations.
// FindFresh/Refresh/Insert are the primitives the deduplicator composes; the
// rest serve the notifications API.
type NotificationRepository interface {
	Insert(ctx context.Context, notification *models.Notification) error
	// FindFresh returns the notification matching the dedup tuple created at
	// or after since, or nil when none exists.
	FindFresh(ctx context.Context, recipientID, actorID, kind, subjectID string, since time.Time) (*models.Notification, error)
	// Refresh bumps created_at and clears is_read on an existing notification.
	Refresh(ctx context.Context, id string, now time.Time) error
	ListByRecipient(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, id, recipientID string) error
	MarkAllAsRead(ctx context.Context, recipientID string) error
}

// MongoNotificationRepository implements NotificationRepository over the
// notifications collection.
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates the notifications repository.
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

func (r *MongoNotificationRepository) Insert(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

func (r *MongoNotificationRepository) FindFresh(ctx context.Context, recipientID, actorID, kind, subjectID string, since time.Time) (*models.Notification, error) {
	filter := bson.M{
		"recipient_id": recipientID,
		"actor_id":     actorID,
		"kind":         kind,
		"subject_id":   subjectID,
		"created_at":   bson.M{"$gte": since},
	}
	var n models.Notification
	err := r.collection.FindOne(ctx, filter).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *MongoNotificationRepository) Refresh(ctx context.Context, id string, now time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", models.ErrNotFound)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$set": bson.M{"created_at": now, "is_read": false},
	})
	return err
}

func (r *MongoNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error) {
	filter := bson.M{"recipient_id": recipientID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((page - 1) * limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *MongoNotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
}

func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id, recipientID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", models.ErrNotFound)
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	return err
}
