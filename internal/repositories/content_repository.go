package repositories

import (
	"context"
	"fmt"

	"github.com/lumora-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContentRepository defines the operations shared by posts, reels, and stories.
// Engagement mutations use the store's native array operators so a single
// round trip never reads-modifies-writes the whole document.
type ContentRepository interface {
	Insert(ctx context.Context, item *models.ContentItem) error
	GetByID(ctx context.Context, id string) (*models.ContentItem, error)
	Delete(ctx context.Context, id string) error
	ListByOwners(ctx context.Context, ownerIDs []string, skip, limit int64) ([]models.ContentItem, error)
	AddLike(ctx context.Context, id, userID string) error
	RemoveLike(ctx context.Context, id, userID string) error
	AppendComment(ctx context.Context, id string, comment models.Comment) error
	AppendView(ctx context.Context, id string, view models.View) error
	// AppendViewOnce records the view only if the viewer has no prior view on
	// the document. Returns whether a record was added.
	AppendViewOnce(ctx context.Context, id string, view models.View) (bool, error)
}

// MongoContentRepository implements ContentRepository over a single MongoDB
// collection holding one content kind.
type MongoContentRepository struct {
	collection *mongo.Collection
	kind       models.ContentKind
}

// NewMongoContentRepository creates a repository bound to the named collection.
func NewMongoContentRepository(db *mongo.Database, collection string, kind models.ContentKind) *MongoContentRepository {
	return &MongoContentRepository{collection: db.Collection(collection), kind: kind}
}

func (r *MongoContentRepository) objectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s ID format: %w", r.kind, models.ErrNotFound)
	}
	return objID, nil
}

// Insert stores a new content item. Embedded arrays start empty, never nil,
// so array operators always have something to push onto.
func (r *MongoContentRepository) Insert(ctx context.Context, item *models.ContentItem) error {
	item.ID = primitive.NewObjectID()
	item.Kind = r.kind
	if item.Likes == nil {
		item.Likes = []string{}
	}
	if item.Comments == nil {
		item.Comments = []models.Comment{}
	}
	if item.Views == nil {
		item.Views = []models.View{}
	}
	_, err := r.collection.InsertOne(ctx, item)
	return err
}

// GetByID retrieves a content item by its hex ID.
func (r *MongoContentRepository) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	objID, err := r.objectID(id)
	if err != nil {
		return nil, err
	}
	var item models.ContentItem
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%s %s: %w", r.kind, id, models.ErrNotFound)
		}
		return nil, err
	}
	return &item, nil
}

// Delete removes a content item by ID.
func (r *MongoContentRepository) Delete(ctx context.Context, id string) error {
	objID, err := r.objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", r.kind, id, models.ErrNotFound)
	}
	return nil
}

// ListByOwners retrieves items owned by any of the given users, newest first.
// An empty ownerIDs slice lists across all owners.
func (r *MongoContentRepository) ListByOwners(ctx context.Context, ownerIDs []string, skip, limit int64) ([]models.ContentItem, error) {
	filter := bson.M{}
	if len(ownerIDs) > 0 {
		filter["owner_id"] = bson.M{"$in": ownerIDs}
	}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.ContentItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddLike adds userID to the like set. $addToSet keeps the set semantics even
// under concurrent likes from different users.
func (r *MongoContentRepository) AddLike(ctx context.Context, id, userID string) error {
	objID, err := r.objectID(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$addToSet": bson.M{"likes": userID}})
	return err
}

// RemoveLike removes userID from the like set.
func (r *MongoContentRepository) RemoveLike(ctx context.Context, id, userID string) error {
	objID, err := r.objectID(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$pull": bson.M{"likes": userID}})
	return err
}

// AppendComment appends to the comments array.
func (r *MongoContentRepository) AppendComment(ctx context.Context, id string, comment models.Comment) error {
	objID, err := r.objectID(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$push": bson.M{"comments": comment}})
	return err
}

// AppendView unconditionally appends a view record.
func (r *MongoContentRepository) AppendView(ctx context.Context, id string, view models.View) error {
	objID, err := r.objectID(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$push": bson.M{"views": view}})
	return err
}

// AppendViewOnce appends a view record only when the viewer has none yet.
// The viewer filter makes the dedup a single atomic update.
func (r *MongoContentRepository) AppendViewOnce(ctx context.Context, id string, view models.View) (bool, error) {
	objID, err := r.objectID(id)
	if err != nil {
		return false, err
	}
	filter := bson.M{
		"_id":              objID,
		"views.viewer_id": bson.M{"$ne": view.ViewerID},
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"views": view}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
