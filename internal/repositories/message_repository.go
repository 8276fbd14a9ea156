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

// ConversationRepository defines the interface for direct-message threads.
type ConversationRepository interface {
	FindOrCreate(ctx context.Context, userA, userB string) (*models.Conversation, error)
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	ListByParticipant(ctx context.Context, userID string) ([]models.Conversation, error)
	TouchLastMessage(ctx context.Context, id string, at time.Time) error
}

// MessageRepository defines the interface for messages inside a conversation.
type MessageRepository interface {
	Insert(ctx context.Context, message *models.Message) error
	ListByConversation(ctx context.Context, conversationID string, skip, limit int64) ([]models.Message, error)
}

// MongoConversationRepository implements ConversationRepository.
type MongoConversationRepository struct {
	collection *mongo.Collection
}

// NewMongoConversationRepository creates the conversations repository.
func NewMongoConversationRepository(db *mongo.Database) *MongoConversationRepository {
	return &MongoConversationRepository{collection: db.Collection("conversations")}
}

// FindOrCreate returns the thread between the two users, creating it when
// none exists. Participants are matched regardless of order.
func (r *MongoConversationRepository) FindOrCreate(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	filter := bson.M{"participants": bson.M{"$all": bson.A{userA, userB}, "$size": 2}}
	var conv models.Conversation
	err := r.collection.FindOne(ctx, filter).Decode(&conv)
	if err == nil {
		return &conv, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	now := time.Now()
	conv = models.Conversation{
		ID:            primitive.NewObjectID(),
		Participants:  []string{userA, userB},
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if _, err := r.collection.InsertOne(ctx, conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *MongoConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID format: %w", models.ErrNotFound)
	}
	var conv models.Conversation
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&conv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("conversation %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	return &conv, nil
}

func (r *MongoConversationRepository) ListByParticipant(ctx context.Context, userID string) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *MongoConversationRepository) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid conversation ID format: %w", models.ErrNotFound)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"last_message_at": at}})
	return err
}

// MongoMessageRepository implements MessageRepository.
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates the messages repository.
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

func (r *MongoMessageRepository) Insert(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, message)
	return err
}

func (r *MongoMessageRepository) ListByConversation(ctx context.Context, conversationID string, skip, limit int64) ([]models.Message, error) {
	objID, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID format: %w", models.ErrNotFound)
	}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": objID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
