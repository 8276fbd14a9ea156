package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds. These are the only events that produce notifications.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// DedupWindow is the rolling period within which a repeated
// (recipient, actor, kind, subject) event refreshes the existing
// notification instead of inserting a new one.
const DedupWindow = 24 * time.Hour

// Notification is a user notification stored in MongoDB.
type Notification struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID string             `json:"recipient_id" bson:"recipient_id"`
	ActorID     string             `json:"actor_id" bson:"actor_id"`
	Kind        string             `json:"kind" bson:"kind"` // like, comment, follow
	SubjectID   string             `json:"subject_id,omitempty" bson:"subject_id,omitempty"`
	Message     string             `json:"message" bson:"message"`
	IsRead      bool               `json:"is_read" bson:"is_read"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
