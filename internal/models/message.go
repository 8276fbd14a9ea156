package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is a direct-message thread between two users.
type Conversation struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Participants  []string           `json:"participants" bson:"participants"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	LastMessageAt time.Time          `json:"last_message_at" bson:"last_message_at"`
}

// HasParticipant reports whether userID belongs to the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message is a single direct message inside a conversation.
type Message struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	SenderID       string             `json:"sender_id" bson:"sender_id"`
	Text           string             `json:"text" bson:"text"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// SendMessageRequest defines the request body for sending a message.
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// OpenConversationRequest defines the request body for opening a thread.
type OpenConversationRequest struct {
	ParticipantID uint `json:"participant_id" validate:"required"`
}
