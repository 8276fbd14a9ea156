package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentKind distinguishes the three content collections.
type ContentKind string

const (
	KindPost  ContentKind = "post"
	KindReel  ContentKind = "reel"
	KindStory ContentKind = "story"
)

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

// MaxCommentLength is the comment size limit, counted in runes.
const MaxCommentLength = 500

// MediaAsset is an uploaded media object. DeleteHandle is the storage object
// name used for best-effort deletion; empty for placeholder URLs.
type MediaAsset struct {
	URL          string `json:"url" bson:"url"`
	Type         string `json:"type" bson:"type"` // "image" or "video"
	DeleteHandle string `json:"-" bson:"delete_handle,omitempty"`
}

// Comment is an embedded, append-only comment on a content item.
type Comment struct {
	ID        string    `json:"id" bson:"id"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// View is an embedded view record. Stories keep at most one per viewer;
// posts and reels record every view event.
type View struct {
	ViewerID string    `json:"viewer_id" bson:"viewer_id"`
	ViewedAt time.Time `json:"viewed_at" bson:"viewed_at"`
}

// ContentItem is a post, reel, or story stored in MongoDB. Likes, comments,
// and views are embedded arrays on the owning document.
type ContentItem struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Kind     ContentKind        `json:"kind" bson:"kind"`
	OwnerID  string             `json:"owner_id" bson:"owner_id"`
	Caption  string             `json:"caption,omitempty" bson:"caption,omitempty"`
	Media    []MediaAsset       `json:"media" bson:"media"`
	Likes    []string           `json:"likes" bson:"likes"`
	Comments []Comment          `json:"comments" bson:"comments"`
	Views    []View             `json:"views" bson:"views"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Story only.
	ExpiresAt time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	IsActive  bool      `json:"is_active,omitempty" bson:"is_active,omitempty"`
}

// LikedBy reports whether userID is in the like set.
func (c *ContentItem) LikedBy(userID string) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ViewedBy reports whether viewerID appears in the views list.
func (c *ContentItem) ViewedBy(viewerID string) bool {
	for _, v := range c.Views {
		if v.ViewerID == viewerID {
			return true
		}
	}
	return false
}

// Expired reports whether a story is no longer live at the given instant.
// The boundary is inclusive: expires_at == now counts as expired.
func (c *ContentItem) Expired(now time.Time) bool {
	if c.Kind != KindStory {
		return false
	}
	return !c.ExpiresAt.After(now) || !c.IsActive
}

// CreatePostRequest defines the non-file fields of the multipart post upload.
type CreatePostRequest struct {
	Caption string `json:"caption" form:"caption" validate:"omitempty,max=2200"`
}

// CreateReelRequest defines the non-file fields of the multipart reel upload.
type CreateReelRequest struct {
	Caption string `json:"caption" form:"caption" validate:"omitempty,max=2200"`
}

// CreateStoryRequest defines the non-file fields of the multipart story upload.
type CreateStoryRequest struct {
	Caption string `json:"caption" form:"caption" validate:"omitempty,max=2200"`
}

// CreateCommentRequest defines the request body for commenting on content.
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}
