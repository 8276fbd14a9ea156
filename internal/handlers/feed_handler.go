package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository   repositories.ContentRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.ContentRepository, userRepo repositories.UserRepository, followRepo repositories.FollowRepository) *FeedHandler {
	return &FeedHandler{
		postRepository:   postRepo,
		userRepository:   userRepo,
		followRepository: followRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// EnrichedPost is a post with author info and user-specific flags
type EnrichedPost struct {
	models.ContentItem
	Author       models.UserCompact `json:"author"`
	IsLiked      bool               `json:"is_liked"`
	LikeCount    int                `json:"like_count"`
	CommentCount int                `json:"comment_count"`
	ViewCount    int                `json:"view_count"`
}

// GetFeed returns recent posts from followed users plus the caller's own
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	actor := actorIDFromContext(c)

	followingIDs, err := h.followRepository.GetFollowingIDs(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ownerIDs := make([]string, 0, len(followingIDs)+1)
	ownerIDs = append(ownerIDs, actor)
	for _, id := range followingIDs {
		ownerIDs = append(ownerIDs, strconv.FormatUint(uint64(id), 10))
	}

	skip, limit := paginationParams(c)
	posts, err := h.postRepository.ListByOwners(c.Request().Context(), ownerIDs, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Build author map
	userMap := make(map[string]models.UserCompact)
	for _, p := range posts {
		if _, ok := userMap[p.OwnerID]; ok {
			continue
		}
		if id, parseErr := strconv.ParseUint(p.OwnerID, 10, 32); parseErr == nil {
			if user, err := h.userRepository.GetUserByID(uint(id)); err == nil {
				userMap[p.OwnerID] = user.ToCompact()
			}
		}
	}

	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		enriched[i] = EnrichedPost{
			ContentItem:  p,
			Author:       userMap[p.OwnerID],
			IsLiked:      p.LikedBy(actor),
			LikeCount:    len(p.Likes),
			CommentCount: len(p.Comments),
			ViewCount:    len(p.Views),
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": enriched},
	})
}
