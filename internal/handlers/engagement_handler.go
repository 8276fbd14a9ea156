package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lumora-app/backend/internal/engagement"
	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

// EngagementHandler handles like, comment, and view requests for all three
// content kinds.
type EngagementHandler struct {
	ledger *engagement.Ledger
	repos  map[models.ContentKind]repositories.ContentRepository
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(ledger *engagement.Ledger, posts, reels repositories.ContentRepository, stories repositories.StoryRepository) *EngagementHandler {
	return &EngagementHandler{
		ledger: ledger,
		repos: map[models.ContentKind]repositories.ContentRepository{
			models.KindPost:  posts,
			models.KindReel:  reels,
			models.KindStory: stories,
		},
	}
}

// RegisterEngagementRoutes registers engagement routes for posts, reels, and stories
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group) {
	g.POST("/:kind/:id/like", h.ToggleLike)
	g.POST("/:kind/:id/comments", h.AddComment)
	g.GET("/:kind/:id/comments", h.GetComments)
	g.POST("/:kind/:id/view", h.RecordView)
}

// ToggleLike flips the caller's like on a content item
func (h *EngagementHandler) ToggleLike(c echo.Context) error {
	kind, ok := contentKindFromParam(c.Param("kind"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown content kind")
	}
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	liked, likeCount, err := h.ledger.ToggleLike(c.Request().Context(), kind, c.Param("id"), actor)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"liked": liked, "like_count": likeCount},
	})
}

// AddComment appends a comment to a content item
func (h *EngagementHandler) AddComment(c echo.Context) error {
	kind, ok := contentKindFromParam(c.Param("kind"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown content kind")
	}
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, commentCount, err := h.ledger.AddComment(c.Request().Context(), kind, c.Param("id"), actor, req.Text)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    echo.Map{"comment": comment, "comment_count": commentCount},
	})
}

// GetComments returns all comments on a content item, oldest first
func (h *EngagementHandler) GetComments(c echo.Context) error {
	kind, ok := contentKindFromParam(c.Param("kind"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown content kind")
	}

	item, err := h.repos[kind].GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"comments": item.Comments, "comment_count": len(item.Comments)},
	})
}

// RecordView records a view on a content item
func (h *EngagementHandler) RecordView(c echo.Context) error {
	kind, ok := contentKindFromParam(c.Param("kind"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown content kind")
	}
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	viewCount, err := h.ledger.RecordView(c.Request().Context(), kind, c.Param("id"), actor)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"view_count": viewCount},
	})
}
