package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lumora-app/backend/internal/media"
	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
	"github.com/lumora-app/backend/internal/stories"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	lifecycle      *stories.Lifecycle
	uploader       media.Uploader
	userRepository repositories.UserRepository
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(lifecycle *stories.Lifecycle, uploader media.Uploader, userRepo repositories.UserRepository) *StoryHandler {
	return &StoryHandler{
		lifecycle:      lifecycle,
		uploader:       uploader,
		userRepository: userRepo,
	}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.POST("/stories", h.CreateStory)
	g.GET("/stories", h.GetStories)
	g.DELETE("/stories/:id", h.DeactivateStory)
}

// StoryGroupResponse is one owner's group of active stories, enriched with
// the owner's compact profile.
type StoryGroupResponse struct {
	Owner     models.UserCompact   `json:"owner"`
	Stories   []models.ContentItem `json:"stories"`
	HasViewed bool                 `json:"has_viewed"`
}

// CreateStory uploads the media blob and creates a story expiring in 24 hours
func (h *StoryHandler) CreateStory(c echo.Context) error {
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	fileHeader, err := c.FormFile("media")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Media file is required")
	}

	req := models.CreateStoryRequest{Caption: c.FormValue("caption")}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read media file")
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, handle, err := h.uploader.Upload(c.Request().Context(), src, fileHeader.Filename, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	mediaType := "image"
	if strings.HasPrefix(contentType, "video") {
		mediaType = "video"
	}
	asset := models.MediaAsset{URL: url, Type: mediaType, DeleteHandle: handle}

	story, err := h.lifecycle.Create(c.Request().Context(), actor, asset, req.Caption)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"story": story}})
}

// GetStories returns active stories grouped by owner, newest group first
func (h *StoryHandler) GetStories(c echo.Context) error {
	actor := actorIDFromContext(c)

	groups, flat, err := h.lifecycle.ListActiveGroupedByOwner(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}

	// Enrich groups with owner profiles
	userCache := make(map[string]models.UserCompact)
	enriched := make([]StoryGroupResponse, 0, len(groups))
	for _, group := range groups {
		owner, ok := userCache[group.OwnerID]
		if !ok {
			if id, parseErr := strconv.ParseUint(group.OwnerID, 10, 32); parseErr == nil {
				if user, err := h.userRepository.GetUserByID(uint(id)); err == nil {
					owner = user.ToCompact()
				}
			}
			userCache[group.OwnerID] = owner
		}
		enriched = append(enriched, StoryGroupResponse{
			Owner:     owner,
			Stories:   group.Stories,
			HasViewed: group.HasViewed,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"stories":      enriched,
			"flat_stories": flat,
		},
	})
}

// DeactivateStory marks the caller's story inactive; the purge sweep removes it later
func (h *StoryHandler) DeactivateStory(c echo.Context) error {
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.lifecycle.Deactivate(c.Request().Context(), c.Param("id"), actor); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{}})
}
