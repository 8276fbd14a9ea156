package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lumora-app/backend/internal/media"
	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

// ReelHandler handles HTTP requests related to reels
type ReelHandler struct {
	reelRepository repositories.ContentRepository
	uploader       media.Uploader
}

// NewReelHandler creates a new ReelHandler
func NewReelHandler(reelRepo repositories.ContentRepository, uploader media.Uploader) *ReelHandler {
	return &ReelHandler{reelRepository: reelRepo, uploader: uploader}
}

// RegisterReelRoutes registers reel-related routes
func (h *ReelHandler) RegisterReelRoutes(g *echo.Group) {
	g.POST("/reels", h.CreateReel)
	g.GET("/reels", h.GetReels)
	g.GET("/reels/:id", h.GetReel)
	g.DELETE("/reels/:id", h.DeleteReel)
}

// CreateReel creates a new reel from a multipart video upload
func (h *ReelHandler) CreateReel(c echo.Context) error {
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	fileHeader, err := c.FormFile("media")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Media file is required")
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video") {
		return echo.NewHTTPError(http.StatusBadRequest, "Reels accept a single video")
	}

	req := models.CreateReelRequest{Caption: c.FormValue("caption")}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read media file")
	}
	defer src.Close()

	url, handle, err := h.uploader.Upload(c.Request().Context(), src, fileHeader.Filename, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	reel := &models.ContentItem{
		OwnerID:   actor,
		Caption:   req.Caption,
		Media:     []models.MediaAsset{{URL: url, Type: "video", DeleteHandle: handle}},
		CreatedAt: timeNow(),
	}
	if err := h.reelRepository.Insert(c.Request().Context(), reel); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"reel": reel}})
}

// GetReels lists reels across all users, newest first
func (h *ReelHandler) GetReels(c echo.Context) error {
	skip, limit := paginationParams(c)
	reels, err := h.reelRepository.ListByOwners(c.Request().Context(), nil, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"reels": reels}})
}

// GetReel retrieves a reel by ID
func (h *ReelHandler) GetReel(c echo.Context) error {
	reel, err := h.reelRepository.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"reel": reel}})
}

// DeleteReel deletes the caller's reel, attempting media cleanup first
func (h *ReelHandler) DeleteReel(c echo.Context) error {
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	reel, err := h.reelRepository.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if reel.OwnerID != actor {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this reel")
	}

	for _, asset := range reel.Media {
		if asset.DeleteHandle == "" {
			continue
		}
		if err := h.uploader.Delete(c.Request().Context(), asset.DeleteHandle); err != nil {
			log.Printf("reels: failed to delete media %q: %v", asset.DeleteHandle, err)
		}
	}

	if err := h.reelRepository.Delete(c.Request().Context(), reel.ID.Hex()); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
