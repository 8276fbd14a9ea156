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

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.ContentRepository
	uploader       media.Uploader
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.ContentRepository, uploader media.Uploader) *PostHandler {
	return &PostHandler{postRepository: postRepo, uploader: uploader}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/users/:id/posts", h.GetPostsByUser)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post from a multipart image upload
func (h *PostHandler) CreatePost(c echo.Context) error {
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	fileHeader, err := c.FormFile("media")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Media file is required")
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image") {
		return echo.NewHTTPError(http.StatusBadRequest, "Posts accept a single image")
	}

	req := models.CreatePostRequest{Caption: c.FormValue("caption")}
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

	post := &models.ContentItem{
		OwnerID:   actor,
		Caption:   req.Caption,
		Media:     []models.MediaAsset{{URL: url, Type: "image", DeleteHandle: handle}},
		CreatedAt: timeNow(),
	}
	if err := h.postRepository.Insert(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"post": post}})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"post": post}})
}

// GetPostsByUser retrieves a user's posts, newest first
func (h *PostHandler) GetPostsByUser(c echo.Context) error {
	skip, limit := paginationParams(c)
	posts, err := h.postRepository.ListByOwners(c.Request().Context(), []string{c.Param("id")}, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"posts": posts}})
}

// DeletePost deletes the caller's post, attempting media cleanup first
func (h *PostHandler) DeletePost(c echo.Context) error {
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.postRepository.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if post.OwnerID != actor {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	for _, asset := range post.Media {
		if asset.DeleteHandle == "" {
			continue
		}
		if err := h.uploader.Delete(c.Request().Context(), asset.DeleteHandle); err != nil {
			log.Printf("posts: failed to delete media %q: %v", asset.DeleteHandle, err)
		}
	}

	if err := h.postRepository.Delete(c.Request().Context(), post.ID.Hex()); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
