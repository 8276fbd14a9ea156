package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lumora-app/backend/internal/engagement"
	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

func newTestEngagementHandler(t *testing.T) (*EngagementHandler, *repositories.MemoryContentRepository, *repositories.MemoryStoryRepository) {
	t.Helper()
	posts := repositories.NewMemoryContentRepository(models.KindPost)
	reels := repositories.NewMemoryContentRepository(models.KindReel)
	stories := repositories.NewMemoryStoryRepository()
	ledger := engagement.NewLedger(posts, reels, stories, nil)
	return NewEngagementHandler(ledger, posts, reels, stories), posts, stories
}

func newEngagementContext(e *echo.Echo, method, body string, userID uint, kind, id string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/", reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind", "id")
	c.SetParamValues(kind, id)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("response not successful: %s", rec.Body.String())
	}
	return envelope.Data
}

func TestToggleLikeEndpoint(t *testing.T) {
	h, posts, _ := newTestEngagementHandler(t)
	e := echo.New()

	post := &models.ContentItem{OwnerID: "1", CreatedAt: time.Now()}
	if err := posts.Insert(context.Background(), post); err != nil {
		t.Fatalf("insert post: %v", err)
	}

	c, rec := newEngagementContext(e, http.MethodPost, "", 2, "posts", post.ID.Hex())
	if err := h.ToggleLike(c); err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeData(t, rec)
	if data["liked"] != true {
		t.Fatalf("liked = %v, want true", data["liked"])
	}
	if data["like_count"].(float64) != 1 {
		t.Fatalf("like_count = %v, want 1", data["like_count"])
	}

	c, rec = newEngagementContext(e, http.MethodPost, "", 2, "posts", post.ID.Hex())
	if err := h.ToggleLike(c); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	data = decodeData(t, rec)
	if data["liked"] != false || data["like_count"].(float64) != 0 {
		t.Fatalf("second toggle: got %v, want unliked with count 0", data)
	}
}

func TestToggleLikeEndpointErrors(t *testing.T) {
	h, _, _ := newTestEngagementHandler(t)
	e := echo.New()

	// Missing content.
	c, _ := newEngagementContext(e, http.MethodPost, "", 2, "posts", "does-not-exist")
	err := h.ToggleLike(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("missing post: got %v, want 404", err)
	}

	// Unknown kind segment.
	c, _ = newEngagementContext(e, http.MethodPost, "", 2, "albums", "x")
	err = h.ToggleLike(c)
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("unknown kind: got %v, want 404", err)
	}

	// No claims on the context.
	c, _ = newEngagementContext(e, http.MethodPost, "", 0, "posts", "x")
	err = h.ToggleLike(c)
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated: got %v, want 401", err)
	}
}

func TestAddCommentEndpoint(t *testing.T) {
	h, posts, _ := newTestEngagementHandler(t)
	e := echo.New()

	post := &models.ContentItem{OwnerID: "1", CreatedAt: time.Now()}
	if err := posts.Insert(context.Background(), post); err != nil {
		t.Fatalf("insert post: %v", err)
	}

	c, rec := newEngagementContext(e, http.MethodPost, `{"text":"great photo"}`, 2, "posts", post.ID.Hex())
	if err := h.AddComment(c); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	data := decodeData(t, rec)
	if data["comment_count"].(float64) != 1 {
		t.Fatalf("comment_count = %v, want 1", data["comment_count"])
	}

	// Blank text fails validation before reaching the ledger.
	c, _ = newEngagementContext(e, http.MethodPost, `{"text":""}`, 2, "posts", post.ID.Hex())
	err := h.AddComment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("empty comment: got %v, want 400", err)
	}
}

func TestRecordViewEndpointExpiredStory(t *testing.T) {
	h, _, stories := newTestEngagementHandler(t)
	e := echo.New()

	created := time.Now().Add(-25 * time.Hour)
	story := &models.ContentItem{
		OwnerID:   "1",
		CreatedAt: created,
		ExpiresAt: created.Add(models.StoryTTL),
		IsActive:  true,
	}
	if err := stories.Insert(context.Background(), story); err != nil {
		t.Fatalf("insert story: %v", err)
	}

	c, _ := newEngagementContext(e, http.MethodPost, "", 2, "stories", story.ID.Hex())
	err := h.RecordView(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusGone {
		t.Fatalf("expired story view: got %v, want 410", err)
	}
}
