package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/lumora-app/backend/internal/models"
)

type stubFollowRepository struct {
	deleteErr error
}

func (s *stubFollowRepository) CreateFollow(*models.Follow) error { return nil }
func (s *stubFollowRepository) DeleteFollow(followerID, followingID uint) error {
	return s.deleteErr
}
func (s *stubFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	return false, nil
}
func (s *stubFollowRepository) GetFollowers(userID uint) ([]models.User, error) { return nil, nil }
func (s *stubFollowRepository) GetFollowing(userID uint) ([]models.User, error) { return nil, nil }
func (s *stubFollowRepository) GetFollowingIDs(userID uint) ([]uint, error)     { return nil, nil }

func TestFollowUserRejectsSelf(t *testing.T) {
	h := NewFollowHandler(nil, nil, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("user", &models.JwtCustomClaims{UserID: 7})

	err := h.FollowUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("self follow: got %v, want 400", err)
	}
}

func TestUnfollowUserNotFollowing(t *testing.T) {
	followRepo := &stubFollowRepository{
		deleteErr: fmt.Errorf("follow relationship not found: %w", models.ErrNotFound),
	}
	h := NewFollowHandler(followRepo, nil, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodDelete, "/", strings.NewReader(""))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("8")
	c.Set("user", &models.JwtCustomClaims{UserID: 7})

	err := h.UnfollowUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("unfollow without relationship: got %v, want 404", err)
	}
}

func TestFollowUserRequiresAuth(t *testing.T) {
	h := NewFollowHandler(nil, nil, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	err := h.FollowUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated follow: got %v, want 401", err)
	}
}
