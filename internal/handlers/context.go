package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lumora-app/backend/internal/models"
)

// timeNow is indirected for handler tests.
var timeNow = time.Now

// getUserIDFromContext returns the authenticated user's ID, or 0 when the
// request carries no valid claims.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}

// actorIDFromContext returns the authenticated user's ID in the string form
// stored on MongoDB documents, or "" when unauthenticated.
func actorIDFromContext(c echo.Context) string {
	id := getUserIDFromContext(c)
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

// contentKindFromParam maps the :kind path segment to a content kind.
func contentKindFromParam(param string) (models.ContentKind, bool) {
	switch param {
	case "posts":
		return models.KindPost, true
	case "reels":
		return models.KindReel, true
	case "stories":
		return models.KindStory, true
	default:
		return "", false
	}
}

// pageLimitParams parses page/limit query params with sane bounds.
func pageLimitParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit
}

// paginationParams converts page/limit into skip/limit for Mongo queries.
func paginationParams(c echo.Context) (skip, limit int64) {
	page, l := pageLimitParams(c)
	return int64((page - 1) * l), int64(l)
}

// httpError maps the core sentinel errors to HTTP statuses.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrExpired):
		return echo.NewHTTPError(http.StatusGone, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
