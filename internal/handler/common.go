package handler // handler defines http handlers

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hammers-calendar/internal/model"
	"github.com/iliyamo/hammers-calendar/internal/repository"
)

// GameStore is the game persistence the handlers need.
type GameStore interface {
	Seasons(ctx context.Context) ([]int, error)
	LatestSeason(ctx context.Context) (int, error)
	ListBySeason(ctx context.Context, season int, userID uint64) ([]model.Game, error)
	GetByID(ctx context.Context, id, userID uint64) (*model.Game, error)
	Save(ctx context.Context, g *model.Game) error
	Search(ctx context.Context, q repository.GameSearchQuery, userID uint64) ([]model.Game, int64, error)
}

// AttendanceStore records attendance and reports the stored state.
type AttendanceStore interface {
	Set(ctx context.Context, userID, gameID uint64, attended bool) (bool, error)
	CountForSeason(ctx context.Context, userID uint64, season int) (int, error)
}

// CacheInvalidator drops cached listings for a user.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID uint64) error
}

// currentUser returns the authenticated user id set by the JWT middleware.
// ok is false for anonymous requests.
func currentUser(c echo.Context) (uint64, bool) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, t != 0
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		return n, err == nil && n != 0
	}
	return 0, false
}

// currentUsername returns the display name carried by the access token.
func currentUsername(c echo.Context) string {
	s, _ := c.Get("username").(string)
	return s
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	return n, err == nil && n != 0
}
