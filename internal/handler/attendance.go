package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hammers-calendar/internal/queue"
	"github.com/iliyamo/hammers-calendar/internal/repository"
	"github.com/iliyamo/hammers-calendar/internal/service"
)

// Directions of an attendance update.  Each has its own endpoint.
const (
	DirectionAttend   = "attend"
	DirectionUnattend = "unattend"
)

// AttendanceHandler serves PUT /attend/:id and PUT /unattend/:id.  The
// response body is the updated game so the client can take the server's
// attended value instead of trusting its own toggle.
type AttendanceHandler struct {
	Games      GameStore
	Attendance AttendanceStore
	Lock       *service.GameLock
	Events     service.EventPublisher
	Cache      CacheInvalidator
}

// NewAttendanceHandler wires the handler.  events and cache may be nil.
func NewAttendanceHandler(games GameStore, att AttendanceStore, lock *service.GameLock, events service.EventPublisher, cache CacheInvalidator) *AttendanceHandler {
	if games == nil || att == nil || lock == nil {
		panic("nil dependency passed to NewAttendanceHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	return &AttendanceHandler{Games: games, Attendance: att, Lock: lock, Events: events, Cache: cache}
}

// Attend marks the current user as attending the game.
func (h *AttendanceHandler) Attend(c echo.Context) error { return h.update(c, DirectionAttend) }

// Unattend clears the current user's attendance at the game.
func (h *AttendanceHandler) Unattend(c echo.Context) error { return h.update(c, DirectionUnattend) }

func (h *AttendanceHandler) update(c echo.Context, direction string) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	gameID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid game id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	release, acquired, err := h.Lock.TryAcquire(ctx, userID, gameID)
	if err != nil {
		c.Logger().Errorf("attendance: lock game %d: %v", gameID, err)
		attendanceUpdates.WithLabelValues(direction, "error").Inc()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock failed"})
	}
	if !acquired {
		attendanceUpdates.WithLabelValues(direction, "busy").Inc()
		return c.JSON(http.StatusConflict, echo.Map{"error": "update already in progress"})
	}
	defer release()

	if _, err := h.Attendance.Set(ctx, userID, gameID, direction == DirectionAttend); err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			attendanceUpdates.WithLabelValues(direction, "not_found").Inc()
			return c.JSON(http.StatusNotFound, echo.Map{"error": "game not found"})
		}
		c.Logger().Errorf("attendance: %s game %d: %v", direction, gameID, err)
		attendanceUpdates.WithLabelValues(direction, "error").Inc()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	game, err := h.Games.GetByID(ctx, gameID, userID)
	if err != nil {
		c.Logger().Errorf("attendance: reload game %d: %v", gameID, err)
		attendanceUpdates.WithLabelValues(direction, "error").Inc()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	attendanceUpdates.WithLabelValues(direction, "ok").Inc()

	if h.Cache != nil {
		if err := h.Cache.InvalidateUser(ctx, userID); err != nil {
			c.Logger().Warnf("attendance: invalidate cache for user %d: %v", userID, err)
		}
	}
	ev := queue.NewAttendanceChangedEvent(userID, currentUsername(c), game.ID, game.Season, game.Opponents, direction, game.Attended)
	if err := h.Events.PublishAttendanceChanged(ctx, ev); err != nil {
		c.Logger().Warnf("attendance: publish event %s: %v", ev.EventID, err)
	}
	return c.JSON(http.StatusOK, game)
}

// Summary handles GET /v1/me/attendance?season=2013: how many games of the
// season the current user attended.  The season defaults to the latest.
func (h *AttendanceHandler) Summary(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var season int
	if raw := c.QueryParam("season"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid season"})
		}
		season = n
	} else {
		latest, err := h.Games.LatestSeason(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		season = latest
	}
	n, err := h.Attendance.CountForSeason(ctx, userID, season)
	if err != nil {
		c.Logger().Errorf("attendance: count for user %d season %d: %v", userID, season, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"season": season, "attended": n})
}
