// Package handler exposes the HTTP handlers of the calendar API.  This file
// serves the read side: the bootstrap document, the season list and games.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hammers-calendar/internal/model"
	"github.com/iliyamo/hammers-calendar/internal/repository"
)

// CalendarHandler serves seasons and games.  Attended flags are computed for
// the authenticated user and are false for guests.
type CalendarHandler struct {
	Games GameStore
}

// NewCalendarHandler panics if games is nil.
func NewCalendarHandler(games GameStore) *CalendarHandler {
	if games == nil {
		panic("nil game store passed to NewCalendarHandler")
	}
	return &CalendarHandler{Games: games}
}

// Base handles /base.json: the latest season and the caller's name (null
// for guests).
func (h *CalendarHandler) Base(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	year, err := h.Games.LatestSeason(ctx)
	if err != nil {
		c.Logger().Errorf("calendar: latest season: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	base := model.Base{Year: year}
	if _, ok := currentUser(c); ok {
		if name := currentUsername(c); name != "" {
			base.Name = &name
		}
	}
	return c.JSON(http.StatusOK, base)
}

// Seasons handles /seasons.json.
func (h *CalendarHandler) Seasons(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	years, err := h.Games.Seasons(ctx)
	if err != nil {
		c.Logger().Errorf("calendar: seasons: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]model.Season, 0, len(years))
	for _, y := range years {
		out = append(out, model.Season{Year: y})
	}
	return c.JSON(http.StatusOK, out)
}

// ListGames handles /:season/games.json.  The route parameter may carry the
// ".json" suffix depending on how the router matched it.
func (h *CalendarHandler) ListGames(c echo.Context) error {
	season, err := strconv.Atoi(strings.TrimSuffix(c.Param("season"), ".json"))
	if err != nil || season <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid season"})
	}
	uid, _ := currentUser(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	games, err := h.Games.ListBySeason(ctx, season, uid)
	if err != nil {
		c.Logger().Errorf("calendar: games for %d: %v", season, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, games)
}

// Game handles GET /game/:id.
func (h *CalendarHandler) Game(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid game id"})
	}
	uid, _ := currentUser(c)
	g, err := h.Games.GetByID(c.Request().Context(), id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "game not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, g)
}

// SaveGame handles POST /v1/admin/games (ADMIN).  It inserts a fixture or
// updates the one with the same competition, location, season and
// opponents, and returns it with its id.
func (h *CalendarHandler) SaveGame(c echo.Context) error {
	var g model.Game
	if err := c.Bind(&g); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	g.Opponents = strings.TrimSpace(g.Opponents)
	switch {
	case g.Season <= 0, g.At.IsZero(), g.Opponents == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "season, at and opponents are required"})
	case g.Location != model.Home && g.Location != model.Away:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location must be HOME or AWAY"})
	case g.Competition == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "competition is required"})
	}
	g.ID = 0
	g.Attended = false
	if err := h.Games.Save(c.Request().Context(), &g); err != nil {
		c.Logger().Errorf("calendar: save game: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.JSON(http.StatusOK, g)
}

// Search handles GET /v1/games/search across all seasons.  Filters:
// opponents (substring), competition, location, when=upcoming|played|any;
// paginated with page and page_size.
func (h *CalendarHandler) Search(c echo.Context) error {
	when := strings.ToLower(strings.TrimSpace(c.QueryParam("when")))
	if when == "" {
		when = "upcoming"
	}
	if when != "upcoming" && when != "played" && when != "any" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "when must be upcoming, played or any"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}

	q := repository.GameSearchQuery{
		Opponents:   strings.TrimSpace(c.QueryParam("opponents")),
		Competition: strings.TrimSpace(c.QueryParam("competition")),
		Location:    strings.TrimSpace(c.QueryParam("location")),
		TimeFilter:  when,
		Page:        page,
		PageSize:    ps,
	}
	uid, _ := currentUser(c)
	items, total, err := h.Games.Search(c.Request().Context(), q, uid)
	if err != nil {
		c.Logger().Errorf("calendar: search: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}
