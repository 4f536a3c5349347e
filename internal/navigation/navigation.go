// Package navigation maps calendar locations to and from URL paths of the
// form /season/{season}/tickets/{ticketType}[/game/{gameId}].
package navigation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/iliyamo/hammers-calendar/internal/model"
)

// Constants are the values every navigation decision depends on: the
// seasons that exist and the ticket types on offer.  They are passed
// explicitly rather than read from package state.
type Constants struct {
	Seasons     []int
	TicketTypes []model.TicketType
}

// LatestSeason returns the highest season, or 0 if there are none.
func (c Constants) LatestSeason() int {
	latest := 0
	for _, s := range c.Seasons {
		if s > latest {
			latest = s
		}
	}
	return latest
}

// DefaultTicketType returns the ticket type flagged as default, falling
// back to the first one.
func (c Constants) DefaultTicketType() model.TicketType {
	for _, tt := range c.TicketTypes {
		if tt.Default {
			return tt
		}
	}
	if len(c.TicketTypes) > 0 {
		return c.TicketTypes[0]
	}
	return model.TicketType{}
}

// TicketType looks a ticket type up by name.
func (c Constants) TicketType(name string) (model.TicketType, bool) {
	for _, tt := range c.TicketTypes {
		if tt.Name == name {
			return tt, true
		}
	}
	return model.TicketType{}, false
}

// Route is a location in the calendar.  GameID is 0 on the season view.
type Route struct {
	Season     int
	TicketType string
	GameID     uint64
}

// Default is where unknown paths are redirected to: the latest season seen
// with the default ticket type.
func Default(c Constants) Route {
	return Route{Season: c.LatestSeason(), TicketType: c.DefaultTicketType().Name}
}

// Parse resolves path to a route.  Paths that do not name a season and a
// known ticket type resolve to Default and ok is false, meaning the caller
// should redirect.  A leading "#" (browser hash routes) is ignored.
func Parse(c Constants, path string) (r Route, ok bool) {
	path = strings.Trim(strings.TrimPrefix(strings.TrimSpace(path), "#"), "/")
	parts := strings.Split(path, "/")
	if len(parts) != 4 && len(parts) != 6 {
		return Default(c), false
	}
	if parts[0] != "season" || parts[2] != "tickets" {
		return Default(c), false
	}
	season, err := strconv.Atoi(parts[1])
	if err != nil || season <= 0 {
		return Default(c), false
	}
	if _, known := c.TicketType(parts[3]); !known {
		return Default(c), false
	}
	r = Route{Season: season, TicketType: parts[3]}
	if len(parts) == 6 {
		if parts[4] != "game" {
			return Default(c), false
		}
		id, err := strconv.ParseUint(parts[5], 10, 64)
		if err != nil || id == 0 {
			return Default(c), false
		}
		r.GameID = id
	}
	return r, true
}

// Path renders the route.
func (r Route) Path() string {
	p := "/season/" + strconv.Itoa(r.Season) + "/tickets/" + r.TicketType
	if r.GameID != 0 {
		p += "/game/" + strconv.FormatUint(r.GameID, 10)
	}
	return p
}

// AlterSeason moves to another season, keeping the ticket type and
// leaving any game view.
func (r Route) AlterSeason(season int) Route {
	return Route{Season: season, TicketType: r.TicketType}
}

// AlterTicketType switches ticket type within the season, leaving any game
// view.
func (r Route) AlterTicketType(tt model.TicketType) Route {
	return Route{Season: r.Season, TicketType: tt.Name}
}

// GoToGame opens a game of the current season and ticket type.
func (r Route) GoToGame(g model.Game) Route {
	return Route{Season: r.Season, TicketType: r.TicketType, GameID: g.ID}
}

// SeasonSlider is one entry of the season picker.
type SeasonSlider struct {
	Year   int
	Active bool
}

// TicketTypeSlider is one entry of the ticket type picker.
type TicketTypeSlider struct {
	TicketType model.TicketType
	Active     bool
}

// Sliders builds both pickers for r: seasons newest first, ticket types in
// configured order, each with the current one marked active.
func Sliders(c Constants, r Route) ([]SeasonSlider, []TicketTypeSlider) {
	years := append([]int(nil), c.Seasons...)
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	seasons := make([]SeasonSlider, 0, len(years))
	for _, y := range years {
		seasons = append(seasons, SeasonSlider{Year: y, Active: y == r.Season})
	}
	types := make([]TicketTypeSlider, 0, len(c.TicketTypes))
	for _, tt := range c.TicketTypes {
		types = append(types, TicketTypeSlider{TicketType: tt, Active: tt.Name == r.TicketType})
	}
	return seasons, types
}
