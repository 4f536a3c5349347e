// Package calendar turns games into what the calendar page shows: months
// of fixtures with short, human dates.
package calendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/hammers-calendar/internal/model"
)

// Month is a heading and the games under it.
type Month struct {
	Name  string // e.g. "August 2013"
	Games []model.Game
}

// GroupByMonth groups games by the month they are played in, as seen in
// loc.  Months appear in the order their first game appears in games, and
// games keep their relative order.  A nil loc means UTC.
func GroupByMonth(games []model.Game, loc *time.Location) []Month {
	if loc == nil {
		loc = time.UTC
	}
	var out []Month
	index := make(map[string]int)
	for _, g := range games {
		name := g.At.In(loc).Format("January 2006")
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Month{Name: name})
		}
		out[i].Games = append(out[i].Games, g)
	}
	return out
}

// FormatDate renders t like "Sat 3rd Aug, 3pm" or, without the month,
// "Tue 21st, 7:45pm".  Minutes are shown only when non-zero.
func FormatDate(t time.Time, includeMonth bool) string {
	if t.IsZero() {
		return ""
	}
	var b strings.Builder
	b.WriteString(t.Format("Mon"))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(t.Day()))
	b.WriteString(ordinal(t.Day()))
	if includeMonth {
		b.WriteString(t.Format(" Jan"))
	}
	b.WriteString(", ")
	b.WriteString(t.Format("3"))
	if t.Minute() != 0 {
		b.WriteString(t.Format(":04"))
	}
	b.WriteString(t.Format("pm"))
	return b.String()
}

func ordinal(day int) string {
	switch {
	case day%10 == 1 && day != 11:
		return "st"
	case day%10 == 2 && day != 12:
		return "nd"
	case day%10 == 3 && day != 13:
		return "rd"
	}
	return "th"
}

// Possessive appends 's, or just ' to names ending in s or x.
func Possessive(name string) string {
	switch {
	case name == "":
		return ""
	case strings.HasSuffix(name, "s"), strings.HasSuffix(name, "x"):
		return name + "'"
	}
	return name + "'s"
}

// DisplayTicketType is the picker label, e.g. "Season tickets".
func DisplayTicketType(tt model.TicketType) string {
	return tt.Label + " tickets"
}

// TicketsOnSale returns when tickets of the given type go on sale for g.
func TicketsOnSale(g model.Game, ticketType string) (time.Time, bool) {
	at, ok := g.Tickets[ticketType]
	return at, ok
}
