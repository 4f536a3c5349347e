package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hammers-calendar/internal/calendar"
	"github.com/iliyamo/hammers-calendar/internal/model"
	"github.com/iliyamo/hammers-calendar/internal/navigation"
)

func newShowCmd(a *app) *cobra.Command {
	var season int
	var tickets string
	var gameID uint64

	cmd := &cobra.Command{
		Use:   "show [/season/{season}/tickets/{type}[/game/{id}]]",
		Short: "Show a season's games by month, or a single game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.constants(cmd)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			route, ok := navigation.Parse(c, path)
			if !ok && path != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "unknown location %q, showing %s\n", path, route.Path())
			}
			if season != 0 {
				route = route.AlterSeason(season)
			}
			if tickets != "" {
				tt, known := c.TicketType(tickets)
				if !known {
					return fmt.Errorf("unknown ticket type %q", tickets)
				}
				route = route.AlterTicketType(tt)
			}
			if gameID != 0 {
				route = route.GoToGame(model.Game{ID: gameID})
			}
			tt, _ := c.TicketType(route.TicketType)
			out := cmd.OutOrStdout()

			if route.GameID != 0 {
				g, err := a.api.Game(cmd.Context(), route.GameID)
				if err != nil {
					return fmt.Errorf("load game %d: %w", route.GameID, err)
				}
				printGame(out, *g, tt, a.loc)
				return nil
			}

			games, err := a.api.Games(cmd.Context(), route.Season)
			if err != nil {
				return fmt.Errorf("load games for %d: %w", route.Season, err)
			}
			fmt.Fprintf(out, "%d, %s\n", route.Season, calendar.DisplayTicketType(tt))
			for _, m := range calendar.GroupByMonth(games, a.loc) {
				fmt.Fprintf(out, "\n%s\n", m.Name)
				for _, g := range m.Games {
					fmt.Fprintf(out, "  %s\n", gameLine(g, tt, a.loc))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "switch to another season")
	cmd.Flags().StringVar(&tickets, "tickets", "", "switch ticket type, e.g. general")
	cmd.Flags().Uint64Var(&gameID, "game", 0, "open one game of the season")
	return cmd
}

func gameLine(g model.Game, tt model.TicketType, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %-22s ", g.ID, calendar.FormatDate(g.At.In(loc), false))
	if g.Location == model.Home {
		fmt.Fprintf(&b, "v %s", g.Opponents)
	} else {
		fmt.Fprintf(&b, "@ %s", g.Opponents)
	}
	fmt.Fprintf(&b, " (%s)", g.Competition.Name())
	if g.Result != "" {
		fmt.Fprintf(&b, " %s", g.Result)
	}
	if on, ok := calendar.TicketsOnSale(g, tt.Name); ok {
		fmt.Fprintf(&b, ", on sale %s", calendar.FormatDate(on.In(loc), true))
	}
	if g.Attended {
		b.WriteString(" *attended*")
	}
	return b.String()
}

func printGame(w io.Writer, g model.Game, tt model.TicketType, loc *time.Location) {
	venue := "at " + calendar.Possessive(g.Opponents)
	if g.Location == model.Home {
		venue = "home"
	}
	fmt.Fprintf(w, "%s (%s, %s)\n", g.Opponents, g.Competition.Name(), venue)
	fmt.Fprintf(w, "kick-off:   %s %d\n", calendar.FormatDate(g.At.In(loc), true), g.At.In(loc).Year())
	if g.Result != "" {
		fmt.Fprintf(w, "result:     %s\n", g.Result)
	}
	if g.Attendance != nil {
		fmt.Fprintf(w, "crowd:      %d\n", *g.Attendance)
	}
	if g.TelevisionChannel != "" {
		fmt.Fprintf(w, "tv:         %s\n", g.TelevisionChannel)
	}
	if g.MatchReport != "" {
		fmt.Fprintf(w, "report:     %s\n", g.MatchReport)
	}
	if on, ok := calendar.TicketsOnSale(g, tt.Name); ok {
		fmt.Fprintf(w, "%s on sale %s\n", calendar.DisplayTicketType(tt), calendar.FormatDate(on.In(loc), true))
	}
	fmt.Fprintf(w, "attended:   %t\n", g.Attended)
}
