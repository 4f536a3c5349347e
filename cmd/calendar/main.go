// Command calendar browses the season calendar and marks attendance from
// the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/hammers-calendar/internal/attendance"
	"github.com/iliyamo/hammers-calendar/internal/client"
	"github.com/iliyamo/hammers-calendar/internal/config"
	"github.com/iliyamo/hammers-calendar/internal/navigation"
)

// app is what every subcommand needs once flags are parsed.
type app struct {
	cfg config.ClientConfig
	api *client.Client
	loc *time.Location
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var baseURL, token, tz string
	var delay time.Duration

	root := &cobra.Command{
		Use:           "calendar",
		Short:         "Season ticket and attendance calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg = config.LoadClientConfig()
			if cmd.Flags().Changed("url") {
				a.cfg.BaseURL = baseURL
			}
			if cmd.Flags().Changed("token") {
				a.cfg.Token = token
			}
			if cmd.Flags().Changed("delay") {
				a.cfg.AttendDelay = delay
			}
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("time zone %q: %w", tz, err)
			}
			a.loc = loc
			a.api, err = client.New(a.cfg, nil)
			return err
		},
	}
	root.PersistentFlags().StringVar(&baseURL, "url", "", "calendar API root (default $CALENDAR_URL)")
	root.PersistentFlags().StringVar(&token, "token", "", "access token (default $CALENDAR_TOKEN)")
	root.PersistentFlags().DurationVar(&delay, "delay", 0, "pause before sending an attendance update (default $ATTEND_DELAY)")
	root.PersistentFlags().StringVar(&tz, "tz", "Europe/London", "time zone kick-off times are shown in")

	root.AddCommand(newSeasonsCmd(a), newShowCmd(a), newToggleCmd(a, attendance.Attend), newToggleCmd(a, attendance.Unattend))
	return root
}

// constants fetches the season list the navigation works from.
func (a *app) constants(cmd *cobra.Command) (navigation.Constants, error) {
	seasons, err := a.api.Seasons(cmd.Context())
	if err != nil {
		return navigation.Constants{}, fmt.Errorf("load seasons: %w", err)
	}
	c := navigation.Constants{TicketTypes: a.cfg.TicketTypes}
	for _, s := range seasons {
		c.Seasons = append(c.Seasons, s.Year)
	}
	return c, nil
}

func main() {
	log.SetFlags(0)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// Failed toggles have already been reported by the notifier.
		var uerr *attendance.UpdateError
		if !errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, "calendar:", err)
		}
		os.Exit(1)
	}
}
