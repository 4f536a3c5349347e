package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hammers-calendar/internal/attendance"
	"github.com/iliyamo/hammers-calendar/internal/calendar"
)

func newToggleCmd(a *app, dir attendance.Direction) *cobra.Command {
	short := "Mark a game as attended"
	if dir == attendance.Unattend {
		short = "Clear attendance at a game"
	}
	return &cobra.Command{
		Use:   string(dir) + " <game id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid game id %q", args[0])
			}
			g, err := a.api.Game(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("load game %d: %w", id, err)
			}
			tg := attendance.New(a.api, &attendance.WriterNotifier{W: cmd.ErrOrStderr()}, a.cfg.AttendDelay)
			if err := tg.Toggle(cmd.Context(), dir, g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s v %s: attended=%t\n", calendar.FormatDate(g.At.In(a.loc), true), g.Opponents, g.Attended)
			return nil
		},
	}
}
