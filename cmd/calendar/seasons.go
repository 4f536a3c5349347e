package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hammers-calendar/internal/navigation"
)

func newSeasonsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seasons",
		Short: "List seasons, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.constants(cmd)
			if err != nil {
				return err
			}
			base, err := a.api.Base(cmd.Context())
			if err != nil {
				return fmt.Errorf("load base: %w", err)
			}
			seasons, _ := navigation.Sliders(c, navigation.Route{Season: base.Year})
			out := cmd.OutOrStdout()
			for _, s := range seasons {
				marker := " "
				if s.Active {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %d\n", marker, s.Year)
			}
			if base.Name != nil {
				fmt.Fprintf(out, "signed in as %s\n", *base.Name)
			}
			return nil
		},
	}
}
