package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	trackingapp "github.com/wbpos/backend/internal/application/tracking"
)

func newCheckCmd(r *runner) *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "check",
		Short: "Samples today's positions, stores them and prints the updated table.",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			result, err := app.Tracking.RunCheck(cmd.Context(), trackingapp.RunCheckCommand{})
			if err != nil {
				return err
			}
			if err := renderPositions(app.Out, result.Table, format); err != nil {
				return err
			}
			if format == FormatText {
				fmt.Fprintf(app.Out, "check %s: %d points, version %d\n", result.CheckID, result.Points, result.Version)
			}
			return nil
		}),
	}
	c.Flags().StringVarP(&format, "format", "f", FormatText, "output format: text, markdown, csv, json")
	return c
}

func newTableCmd(r *runner) *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "table",
		Short: "Prints the stored position history.",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			tbl, err := app.Tracking.Table(cmd.Context())
			if err != nil {
				return err
			}
			return renderPositions(app.Out, tbl, format)
		}),
	}
	c.Flags().StringVarP(&format, "format", "f", FormatText, "output format: text, markdown, csv, json")
	return c
}
