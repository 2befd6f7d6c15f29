package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/dutyroster/internal/cli/formatter"
	"github.com/alexanderramin/dutyroster/internal/importer"
)

func newValidateCmd(app *App) *cobra.Command {
	var schedulePath string

	cmd := &cobra.Command{
		Use:   "validate <roster.yaml>",
		Short: "Check an existing schedule against the roster's hard constraints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := loadRoster(cmd, app, args[0], nil)
			if err != nil {
				return err
			}
			f, err := importer.LoadScheduleFile(schedulePath)
			if err != nil {
				return err
			}
			sched, err := importer.ConvertSchedule(f, conv.Roster)
			if err != nil {
				return fmt.Errorf("%s: %w", schedulePath, err)
			}

			res := app.Plans.Validate(context.Background(), conv.Roster, sched, conv.Constraints)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatCalendar(conv.Roster, sched))
			fmt.Fprintln(out, formatter.FormatResult(res))
			if n := len(res.Violations); n > 0 {
				return fmt.Errorf("schedule has %d violation(s)", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schedulePath, "schedule", "", "Schedule file to validate (YAML or JSON)")
	_ = cmd.MarkFlagRequired("schedule")

	return cmd
}
