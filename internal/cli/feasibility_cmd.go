package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/dutyroster/internal/cli/formatter"
	"github.com/alexanderramin/dutyroster/internal/service"
)

func newFeasibilityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "feasibility <roster.yaml>",
		Short: "Check whether quotas and availability can cover the horizon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := loadRoster(cmd, app, args[0], nil)
			if err != nil {
				return err
			}

			problems := app.Plans.Feasibility(context.Background(), conv.Roster)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProblems(problems))
			if len(problems) > 0 {
				return &service.InfeasibleError{Problems: problems}
			}
			return nil
		},
	}
}
