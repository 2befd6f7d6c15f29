package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/dutyroster/internal/cli/formatter"
	"github.com/alexanderramin/dutyroster/internal/service"
)

var errNotInteractive = errors.New("resolve needs an interactive terminal; use 'dutyroster plan' instead")

func newResolveCmd(app *App) *cobra.Command {
	var (
		engine  engineFlags
		seed    int64
		skipCSP bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <roster.yaml>",
		Short: "Close roster gaps interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errNotInteractive
			}
			conv, err := loadRoster(cmd, app, args[0], &engine)
			if err != nil {
				return err
			}

			req := service.PlanRequest{
				Roster:      conv.Roster,
				Constraints: conv.Constraints,
				SkipCSP:     skipCSP,
			}
			if cmd.Flags().Changed("seed") {
				req.SingleSeed = true
				req.Seed = seed
			}

			ctx := context.Background()
			prep, err := app.Plans.Prepare(ctx, req)
			if err != nil {
				return err
			}

			model := newResolveModel(ctx, prep.Resolver, conv.Constraints.SwapSearchDepth)
			p := tea.NewProgram(model, tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running resolve view: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatCalendar(conv.Roster, prep.Resolver.Schedule()))
			fmt.Fprintln(out, formatter.FormatReport(prep.Resolver.Report()))
			fmt.Fprintln(out, formatter.FormatViolations(prep.Resolver.ValidateAllConstraints()))
			return nil
		},
	}

	engine.register(cmd.Flags())
	cmd.Flags().Int64Var(&seed, "seed", 0, "Start from a single greedy seed")
	cmd.Flags().BoolVar(&skipCSP, "skip-csp", false, "Resolve the greedy schedule without CSP completion")

	return cmd
}
