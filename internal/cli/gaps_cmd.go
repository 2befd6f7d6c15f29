package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/dutyroster/internal/cli/formatter"
	"github.com/alexanderramin/dutyroster/internal/service"
)

func newGapsCmd(app *App) *cobra.Command {
	var (
		engine  engineFlags
		seed    int64
		explain bool
		report  bool
	)

	cmd := &cobra.Command{
		Use:   "gaps <roster.yaml>",
		Short: "List the gaps left by the greedy generator",
		Long: "Runs the deterministic greedy pass (seed 0 unless --seed is given) " +
			"without CSP completion and lists every unfilled slot by priority.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := loadRoster(cmd, app, args[0], &engine)
			if err != nil {
				return err
			}

			prep, err := app.Plans.Prepare(context.Background(), service.PlanRequest{
				Roster:      conv.Roster,
				Constraints: conv.Constraints,
				SingleSeed:  true,
				Seed:        seed,
				SkipCSP:     true,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			res := prep.Resolver
			gaps := res.AnalyzeGaps()
			fmt.Fprintln(out, formatter.Header(fmt.Sprintf("Gaps (%d)", len(gaps))))
			fmt.Fprintln(out, formatter.FormatGaps(gaps))

			if explain {
				for _, g := range gaps {
					if len(g.WithQuota) > 0 {
						continue
					}
					fmt.Fprintf(out, "\n%s %s\n", formatter.Bold(g.Ref().String()), formatter.Dim(g.Reason().Message()))
					fmt.Fprintln(out, formatter.FormatRestrictions(res.RestrictionReasons(g.Ref())))
				}
			}
			if report {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatter.FormatReport(res.Report()))
			}
			return nil
		},
	}

	engine.register(cmd.Flags())
	cmd.Flags().Int64Var(&seed, "seed", 0, "Greedy seed")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show which checks block each candidate")
	cmd.Flags().BoolVar(&report, "report", false, "Print the detailed gap report")

	return cmd
}
