package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/dutyroster/internal/cli/formatter"
	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/resolver"
	"github.com/alexanderramin/dutyroster/internal/service"
)

func newPlanCmd(app *App) *cobra.Command {
	var (
		engine          engineFlags
		seed            int64
		save            bool
		requireFeasible bool
		metricsOut      string
		asJSON          bool
	)

	cmd := &cobra.Command{
		Use:   "plan <roster.yaml>",
		Short: "Generate a roster and resolve its gaps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := loadRoster(cmd, app, args[0], &engine)
			if err != nil {
				return err
			}

			req := service.PlanRequest{
				Roster:          conv.Roster,
				Constraints:     conv.Constraints,
				RequireFeasible: requireFeasible,
				Save:            save,
			}
			if cmd.Flags().Changed("seed") {
				req.SingleSeed = true
				req.Seed = seed
			}

			if app.interactive() && !asJSON {
				spin := formatter.NewSpinner(cmd.ErrOrStderr(), "generating candidates")
				req.OnGenerate = func(done, total int) {
					spin.SetMessage(fmt.Sprintf("generating candidates %d/%d", done, total))
				}
				req.OnResolve = func(e resolver.Event) {
					spin.SetMessage(fmt.Sprintf("resolving gaps, %d left", e.Remaining))
				}
				spin.Start()
				defer spin.Stop()
			}

			res, err := app.Plans.Plan(context.Background(), req)
			if err != nil {
				return err
			}

			if metricsOut != "" {
				if err := app.Metrics.WriteTextfile(metricsOut); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(newPlanJSON(res))
			}
			fmt.Fprintln(out, formatter.FormatPlan(res))
			return nil
		},
	}

	engine.register(cmd.Flags())
	cmd.Flags().Int64Var(&seed, "seed", 0, "Run a single seed instead of the candidate beam")
	cmd.Flags().BoolVar(&save, "save", false, "Record the run in history")
	cmd.Flags().BoolVar(&requireFeasible, "require-feasible", false, "Fail before searching when supply cannot cover demand")
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write run metrics in Prometheus text format to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

type planJSON struct {
	RunID         string             `json:"run_id,omitempty"`
	Seed          int64              `json:"seed"`
	Score         float64            `json:"score"`
	FillRate      float64            `json:"fill_rate"`
	TotalSlots    int                `json:"total_slots"`
	FilledSlots   int                `json:"filled_slots"`
	DirectFills   int                `json:"direct_fills"`
	SwapChains    int                `json:"swap_chains"`
	Backtracks    int                `json:"backtracks"`
	StoppedBy     string             `json:"stopped_by"`
	Lineage       []lineageJSON      `json:"lineage"`
	Assignments   []assignmentJSON   `json:"assignments"`
	RemainingGaps []remainingGapJSON `json:"remaining_gaps"`
	Violations    []violationJSON    `json:"violations"`
}

type lineageJSON struct {
	ID       string  `json:"id"`
	ParentID string  `json:"parent_id,omitempty"`
	Method   string  `json:"method"`
	Seed     int64   `json:"seed"`
	Score    float64 `json:"score"`
}

type assignmentJSON struct {
	Date      domain.Date `json:"date"`
	Attending string      `json:"attending"`
	Resident  string      `json:"resident"`
}

type remainingGapJSON struct {
	Date    domain.Date `json:"date"`
	Role    domain.Role `json:"role"`
	Reason  string      `json:"reason"`
	Message string      `json:"message"`
}

type violationJSON struct {
	Kind    string      `json:"kind"`
	Doctor  string      `json:"doctor"`
	Date    domain.Date `json:"date"`
	Role    domain.Role `json:"role"`
	Message string      `json:"message"`
}

func newPlanJSON(res *service.PlanResult) planJSON {
	s := res.Result.Schedule
	out := planJSON{
		Seed:          res.Best().Seed,
		Score:         res.Result.Score.Total,
		FillRate:      res.Result.Stats.FillRate,
		TotalSlots:    res.Result.Stats.TotalSlots,
		FilledSlots:   res.Result.Stats.FilledSlots,
		DirectFills:   res.Fill.DirectFills,
		SwapChains:    res.Fill.SwapChainsApplied,
		Backtracks:    res.Fill.Backtracks,
		StoppedBy:     string(res.Fill.StoppedBy),
		Assignments:   make([]assignmentJSON, 0, len(s.Dates())),
		RemainingGaps: make([]remainingGapJSON, 0, len(res.Fill.RemainingGaps)),
		Violations:    make([]violationJSON, 0, len(res.Result.Violations)),
	}
	if res.Saved && res.Run != nil {
		out.RunID = res.Run.ID
	}
	for _, st := range res.Lineage {
		out.Lineage = append(out.Lineage, lineageJSON{
			ID: st.ID, ParentID: st.ParentID, Method: st.Method, Seed: st.Seed, Score: st.Score.Total,
		})
	}
	for _, d := range s.Dates() {
		out.Assignments = append(out.Assignments, assignmentJSON{
			Date:      d,
			Attending: s.Get(d, domain.RoleAttending),
			Resident:  s.Get(d, domain.RoleResident),
		})
	}
	for _, g := range res.Fill.RemainingGaps {
		out.RemainingGaps = append(out.RemainingGaps, remainingGapJSON{
			Date: g.Date, Role: g.Role, Reason: string(g.Reason), Message: g.Message,
		})
	}
	for _, v := range res.Result.Violations {
		out.Violations = append(out.Violations, violationJSON{
			Kind: string(v.Kind), Doctor: v.Doctor, Date: v.Date, Role: v.Role, Message: v.Message,
		})
	}
	return out
}
