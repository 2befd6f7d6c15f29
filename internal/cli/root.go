package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/metrics"
	"github.com/alexanderramin/dutyroster/internal/service"
)

// App holds the services and settings used by CLI commands.
type App struct {
	Plans service.PlanService
	Runs  service.RunService

	// Constraints are the engine defaults from the environment; roster
	// files and flags override them per run.
	Constraints domain.ScheduleConstraints
	Metrics     *metrics.Recorder

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "dutyroster" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "dutyroster",
		Short:         "Physician duty roster generator and gap resolver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCmd(app),
		newGapsCmd(app),
		newFeasibilityCmd(app),
		newValidateCmd(app),
		newRunsCmd(app),
		newResolveCmd(app),
	)

	return root
}
