package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/importer"
)

// engineFlags are the per-run overrides shared by every command that runs
// the engine. Only flags the user set replace the configured values.
type engineFlags struct {
	maxConsecutive int
	beamWidth      int
	cspTimeout     int
	maxBacktracks  int
	depth          int
	budget         int
}

func (f *engineFlags) register(fs *pflag.FlagSet) {
	d := domain.DefaultConstraints()
	fs.IntVar(&f.maxConsecutive, "max-consecutive", d.MaxConsecutiveDays, "Maximum consecutive duty days per doctor")
	fs.IntVar(&f.beamWidth, "beam-width", d.BeamWidth, "Candidate schedules kept by the generator")
	fs.IntVar(&f.cspTimeout, "csp-timeout", d.CSPTimeoutSecs, "CSP search timeout in seconds")
	fs.IntVar(&f.maxBacktracks, "max-backtracks", d.MaxBacktracks, "Auto-fill backtrack limit")
	fs.IntVar(&f.depth, "depth", d.SwapSearchDepth, "Maximum moves per swap chain")
	fs.IntVar(&f.budget, "budget", d.SearchBudgetSecs, "Auto-fill wall-clock budget in seconds")
}

func (f *engineFlags) apply(flags *pflag.FlagSet, c domain.ScheduleConstraints) domain.ScheduleConstraints {
	if flags.Changed("max-consecutive") {
		c.MaxConsecutiveDays = f.maxConsecutive
	}
	if flags.Changed("beam-width") {
		c.BeamWidth = f.beamWidth
	}
	if flags.Changed("csp-timeout") {
		c.CSPTimeoutSecs = f.cspTimeout
	}
	if flags.Changed("max-backtracks") {
		c.MaxBacktracks = f.maxBacktracks
	}
	if flags.Changed("depth") {
		c.SwapSearchDepth = f.depth
	}
	if flags.Changed("budget") {
		c.SearchBudgetSecs = f.budget
	}
	return c
}

// loadRoster reads and converts a roster file. Constraints resolve as
// environment defaults, then the file, then flags. Warnings go to stderr.
func loadRoster(cmd *cobra.Command, app *App, path string, flags *engineFlags) (*importer.Converted, error) {
	f, err := importer.LoadRosterFile(path)
	if err != nil {
		return nil, err
	}
	base := app.Constraints
	if base == (domain.ScheduleConstraints{}) {
		base = domain.DefaultConstraints()
	}
	conv, err := importer.Convert(f, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if flags != nil {
		conv.Constraints = flags.apply(cmd.Flags(), conv.Constraints)
	}
	if err := conv.Constraints.Validate(); err != nil {
		return nil, fmt.Errorf("invalid constraints: %w", err)
	}
	for _, w := range conv.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "  WARNING: %s\n", w)
	}
	return conv, nil
}
