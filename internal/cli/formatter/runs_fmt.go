package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/repository"
)

// FormatRunList renders saved runs, newest first.
func FormatRunList(runs []repository.RunSummary) string {
	if len(runs) == 0 {
		return Dim("No saved runs. Use 'dutyroster plan --save' to record one.") + "\n"
	}
	headers := []string{"ID", "CREATED", "SEED", "SCORE", "FILL", "GAPS"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		gaps := StyleGreen.Render("0")
		if r.Gaps > 0 {
			gaps = StyleRed.Render(fmt.Sprintf("%d", r.Gaps))
		}
		rows = append(rows, []string{
			TruncID(r.ID),
			r.CreatedAt,
			fmt.Sprintf("%d", r.Seed),
			fmt.Sprintf("%.1f", r.Score),
			RateStyle(r.FillRate).Render(fmt.Sprintf("%d/%d", r.FilledSlots, r.TotalSlots)),
			gaps,
		})
	}
	return RenderTable(headers, rows)
}

// FormatRun renders one saved run with its assignments.
func FormatRun(run *domain.Run) string {
	var b strings.Builder
	summary := fmt.Sprintf("ID:          %s\nCreated:     %s\nSeed:        %d\nScore:       %.1f\nFill:        %s\nDirect:      %d  swaps %d  backtracks %d\nDuration:    %dms",
		run.ID, run.CreatedAt.Format("2006-01-02 15:04"), run.Seed, run.Score,
		RenderProgress(run.FillRate, 20), run.DirectFills, run.SwapChains, run.Backtracks, run.DurationMillis)
	b.WriteString(RenderBox("Run", summary) + "\n\n")

	headers := []string{"DATE", "ROLE", "DOCTOR"}
	rows := make([][]string, 0, len(run.Assignments))
	for _, a := range run.Assignments {
		rows = append(rows, []string{a.Date.String(), RoleBadge(a.Role), a.Doctor})
	}
	b.WriteString(Header("Assignments") + "\n")
	b.WriteString(RenderTable(headers, rows))

	if len(run.RemainingGaps) > 0 {
		b.WriteString("\n\n" + Header("Remaining gaps") + "\n")
		for _, g := range run.RemainingGaps {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", g.Date, RoleBadge(g.Role), Dim(g.Reason)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
