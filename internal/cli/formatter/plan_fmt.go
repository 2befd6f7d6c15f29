package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dutyroster/internal/resolver"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
	"github.com/alexanderramin/dutyroster/internal/service"
)

// FormatPlan renders a full pipeline run below the roster calendar.
func FormatPlan(res *service.PlanResult) string {
	var b strings.Builder
	roster := res.Oracle.Roster()

	b.WriteString(Header("Roster") + "\n")
	b.WriteString(FormatCalendar(roster, res.Result.Schedule) + "\n\n")

	b.WriteString(Header("Score") + "\n")
	b.WriteString(FormatScore(res.Result.Score) + "\n\n")

	b.WriteString(Header("Search") + "\n")
	b.WriteString(fmt.Sprintf("  Candidates: %d kept\n", res.Candidates))
	b.WriteString(FormatLineage(res.Lineage) + "\n")
	if res.CSP != nil {
		st := res.CSP.Stats
		line := fmt.Sprintf("  CSP:        %d variables, %d nodes, %d backtracks, %d pruned, filled %d (+%d fallback)",
			st.Variables, st.Nodes, st.Backtracks, st.Pruned, res.CSP.CSPFilled, res.CSP.FallbackFill)
		if st.TimedOut {
			line += " " + StyleYellow.Render("timed out")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	b.WriteString(Header("Auto-fill") + "\n")
	b.WriteString(FormatFill(res.Fill) + "\n")

	if len(res.Fill.RemainingGaps) > 0 {
		b.WriteString("\n" + Header("Remaining gaps") + "\n")
		b.WriteString(FormatRemaining(res.Fill.RemainingGaps) + "\n")
	}

	if len(res.Report.AppliedSwaps) > 0 {
		b.WriteString("\n" + Header("Applied swaps") + "\n")
		for _, c := range res.Report.AppliedSwaps {
			b.WriteString(FormatChain(c) + "\n")
		}
	}

	b.WriteString("\n" + Header("Violations") + "\n")
	b.WriteString(FormatViolations(res.Result.Violations) + "\n")

	b.WriteString("\n" + Header("Load") + "\n")
	b.WriteString(FormatLoads(res.Result.Stats.Loads) + "\n")

	footer := fmt.Sprintf("finished in %s", FormatDuration(res.Duration))
	if res.Saved && res.Run != nil {
		footer += fmt.Sprintf(", saved as run %s", res.Run.ID)
	}
	b.WriteString("\n" + Dim(footer))
	return b.String()
}

// FormatScore shows the total and each factor's contribution.
func FormatScore(s scheduler.ScoreBreakdown) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  Total: %s\n", Bold(fmt.Sprintf("%.1f", s.Total))))
	for _, r := range s.Reasons {
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			StyleGreen.Render(fmt.Sprintf("%+8.1f", r.Delta)), r.Message, Dim(r.Code)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatLineage prints how the final schedule was derived.
func FormatLineage(states []scheduler.SearchState) string {
	parts := make([]string, 0, len(states))
	for _, st := range states {
		parts = append(parts, fmt.Sprintf("%s %s (seed %d, %.1f)",
			StyleBlue.Render(st.Method), TruncID(st.ID), st.Seed, st.Score.Total))
	}
	return "  Lineage:    " + strings.Join(parts, Dim(" → "))
}

// FormatFill summarises an auto-fill report.
func FormatFill(r resolver.FillReport) string {
	stop := StyleGreen.Render(string(r.StoppedBy))
	if r.StoppedBy != resolver.StopResolved {
		stop = StyleYellow.Render(string(r.StoppedBy))
	}
	return fmt.Sprintf("  Direct fills: %d\n  Swap chains:  %d\n  Backtracks:   %d\n  Stopped by:   %s",
		r.DirectFills, r.SwapChainsApplied, r.Backtracks, stop)
}

func FormatRemaining(gaps []resolver.RemainingGap) string {
	headers := []string{"DATE", "ROLE", "REASON", "DETAIL"}
	rows := make([][]string, 0, len(gaps))
	for _, g := range gaps {
		rows = append(rows, []string{
			g.Date.String(),
			RoleBadge(g.Role),
			StyleRed.Render(string(g.Reason)),
			Dim(g.Message),
		})
	}
	return RenderTable(headers, rows)
}
