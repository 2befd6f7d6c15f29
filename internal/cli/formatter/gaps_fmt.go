package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/dutyroster/internal/resolver"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

// FormatGaps renders analyzed gaps, highest priority first.
func FormatGaps(gaps []resolver.Gap) string {
	if len(gaps) == 0 {
		return StyleGreen.Render("No gaps. Every slot is filled.")
	}

	headers := []string{"#", "DATE", "ROLE", "KIND", "PRIORITY", "WITH QUOTA", "OVER QUOTA", "REASON"}
	rows := make([][]string, 0, len(gaps))
	for i, g := range gaps {
		kind := "weekday"
		if g.IsHoliday {
			kind = "holiday"
		}
		rows = append(rows, []string{
			Dim(fmt.Sprintf("%d", i+1)),
			g.Date.String(),
			RoleBadge(g.Role),
			kind,
			PriorityStyle(g.Priority).Render(fmt.Sprintf("%5.1f", g.Priority)),
			NameList(g.WithQuota),
			NameList(g.OverQuota),
			Dim(string(g.Reason())),
		})
	}
	return RenderTable(headers, rows)
}

// FormatRestrictions lists, per blocked doctor, the checks that stop them.
func FormatRestrictions(reasons map[string][]scheduler.Reason) string {
	if len(reasons) == 0 {
		return Dim("  nobody is blocked")
	}
	names := make([]string, 0, len(reasons))
	for name := range reasons {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		codes := make([]string, len(reasons[name]))
		for i, r := range reasons[name] {
			codes[i] = string(r)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", Bold(name), Dim(strings.Join(codes, ", "))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatChain renders a swap chain as numbered steps.
func FormatChain(c resolver.SwapChain) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s %s  %s\n",
		Bold(c.Gap.String()),
		Dim("disruption"),
		PriorityStyle(c.TotalScore).Render(fmt.Sprintf("%.0f", c.TotalScore)),
		Dim(fmt.Sprintf("%d move(s)", c.Depth())),
	))
	for i, s := range c.Steps {
		marker := StyleBlue.Render("→")
		if s.Kind == resolver.StepFill {
			marker = StyleGreen.Render("+")
		}
		b.WriteString(fmt.Sprintf("  %d. %s %s\n", i+1, marker, s.Description))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatReport renders the detailed resolution report.
func FormatReport(r resolver.Report) string {
	var b strings.Builder

	b.WriteString(Header("Summary") + "\n")
	b.WriteString(fmt.Sprintf("  Slots:     %d filled of %d, %d open\n", r.FilledSlots, r.TotalSlots, r.Unfilled))
	b.WriteString(fmt.Sprintf("  Fill rate: %s\n", RenderProgress(r.FillRate, 20)))
	b.WriteString(fmt.Sprintf("  Score:     %s\n", Bold(fmt.Sprintf("%.1f", r.Score.Total))))
	b.WriteString(fmt.Sprintf("  Quota use: %s\n", Percent(r.QuotaUtilization)))
	if r.Unfilled > 0 {
		b.WriteString(fmt.Sprintf("  Gaps:      %s easy, %s medium, %s hard (avg priority %.1f)\n",
			StyleGreen.Render(fmt.Sprintf("%d", len(r.Easy))),
			StyleYellow.Render(fmt.Sprintf("%d", len(r.Medium))),
			StyleRed.Render(fmt.Sprintf("%d", len(r.Hard))),
			r.AverageGapPriority,
		))
	}

	if len(r.Critical) > 0 {
		b.WriteString("\n" + Header("Critical gaps") + "\n")
		b.WriteString(FormatGaps(r.Critical) + "\n")
	}

	if len(r.AppliedSwaps) > 0 {
		b.WriteString("\n" + Header("Applied swaps") + "\n")
		for _, c := range r.AppliedSwaps {
			b.WriteString(FormatChain(c) + "\n")
		}
	}

	b.WriteString("\n" + Dim(fmt.Sprintf("chains explored %d, found %d, max depth %d",
		r.Stats.ChainsExplored, r.Stats.ChainsFound, r.Stats.MaxDepthReached)))
	return b.String()
}
