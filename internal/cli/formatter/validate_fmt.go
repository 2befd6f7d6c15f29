package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

// FormatViolations renders hard-constraint breaches.
func FormatViolations(vs []scheduler.Violation) string {
	if len(vs) == 0 {
		return StyleGreen.Render("No constraint violations.")
	}
	headers := []string{"DATE", "ROLE", "DOCTOR", "KIND", "DETAIL"}
	rows := make([][]string, 0, len(vs))
	for _, v := range vs {
		rows = append(rows, []string{
			v.Date.String(),
			RoleBadge(v.Role),
			Bold(v.Doctor),
			StyleRed.Render(string(v.Kind)),
			v.Message,
		})
	}
	return RenderTable(headers, rows)
}

// FormatSuggestions lists who could still take each open slot.
func FormatSuggestions(ss []scheduler.Suggestion) string {
	var b strings.Builder
	for _, s := range ss {
		b.WriteString(fmt.Sprintf("  %s  available: %s  over quota: %s\n",
			Bold(s.Slot.String()), NameList(s.Available), NameList(s.OverQuota)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatResult renders a ScheduleResult: score, fill, violations and
// suggestions for the open slots.
func FormatResult(res scheduler.ScheduleResult) string {
	var b strings.Builder

	b.WriteString(Header("Result") + "\n")
	b.WriteString(fmt.Sprintf("  Score:        %s\n", Bold(fmt.Sprintf("%.1f", res.Score.Total))))
	b.WriteString(fmt.Sprintf("  Fill rate:    %s\n", RenderProgress(res.Stats.FillRate, 20)))
	b.WriteString(fmt.Sprintf("  Holiday fill: %s\n", Percent(res.Stats.HolidayFillRate)))
	b.WriteString(fmt.Sprintf("  Preferences:  %d honored\n", res.Stats.PreferenceHits))
	b.WriteString(fmt.Sprintf("  Unfilled:     %d of %d\n", len(res.Unfilled), res.Stats.TotalSlots))

	b.WriteString("\n" + Header("Violations") + "\n")
	b.WriteString(FormatViolations(res.Violations) + "\n")

	if len(res.Suggestions) > 0 {
		b.WriteString("\n" + Header("Suggestions") + "\n")
		b.WriteString(FormatSuggestions(res.Suggestions) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
