package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

func FormatProblems(problems []scheduler.Problem) string {
	if len(problems) == 0 {
		return StyleGreen.Render("Supply covers demand for both roles.")
	}

	var b strings.Builder
	b.WriteString(StyleRed.Render(fmt.Sprintf("%d feasibility problem(s):", len(problems))) + "\n")
	for _, p := range problems {
		where := RoleBadge(p.Role)
		if !p.Date.IsZero() {
			where += " " + p.Date.String()
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n", StyleRed.Render("✗"), where, p.Message))
	}
	return strings.TrimRight(b.String(), "\n")
}
