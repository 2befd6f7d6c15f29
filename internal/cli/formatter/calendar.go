package formatter

import (
	"fmt"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

const gapCell = "· gap ·"

// FormatCalendar renders the schedule one date per row. A star marks a
// doctor working a date they asked for.
func FormatCalendar(roster *domain.Roster, s *domain.Schedule) string {
	headers := []string{"DATE", "DAY", "KIND", "ATTENDING", "RESIDENT"}
	rows := make([][]string, 0, len(s.Dates()))
	for _, d := range s.Dates() {
		rows = append(rows, []string{
			d.String(),
			d.Weekday().String()[:3],
			KindBadge(s.Kind(d)),
			calendarCell(roster, s, d, domain.RoleAttending),
			calendarCell(roster, s, d, domain.RoleResident),
		})
	}
	return RenderTable(headers, rows)
}

func calendarCell(roster *domain.Roster, s *domain.Schedule, d domain.Date, role domain.Role) string {
	name := s.Get(d, role)
	if name == "" {
		return StyleRed.Render(gapCell)
	}
	if doc, err := roster.Doctor(name); err == nil && doc.Prefers(d) {
		return StyleGreen.Render(name + " ★")
	}
	return StyleFg.Render(name)
}

// FormatLoads lists each doctor's duties against quota.
func FormatLoads(loads []scheduler.DoctorLoad) string {
	headers := []string{"DOCTOR", "ROLE", "WEEKDAYS", "HOLIDAYS"}
	rows := make([][]string, 0, len(loads))
	for _, l := range loads {
		rows = append(rows, []string{
			Bold(l.Name),
			RoleBadge(l.Role),
			quotaCell(l.Used.Weekday, l.Weekday),
			quotaCell(l.Used.Holiday, l.Holiday),
		})
	}
	return RenderTable(headers, rows)
}

func quotaCell(used, quota int) string {
	text := fmt.Sprintf("%d/%d", used, quota)
	switch {
	case used > quota:
		return StyleRed.Render(text)
	case used == quota && quota > 0:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}
