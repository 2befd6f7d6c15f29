package scheduler

import (
	"fmt"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

type ProblemKind string

const (
	ProblemNoDoctors      ProblemKind = "no_doctors"
	ProblemQuotaShortfall ProblemKind = "quota_shortfall"
	ProblemNoneAvailable  ProblemKind = "no_available_doctor"
)

// Problem is a reason the roster cannot be fully covered.
type Problem struct {
	Kind    ProblemKind
	Role    domain.Role
	Date    domain.Date // zero for horizon-wide problems
	Message string
}

// CheckFeasibility compares supply with demand before any search runs. An
// empty result does not guarantee a complete schedule; preferences and the
// consecutive-day limit can still leave gaps.
func CheckFeasibility(roster *domain.Roster) []Problem {
	var problems []Problem
	demand := map[domain.DayKind]int{
		domain.KindWeekday: len(roster.Weekdays),
		domain.KindHoliday: len(roster.Holidays),
	}

	for _, role := range domain.Roles {
		doctors := roster.ByRole(role)
		if len(doctors) == 0 {
			problems = append(problems, Problem{
				Kind:    ProblemNoDoctors,
				Role:    role,
				Message: fmt.Sprintf("no %s doctors on the roster", role),
			})
			continue
		}

		for _, kind := range []domain.DayKind{domain.KindWeekday, domain.KindHoliday} {
			supply := 0
			for _, d := range doctors {
				supply += d.Quota(kind)
			}
			if supply < demand[kind] {
				problems = append(problems, Problem{
					Kind:    ProblemQuotaShortfall,
					Role:    role,
					Message: fmt.Sprintf("%s %s quota %d is below %d %s dates", role, kind, supply, demand[kind], kind),
				})
			}
		}

		s := roster.NewSchedule()
		for _, date := range s.Dates() {
			available := 0
			for _, d := range doctors {
				if !d.IsUnavailable(date) && d.Quota(s.Kind(date)) > 0 {
					available++
				}
			}
			if available == 0 {
				problems = append(problems, Problem{
					Kind:    ProblemNoneAvailable,
					Role:    role,
					Date:    date,
					Message: fmt.Sprintf("no %s is available on %s", role, date),
				})
			}
		}
	}
	return problems
}
