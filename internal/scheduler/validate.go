package scheduler

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

type ViolationKind string

const (
	ViolationUnknownDoctor    ViolationKind = "unknown_doctor"
	ViolationRoleMismatch     ViolationKind = "role_mismatch"
	ViolationBothRoles        ViolationKind = "both_roles"
	ViolationUnavailable      ViolationKind = "unavailable"
	ViolationQuotaOverrun     ViolationKind = "quota_overrun"
	ViolationPreferredByOther ViolationKind = "preferred_by_other"
	ViolationConsecutive      ViolationKind = "consecutive_limit"
)

// Violation is a hard-constraint breach found in a finished schedule.
type Violation struct {
	Kind    ViolationKind
	Doctor  string
	Date    domain.Date
	Role    domain.Role
	Message string
}

// ValidateAll sweeps a finished schedule. Empty slots are not violations.
// Schedules produced by the engine only ever report quota overruns or
// preferred-date breaches when the input itself was inconsistent; the other
// kinds exist for externally supplied schedules.
func ValidateAll(roster *domain.Roster, s *domain.Schedule, maxConsecutive int) []Violation {
	var out []Violation
	add := func(kind ViolationKind, doctor string, date domain.Date, role domain.Role, format string, args ...any) {
		out = append(out, Violation{Kind: kind, Doctor: doctor, Date: date, Role: role, Message: fmt.Sprintf(format, args...)})
	}

	for _, a := range s.Assignments() {
		doc, err := roster.Doctor(a.Doctor)
		if err != nil {
			add(ViolationUnknownDoctor, a.Doctor, a.Date, a.Role, "%s is not on the roster", a.Doctor)
			continue
		}
		if doc.Role != a.Role {
			add(ViolationRoleMismatch, a.Doctor, a.Date, a.Role, "%s is %s but holds the %s slot", a.Doctor, doc.Role, a.Role)
		}
		if a.Role == domain.RoleAttending && s.Get(a.Date, domain.RoleResident) == a.Doctor {
			add(ViolationBothRoles, a.Doctor, a.Date, a.Role, "%s holds both roles on %s", a.Doctor, a.Date)
		}
		if doc.IsUnavailable(a.Date) {
			add(ViolationUnavailable, a.Doctor, a.Date, a.Role, "%s is unavailable on %s", a.Doctor, a.Date)
		}
		if prefs := roster.Preferring(a.Date, a.Role); len(prefs) > 0 && !contains(prefs, a.Doctor) {
			add(ViolationPreferredByOther, a.Doctor, a.Date, a.Role, "%s is preferred by %v", a.Date, prefs)
		}
	}

	used := s.Usage()
	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc, err := roster.Doctor(name)
		if err != nil {
			continue
		}
		for _, kind := range []domain.DayKind{domain.KindWeekday, domain.KindHoliday} {
			if n, limit := used.Used(name, kind), doc.Quota(kind); n > limit {
				add(ViolationQuotaOverrun, name, domain.Date{}, doc.Role, "%s has %d %s duties (quota %d)", name, n, kind, limit)
			}
		}
		if run := LongestRun(s, name); run > maxConsecutive {
			add(ViolationConsecutive, name, domain.Date{}, doc.Role, "%s works %d consecutive dates (limit %d)", name, run, maxConsecutive)
		}
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
