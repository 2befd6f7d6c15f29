package scheduler

import (
	"fmt"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

// Reason identifies which availability check rejected an assignment.
type Reason string

const (
	ReasonUnknownDate       Reason = "unknown_date"
	ReasonRoleMismatch      Reason = "role_mismatch"
	ReasonSlotFilled        Reason = "slot_filled"
	ReasonQuotaExceeded     Reason = "quota_exceeded"
	ReasonUnavailable       Reason = "unavailable"
	ReasonPreferredByOthers Reason = "preferred_by_others"
	ReasonConsecutiveLimit  Reason = "consecutive_limit"
	ReasonSameDayOtherRole  Reason = "same_day_other_role"
)

// RejectError explains why a doctor cannot take a slot.
type RejectError struct {
	Reason Reason
	Doctor string
	Date   domain.Date
	Role   domain.Role
	Detail string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("cannot assign %s to %s/%s: %s (%s)", e.Doctor, e.Date, e.Role, e.Reason, e.Detail)
}

// Oracle answers whether a doctor may take a slot given a partial schedule.
// It is pure: the schedule and quota usage are never modified.
type Oracle struct {
	roster         *domain.Roster
	maxConsecutive int
}

func NewOracle(roster *domain.Roster, c domain.ScheduleConstraints) *Oracle {
	return &Oracle{roster: roster, maxConsecutive: c.MaxConsecutiveDays}
}

func (o *Oracle) Roster() *domain.Roster { return o.roster }

func (o *Oracle) MaxConsecutive() int { return o.maxConsecutive }

// CanAssign runs the availability checks in fixed order and returns the first
// failure as a *RejectError, or nil when the assignment is allowed. A nil used
// map is recomputed from the schedule. An unknown doctor is an input error
// wrapping domain.ErrUnknownDoctor.
func (o *Oracle) CanAssign(name string, date domain.Date, role domain.Role, s *domain.Schedule, used domain.QuotaUsage) error {
	rejects, err := o.evaluate(name, date, role, s, used, true)
	if err != nil {
		return err
	}
	if len(rejects) > 0 {
		return rejects[0]
	}
	return nil
}

// Violations returns every failing check in order instead of stopping at the
// first one. Structural failures (unknown date, wrong role) are returned alone.
func (o *Oracle) Violations(name string, date domain.Date, role domain.Role, s *domain.Schedule, used domain.QuotaUsage) ([]*RejectError, error) {
	return o.evaluate(name, date, role, s, used, false)
}

// BlockedOnlyByQuota reports whether quota is the sole reason name cannot
// take the slot.
func (o *Oracle) BlockedOnlyByQuota(name string, date domain.Date, role domain.Role, s *domain.Schedule, used domain.QuotaUsage) bool {
	rejects, err := o.Violations(name, date, role, s, used)
	return err == nil && len(rejects) == 1 && rejects[0].Reason == ReasonQuotaExceeded
}

type availabilityCheck func(doc *domain.Doctor, date domain.Date, role domain.Role, s *domain.Schedule, used domain.QuotaUsage) (Reason, string, bool)

func (o *Oracle) evaluate(name string, date domain.Date, role domain.Role, s *domain.Schedule, used domain.QuotaUsage, firstOnly bool) ([]*RejectError, error) {
	doc, err := o.roster.Doctor(name)
	if err != nil {
		return nil, err
	}
	reject := func(r Reason, detail string) *RejectError {
		return &RejectError{Reason: r, Doctor: name, Date: date, Role: role, Detail: detail}
	}
	if !s.Contains(date) {
		return []*RejectError{reject(ReasonUnknownDate, "date is outside the horizon")}, nil
	}
	if doc.Role != role {
		return []*RejectError{reject(ReasonRoleMismatch, fmt.Sprintf("doctor is %s", doc.Role))}, nil
	}
	if used == nil {
		used = s.Usage()
	}

	checks := []availabilityCheck{
		checkSlotOpen,
		checkQuota,
		checkAvailable,
		o.checkPreference,
		o.checkConsecutive,
		checkOtherRole,
	}
	var out []*RejectError
	for _, check := range checks {
		if r, detail, ok := check(doc, date, role, s, used); !ok {
			out = append(out, reject(r, detail))
			if firstOnly {
				break
			}
		}
	}
	return out, nil
}

func checkSlotOpen(_ *domain.Doctor, date domain.Date, role domain.Role, s *domain.Schedule, _ domain.QuotaUsage) (Reason, string, bool) {
	if holder := s.Get(date, role); holder != "" {
		return ReasonSlotFilled, "held by " + holder, false
	}
	return "", "", true
}

func checkQuota(doc *domain.Doctor, date domain.Date, _ domain.Role, s *domain.Schedule, used domain.QuotaUsage) (Reason, string, bool) {
	kind := s.Kind(date)
	n, limit := used.Used(doc.Name, kind), doc.Quota(kind)
	if n >= limit {
		return ReasonQuotaExceeded, fmt.Sprintf("%s quota %d/%d", kind, n, limit), false
	}
	return "", "", true
}

func checkAvailable(doc *domain.Doctor, date domain.Date, _ domain.Role, _ *domain.Schedule, _ domain.QuotaUsage) (Reason, string, bool) {
	if doc.IsUnavailable(date) {
		return ReasonUnavailable, "listed as unavailable", false
	}
	return "", "", true
}

// A date preferred by one or more doctors of the role is reserved for them.
func (o *Oracle) checkPreference(doc *domain.Doctor, date domain.Date, role domain.Role, _ *domain.Schedule, _ domain.QuotaUsage) (Reason, string, bool) {
	prefs := o.roster.Preferring(date, role)
	if len(prefs) == 0 {
		return "", "", true
	}
	for _, p := range prefs {
		if p == doc.Name {
			return "", "", true
		}
	}
	return ReasonPreferredByOthers, fmt.Sprintf("preferred by %v", prefs), false
}

func (o *Oracle) checkConsecutive(doc *domain.Doctor, date domain.Date, _ domain.Role, s *domain.Schedule, _ domain.QuotaUsage) (Reason, string, bool) {
	if run := RunLength(s, doc.Name, date, nil); run > o.maxConsecutive {
		return ReasonConsecutiveLimit, fmt.Sprintf("run of %d exceeds %d", run, o.maxConsecutive), false
	}
	return "", "", true
}

func checkOtherRole(doc *domain.Doctor, date domain.Date, role domain.Role, s *domain.Schedule, _ domain.QuotaUsage) (Reason, string, bool) {
	if s.Get(date, role.Other()) == doc.Name {
		return ReasonSameDayOtherRole, "already holds " + string(role.Other()), false
	}
	return "", "", true
}

// RunLength is the length of the duty run containing target if name were on
// duty there, walking the sorted date axis in both directions. A date counts
// as on duty when name holds either role in s or when also reports true.
func RunLength(s *domain.Schedule, name string, target domain.Date, also func(domain.Date) bool) int {
	axis := s.Dates()
	pos, ok := s.Position(target)
	if !ok {
		return 0
	}
	onDuty := func(d domain.Date) bool {
		return s.Holds(d, name) || (also != nil && also(d))
	}
	run := 1
	for i := pos - 1; i >= 0 && onDuty(axis[i]); i-- {
		run++
	}
	for i := pos + 1; i < len(axis) && onDuty(axis[i]); i++ {
		run++
	}
	return run
}

// LongestRun is the longest duty run of name anywhere on the axis.
func LongestRun(s *domain.Schedule, name string) int {
	longest, cur := 0, 0
	for _, d := range s.Dates() {
		if s.Holds(d, name) {
			cur++
			if cur > longest {
				longest = cur
			}
		} else {
			cur = 0
		}
	}
	return longest
}
