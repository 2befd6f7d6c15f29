package domain

import (
	"fmt"
	"strings"
)

// ScheduleSlot holds the two duties of one date. An empty name means unfilled.
type ScheduleSlot struct {
	Date      Date
	Attending string
	Resident  string
}

func (s *ScheduleSlot) Get(role Role) string {
	if role == RoleAttending {
		return s.Attending
	}
	return s.Resident
}

func (s *ScheduleSlot) Set(role Role, name string) {
	if role == RoleAttending {
		s.Attending = name
	} else {
		s.Resident = name
	}
}

func (s *ScheduleSlot) Holds(name string) bool {
	return name != "" && (s.Attending == name || s.Resident == name)
}

func (s *ScheduleSlot) IsFull() bool {
	return s.Attending != "" && s.Resident != ""
}

// SlotRef addresses one role on one date.
type SlotRef struct {
	Date Date
	Role Role
}

func (r SlotRef) String() string {
	return fmt.Sprintf("%s/%s", r.Date, r.Role)
}

// Assignment is a filled slot.
type Assignment struct {
	Date   Date
	Role   Role
	Doctor string
}

// Schedule maps every date of the horizon to its slot. The holiday set and the
// sorted date axis are fixed at construction; only slot contents change.
type Schedule struct {
	slots    map[Date]*ScheduleSlot
	axis     []Date
	index    map[Date]int
	holidays DateSet
	weekdays []Date
	holidayO []Date
}

// NewSchedule builds an empty schedule over weekdays ∪ holidays. Duplicate
// dates are collapsed; a date listed in both sets is treated as a holiday.
func NewSchedule(weekdays, holidays []Date) *Schedule {
	s := &Schedule{
		slots:    make(map[Date]*ScheduleSlot, len(weekdays)+len(holidays)),
		index:    make(map[Date]int, len(weekdays)+len(holidays)),
		holidays: NewDateSet(holidays...),
	}
	for _, d := range holidays {
		if _, dup := s.slots[d]; dup {
			continue
		}
		s.slots[d] = &ScheduleSlot{Date: d}
		s.holidayO = append(s.holidayO, d)
	}
	for _, d := range weekdays {
		if _, dup := s.slots[d]; dup {
			continue
		}
		s.slots[d] = &ScheduleSlot{Date: d}
		s.weekdays = append(s.weekdays, d)
	}
	s.axis = make([]Date, 0, len(s.slots))
	for d := range s.slots {
		s.axis = append(s.axis, d)
	}
	SortDates(s.axis)
	for i, d := range s.axis {
		s.index[d] = i
	}
	return s
}

// Dates returns the horizon in calendar order. The slice must not be modified.
func (s *Schedule) Dates() []Date { return s.axis }

// WorkOrder returns holidays followed by weekdays, each in input order. This is
// the order in which the generator visits dates.
func (s *Schedule) WorkOrder() []Date {
	out := make([]Date, 0, len(s.axis))
	out = append(out, s.holidayO...)
	return append(out, s.weekdays...)
}

func (s *Schedule) Holidays() []Date { return s.holidayO }
func (s *Schedule) Weekdays() []Date { return s.weekdays }

func (s *Schedule) Contains(d Date) bool {
	_, ok := s.slots[d]
	return ok
}

func (s *Schedule) IsHoliday(d Date) bool {
	return s.holidays.Has(d)
}

func (s *Schedule) Kind(d Date) DayKind {
	return KindOf(s.holidays.Has(d))
}

// Position returns the index of d on the sorted date axis.
func (s *Schedule) Position(d Date) (int, bool) {
	i, ok := s.index[d]
	return i, ok
}

func (s *Schedule) Slot(d Date) (*ScheduleSlot, bool) {
	slot, ok := s.slots[d]
	return slot, ok
}

// Get returns the doctor assigned to (d, role), or "" when unfilled or unknown.
func (s *Schedule) Get(d Date, role Role) string {
	slot, ok := s.slots[d]
	if !ok {
		return ""
	}
	return slot.Get(role)
}

// Holds reports whether name holds any role on d.
func (s *Schedule) Holds(d Date, name string) bool {
	slot, ok := s.slots[d]
	return ok && slot.Holds(name)
}

// Set writes a slot without checking constraints. Callers go through the
// availability oracle before calling it.
func (s *Schedule) Set(d Date, role Role, name string) error {
	slot, ok := s.slots[d]
	if !ok {
		return fmt.Errorf("set %s/%s: %w", d, role, ErrUnknownDate)
	}
	slot.Set(role, name)
	return nil
}

func (s *Schedule) Clear(d Date, role Role) {
	if slot, ok := s.slots[d]; ok {
		slot.Set(role, "")
	}
}

func (s *Schedule) Clone() *Schedule {
	c := &Schedule{
		slots:    make(map[Date]*ScheduleSlot, len(s.slots)),
		axis:     s.axis,
		index:    s.index,
		holidays: s.holidays,
		weekdays: s.weekdays,
		holidayO: s.holidayO,
	}
	for d, slot := range s.slots {
		cp := *slot
		c.slots[d] = &cp
	}
	return c
}

// Unfilled lists empty slots, holidays first then weekdays, attending before resident.
func (s *Schedule) Unfilled() []SlotRef {
	var out []SlotRef
	for _, d := range s.WorkOrder() {
		slot := s.slots[d]
		for _, role := range Roles {
			if slot.Get(role) == "" {
				out = append(out, SlotRef{Date: d, Role: role})
			}
		}
	}
	return out
}

// Assignments lists filled slots in calendar order.
func (s *Schedule) Assignments() []Assignment {
	var out []Assignment
	for _, d := range s.axis {
		slot := s.slots[d]
		for _, role := range Roles {
			if name := slot.Get(role); name != "" {
				out = append(out, Assignment{Date: d, Role: role, Doctor: name})
			}
		}
	}
	return out
}

// DutiesOf lists the dates a doctor holds in the given role, in calendar order.
func (s *Schedule) DutiesOf(name string, role Role) []Date {
	var out []Date
	for _, d := range s.axis {
		if s.slots[d].Get(role) == name {
			out = append(out, d)
		}
	}
	return out
}

func (s *Schedule) TotalSlots() int {
	return len(s.axis) * len(Roles)
}

func (s *Schedule) FilledSlots() int {
	n := 0
	for _, slot := range s.slots {
		for _, role := range Roles {
			if slot.Get(role) != "" {
				n++
			}
		}
	}
	return n
}

// Usage recounts per-doctor duties from slot contents.
func (s *Schedule) Usage() QuotaUsage {
	used := make(QuotaUsage)
	for d, slot := range s.slots {
		kind := s.Kind(d)
		for _, role := range Roles {
			if name := slot.Get(role); name != "" {
				used.Inc(name, kind)
			}
		}
	}
	return used
}

// Signature is a canonical rendering of the slot contents. Two schedules over
// the same horizon are equal exactly when their signatures are equal.
func (s *Schedule) Signature() string {
	var b strings.Builder
	for _, d := range s.axis {
		slot := s.slots[d]
		b.WriteString(d.String())
		b.WriteByte('|')
		b.WriteString(slot.Attending)
		b.WriteByte('|')
		b.WriteString(slot.Resident)
		b.WriteByte(';')
	}
	return b.String()
}

func (s *Schedule) Equal(o *Schedule) bool {
	return s.Signature() == o.Signature()
}
