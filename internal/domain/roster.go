package domain

import (
	"fmt"
	"sort"
)

// Roster is the read-only input of one engine run: the doctors and the
// horizon split into weekday and holiday dates.
type Roster struct {
	Doctors  []*Doctor
	Weekdays []Date
	Holidays []Date

	byName     map[string]*Doctor
	preferring map[SlotRef][]string
}

// NewRoster indexes the doctors. Names must be unique and non-empty, and a
// date may not be both a weekday and a holiday.
func NewRoster(doctors []*Doctor, weekdays, holidays []Date) (*Roster, error) {
	r := &Roster{
		Doctors:    doctors,
		Weekdays:   weekdays,
		Holidays:   holidays,
		byName:     make(map[string]*Doctor, len(doctors)),
		preferring: make(map[SlotRef][]string),
	}
	for _, d := range doctors {
		if d.Name == "" {
			return nil, fmt.Errorf("doctor name is required")
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate doctor %q", d.Name)
		}
		if d.Unavailable == nil {
			d.Unavailable = NewDateSet()
		}
		if d.Preferred == nil {
			d.Preferred = NewDateSet()
		}
		r.byName[d.Name] = d
	}
	if overlap := NewDateSet(weekdays...).Intersect(NewDateSet(holidays...)); len(overlap) > 0 {
		return nil, fmt.Errorf("date %s is listed as both weekday and holiday", overlap[0])
	}
	for _, d := range doctors {
		for _, date := range d.Preferred.Sorted() {
			ref := SlotRef{Date: date, Role: d.Role}
			r.preferring[ref] = append(r.preferring[ref], d.Name)
		}
	}
	return r, nil
}

// Doctor looks up a doctor by name.
func (r *Roster) Doctor(name string) (*Doctor, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownDoctor)
	}
	return d, nil
}

// ByRole returns the doctors of one role in input order.
func (r *Roster) ByRole(role Role) []*Doctor {
	var out []*Doctor
	for _, d := range r.Doctors {
		if d.Role == role {
			out = append(out, d)
		}
	}
	return out
}

// Preferring returns the names of role-matching doctors who listed date as
// preferred, in input order.
func (r *Roster) Preferring(date Date, role Role) []string {
	return r.preferring[SlotRef{Date: date, Role: role}]
}

// NewSchedule returns an empty schedule over the roster horizon.
func (r *Roster) NewSchedule() *Schedule {
	return NewSchedule(r.Weekdays, r.Holidays)
}

// Names returns all doctor names sorted alphabetically.
func (r *Roster) Names() []string {
	out := make([]string, 0, len(r.Doctors))
	for _, d := range r.Doctors {
		out = append(out, d.Name)
	}
	sort.Strings(out)
	return out
}
