package domain

import "fmt"

// Role is the duty a doctor covers on a date. Every date has exactly one
// slot per role.
type Role string

const (
	RoleAttending Role = "attending"
	RoleResident  Role = "resident"
)

// Roles lists the roles in the order slots are filled.
var Roles = []Role{RoleAttending, RoleResident}

// ParseRole accepts the canonical lowercase role names.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAttending, RoleResident:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q (want attending or resident)", s)
}

// Other returns the opposite role on the same date.
func (r Role) Other() Role {
	if r == RoleAttending {
		return RoleResident
	}
	return RoleAttending
}

// DayKind separates holiday dates from weekday dates; each kind has its own quota.
type DayKind string

const (
	KindWeekday DayKind = "weekday"
	KindHoliday DayKind = "holiday"
)

func KindOf(holiday bool) DayKind {
	if holiday {
		return KindHoliday
	}
	return KindWeekday
}
