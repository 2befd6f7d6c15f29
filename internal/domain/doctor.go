package domain

// Doctor is a roster member. Name is the identity used everywhere else.
type Doctor struct {
	Name         string
	Role         Role
	WeekdayQuota int
	HolidayQuota int
	Unavailable  DateSet
	Preferred    DateSet
}

// Quota returns the duty allowance for the given day kind.
func (d *Doctor) Quota(kind DayKind) int {
	if kind == KindHoliday {
		return d.HolidayQuota
	}
	return d.WeekdayQuota
}

func (d *Doctor) IsUnavailable(date Date) bool {
	return d.Unavailable.Has(date)
}

func (d *Doctor) Prefers(date Date) bool {
	return d.Preferred.Has(date)
}

// UnavailableCount is the scarcity signal used to rank candidates: doctors
// with fewer open dates are placed first.
func (d *Doctor) UnavailableCount() int {
	return d.Unavailable.Len()
}

// UsedQuota is the number of duties a doctor already holds, per day kind.
type UsedQuota struct {
	Weekday int
	Holiday int
}

func (u UsedQuota) Of(kind DayKind) int {
	if kind == KindHoliday {
		return u.Holiday
	}
	return u.Weekday
}

func (u UsedQuota) Total() int {
	return u.Weekday + u.Holiday
}

// QuotaUsage tracks UsedQuota per doctor name. The zero value of an entry is
// a doctor with no duties.
type QuotaUsage map[string]UsedQuota

func (q QuotaUsage) Used(name string, kind DayKind) int {
	return q[name].Of(kind)
}

func (q QuotaUsage) Inc(name string, kind DayKind) {
	u := q[name]
	if kind == KindHoliday {
		u.Holiday++
	} else {
		u.Weekday++
	}
	q[name] = u
}

func (q QuotaUsage) Dec(name string, kind DayKind) {
	u := q[name]
	if kind == KindHoliday {
		if u.Holiday > 0 {
			u.Holiday--
		}
	} else if u.Weekday > 0 {
		u.Weekday--
	}
	q[name] = u
}

func (q QuotaUsage) Clone() QuotaUsage {
	out := make(QuotaUsage, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}
