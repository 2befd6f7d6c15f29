package testutil

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

// Doctor options
type DoctorOption func(*domain.Doctor)

func WithQuota(weekday, holiday int) DoctorOption {
	return func(d *domain.Doctor) {
		d.WeekdayQuota = weekday
		d.HolidayQuota = holiday
	}
}

func WithUnavailable(dates ...string) DoctorOption {
	return func(d *domain.Doctor) {
		for _, s := range dates {
			d.Unavailable.Add(domain.MustParseDate(s))
		}
	}
}

func WithPreferred(dates ...string) DoctorOption {
	return func(d *domain.Doctor) {
		for _, s := range dates {
			d.Preferred.Add(domain.MustParseDate(s))
		}
	}
}

// NewTestDoctor defaults to a weekday quota of 5 and a holiday quota of 2.
func NewTestDoctor(name string, role domain.Role, opts ...DoctorOption) *domain.Doctor {
	d := &domain.Doctor{
		Name:         name,
		Role:         role,
		WeekdayQuota: 5,
		HolidayQuota: 2,
		Unavailable:  domain.NewDateSet(),
		Preferred:    domain.NewDateSet(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func Dates(ss ...string) []domain.Date {
	out := make([]domain.Date, len(ss))
	for i, s := range ss {
		out[i] = domain.MustParseDate(s)
	}
	return out
}

func NewTestRoster(t *testing.T, doctors []*domain.Doctor, weekdays, holidays []domain.Date) *domain.Roster {
	t.Helper()
	r, err := domain.NewRoster(doctors, weekdays, holidays)
	require.NoError(t, err)
	return r
}

// RandomRoster builds a roster over a run of consecutive days starting
// 2025-08-01, with weekends as holidays and randomized quotas, unavailable
// and preferred dates.
func RandomRoster(rng *rand.Rand) *domain.Roster {
	start := domain.MustParseDate("2025-08-01")
	days := rng.Intn(12) + 6
	var weekdays, holidays []domain.Date
	for i := 0; i < days; i++ {
		d := start.AddDays(i)
		if d.IsWeekend() {
			holidays = append(holidays, d)
		} else {
			weekdays = append(weekdays, d)
		}
	}
	horizon := append(append([]domain.Date{}, weekdays...), holidays...)

	var doctors []*domain.Doctor
	for _, role := range domain.Roles {
		n := rng.Intn(3) + 2
		for i := 0; i < n; i++ {
			d := NewTestDoctor(fmt.Sprintf("%s-%d", role, i), role, WithQuota(rng.Intn(7), rng.Intn(4)))
			for _, date := range horizon {
				switch p := rng.Float64(); {
				case p < 0.2:
					d.Unavailable.Add(date)
				case p < 0.27:
					d.Preferred.Add(date)
				}
			}
			doctors = append(doctors, d)
		}
	}

	r, err := domain.NewRoster(doctors, weekdays, holidays)
	if err != nil {
		panic(err)
	}
	return r
}

// Run options
type RunOption func(*domain.Run)

func WithAssignment(date string, role domain.Role, doctor string) RunOption {
	return func(r *domain.Run) {
		r.Assignments = append(r.Assignments, domain.Assignment{Date: domain.MustParseDate(date), Role: role, Doctor: doctor})
		r.FilledSlots++
	}
}

func WithGap(date string, role domain.Role, reason string) RunOption {
	return func(r *domain.Run) {
		r.RemainingGaps = append(r.RemainingGaps, domain.RunGap{Date: domain.MustParseDate(date), Role: role, Reason: reason})
	}
}

func WithCreatedAt(t time.Time) RunOption {
	return func(r *domain.Run) {
		r.CreatedAt = t
	}
}

func NewTestRun(id string, opts ...RunOption) *domain.Run {
	r := &domain.Run{
		ID:          id,
		Seed:        0,
		Constraints: domain.DefaultConstraints(),
		CreatedAt:   time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.TotalSlots = r.FilledSlots + len(r.RemainingGaps)
	if r.TotalSlots > 0 {
		r.FillRate = float64(r.FilledSlots) / float64(r.TotalSlots)
	}
	return r
}
