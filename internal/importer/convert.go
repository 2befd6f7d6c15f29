package importer

import (
	"fmt"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

// Converted is a roster file turned into engine input.
type Converted struct {
	Roster      *domain.Roster
	Constraints domain.ScheduleConstraints
	Warnings    []string
}

// Convert validates f and builds the roster. File constraints override base.
func Convert(f *RosterFile, base domain.ScheduleConstraints) (*Converted, error) {
	if err := FormatErrors(ValidateRosterFile(f)); err != nil {
		return nil, err
	}

	weekdays, holidays, err := horizonDates(&f.Horizon)
	if err != nil {
		return nil, err
	}

	doctors := make([]*domain.Doctor, 0, len(f.Doctors))
	for _, di := range f.Doctors {
		d, err := convertDoctor(di)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}

	roster, err := domain.NewRoster(doctors, weekdays, holidays)
	if err != nil {
		return nil, fmt.Errorf("building roster: %w", err)
	}

	c := applyConstraints(base, f.Constraints)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("constraints: %w", err)
	}
	return &Converted{Roster: roster, Constraints: c, Warnings: RosterWarnings(f)}, nil
}

func horizonDates(h *HorizonImport) (weekdays, holidays []domain.Date, err error) {
	listed, err := parseDates(h.Holidays)
	if err != nil {
		return nil, nil, err
	}

	if h.From == "" {
		if weekdays, err = parseDates(h.Weekdays); err != nil {
			return nil, nil, err
		}
		return weekdays, listed, nil
	}

	from, err := domain.ParseDate(h.From)
	if err != nil {
		return nil, nil, err
	}
	to, err := domain.ParseDate(h.To)
	if err != nil {
		return nil, nil, err
	}
	extra := domain.NewDateSet(listed...)
	for d := from; !d.After(to); d = d.AddDays(1) {
		if d.IsWeekend() || extra.Has(d) {
			holidays = append(holidays, d)
		} else {
			weekdays = append(weekdays, d)
		}
	}
	return weekdays, holidays, nil
}

func convertDoctor(di DoctorImport) (*domain.Doctor, error) {
	role, err := domain.ParseRole(di.Role)
	if err != nil {
		return nil, fmt.Errorf("doctor %s: %w", di.Name, err)
	}
	unavailable, err := parseDates(di.Unavailable)
	if err != nil {
		return nil, fmt.Errorf("doctor %s: %w", di.Name, err)
	}
	preferred, err := parseDates(di.Preferred)
	if err != nil {
		return nil, fmt.Errorf("doctor %s: %w", di.Name, err)
	}
	return &domain.Doctor{
		Name:         di.Name,
		Role:         role,
		WeekdayQuota: di.WeekdayQuota,
		HolidayQuota: di.HolidayQuota,
		Unavailable:  domain.NewDateSet(unavailable...),
		Preferred:    domain.NewDateSet(preferred...),
	}, nil
}

func applyConstraints(base domain.ScheduleConstraints, ci *ConstraintsImport) domain.ScheduleConstraints {
	if ci == nil {
		return base
	}
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.MaxConsecutiveDays, ci.MaxConsecutiveDays)
	set(&base.BeamWidth, ci.BeamWidth)
	set(&base.CSPTimeoutSecs, ci.CSPTimeoutSecs)
	set(&base.NeighborExpansion, ci.NeighborExpansion)
	set(&base.MaxBacktracks, ci.MaxBacktracks)
	set(&base.SwapSearchDepth, ci.SwapSearchDepth)
	set(&base.SearchBudgetSecs, ci.SearchBudgetSecs)
	return base
}

// ConvertSchedule builds a schedule over roster's horizon from f. Dates
// outside the horizon are an error; doctor checks are left to validation.
func ConvertSchedule(f *ScheduleFile, roster *domain.Roster) (*domain.Schedule, error) {
	if err := FormatErrors(ValidateScheduleFile(f)); err != nil {
		return nil, err
	}
	s := roster.NewSchedule()
	for _, a := range f.Assignments {
		date, err := domain.ParseDate(a.Date)
		if err != nil {
			return nil, err
		}
		names := map[domain.Role]string{domain.RoleAttending: a.Attending, domain.RoleResident: a.Resident}
		for _, role := range domain.Roles {
			name := names[role]
			if name == "" {
				continue
			}
			if err := s.Set(date, role, name); err != nil {
				return nil, fmt.Errorf("assignment %s/%s: %w", a.Date, role, err)
			}
		}
	}
	return s, nil
}

func parseDates(ss []string) ([]domain.Date, error) {
	out := make([]domain.Date, 0, len(ss))
	for _, s := range ss {
		d, err := domain.ParseDate(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
