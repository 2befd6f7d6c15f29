package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

const rangeRoster = `
horizon:
  from: 2025-08-01   # Friday
  to: 2025-08-05
  holidays: [2025-08-04]
constraints:
  max_consecutive_days: 3
  beam_width: 2
doctors:
  - name: att-a
    role: attending
    weekday_quota: 3
    holiday_quota: 2
    unavailable: [2025-08-02]
  - name: res-a
    role: resident
    weekday_quota: 3
    holiday_quota: 3
    preferred: [2025-08-03]
`

func TestConvert_RangeHorizon(t *testing.T) {
	f, err := ParseRosterFile([]byte(rangeRoster))
	require.NoError(t, err)

	conv, err := Convert(f, domain.DefaultConstraints())
	require.NoError(t, err)

	r := conv.Roster
	assert.Equal(t, []domain.Date{domain.MustParseDate("2025-08-01"), domain.MustParseDate("2025-08-05")}, r.Weekdays)
	assert.Equal(t, []domain.Date{
		domain.MustParseDate("2025-08-02"),
		domain.MustParseDate("2025-08-03"),
		domain.MustParseDate("2025-08-04"),
	}, r.Holidays)

	att, err := r.Doctor("att-a")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAttending, att.Role)
	assert.True(t, att.IsUnavailable(domain.MustParseDate("2025-08-02")))

	res, err := r.Doctor("res-a")
	require.NoError(t, err)
	assert.True(t, res.Prefers(domain.MustParseDate("2025-08-03")))

	assert.Equal(t, 3, conv.Constraints.MaxConsecutiveDays)
	assert.Equal(t, 2, conv.Constraints.BeamWidth)
	assert.Equal(t, domain.DefaultConstraints().SwapSearchDepth, conv.Constraints.SwapSearchDepth)
	assert.Empty(t, conv.Warnings)
}

func TestConvert_ExplicitHorizonJSON(t *testing.T) {
	data := []byte(`{"horizon": {"weekdays": ["2025-08-04"], "holidays": ["2025-08-09"]},` +
		`"doctors": [{"name": "att-a", "role": "attending", "weekday_quota": 30, "holiday_quota": 1}]}`)
	f, err := ParseRosterFile(data)
	require.NoError(t, err)

	conv, err := Convert(f, domain.DefaultConstraints())
	require.NoError(t, err)
	assert.Len(t, conv.Roster.Weekdays, 1)
	assert.Len(t, conv.Roster.Holidays, 1)
	require.Len(t, conv.Warnings, 1)
	assert.Contains(t, conv.Warnings[0], "weekday_quota 30")
}

func TestConvert_RejectsInvalid(t *testing.T) {
	f := validFile()
	f.Doctors[0].Role = "surgeon"
	_, err := Convert(f, domain.DefaultConstraints())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role must be one of")
}

func TestConvert_InvalidConstraintOverride(t *testing.T) {
	f := validFile()
	zero := 0
	f.Constraints = &ConstraintsImport{BeamWidth: &zero}
	_, err := Convert(f, domain.DefaultConstraints())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beam_width")
}

func TestParseRosterFile_UnknownField(t *testing.T) {
	_, err := ParseRosterFile([]byte("horizon: {weekdays: [2025-08-04]}\ndoctor: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doctor")
}

func TestParseRosterFile_Empty(t *testing.T) {
	_, err := ParseRosterFile(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadRosterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rangeRoster), 0o644))

	f, err := LoadRosterFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Doctors, 2)

	_, err = LoadRosterFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConvertSchedule(t *testing.T) {
	conv, err := Convert(validFile(), domain.DefaultConstraints())
	require.NoError(t, err)

	s, err := ConvertSchedule(&ScheduleFile{Assignments: []AssignmentImport{
		{Date: "2025-08-04", Attending: "att-a", Resident: "res-a"},
		{Date: "2025-08-09", Resident: "res-a"},
	}}, conv.Roster)
	require.NoError(t, err)
	assert.Equal(t, 3, s.FilledSlots())
	assert.Equal(t, "att-a", s.Get(domain.MustParseDate("2025-08-04"), domain.RoleAttending))

	_, err = ConvertSchedule(&ScheduleFile{Assignments: []AssignmentImport{
		{Date: "2025-09-01", Attending: "att-a"},
	}}, conv.Roster)
	assert.ErrorIs(t, err, domain.ErrUnknownDate)
}
