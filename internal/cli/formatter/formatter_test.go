package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/repository"
	"github.com/alexanderramin/dutyroster/internal/resolver"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
	"github.com/alexanderramin/dutyroster/internal/testutil"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestFormatCalendar_MarksPreferencesAndGaps(t *testing.T) {
	roster := testutil.NewTestRoster(t,
		[]*domain.Doctor{
			testutil.NewTestDoctor("Adams", domain.RoleAttending, testutil.WithPreferred("2025-08-01")),
			testutil.NewTestDoctor("Baker", domain.RoleResident),
		},
		testutil.Dates("2025-08-01"),
		testutil.Dates("2025-08-02"),
	)
	s := roster.NewSchedule()
	require.NoError(t, s.Set(domain.MustParseDate("2025-08-01"), domain.RoleAttending, "Adams"))
	require.NoError(t, s.Set(domain.MustParseDate("2025-08-02"), domain.RoleResident, "Baker"))

	out := stripANSI(FormatCalendar(roster, s))

	assert.Contains(t, out, "2025-08-01")
	assert.Contains(t, out, "Fri")
	assert.Contains(t, out, "Sat")
	assert.Contains(t, out, "Adams ★")
	assert.NotContains(t, out, "Baker ★")
	assert.Contains(t, out, "holiday")
	assert.Contains(t, out, gapCell)
}

func TestFormatLoads(t *testing.T) {
	out := stripANSI(FormatLoads([]scheduler.DoctorLoad{
		{Name: "Adams", Role: domain.RoleAttending, Used: domain.UsedQuota{Weekday: 2, Holiday: 1}, Weekday: 3, Holiday: 1},
	}))
	assert.Contains(t, out, "Adams")
	assert.Contains(t, out, "2/3")
	assert.Contains(t, out, "1/1")
}

func TestFormatGaps(t *testing.T) {
	assert.Contains(t, stripANSI(FormatGaps(nil)), "No gaps")

	gaps := []resolver.Gap{
		{Date: domain.MustParseDate("2025-08-02"), Role: domain.RoleResident, IsHoliday: true, Priority: 82.5},
		{Date: domain.MustParseDate("2025-08-04"), Role: domain.RoleAttending, OverQuota: []string{"Adams"}, Priority: 40},
	}
	out := stripANSI(FormatGaps(gaps))
	assert.Contains(t, out, "82.5")
	assert.Contains(t, out, string(resolver.GapNoCandidates))
	assert.Contains(t, out, string(resolver.GapAllOverQuota))
	assert.Contains(t, out, "Adams")
}

func TestFormatRestrictions_SortedByName(t *testing.T) {
	out := stripANSI(FormatRestrictions(map[string][]scheduler.Reason{
		"Zed":   {scheduler.ReasonUnavailable},
		"Adams": {scheduler.ReasonQuotaExceeded, scheduler.ReasonConsecutiveLimit},
	}))
	assert.Less(t, strings.Index(out, "Adams"), strings.Index(out, "Zed"))
	assert.Contains(t, out, "quota_exceeded, consecutive_limit")

	assert.Contains(t, stripANSI(FormatRestrictions(nil)), "nobody is blocked")
}

func TestFormatChain(t *testing.T) {
	chain := resolver.SwapChain{
		Gap:        domain.SlotRef{Date: domain.MustParseDate("2025-08-04"), Role: domain.RoleResident},
		TotalScore: 20,
		Steps: []resolver.SwapStep{
			{Kind: resolver.StepMove, Doctor: "Baker", Description: "move Baker from 2025-08-05 to 2025-08-04"},
			{Kind: resolver.StepFill, Doctor: "Cole", Description: "Cole takes 2025-08-05"},
		},
	}
	out := stripANSI(FormatChain(chain))
	assert.Contains(t, out, "2025-08-04/resident")
	assert.Contains(t, out, "1 move(s)")
	assert.Contains(t, out, "1. → move Baker")
	assert.Contains(t, out, "2. + Cole takes")
}

func TestFormatProblems(t *testing.T) {
	assert.Contains(t, stripANSI(FormatProblems(nil)), "Supply covers demand")

	out := stripANSI(FormatProblems([]scheduler.Problem{
		{Kind: scheduler.ProblemNoneAvailable, Role: domain.RoleResident, Date: domain.MustParseDate("2025-08-04"), Message: "nobody free"},
		{Kind: scheduler.ProblemNoDoctors, Role: domain.RoleAttending, Message: "no attending doctors on the roster"},
	}))
	assert.Contains(t, out, "2 feasibility problem(s)")
	assert.Contains(t, out, "resident 2025-08-04 nobody free")
	assert.Contains(t, out, "attending no attending doctors")
}

func TestFormatResult(t *testing.T) {
	res := scheduler.ScheduleResult{
		Score: scheduler.ScoreBreakdown{Total: 1250},
		Violations: []scheduler.Violation{
			{Kind: scheduler.ViolationUnavailable, Doctor: "Adams", Date: domain.MustParseDate("2025-08-04"), Role: domain.RoleAttending, Message: "Adams is unavailable"},
		},
		Suggestions: []scheduler.Suggestion{
			{Slot: domain.SlotRef{Date: domain.MustParseDate("2025-08-05"), Role: domain.RoleResident}, OverQuota: []string{"Baker"}},
		},
		Stats: scheduler.Statistics{TotalSlots: 4, FillRate: 0.75},
	}
	out := stripANSI(FormatResult(res))
	assert.Contains(t, out, "1250.0")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "2025-08-05/resident")
	assert.Contains(t, out, "over quota: Baker")
}

func TestFormatRunList(t *testing.T) {
	assert.Contains(t, stripANSI(FormatRunList(nil)), "No saved runs")

	out := stripANSI(FormatRunList([]repository.RunSummary{
		{ID: "0123456789abcdef", Seed: 7, Score: 1200, FillRate: 0.5, TotalSlots: 4, FilledSlots: 2, Gaps: 2, CreatedAt: "2025-08-01 09:00"},
	}))
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "2/4")
}

func TestFormatRun(t *testing.T) {
	run := testutil.NewTestRun("run-1",
		testutil.WithAssignment("2025-08-04", domain.RoleAttending, "Adams"),
		testutil.WithGap("2025-08-04", domain.RoleResident, string(resolver.GapNoCandidates)),
	)
	out := stripANSI(FormatRun(run))
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Adams")
	assert.Contains(t, out, "REMAINING GAPS")
	assert.Contains(t, out, "no_candidates")
}

func TestRenderProgress(t *testing.T) {
	assert.Equal(t, "[█████░░░░░]  50%", stripANSI(RenderProgress(0.5, 10)))
	assert.Equal(t, "[░░░░░░░░░░]   0%", stripANSI(RenderProgress(-1, 10)))
	assert.Equal(t, "[██████████] 100%", stripANSI(RenderProgress(1.4, 10)))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Microsecond, "<1ms"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := stripANSI(RenderTable([]string{"A", "B"}, [][]string{
		{StyleRed.Render("long value"), "x"},
		{"s", "y"},
	}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[2], "x"), strings.Index(lines[3], "y"))
}
