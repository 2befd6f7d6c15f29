package resolver

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
	"github.com/alexanderramin/dutyroster/internal/testutil"
)

var (
	aug2 = domain.MustParseDate("2025-08-02")
	aug4 = domain.MustParseDate("2025-08-04")
	aug5 = domain.MustParseDate("2025-08-05")
	aug6 = domain.MustParseDate("2025-08-06")
)

func attending(d domain.Date) domain.SlotRef {
	return domain.SlotRef{Date: d, Role: domain.RoleAttending}
}

func newResolver(t *testing.T, roster *domain.Roster, c domain.ScheduleConstraints, assign map[domain.SlotRef]string) *Resolver {
	t.Helper()
	s := roster.NewSchedule()
	for ref, name := range assign {
		require.NoError(t, s.Set(ref.Date, ref.Role, name))
	}
	return New(scheduler.NewOracle(roster, c), s, c)
}

func TestAnalyzeGaps_NoCandidates(t *testing.T) {
	roster := testutil.NewTestRoster(t, []*domain.Doctor{
		testutil.NewTestDoctor("A", domain.RoleAttending, testutil.WithUnavailable("2025-08-04")),
		testutil.NewTestDoctor("R", domain.RoleResident),
	}, []domain.Date{aug4}, nil)
	r := newResolver(t, roster, domain.DefaultConstraints(), map[domain.SlotRef]string{
		{Date: aug4, Role: domain.RoleResident}: "R",
	})

	gaps := r.AnalyzeGaps()
	require.Len(t, gaps, 1)
	g := gaps[0]
	assert.Equal(t, attending(aug4), g.Ref())
	assert.Empty(t, g.WithQuota)
	assert.Empty(t, g.OverQuota)
	assert.Equal(t, GapNoCandidates, g.Reason())
	assert.Equal(t, 100.0, g.Uniqueness)
	assert.Equal(t, 100.0, g.OpportunityCost)
	assert.Equal(t, 100.0, g.Severity)

	report := r.RunAutoFillWithBacktracking(context.Background())
	require.Len(t, report.RemainingGaps, 1)
	assert.Equal(t, GapNoCandidates, report.RemainingGaps[0].Reason)
	assert.Equal(t, "no doctor available", report.RemainingGaps[0].Message)
	assert.Equal(t, StopExhausted, report.StoppedBy)
	assert.Equal(t, 1, report.Backtracks)
}

func TestAnalyzeGaps_ScoringAndOrder(t *testing.T) {
	roster := testutil.NewTestRoster(t, []*domain.Doctor{
		testutil.NewTestDoctor("A1", domain.RoleAttending, testutil.WithQuota(1, 0)),
		testutil.NewTestDoctor("A2", domain.RoleAttending, testutil.WithQuota(0, 0)),
		testutil.NewTestDoctor("R", domain.RoleResident, testutil.WithQuota(5, 5)),
	}, []domain.Date{aug4}, []domain.Date{aug2})
	r := newResolver(t, roster, domain.DefaultConstraints(), nil)

	gaps := r.AnalyzeGaps()
	require.Len(t, gaps, 4)
	for i := 1; i < len(gaps); i++ {
		assert.GreaterOrEqual(t, gaps[i-1].Priority, gaps[i].Priority)
	}

	byRef := map[domain.SlotRef]Gap{}
	for _, g := range gaps {
		byRef[g.Ref()] = g
	}
	holiday := byRef[attending(aug2)]
	assert.True(t, holiday.IsHoliday)
	assert.True(t, holiday.IsWeekend)
	assert.Empty(t, holiday.WithQuota)
	assert.ElementsMatch(t, []string{"A1", "A2"}, holiday.OverQuota)
	assert.Equal(t, 60.0, holiday.Uniqueness)
	assert.Equal(t, 50.0, holiday.OpportunityCost)
	assert.Equal(t, 4.0, holiday.FutureImpact) // two days before the horizon end
	assert.Equal(t, 100.0, holiday.Severity)

	weekday := byRef[attending(aug4)]
	assert.Equal(t, []string{"A1"}, weekday.WithQuota)
	assert.Equal(t, []string{"A2"}, weekday.OverQuota)
	assert.Equal(t, 0.0, weekday.FutureImpact)
	assert.Equal(t, 55.0, weekday.Severity)
	assert.InDelta(t, 0.3*55+0.3*10+0.2*0+0.2*60, weekday.Priority, 1e-9)
}

func TestTryDirectFill_LeastLoaded(t *testing.T) {
	roster := testutil.NewTestRoster(t, []*domain.Doctor{
		testutil.NewTestDoctor("A1", domain.RoleAttending),
		testutil.NewTestDoctor("A2", domain.RoleAttending),
	}, []domain.Date{aug4, aug5, aug6}, nil)
	r := newResolver(t, roster, domain.DefaultConstraints(), map[domain.SlotRef]string{attending(aug4): "A1"})

	name, err := r.TryDirectFill(attending(aug6))
	require.NoError(t, err)
	assert.Equal(t, "A2", name)

	_, err = r.TryDirectFill(attending(aug6))
	assert.ErrorIs(t, err, ErrSlotFilled)

	require.NoError(t, r.Undo())
	assert.Equal(t, "", r.Schedule().Get(aug6, domain.RoleAttending))
	assert.ErrorIs(t, r.Undo(), ErrNothingToUndo)
}

func TestAssign_Checked(t *testing.T) {
	roster := testutil.NewTestRoster(t, []*domain.Doctor{
		testutil.NewTestDoctor("A", domain.RoleAttending, testutil.WithUnavailable("2025-08-04")),
	}, []domain.Date{aug4}, nil)
	r := newResolver(t, roster, domain.DefaultConstraints(), nil)

	err := r.Assign(attending(aug4), "A")
	var rej *scheduler.RejectError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, scheduler.ReasonUnavailable, rej.Reason)
	assert.Equal(t, 0, r.Schedule().FilledSlots())
}

func TestRestrictionReasons(t *testing.T) {
	roster := testutil.NewTestRoster(t, []*domain.Doctor{
		testutil.NewTestDoctor("A1", domain.RoleAttending, testutil.WithQuota(0, 0), testutil.WithUnavailable("2025-08-04")),
		testutil.NewTestDoctor("A2", domain.RoleAttending),
	}, []domain.Date{aug4}, nil)
	r := newResolver(t, roster, domain.DefaultConstraints(), nil)

	reasons := r.RestrictionReasons(attending(aug4))
	assert.Equal(t, []scheduler.Reason{scheduler.ReasonQuotaExceeded, scheduler.ReasonUnavailable}, reasons["A1"])
	assert.NotContains(t, reasons, "A2")
}

// TestAutoFill_GapCountNeverGrows property-tests the auto-fill loop over
// random rosters: every reported action leaves at least as many filled slots
// as before, and the result never breaks a hard constraint.
func TestAutoFill_GapCountNeverGrows(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := domain.DefaultConstraints()
	c.SearchBudgetSecs = 5
	c.SwapSearchDepth = 2
	c.NeighborExpansion = 3

	for trial := 0; trial < 50; trial++ {
		roster := testutil.RandomRoster(rng)
		base, err := scheduler.NewGenerator(roster, c).Generate(context.Background(), int64(trial))
		require.NoError(t, err)

		r := New(scheduler.NewOracle(roster, c), base, c)
		filled := base.FilledSlots()
		r.OnProgress = func(e Event) {
			now := r.Schedule().FilledSlots()
			assert.GreaterOrEqual(t, now, filled, "trial %d: %s shrank the schedule", trial, e.Kind)
			filled = now
		}

		report := r.RunAutoFillWithBacktracking(context.Background())

		assert.Equal(t, base.FilledSlots()+report.DirectFills+report.SwapChainsApplied, r.Schedule().FilledSlots(), "trial %d", trial)
		assert.Len(t, report.RemainingGaps, r.Schedule().TotalSlots()-r.Schedule().FilledSlots(), "trial %d", trial)
		assert.Empty(t, r.ValidateAllConstraints(), "trial %d", trial)
	}
}

func TestReport_Classification(t *testing.T) {
	roster := testutil.NewTestRoster(t, []*domain.Doctor{
		testutil.NewTestDoctor("A1", domain.RoleAttending, testutil.WithQuota(1, 0)),
		testutil.NewTestDoctor("A2", domain.RoleAttending, testutil.WithQuota(0, 0)),
	}, []domain.Date{aug4}, []domain.Date{aug2})
	r := newResolver(t, roster, domain.DefaultConstraints(), nil)

	rep := r.Report()
	assert.Equal(t, 4, rep.TotalSlots)
	assert.Equal(t, 4, rep.Unfilled)
	assert.Len(t, rep.Easy, 1)   // Aug 4 attending
	assert.Len(t, rep.Medium, 1) // Aug 2 attending
	assert.Len(t, rep.Hard, 2)   // no residents
	assert.Len(t, rep.Critical, 4)
	assert.Zero(t, rep.QuotaUtilization)
}
