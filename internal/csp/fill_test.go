package csp

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
	"github.com/alexanderramin/dutyroster/internal/testutil"
)

func TestFillGaps_EmptyScheduleFullySolved(t *testing.T) {
	roster := testutil.NewTestRoster(t, []*domain.Doctor{
		testutil.NewTestDoctor("A1", domain.RoleAttending, testutil.WithQuota(2, 1)),
		testutil.NewTestDoctor("A2", domain.RoleAttending, testutil.WithQuota(2, 1)),
		testutil.NewTestDoctor("R1", domain.RoleResident, testutil.WithQuota(2, 1)),
		testutil.NewTestDoctor("R2", domain.RoleResident, testutil.WithQuota(2, 1)),
	}, []domain.Date{aug4, aug5}, []domain.Date{aug2})
	oracle := scheduler.NewOracle(roster, domain.DefaultConstraints())
	base := roster.NewSchedule()

	res := FillGaps(context.Background(), oracle, base, time.Second)

	assert.True(t, res.Solved)
	assert.Equal(t, 6, res.CSPFilled)
	assert.Zero(t, res.FallbackFill)
	assert.Equal(t, 1.0, scheduler.FillRate(res.Schedule))
	assert.Empty(t, scheduler.ValidateAll(roster, res.Schedule, 2))
	assert.Zero(t, base.FilledSlots(), "base schedule must not be modified")
}

func TestFillGaps_ConsecutiveLimitStillBinds(t *testing.T) {
	roster := testutil.NewTestRoster(t, []*domain.Doctor{
		testutil.NewTestDoctor("A", domain.RoleAttending, testutil.WithQuota(10, 10)),
	}, []domain.Date{aug4, aug5, aug6}, nil)
	oracle := scheduler.NewOracle(roster, domain.DefaultConstraints())
	base := roster.NewSchedule()
	require.NoError(t, base.Set(aug4, domain.RoleAttending, "A"))
	require.NoError(t, base.Set(aug5, domain.RoleAttending, "A"))

	res := FillGaps(context.Background(), oracle, base, time.Second)

	assert.Equal(t, "", res.Schedule.Get(aug6, domain.RoleAttending))
	assert.Zero(t, res.CSPFilled+res.FallbackFill)
}

func TestFillGaps_FallbackAfterFailure(t *testing.T) {
	// Two slots, one doctor with quota 1: the CSP has no complete solution,
	// the fallback still places the doctor once.
	roster := testutil.NewTestRoster(t, []*domain.Doctor{
		testutil.NewTestDoctor("A", domain.RoleAttending, testutil.WithQuota(1, 0)),
	}, []domain.Date{aug4, aug5}, nil)
	oracle := scheduler.NewOracle(roster, domain.DefaultConstraints())

	res := FillGaps(context.Background(), oracle, roster.NewSchedule(), time.Second)

	assert.False(t, res.Solved)
	assert.Equal(t, 1, res.FallbackFill)
	assert.Equal(t, 1, res.Schedule.FilledSlots())
}

func TestFillGaps_FallbackPrefersLeastLoaded(t *testing.T) {
	roster := testutil.NewTestRoster(t, []*domain.Doctor{
		testutil.NewTestDoctor("A1", domain.RoleAttending),
		testutil.NewTestDoctor("A2", domain.RoleAttending),
	}, []domain.Date{aug4, aug5, aug6}, nil)
	oracle := scheduler.NewOracle(roster, domain.DefaultConstraints())
	base := roster.NewSchedule()
	require.NoError(t, base.Set(aug4, domain.RoleAttending, "A1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := FillGaps(ctx, oracle, base, time.Second)

	assert.True(t, res.Stats.TimedOut)
	assert.Equal(t, "A2", res.Schedule.Get(aug5, domain.RoleAttending))
}

// TestFillGaps_NeverBreaksConstraints runs generator output through the gap
// filler over random rosters.
func TestFillGaps_NeverBreaksConstraints(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := domain.DefaultConstraints()

	for trial := 0; trial < 100; trial++ {
		roster := testutil.RandomRoster(rng)
		oracle := scheduler.NewOracle(roster, c)
		base, err := scheduler.NewGenerator(roster, c).Generate(context.Background(), int64(trial))
		require.NoError(t, err)

		res := FillGaps(context.Background(), oracle, base, 200*time.Millisecond)

		assert.Empty(t, scheduler.ValidateAll(roster, res.Schedule, c.MaxConsecutiveDays), "trial %d", trial)
		assert.GreaterOrEqual(t, res.Schedule.FilledSlots(), base.FilledSlots(), "trial %d", trial)
	}
}
