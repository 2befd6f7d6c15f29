package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/testutil"
)

func makeState(id string, seed int64, score float64) SearchState {
	return SearchState{ID: id, Seed: seed, Score: ScoreBreakdown{Total: score}}
}

func TestCanonicalSort_ScoreFirst(t *testing.T) {
	states := []SearchState{
		makeState("a", 0, 900),
		makeState("b", 1, 1250),
		makeState("c", 2, 1000),
	}

	CanonicalSort(states)

	assert.Equal(t, []string{"b", "c", "a"}, []string{states[0].ID, states[1].ID, states[2].ID})
}

func TestCanonicalSort_SeedThenIDTiebreak(t *testing.T) {
	states := []SearchState{
		makeState("z", 3, 1000),
		makeState("y", 1, 1000),
		makeState("x", 1, 1000),
	}

	CanonicalSort(states)

	assert.Equal(t, "x", states[0].ID, "same score and seed falls back to id")
	assert.Equal(t, "y", states[1].ID)
	assert.Equal(t, "z", states[2].ID, "higher seed sorts last")
}

func TestLeastLoaded(t *testing.T) {
	used := domain.QuotaUsage{
		"busy":  {Weekday: 3, Holiday: 1},
		"light": {Weekday: 1},
		"also":  {Holiday: 1},
	}
	names := []string{"busy", "light", "idle", "also"}

	LeastLoaded(names, used)

	assert.Equal(t, []string{"idle", "also", "light", "busy"}, names)
}

func TestScarcestFirst_StableOnTies(t *testing.T) {
	doctors := []*domain.Doctor{
		testutil.NewTestDoctor("first", domain.RoleAttending, testutil.WithUnavailable("2025-08-04")),
		testutil.NewTestDoctor("scarce", domain.RoleAttending, testutil.WithUnavailable("2025-08-04", "2025-08-05")),
		testutil.NewTestDoctor("second", domain.RoleAttending, testutil.WithUnavailable("2025-08-06")),
	}

	ScarcestFirst(doctors)

	assert.Equal(t, "scarce", doctors[0].Name)
	assert.Equal(t, "first", doctors[1].Name)
	assert.Equal(t, "second", doctors[2].Name)
}
