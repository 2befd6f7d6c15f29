package scheduler

import (
	"sort"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

// ScarcestFirst orders doctors by descending unavailable count. Ties keep
// input order so the deterministic run is reproducible.
func ScarcestFirst(doctors []*domain.Doctor) {
	sort.SliceStable(doctors, func(i, j int) bool {
		return doctors[i].UnavailableCount() > doctors[j].UnavailableCount()
	})
}

// LeastLoaded orders doctor names by ascending total duties, then name.
func LeastLoaded(names []string, used domain.QuotaUsage) {
	sort.SliceStable(names, func(i, j int) bool {
		a, b := used[names[i]].Total(), used[names[j]].Total()
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
}

// CanonicalSort orders search states by the deterministic canonical rules:
// 1. Score: higher first
// 2. Seed: lower first
// 3. ID: lexical ascending
func CanonicalSort(states []SearchState) {
	sort.SliceStable(states, func(i, j int) bool {
		a, b := states[i], states[j]

		if a.Score.Total != b.Score.Total {
			return a.Score.Total > b.Score.Total
		}
		if a.Seed != b.Seed {
			return a.Seed < b.Seed
		}
		return a.ID < b.ID
	})
}
