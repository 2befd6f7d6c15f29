package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

const (
	MethodGreedy = "greedy"
	MethodCSP    = "csp"
	MethodSwap   = "swap"
)

// shuffleProbability is the chance a randomized seed shuffles candidates
// outright instead of ranking them by noisy scarcity.
const shuffleProbability = 0.3

// SearchState is one candidate schedule with its score and lineage. ParentID
// names the state it was derived from; greedy states have none.
type SearchState struct {
	ID       string
	ParentID string
	Seed     int64
	Method   string
	Score    ScoreBreakdown
	Schedule *domain.Schedule
}

func NewSearchState(roster *domain.Roster, s *domain.Schedule, seed int64, method, parentID string) SearchState {
	return SearchState{
		ID:       uuid.New().String(),
		ParentID: parentID,
		Seed:     seed,
		Method:   method,
		Score:    ScoreSchedule(roster, s),
		Schedule: s,
	}
}

// ProgressFunc receives the number of completed seeds out of total.
type ProgressFunc func(done, total int)

// Generator builds full-horizon schedules with a preference pass followed by
// a greedy fill pass, and runs several seeds to collect diverse candidates.
type Generator struct {
	roster     *domain.Roster
	oracle     *Oracle
	beamWidth  int
	OnProgress ProgressFunc
}

func NewGenerator(roster *domain.Roster, c domain.ScheduleConstraints) *Generator {
	return &Generator{
		roster:    roster,
		oracle:    NewOracle(roster, c),
		beamWidth: c.BeamWidth,
	}
}

func (g *Generator) Oracle() *Oracle { return g.oracle }

// Generate runs one seeded construction. Seed 0 is fully deterministic
// (scarcest doctors first); other seeds add randomness to candidate order.
func (g *Generator) Generate(ctx context.Context, seed int64) (*domain.Schedule, error) {
	rng := rand.New(rand.NewSource(seed))
	s := g.roster.NewSchedule()
	used := make(domain.QuotaUsage)
	order := s.WorkOrder()

	for _, date := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, role := range domain.Roles {
			if name := g.pickPreferred(rng, s, used, date, role); name != "" {
				g.place(s, used, date, role, name)
			}
		}
	}

	for _, date := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, role := range domain.Roles {
			if s.Get(date, role) != "" {
				continue
			}
			candidates := g.assignable(s, used, date, role)
			if len(candidates) == 0 {
				continue
			}
			g.rank(rng, seed, candidates)
			g.place(s, used, date, role, candidates[0].Name)
		}
	}
	return s, nil
}

// Candidates runs 3 × beam_width seeds, drops duplicate schedules and keeps
// the best beam_width by score. When the deterministic seed already fills
// every slot it is returned alone.
func (g *Generator) Candidates(ctx context.Context) ([]SearchState, error) {
	first, err := g.Generate(ctx, 0)
	if err != nil {
		return nil, err
	}
	total := 3 * g.beamWidth
	g.report(1, total)
	if first.FilledSlots() == first.TotalSlots() {
		return []SearchState{NewSearchState(g.roster, first, 0, MethodGreedy, "")}, nil
	}

	schedules := make([]*domain.Schedule, total)
	schedules[0] = first

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := 1; i < total; i++ {
		seed := int64(i)
		eg.Go(func() error {
			s, err := g.Generate(egCtx, seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			schedules[seed] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	g.report(total, total)

	seen := make(map[string]bool, total)
	states := make([]SearchState, 0, total)
	for seed, s := range schedules {
		sig := s.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		states = append(states, NewSearchState(g.roster, s, int64(seed), MethodGreedy, ""))
	}
	CanonicalSort(states)
	if len(states) > g.beamWidth {
		states = states[:g.beamWidth]
	}
	return states, nil
}

func (g *Generator) report(done, total int) {
	if g.OnProgress != nil {
		g.OnProgress(done, total)
	}
}

// pickPreferred chooses among the doctors preferring (date, role) the one
// with the most unavailable dates; ties go to the seeded PRNG.
func (g *Generator) pickPreferred(rng *rand.Rand, s *domain.Schedule, used domain.QuotaUsage, date domain.Date, role domain.Role) string {
	var best []string
	bestCount := -1
	for _, name := range g.roster.Preferring(date, role) {
		if g.oracle.CanAssign(name, date, role, s, used) != nil {
			continue
		}
		doc, _ := g.roster.Doctor(name)
		switch n := doc.UnavailableCount(); {
		case n > bestCount:
			best, bestCount = []string{name}, n
		case n == bestCount:
			best = append(best, name)
		}
	}
	switch len(best) {
	case 0:
		return ""
	case 1:
		return best[0]
	}
	return best[rng.Intn(len(best))]
}

func (g *Generator) assignable(s *domain.Schedule, used domain.QuotaUsage, date domain.Date, role domain.Role) []*domain.Doctor {
	var out []*domain.Doctor
	for _, doc := range g.roster.ByRole(role) {
		if g.oracle.CanAssign(doc.Name, date, role, s, used) == nil {
			out = append(out, doc)
		}
	}
	return out
}

func (g *Generator) rank(rng *rand.Rand, seed int64, candidates []*domain.Doctor) {
	if seed == 0 {
		ScarcestFirst(candidates)
		return
	}
	if rng.Float64() < shuffleProbability {
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		return
	}
	keys := make(map[string]float64, len(candidates))
	for _, doc := range candidates {
		keys[doc.Name] = float64(doc.UnavailableCount()) + rng.Float64()*3
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return keys[candidates[i].Name] > keys[candidates[j].Name]
	})
}

func (g *Generator) place(s *domain.Schedule, used domain.QuotaUsage, date domain.Date, role domain.Role, name string) {
	// date comes from the schedule's own work order, so Set cannot fail.
	_ = s.Set(date, role, name)
	used.Inc(name, s.Kind(date))
}
