package csp

import (
	"context"
	"time"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

// FillResult reports what FillGaps did to a candidate schedule.
type FillResult struct {
	Schedule     *domain.Schedule
	Solved       bool // the CSP found a complete assignment
	CSPFilled    int
	FallbackFill int
	Stats        Stats
}

// FillGaps works on a copy of base. It solves the CSP over the fillable
// gaps; when that fails or times out, a heuristic pass gives each remaining
// gap to the eligible doctor with the fewest duties. Every write goes through
// the oracle, so the result never breaks a hard constraint.
func FillGaps(ctx context.Context, oracle *scheduler.Oracle, base *domain.Schedule, timeout time.Duration) FillResult {
	work := base.Clone()
	res := FillResult{Schedule: work}

	p := NewProblem(oracle, work)
	if len(p.Variables) == 0 {
		return res
	}

	solver := NewSolver(p)
	if a, ok := solver.Solve(ctx, timeout); ok {
		res.Solved = true
		res.CSPFilled = commit(oracle, work, p, a)
	}
	res.Stats = solver.Stats()
	res.FallbackFill = fallbackFill(oracle, work)
	return res
}

// commit writes a solution in variable order, rechecking each slot.
func commit(oracle *scheduler.Oracle, s *domain.Schedule, p *Problem, a Assignment) int {
	used := s.Usage()
	n := 0
	for _, v := range p.Variables {
		name, ok := a[v.Ref]
		if !ok || oracle.CanAssign(name, v.Ref.Date, v.Ref.Role, s, used) != nil {
			continue
		}
		_ = s.Set(v.Ref.Date, v.Ref.Role, name)
		used.Inc(name, s.Kind(v.Ref.Date))
		n++
	}
	return n
}

func fallbackFill(oracle *scheduler.Oracle, s *domain.Schedule) int {
	used := s.Usage()
	n := 0
	for _, ref := range s.Unfilled() {
		var names []string
		for _, doc := range oracle.Roster().ByRole(ref.Role) {
			if oracle.CanAssign(doc.Name, ref.Date, ref.Role, s, used) == nil {
				names = append(names, doc.Name)
			}
		}
		if len(names) == 0 {
			continue
		}
		scheduler.LeastLoaded(names, used)
		_ = s.Set(ref.Date, ref.Role, names[0])
		used.Inc(names[0], s.Kind(ref.Date))
		n++
	}
	return n
}
