package csp

import (
	"context"
	"sort"
	"time"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

// Stats describes one Solve call.
type Stats struct {
	Variables  int
	Nodes      int
	Backtracks int
	Pruned     int
	TimedOut   bool
	// ArcInconsistent is set when AC-3 emptied a domain before search.
	ArcInconsistent bool
}

// Solver runs AC-3 followed by a depth-first search with MRV variable
// ordering, LCV value ordering and forward checking. Conflict sets are
// recorded per variable as the search fails.
type Solver struct {
	problem   *Problem
	order     map[domain.SlotRef]int
	domains   map[domain.SlotRef][]string
	involving map[domain.SlotRef][]*Constraint
	neighbors map[domain.SlotRef][]domain.SlotRef
	conflicts map[domain.SlotRef]map[domain.SlotRef]bool
	deadline  time.Time
	stats     Stats
}

func NewSolver(p *Problem) *Solver {
	s := &Solver{
		problem:   p,
		order:     make(map[domain.SlotRef]int, len(p.Variables)),
		domains:   make(map[domain.SlotRef][]string, len(p.Variables)),
		involving: make(map[domain.SlotRef][]*Constraint),
		neighbors: make(map[domain.SlotRef][]domain.SlotRef),
		conflicts: make(map[domain.SlotRef]map[domain.SlotRef]bool),
	}
	for i, v := range p.Variables {
		s.order[v.Ref] = i
		s.domains[v.Ref] = append([]string(nil), v.Domain...)
	}
	for _, c := range p.Constraints {
		for _, ref := range c.Scope {
			s.involving[ref] = append(s.involving[ref], c)
		}
		if c.binary() {
			x, y := c.Scope[0], c.Scope[1]
			s.neighbors[x] = append(s.neighbors[x], y)
			s.neighbors[y] = append(s.neighbors[y], x)
		}
	}
	s.stats.Variables = len(p.Variables)
	return s
}

func (s *Solver) Stats() Stats { return s.stats }

// Domain returns the current domain of a variable, after any pruning.
func (s *Solver) Domain(ref domain.SlotRef) []string { return s.domains[ref] }

// Conflicts returns the variables recorded as culprits when ref failed.
func (s *Solver) Conflicts(ref domain.SlotRef) []domain.SlotRef {
	out := make([]domain.SlotRef, 0, len(s.conflicts[ref]))
	for c := range s.conflicts[ref] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i]] < s.order[out[j]] })
	return out
}

// Solve returns a complete assignment of every variable, or false when AC-3
// empties a domain, the search is exhausted, or the timeout (or ctx) expires.
// A zero timeout means no limit beyond ctx.
func (s *Solver) Solve(ctx context.Context, timeout time.Duration) (Assignment, bool) {
	if timeout > 0 {
		s.deadline = time.Now().Add(timeout)
	}
	if !s.AC3() {
		s.stats.ArcInconsistent = true
		return nil, false
	}
	return s.search(ctx, make(Assignment, len(s.problem.Variables)))
}

// AC3 enforces arc consistency over the binary constraints. It reports false
// when some domain becomes empty.
func (s *Solver) AC3() bool {
	type arc struct{ x, y domain.SlotRef }
	var queue []arc
	for _, c := range s.problem.Constraints {
		if c.binary() {
			queue = append(queue, arc{c.Scope[0], c.Scope[1]}, arc{c.Scope[1], c.Scope[0]})
		}
	}
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		if !s.revise(a.x, a.y) {
			continue
		}
		if len(s.domains[a.x]) == 0 {
			return false
		}
		for _, k := range s.neighbors[a.x] {
			if k != a.y {
				queue = append(queue, arc{k, a.x})
			}
		}
	}
	return true
}

// revise drops values of x that have no supporting value in y.
func (s *Solver) revise(x, y domain.SlotRef) bool {
	shared := s.shared(x, y)
	kept := s.domains[x][:0:0]
	for _, vx := range s.domains[x] {
		supported := false
		for _, vy := range s.domains[y] {
			if satisfiesAll(shared, Assignment{x: vx, y: vy}) {
				supported = true
				break
			}
		}
		if supported {
			kept = append(kept, vx)
		}
	}
	revised := len(kept) != len(s.domains[x])
	s.stats.Pruned += len(s.domains[x]) - len(kept)
	s.domains[x] = kept
	return revised
}

func (s *Solver) shared(x, y domain.SlotRef) []*Constraint {
	var out []*Constraint
	for _, c := range s.involving[x] {
		if c.Involves(y) {
			out = append(out, c)
		}
	}
	return out
}

func satisfiesAll(cs []*Constraint, a Assignment) bool {
	for _, c := range cs {
		if !c.Satisfied(a) {
			return false
		}
	}
	return true
}

func (s *Solver) expired(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

func (s *Solver) search(ctx context.Context, a Assignment) (Assignment, bool) {
	if s.expired(ctx) {
		s.stats.TimedOut = true
		return nil, false
	}
	if len(a) == len(s.problem.Variables) {
		return a.clone(), true
	}

	v := s.selectVariable(a)
	for _, val := range s.orderValues(v, a) {
		s.stats.Nodes++
		a[v] = val
		if culprits := s.violations(v, a); len(culprits) > 0 {
			s.recordConflicts(v, culprits)
			delete(a, v)
			continue
		}

		snapshot := s.snapshot()
		if s.forwardCheck(v, a) {
			if res, ok := s.search(ctx, a); ok {
				return res, true
			}
		}
		s.restore(snapshot)
		delete(a, v)
		if s.stats.TimedOut {
			return nil, false
		}
	}
	s.stats.Backtracks++
	return nil, false
}

// selectVariable picks the unassigned variable with the fewest remaining
// values, preferring the one in more constraints, then input order.
func (s *Solver) selectVariable(a Assignment) domain.SlotRef {
	var best domain.SlotRef
	found := false
	for _, v := range s.problem.Variables {
		if _, ok := a[v.Ref]; ok {
			continue
		}
		if !found {
			best, found = v.Ref, true
			continue
		}
		dv, db := len(s.domains[v.Ref]), len(s.domains[best])
		if dv < db || (dv == db && len(s.involving[v.Ref]) > len(s.involving[best])) {
			best = v.Ref
		}
	}
	return best
}

// orderValues sorts the domain so that values ruling out the fewest options
// of neighbouring variables come first. The global quota constraint is left
// out of the count; values with more quota headroom win ties.
func (s *Solver) orderValues(v domain.SlotRef, a Assignment) []string {
	values := append([]string(nil), s.domains[v]...)
	eliminated := make(map[string]int, len(values))
	for _, val := range values {
		a[v] = val
		for _, c := range s.involving[v] {
			if c.Kind == GlobalQuota {
				continue
			}
			for _, w := range c.Scope {
				if _, assigned := a[w]; assigned || w == v {
					continue
				}
				for _, wv := range s.domains[w] {
					a[w] = wv
					if !c.Satisfied(a) {
						eliminated[val]++
					}
					delete(a, w)
				}
			}
		}
		delete(a, v)
	}
	headroom := s.headroom(v, a)
	sort.SliceStable(values, func(i, j int) bool {
		ei, ej := eliminated[values[i]], eliminated[values[j]]
		if ei != ej {
			return ei < ej
		}
		return headroom[values[i]] > headroom[values[j]]
	})
	return values
}

func (s *Solver) headroom(v domain.SlotRef, a Assignment) map[string]int {
	base := s.problem.base
	kind := base.Kind(v.Date)
	used := base.Usage()
	for ref, name := range a {
		if base.Kind(ref.Date) == kind {
			used.Inc(name, kind)
		}
	}
	out := make(map[string]int)
	for _, name := range s.domains[v] {
		if doc, err := s.problem.roster.Doctor(name); err == nil {
			out[name] = doc.Quota(kind) - used.Used(name, kind)
		}
	}
	return out
}

// violations returns the assigned variables implicated in any constraint on
// v that the current assignment breaks.
func (s *Solver) violations(v domain.SlotRef, a Assignment) []domain.SlotRef {
	var culprits []domain.SlotRef
	for _, c := range s.involving[v] {
		if c.Satisfied(a) {
			continue
		}
		for _, w := range c.Scope {
			if _, ok := a[w]; ok && w != v {
				culprits = append(culprits, w)
			}
		}
	}
	return culprits
}

func (s *Solver) recordConflicts(v domain.SlotRef, culprits []domain.SlotRef) {
	set := s.conflicts[v]
	if set == nil {
		set = make(map[domain.SlotRef]bool)
		s.conflicts[v] = set
	}
	for _, c := range culprits {
		set[c] = true
	}
}

// forwardCheck prunes the domains of unassigned variables sharing a
// constraint with v. It reports false when a domain empties.
func (s *Solver) forwardCheck(v domain.SlotRef, a Assignment) bool {
	touched := make(map[domain.SlotRef]bool)
	for _, c := range s.involving[v] {
		for _, w := range c.Scope {
			if _, assigned := a[w]; assigned || touched[w] {
				continue
			}
			touched[w] = true
			shared := s.shared(w, v)
			kept := s.domains[w][:0:0]
			for _, wv := range s.domains[w] {
				a[w] = wv
				if satisfiesAll(shared, a) {
					kept = append(kept, wv)
				}
				delete(a, w)
			}
			s.stats.Pruned += len(s.domains[w]) - len(kept)
			s.domains[w] = kept
			if len(kept) == 0 {
				s.recordConflicts(w, []domain.SlotRef{v})
				return false
			}
		}
	}
	return true
}

// snapshot copies the domain map. Domains are replaced, never edited in
// place, so sharing the slices is safe.
func (s *Solver) snapshot() map[domain.SlotRef][]string {
	out := make(map[domain.SlotRef][]string, len(s.domains))
	for k, v := range s.domains {
		out[k] = v
	}
	return out
}

func (s *Solver) restore(snap map[domain.SlotRef][]string) {
	s.domains = snap
}
