package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

const (
	maxChainsReturned = 20
	maxChainsExplored = 2000

	impactMove         = 5.0
	impactCrossKind    = 10.0
	impactNestedMove   = 8.0
	impactDirectFill   = 5.0
	penaltyPerStep     = 5.0
	penaltyPerConflict = 20.0
)

var ErrChainInvalid = errors.New("swap chain no longer applies")

type StepKind string

const (
	// StepMove moves a doctor off one of their dates onto another slot.
	StepMove StepKind = "move"
	// StepFill gives a vacated slot to a doctor with quota to spare.
	StepFill StepKind = "fill"
)

// SwapStep is one reassignment. From is zero for StepFill.
type SwapStep struct {
	Kind        StepKind
	Doctor      string
	Role        domain.Role
	From        domain.Date
	To          domain.Date
	Impact      float64
	Description string
}

func (s SwapStep) signature() string {
	return fmt.Sprintf("%s:%s:%s>%s", s.Kind, s.Doctor, s.From, s.To)
}

// SwapChain fills Gap through a sequence of moves ending in a direct fill.
// TotalScore is disruption: lower is better.
type SwapChain struct {
	Gap        domain.SlotRef
	Steps      []SwapStep
	Quality    float64
	TotalScore float64
	Feasible   bool
	Message    string

	historyLen int
}

// Depth is the number of moves before the final fill.
func (c SwapChain) Depth() int {
	n := 0
	for _, s := range c.Steps {
		if s.Kind == StepMove {
			n++
		}
	}
	return n
}

// Signature identifies a chain regardless of step order.
func (c SwapChain) Signature() string {
	parts := make([]string, len(c.Steps))
	for i, s := range c.Steps {
		parts[i] = s.signature()
	}
	sort.Strings(parts)
	return c.Gap.String() + "|" + strings.Join(parts, ",")
}

func scoreChain(steps []SwapStep, conflicts int) float64 {
	q := 100 - penaltyPerStep*float64(len(steps))
	for _, s := range steps {
		q -= s.Impact
	}
	return q - penaltyPerConflict*float64(conflicts)
}

type chainSearch struct {
	r        *Resolver
	ctx      context.Context
	gap      domain.SlotRef
	maxDepth int
	fanout   int
	deadline time.Time
	baseline int
	seen     map[string]bool
	found    []SwapChain
	explored int
	open     int
}

// FindSwapChains searches for move sequences that fill the gap without
// breaking any hard constraint at any step. A chain moves an over-quota
// doctor onto the gap from another same-kind date, then fills that vacated
// date, recursively, until some doctor can take the last vacated slot
// directly. maxDepth bounds the number of moves. Locked slots are never
// vacated. Results are ranked best first and capped.
func (r *Resolver) FindSwapChains(ctx context.Context, gap domain.SlotRef, maxDepth int) []SwapChain {
	if maxDepth < 1 || r.schedule.Get(gap.Date, gap.Role) != "" || !r.schedule.Contains(gap.Date) {
		return nil
	}
	cs := &chainSearch{
		r:        r,
		ctx:      ctx,
		gap:      gap,
		maxDepth: maxDepth,
		fanout:   max(r.constraints.NeighborExpansion, 1),
		baseline: len(r.ValidateAllConstraints()),
		seen:     make(map[string]bool),
		open:     r.schedule.TotalSlots() - r.schedule.FilledSlots(),
	}
	if budget := r.constraints.SearchBudget(); budget > 0 {
		cs.deadline = time.Now().Add(budget)
	}

	visited := map[domain.Date]bool{gap.Date: true}
	for _, name := range cs.movers(r.schedule, gap) {
		for _, from := range cs.movable(r.schedule, name, gap.Role, r.schedule.Kind(gap.Date), visited) {
			if cs.stop() {
				break
			}
			cs.tryMove(r.schedule, name, from, gap.Date, nil, 1, visited)
		}
	}

	r.stats.ChainsExplored += cs.explored
	r.stats.ChainsFound += len(cs.found)

	sort.SliceStable(cs.found, func(i, j int) bool {
		a, b := cs.found[i], cs.found[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore < b.TotalScore
		}
		if len(a.Steps) != len(b.Steps) {
			return len(a.Steps) < len(b.Steps)
		}
		return a.Signature() < b.Signature()
	})
	if len(cs.found) > maxChainsReturned {
		cs.found = cs.found[:maxChainsReturned]
	}
	return cs.found
}

func (cs *chainSearch) stop() bool {
	if cs.ctx.Err() != nil || cs.explored >= maxChainsExplored {
		return true
	}
	return !cs.deadline.IsZero() && time.Now().After(cs.deadline)
}

// movers lists doctors who could take ref if they had quota left: quota
// blocks them and nothing that a move cannot change does. Least loaded
// first, capped at the fan-out.
func (cs *chainSearch) movers(s *domain.Schedule, ref domain.SlotRef) []string {
	used := s.Usage()
	var names []string
	for _, doc := range cs.r.roster.ByRole(ref.Role) {
		rejects, err := cs.r.oracle.Violations(doc.Name, ref.Date, ref.Role, s, used)
		if err != nil || len(rejects) == 0 || rejects[0].Reason != scheduler.ReasonQuotaExceeded {
			continue
		}
		if blockedRegardless(rejects[1:]) {
			continue
		}
		names = append(names, doc.Name)
	}
	scheduler.LeastLoaded(names, used)
	if len(names) > cs.fanout {
		names = names[:cs.fanout]
	}
	return names
}

func blockedRegardless(rejects []*scheduler.RejectError) bool {
	for _, rej := range rejects {
		switch rej.Reason {
		case scheduler.ReasonConsecutiveLimit:
			// vacating a neighbouring date can lift this
		default:
			return true
		}
	}
	return false
}

// movable lists the unlocked dates of the given kind where name holds role.
func (cs *chainSearch) movable(s *domain.Schedule, name string, role domain.Role, kind domain.DayKind, visited map[domain.Date]bool) []domain.Date {
	var out []domain.Date
	for _, d := range s.DutiesOf(name, role) {
		if visited[d] || s.Kind(d) != kind || cs.r.isLocked(s, domain.SlotRef{Date: d, Role: role}) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// tryMove simulates moving name from `from` to `to`, then looks for a way
// to fill `from`.
func (cs *chainSearch) tryMove(s *domain.Schedule, name string, from, to domain.Date, steps []SwapStep, depth int, visited map[domain.Date]bool) {
	if cs.stop() {
		return
	}
	cs.explored++
	role := cs.gap.Role
	next := s.Clone()
	next.Clear(from, role)
	if cs.r.oracle.CanAssign(name, to, role, next, nil) != nil {
		return
	}
	_ = next.Set(to, role, name)
	if depth > cs.r.stats.MaxDepthReached {
		cs.r.stats.MaxDepthReached = depth
	}

	impact := impactMove
	if depth > 1 {
		impact = impactNestedMove
	}
	if next.Kind(from) != next.Kind(to) {
		impact += impactCrossKind
	}
	steps = append(append([]SwapStep(nil), steps...), SwapStep{
		Kind:        StepMove,
		Doctor:      name,
		Role:        role,
		From:        from,
		To:          to,
		Impact:      impact,
		Description: fmt.Sprintf("move %s from %s to %s", name, from, to),
	})

	vacated := domain.SlotRef{Date: from, Role: role}
	inChain := make(map[string]bool, len(steps))
	for _, st := range steps {
		inChain[st.Doctor] = true
	}

	used := next.Usage()
	for _, doc := range cs.r.roster.ByRole(role) {
		if inChain[doc.Name] {
			continue
		}
		if cs.r.oracle.CanAssign(doc.Name, from, role, next, used) != nil {
			continue
		}
		final := next.Clone()
		_ = final.Set(from, role, doc.Name)
		cs.record(append(append([]SwapStep(nil), steps...), SwapStep{
			Kind:        StepFill,
			Doctor:      doc.Name,
			Role:        role,
			To:          from,
			Impact:      impactDirectFill,
			Description: fmt.Sprintf("%s takes %s", doc.Name, vacated),
		}), final)
	}

	if depth >= cs.maxDepth {
		return
	}
	nextVisited := make(map[domain.Date]bool, len(visited)+1)
	for d := range visited {
		nextVisited[d] = true
	}
	nextVisited[from] = true
	for _, mover := range cs.movers(next, vacated) {
		if inChain[mover] {
			continue
		}
		for _, from2 := range cs.movable(next, mover, role, next.Kind(from), nextVisited) {
			cs.tryMove(next, mover, from2, from, steps, depth+1, nextVisited)
		}
	}
}

func (cs *chainSearch) record(steps []SwapStep, final *domain.Schedule) {
	chain := SwapChain{Gap: cs.gap, Steps: steps}
	sig := chain.Signature()
	if cs.seen[sig] {
		return
	}
	cs.seen[sig] = true

	conflicts := len(scheduler.ValidateAll(cs.r.roster, final, cs.r.constraints.MaxConsecutiveDays)) - cs.baseline
	if conflicts > 0 {
		return
	}
	chain.Quality = scoreChain(steps, 0)
	chain.TotalScore = 100 - chain.Quality
	chain.Feasible = true
	chain.Message = fmt.Sprintf("%d moves, fills %s", chain.Depth(), cs.gap)
	cs.found = append(cs.found, chain)
	cs.r.emit(Event{Kind: EventChainFound, Gap: cs.gap, Chain: &chain, Remaining: cs.open, Message: chain.Message})
}

// ApplyChain replays a chain against the current working schedule,
// re-checking every step. On any failure the schedule is left untouched.
func (r *Resolver) ApplyChain(chain SwapChain) error {
	sim := r.schedule.Clone()
	for i, st := range chain.Steps {
		switch st.Kind {
		case StepMove:
			if sim.Get(st.From, st.Role) != st.Doctor {
				return fmt.Errorf("step %d: %s no longer holds %s: %w", i+1, st.Doctor, st.From, ErrChainInvalid)
			}
			if r.isLocked(sim, domain.SlotRef{Date: st.From, Role: st.Role}) {
				return fmt.Errorf("step %d: %s/%s is locked: %w", i+1, st.From, st.Role, ErrChainInvalid)
			}
			sim.Clear(st.From, st.Role)
		case StepFill:
		default:
			return fmt.Errorf("step %d: unknown kind %q: %w", i+1, st.Kind, ErrChainInvalid)
		}
		if err := r.oracle.CanAssign(st.Doctor, st.To, st.Role, sim, nil); err != nil {
			return fmt.Errorf("step %d: %v: %w", i+1, err, ErrChainInvalid)
		}
		_ = sim.Set(st.To, st.Role, st.Doctor)
	}
	if sim.FilledSlots() <= r.schedule.FilledSlots() {
		return fmt.Errorf("chain does not fill any slot: %w", ErrChainInvalid)
	}
	if len(scheduler.ValidateAll(r.roster, sim, r.constraints.MaxConsecutiveDays)) > len(r.ValidateAllConstraints()) {
		return fmt.Errorf("chain introduces violations: %w", ErrChainInvalid)
	}

	chain.historyLen = len(r.history)
	r.push()
	r.schedule = sim
	r.applied = append(r.applied, chain)
	return nil
}
