// Package resolver closes the gaps left in a candidate schedule, first by
// direct assignment and then by chains of moves that free a doctor's quota.
package resolver

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrSlotFilled    = errors.New("slot is already filled")
	ErrNoCandidate   = errors.New("no doctor can take the slot directly")
)

// EventKind names a step of the resolution process.
type EventKind string

const (
	EventDirectFill  EventKind = "direct_fill"
	EventSwapApplied EventKind = "swap_applied"
	EventChainFound  EventKind = "chain_found"
	EventBacktrack   EventKind = "backtrack"
	EventStopped     EventKind = "stopped"
)

// Event is reported to the progress callback after every action.
type Event struct {
	Kind      EventKind
	Gap       domain.SlotRef
	Doctor    string
	Chain     *SwapChain
	Remaining int
	Message   string
}

// ProgressFunc receives resolution events. It is called synchronously.
type ProgressFunc func(Event)

// SearchStats accumulates swap-chain search effort across calls.
type SearchStats struct {
	ChainsExplored  int
	ChainsFound     int
	MaxDepthReached int
}

// Resolver owns a working copy of a schedule and mutates it only through
// checked operations.
type Resolver struct {
	oracle      *scheduler.Oracle
	roster      *domain.Roster
	constraints domain.ScheduleConstraints
	schedule    *domain.Schedule
	locked      map[domain.SlotRef]bool
	history     []*domain.Schedule
	applied     []SwapChain
	stats       SearchStats

	OnProgress ProgressFunc
}

func New(oracle *scheduler.Oracle, s *domain.Schedule, c domain.ScheduleConstraints) *Resolver {
	return &Resolver{
		oracle:      oracle,
		roster:      oracle.Roster(),
		constraints: c,
		schedule:    s.Clone(),
		locked:      make(map[domain.SlotRef]bool),
	}
}

// Schedule returns the working schedule. Callers must not modify it.
func (r *Resolver) Schedule() *domain.Schedule { return r.schedule }

func (r *Resolver) Stats() SearchStats { return r.stats }

func (r *Resolver) AppliedChains() []SwapChain { return r.applied }

// Lock pins a slot so swap chains never vacate it.
func (r *Resolver) Lock(ref domain.SlotRef) { r.locked[ref] = true }

// IsLocked reports whether the slot may not be vacated. Slots held by a
// doctor on one of their preferred dates are always locked.
func (r *Resolver) IsLocked(ref domain.SlotRef) bool {
	return r.isLocked(r.schedule, ref)
}

func (r *Resolver) isLocked(s *domain.Schedule, ref domain.SlotRef) bool {
	if r.locked[ref] {
		return true
	}
	holder := s.Get(ref.Date, ref.Role)
	if holder == "" {
		return false
	}
	doc, err := r.roster.Doctor(holder)
	return err == nil && doc.Prefers(ref.Date)
}

// TryDirectFill gives the slot to the least-loaded doctor who passes every
// check. It returns the chosen doctor.
func (r *Resolver) TryDirectFill(ref domain.SlotRef) (string, error) {
	if !r.schedule.Contains(ref.Date) {
		return "", fmt.Errorf("direct fill %s: %w", ref, domain.ErrUnknownDate)
	}
	if r.schedule.Get(ref.Date, ref.Role) != "" {
		return "", fmt.Errorf("direct fill %s: %w", ref, ErrSlotFilled)
	}
	used := r.schedule.Usage()
	var names []string
	for _, doc := range r.roster.ByRole(ref.Role) {
		if r.oracle.CanAssign(doc.Name, ref.Date, ref.Role, r.schedule, used) == nil {
			names = append(names, doc.Name)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("direct fill %s: %w", ref, ErrNoCandidate)
	}
	scheduler.LeastLoaded(names, used)

	r.push()
	_ = r.schedule.Set(ref.Date, ref.Role, names[0])
	return names[0], nil
}

// Assign places a named doctor in a slot after checking every constraint.
func (r *Resolver) Assign(ref domain.SlotRef, name string) error {
	if err := r.oracle.CanAssign(name, ref.Date, ref.Role, r.schedule, nil); err != nil {
		return err
	}
	r.push()
	return r.schedule.Set(ref.Date, ref.Role, name)
}

// Undo restores the schedule as it was before the last successful action.
func (r *Resolver) Undo() error {
	if len(r.history) == 0 {
		return ErrNothingToUndo
	}
	last := len(r.history) - 1
	r.schedule = r.history[last]
	r.history = r.history[:last]
	if n := len(r.applied); n > 0 && r.applied[n-1].historyLen == last {
		r.applied = r.applied[:n-1]
	}
	return nil
}

func (r *Resolver) push() {
	r.history = append(r.history, r.schedule.Clone())
}

// ValidateAllConstraints sweeps the working schedule. Empty slots are fine.
func (r *Resolver) ValidateAllConstraints() []scheduler.Violation {
	return scheduler.ValidateAll(r.roster, r.schedule, r.constraints.MaxConsecutiveDays)
}

func (r *Resolver) emit(e Event) {
	if r.OnProgress != nil {
		r.OnProgress(e)
	}
}
