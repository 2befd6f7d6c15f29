// Package csp fills the slots a greedy pass left open by modelling them as a
// constraint satisfaction problem over the partially built schedule.
package csp

import (
	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

// Variable is one unfilled slot. Its domain holds doctor names in roster order.
type Variable struct {
	Ref    domain.SlotRef
	Domain []string
}

// Assignment maps slots to doctor names. Constraints read it as a partial
// assignment: unassigned slots are simply absent.
type Assignment map[domain.SlotRef]string

func (a Assignment) clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

type ConstraintKind string

const (
	SameDayDistinct  ConstraintKind = "same_day_distinct"
	ConsecutiveLimit ConstraintKind = "consecutive_limit"
	GlobalQuota      ConstraintKind = "global_quota"
)

// Constraint is a predicate over a fixed scope of variables. Every check is
// monotone: if a partial assignment violates it, so does every extension.
type Constraint struct {
	Kind  ConstraintKind
	Scope []domain.SlotRef

	inScope map[domain.SlotRef]bool
	check   func(a Assignment) bool
}

func newConstraint(kind ConstraintKind, scope []domain.SlotRef, check func(Assignment) bool) *Constraint {
	in := make(map[domain.SlotRef]bool, len(scope))
	for _, ref := range scope {
		in[ref] = true
	}
	return &Constraint{Kind: kind, Scope: scope, inScope: in, check: check}
}

func (c *Constraint) Satisfied(a Assignment) bool { return c.check(a) }

func (c *Constraint) Involves(ref domain.SlotRef) bool { return c.inScope[ref] }

func (c *Constraint) binary() bool { return len(c.Scope) == 2 }

// Problem is the set of variables and constraints built from a base schedule.
type Problem struct {
	Variables   []*Variable
	Constraints []*Constraint
	Skipped     []domain.SlotRef // unfilled slots nobody can take

	base   *domain.Schedule
	roster *domain.Roster
}

// NewProblem turns every unfilled slot of base with at least one eligible
// doctor into a variable. Eligibility is decided by the oracle against base
// as it stands, so domains already exclude unavailable doctors, reserved
// preferred dates and doctors at quota.
func NewProblem(oracle *scheduler.Oracle, base *domain.Schedule) *Problem {
	roster := oracle.Roster()
	p := &Problem{base: base, roster: roster}
	used := base.Usage()

	for _, ref := range base.Unfilled() {
		var dom []string
		for _, doc := range roster.ByRole(ref.Role) {
			if oracle.CanAssign(doc.Name, ref.Date, ref.Role, base, used) == nil {
				dom = append(dom, doc.Name)
			}
		}
		if len(dom) == 0 {
			p.Skipped = append(p.Skipped, ref)
			continue
		}
		p.Variables = append(p.Variables, &Variable{Ref: ref, Domain: dom})
	}

	p.addSameDay()
	p.addConsecutive(oracle.MaxConsecutive())
	p.addQuota(used)
	return p
}

func (p *Problem) addSameDay() {
	byDate := make(map[domain.Date][]domain.SlotRef)
	for _, v := range p.Variables {
		byDate[v.Ref.Date] = append(byDate[v.Ref.Date], v.Ref)
	}
	for _, v := range p.Variables {
		refs := byDate[v.Ref.Date]
		if len(refs) != 2 || refs[0] != v.Ref {
			continue
		}
		x, y := refs[0], refs[1]
		p.Constraints = append(p.Constraints, newConstraint(SameDayDistinct, refs, func(a Assignment) bool {
			vx, okx := a[x]
			vy, oky := a[y]
			return !okx || !oky || vx != vy
		}))
	}
}

// addConsecutive adds one constraint per variable bounding the duty run
// through its date, counting both the base schedule and tentative values.
func (p *Problem) addConsecutive(maxRun int) {
	byDate := make(map[domain.Date][]domain.SlotRef)
	for _, v := range p.Variables {
		byDate[v.Ref.Date] = append(byDate[v.Ref.Date], v.Ref)
	}
	axis := p.base.Dates()

	for _, v := range p.Variables {
		self := v.Ref
		pos, _ := p.base.Position(self.Date)
		var scope []domain.SlotRef
		for i := max(0, pos-maxRun); i <= min(len(axis)-1, pos+maxRun); i++ {
			scope = append(scope, byDate[axis[i]]...)
		}
		base := p.base
		p.Constraints = append(p.Constraints, newConstraint(ConsecutiveLimit, scope, func(a Assignment) bool {
			name, ok := a[self]
			if !ok {
				return true
			}
			tentative := func(d domain.Date) bool {
				for _, ref := range byDate[d] {
					if a[ref] == name {
						return true
					}
				}
				return false
			}
			return scheduler.RunLength(base, name, self.Date, tentative) <= maxRun
		}))
	}
}

// addQuota adds the single global constraint: base duties plus tentative
// duties never exceed any doctor's quota for the day kind.
func (p *Problem) addQuota(baseUsed domain.QuotaUsage) {
	scope := make([]domain.SlotRef, len(p.Variables))
	for i, v := range p.Variables {
		scope[i] = v.Ref
	}
	base, roster := p.base, p.roster
	p.Constraints = append(p.Constraints, newConstraint(GlobalQuota, scope, func(a Assignment) bool {
		extra := make(domain.QuotaUsage)
		for ref, name := range a {
			kind := base.Kind(ref.Date)
			extra.Inc(name, kind)
			doc, err := roster.Doctor(name)
			if err != nil {
				return false
			}
			if baseUsed.Used(name, kind)+extra.Used(name, kind) > doc.Quota(kind) {
				return false
			}
		}
		return true
	}))
}
