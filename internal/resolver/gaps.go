package resolver

import (
	"sort"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

// GapReason classifies why a slot is still open.
type GapReason string

const (
	GapNoCandidates     GapReason = "no_candidates"
	GapAllOverQuota     GapReason = "all_over_quota"
	GapSearchExhausted  GapReason = "search_exhausted"
	GapBacktrackLimit   GapReason = "backtrack_limit"
	GapDirectlyFillable GapReason = "fillable"
)

var gapMessages = map[GapReason]string{
	GapNoCandidates:     "no doctor available",
	GapAllOverQuota:     "every candidate is over quota and no swap chain was found",
	GapSearchExhausted:  "search budget ran out before the gap was resolved",
	GapBacktrackLimit:   "backtrack limit reached before the gap was tried",
	GapDirectlyFillable: "a doctor with remaining quota can take it",
}

func (r GapReason) Message() string { return gapMessages[r] }

// Gap is an unfilled slot together with who could take it and how urgent it is.
type Gap struct {
	Date      domain.Date
	Role      domain.Role
	IsHoliday bool
	IsWeekend bool
	WithQuota []string // pass every check
	OverQuota []string // blocked by quota only

	Severity        float64
	OpportunityCost float64
	FutureImpact    float64
	Uniqueness      float64
	Priority        float64
}

func (g Gap) Ref() domain.SlotRef { return domain.SlotRef{Date: g.Date, Role: g.Role} }

func (g Gap) Candidates() int { return len(g.WithQuota) + len(g.OverQuota) }

// Reason is the static classification of the gap. GapSearchExhausted and
// GapBacktrackLimit are only assigned by the auto-fill loop.
func (g Gap) Reason() GapReason {
	switch {
	case len(g.WithQuota) > 0:
		return GapDirectlyFillable
	case len(g.OverQuota) > 0:
		return GapAllOverQuota
	default:
		return GapNoCandidates
	}
}

// AnalyzeGaps lists every unfilled slot of the working schedule, highest
// priority first.
func (r *Resolver) AnalyzeGaps() []Gap {
	return analyzeGaps(r.oracle, r.schedule)
}

func analyzeGaps(oracle *scheduler.Oracle, s *domain.Schedule) []Gap {
	used := s.Usage()
	axis := s.Dates()
	var last domain.Date
	if len(axis) > 0 {
		last = axis[len(axis)-1]
	}

	var gaps []Gap
	for _, ref := range s.Unfilled() {
		g := Gap{
			Date:      ref.Date,
			Role:      ref.Role,
			IsHoliday: s.IsHoliday(ref.Date),
			IsWeekend: ref.Date.IsWeekend(),
		}
		for _, doc := range oracle.Roster().ByRole(ref.Role) {
			if oracle.CanAssign(doc.Name, ref.Date, ref.Role, s, used) == nil {
				g.WithQuota = append(g.WithQuota, doc.Name)
			} else if oracle.BlockedOnlyByQuota(doc.Name, ref.Date, ref.Role, s, used) {
				g.OverQuota = append(g.OverQuota, doc.Name)
			}
		}
		scoreGap(&g, last)
		gaps = append(gaps, g)
	}
	sortGaps(gaps)
	return gaps
}

func scoreGap(g *Gap, horizonEnd domain.Date) {
	g.Severity = severity(*g)
	g.OpportunityCost = opportunityCost(*g)
	g.FutureImpact = futureImpact(g.Date, horizonEnd)
	g.Uniqueness = uniqueness(g.Candidates())
	g.Priority = 0.3*g.Severity + 0.3*g.OpportunityCost + 0.2*g.FutureImpact + 0.2*g.Uniqueness
}

func severity(g Gap) float64 {
	s := 50.0
	if g.IsHoliday {
		s += 20
	}
	if g.IsWeekend {
		s += 10
	}
	if g.Role == domain.RoleAttending {
		s += 5
	}
	if len(g.WithQuota) == 0 {
		s += 20
	}
	if len(g.OverQuota) == 0 {
		s += 30
	}
	return min(s, 100)
}

// opportunityCost grows with how much work closing the gap takes: a direct
// fill is cheap, a swap is expensive, an unreachable gap costs the most.
func opportunityCost(g Gap) float64 {
	switch {
	case len(g.WithQuota) > 0:
		return 10
	case len(g.OverQuota) > 0:
		return 50
	default:
		return 100
	}
}

// futureImpact favours early gaps: the more days left after the gap, the
// more later assignments it constrains.
func futureImpact(date, horizonEnd domain.Date) float64 {
	days := date.DaysUntil(horizonEnd)
	if days < 0 {
		days = 0
	}
	return min(float64(days)*2, 100)
}

func uniqueness(candidates int) float64 {
	switch {
	case candidates == 0:
		return 100
	case candidates == 1:
		return 80
	case candidates == 2:
		return 60
	case candidates <= 4:
		return 40
	default:
		return 20
	}
}

func sortGaps(gaps []Gap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		a, b := gaps[i], gaps[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.Role == domain.RoleAttending && b.Role != domain.RoleAttending
	})
}

// RestrictionReasons explains, for every role-matching doctor who cannot
// take the slot directly, which checks block them.
func (r *Resolver) RestrictionReasons(ref domain.SlotRef) map[string][]scheduler.Reason {
	out := make(map[string][]scheduler.Reason)
	used := r.schedule.Usage()
	for _, doc := range r.roster.ByRole(ref.Role) {
		rejects, err := r.oracle.Violations(doc.Name, ref.Date, ref.Role, r.schedule, used)
		if err != nil || len(rejects) == 0 {
			continue
		}
		for _, rej := range rejects {
			out[doc.Name] = append(out[doc.Name], rej.Reason)
		}
	}
	return out
}
