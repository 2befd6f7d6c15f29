package resolver

import (
	"context"
	"time"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

// StopReason says why the auto-fill loop ended.
type StopReason string

const (
	StopResolved   StopReason = "resolved"   // no gaps left
	StopExhausted  StopReason = "exhausted"  // every remaining gap was tried
	StopBacktracks StopReason = "backtracks" // max_backtracks reached
	StopBudget     StopReason = "budget"     // wall-clock budget or ctx expired
)

// RemainingGap is an unfilled slot left after auto-fill.
type RemainingGap struct {
	Date    domain.Date
	Role    domain.Role
	Reason  GapReason
	Message string
}

// FillReport summarises one auto-fill run.
type FillReport struct {
	DirectFills       int
	SwapChainsApplied int
	Backtracks        int
	RemainingGaps     []RemainingGap
	Stats             SearchStats
	StoppedBy         StopReason
	Duration          time.Duration
}

// RunAutoFillWithBacktracking first fills, highest priority first, every gap
// a doctor with quota can take directly. Only when none is left does it
// turn to the highest-priority gap not yet given up on and apply its best
// swap chain. A gap with no chain counts as a backtrack and is set aside
// until the schedule changes. Every action adds one filled slot, so
// the gap count never grows. The loop ends when no gap can be attempted,
// max_backtracks is reached, or the search budget (or ctx) runs out.
func (r *Resolver) RunAutoFillWithBacktracking(ctx context.Context) FillReport {
	start := time.Now()
	var deadline time.Time
	if budget := r.constraints.SearchBudget(); budget > 0 {
		deadline = start.Add(budget)
	}
	before := r.stats
	report := FillReport{}
	skipped := make(map[domain.SlotRef]bool)

	for {
		if ctx.Err() != nil || (!deadline.IsZero() && time.Now().After(deadline)) {
			report.StoppedBy = StopBudget
			break
		}
		gaps := r.AnalyzeGaps()
		if len(gaps) == 0 {
			report.StoppedBy = StopResolved
			break
		}
		gap, ok := nextGap(gaps, skipped)
		if !ok {
			report.StoppedBy = StopExhausted
			break
		}
		ref := gap.Ref()

		if len(gap.WithQuota) > 0 {
			if name, err := r.TryDirectFill(ref); err == nil {
				report.DirectFills++
				clear(skipped)
				r.emit(Event{Kind: EventDirectFill, Gap: ref, Doctor: name, Remaining: len(gaps) - 1})
				continue
			}
		}

		if r.applyBestChain(ctx, ref) {
			report.SwapChainsApplied++
			clear(skipped)
			applied := r.applied[len(r.applied)-1]
			r.emit(Event{Kind: EventSwapApplied, Gap: ref, Chain: &applied, Remaining: len(gaps) - 1, Message: applied.Message})
			continue
		}

		skipped[ref] = true
		report.Backtracks++
		r.emit(Event{Kind: EventBacktrack, Gap: ref, Remaining: len(gaps), Message: gap.Reason().Message()})
		if report.Backtracks >= r.constraints.MaxBacktracks {
			report.StoppedBy = StopBacktracks
			break
		}
	}

	for _, g := range r.AnalyzeGaps() {
		reason := g.Reason()
		if !skipped[g.Ref()] {
			reason = untriedReason(report.StoppedBy, reason)
		} else if reason == GapDirectlyFillable {
			reason = GapSearchExhausted
		}
		report.RemainingGaps = append(report.RemainingGaps, RemainingGap{
			Date:    g.Date,
			Role:    g.Role,
			Reason:  reason,
			Message: reason.Message(),
		})
	}
	report.Stats = SearchStats{
		ChainsExplored:  r.stats.ChainsExplored - before.ChainsExplored,
		ChainsFound:     r.stats.ChainsFound - before.ChainsFound,
		MaxDepthReached: r.stats.MaxDepthReached,
	}
	report.Duration = time.Since(start)
	r.emit(Event{Kind: EventStopped, Remaining: len(report.RemainingGaps), Message: string(report.StoppedBy)})
	return report
}

// nextGap prefers a directly fillable gap; gaps are already in priority order.
func nextGap(gaps []Gap, skipped map[domain.SlotRef]bool) (Gap, bool) {
	for _, g := range gaps {
		if !skipped[g.Ref()] && len(g.WithQuota) > 0 {
			return g, true
		}
	}
	for _, g := range gaps {
		if !skipped[g.Ref()] {
			return g, true
		}
	}
	return Gap{}, false
}

// untriedReason labels a gap the loop never reached before stopping.
func untriedReason(stop StopReason, static GapReason) GapReason {
	switch stop {
	case StopBacktracks:
		return GapBacktrackLimit
	case StopBudget:
		return GapSearchExhausted
	default:
		return static
	}
}

// applyBestChain tries the ranked chains in order until one applies.
func (r *Resolver) applyBestChain(ctx context.Context, ref domain.SlotRef) bool {
	for _, chain := range r.FindSwapChains(ctx, ref, r.constraints.SwapSearchDepth) {
		if r.ApplyChain(chain) == nil {
			return true
		}
	}
	return false
}
