package resolver

import "github.com/alexanderramin/dutyroster/internal/scheduler"

const criticalGapCount = 5

// Report is the detailed view of the working schedule after resolution.
type Report struct {
	TotalSlots  int
	FilledSlots int
	Unfilled    int
	FillRate    float64

	Easy   []Gap // someone with quota can take it
	Medium []Gap // only over-quota doctors
	Hard   []Gap // nobody

	Critical []Gap

	QuotaUtilization   float64
	AverageGapPriority float64
	Score              scheduler.ScoreBreakdown

	AppliedSwaps []SwapChain
	Stats        SearchStats
}

func (r *Resolver) Report() Report {
	s := r.schedule
	gaps := r.AnalyzeGaps()
	rep := Report{
		TotalSlots:   s.TotalSlots(),
		FilledSlots:  s.FilledSlots(),
		Unfilled:     len(gaps),
		FillRate:     scheduler.FillRate(s),
		Score:        scheduler.ScoreSchedule(r.roster, s),
		AppliedSwaps: r.applied,
		Stats:        r.stats,
	}

	var prioritySum float64
	for _, g := range gaps {
		prioritySum += g.Priority
		switch g.Reason() {
		case GapDirectlyFillable:
			rep.Easy = append(rep.Easy, g)
		case GapAllOverQuota:
			rep.Medium = append(rep.Medium, g)
		default:
			rep.Hard = append(rep.Hard, g)
		}
	}
	if len(gaps) > 0 {
		rep.AverageGapPriority = prioritySum / float64(len(gaps))
	}
	rep.Critical = gaps[:min(criticalGapCount, len(gaps))]

	used := s.Usage()
	var quota, taken int
	for _, doc := range r.roster.Doctors {
		quota += doc.WeekdayQuota + doc.HolidayQuota
		taken += used[doc.Name].Total()
	}
	if quota > 0 {
		rep.QuotaUtilization = float64(taken) / float64(quota)
	}
	return rep
}
