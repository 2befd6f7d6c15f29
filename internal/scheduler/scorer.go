package scheduler

import (
	"fmt"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

type ScoringWeights struct {
	FillRate        float64
	HolidayFillRate float64
	PreferenceHit   float64
}

func defaultWeights() ScoringWeights {
	return ScoringWeights{
		FillRate:        1000,
		HolidayFillRate: 200,
		PreferenceHit:   50,
	}
}

// ScoreReason is one factor's contribution to a schedule score.
type ScoreReason struct {
	Code    string
	Message string
	Delta   float64
}

type ScoreBreakdown struct {
	Total           float64
	FillRate        float64
	HolidayFillRate float64
	PreferenceHits  int
	Reasons         []ScoreReason
}

// ScoreSchedule computes 1000·fill_rate + 200·holiday_fill_rate + 50·preference_hits.
// Higher is better. A horizon without holidays contributes no holiday term.
func ScoreSchedule(roster *domain.Roster, s *domain.Schedule) ScoreBreakdown {
	w := defaultWeights()
	out := ScoreBreakdown{
		FillRate:        FillRate(s),
		HolidayFillRate: HolidayFillRate(s),
		PreferenceHits:  PreferenceHits(roster, s),
	}

	factors := []func() ScoreReason{
		func() ScoreReason {
			return ScoreReason{
				Code:    "fill_rate",
				Message: fmt.Sprintf("%d/%d slots filled", s.FilledSlots(), s.TotalSlots()),
				Delta:   out.FillRate * w.FillRate,
			}
		},
		func() ScoreReason {
			return ScoreReason{
				Code:    "holiday_fill_rate",
				Message: fmt.Sprintf("%.0f%% of holiday slots filled", out.HolidayFillRate*100),
				Delta:   out.HolidayFillRate * w.HolidayFillRate,
			}
		},
		func() ScoreReason {
			return ScoreReason{
				Code:    "preference_hits",
				Message: fmt.Sprintf("%d preferred dates honored", out.PreferenceHits),
				Delta:   float64(out.PreferenceHits) * w.PreferenceHit,
			}
		},
	}
	for _, f := range factors {
		r := f()
		out.Total += r.Delta
		out.Reasons = append(out.Reasons, r)
	}
	return out
}

func FillRate(s *domain.Schedule) float64 {
	total := s.TotalSlots()
	if total == 0 {
		return 0
	}
	return float64(s.FilledSlots()) / float64(total)
}

func HolidayFillRate(s *domain.Schedule) float64 {
	holidays := s.Holidays()
	if len(holidays) == 0 {
		return 0
	}
	filled := 0
	for _, d := range holidays {
		for _, role := range domain.Roles {
			if s.Get(d, role) != "" {
				filled++
			}
		}
	}
	return float64(filled) / float64(len(holidays)*len(domain.Roles))
}

// PreferenceHits counts doctors placed, in their own role, on a date they prefer.
func PreferenceHits(roster *domain.Roster, s *domain.Schedule) int {
	hits := 0
	for _, doc := range roster.Doctors {
		for d := range doc.Preferred {
			if s.Get(d, doc.Role) == doc.Name {
				hits++
			}
		}
	}
	return hits
}
