package scheduler

import "github.com/alexanderramin/dutyroster/internal/domain"

const maxSuggestions = 5

// Suggestion lists who could still take an unfilled slot.
type Suggestion struct {
	Slot      domain.SlotRef
	Available []string // pass every check
	OverQuota []string // blocked by quota only
}

type DoctorLoad struct {
	Name    string
	Role    domain.Role
	Used    domain.UsedQuota
	Weekday int // quota
	Holiday int // quota
}

type Statistics struct {
	TotalSlots      int
	FilledSlots     int
	FillRate        float64
	HolidayFillRate float64
	PreferenceHits  int
	Loads           []DoctorLoad
}

// ScheduleResult is the finished output of one engine run.
type ScheduleResult struct {
	Schedule    *domain.Schedule
	Score       ScoreBreakdown
	Unfilled    []domain.SlotRef
	Violations  []Violation
	Suggestions []Suggestion
	Stats       Statistics
}

func BuildResult(oracle *Oracle, s *domain.Schedule) ScheduleResult {
	roster := oracle.Roster()
	score := ScoreSchedule(roster, s)
	used := s.Usage()

	res := ScheduleResult{
		Schedule:   s,
		Score:      score,
		Unfilled:   s.Unfilled(),
		Violations: ValidateAll(roster, s, oracle.MaxConsecutive()),
		Stats: Statistics{
			TotalSlots:      s.TotalSlots(),
			FilledSlots:     s.FilledSlots(),
			FillRate:        score.FillRate,
			HolidayFillRate: score.HolidayFillRate,
			PreferenceHits:  score.PreferenceHits,
		},
	}
	for _, doc := range roster.Doctors {
		res.Stats.Loads = append(res.Stats.Loads, DoctorLoad{
			Name:    doc.Name,
			Role:    doc.Role,
			Used:    used[doc.Name],
			Weekday: doc.WeekdayQuota,
			Holiday: doc.HolidayQuota,
		})
	}

	for _, slot := range res.Unfilled {
		if len(res.Suggestions) == maxSuggestions {
			break
		}
		sug := Suggestion{Slot: slot}
		for _, doc := range roster.ByRole(slot.Role) {
			if oracle.CanAssign(doc.Name, slot.Date, slot.Role, s, used) == nil {
				sug.Available = append(sug.Available, doc.Name)
			} else if oracle.BlockedOnlyByQuota(doc.Name, slot.Date, slot.Role, s, used) {
				sug.OverQuota = append(sug.OverQuota, doc.Name)
			}
		}
		res.Suggestions = append(res.Suggestions, sug)
	}
	return res
}
