package service

import (
	"sort"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// DefaultReturnCount bounds how many ranked timetables a response carries.
const DefaultReturnCount = 20

// objectiveScaleDivisor shrinks the raw objective so the human-facing
// preference score stays visible in the combined ranking instead of being
// drowned by solver-internal weights.
const objectiveScaleDivisor = 1000.0

// Ranker orders enumerated timetables for presentation: the scaled objective
// plus the timetable-level preference score, best first.
type Ranker struct {
	scorer *CourseScorer
}

// NewRanker constructs the ranker.
func NewRanker(scorer *CourseScorer) *Ranker {
	return &Ranker{scorer: scorer}
}

// Rank attaches preference scores, sorts by combined score (objective value
// breaking ties) and truncates to limit. Non-positive limits fall back to
// DefaultReturnCount.
func (r *Ranker) Rank(
	solutions []models.TimetableSolution,
	criteria models.ScoreCriteria,
	limit int,
) []models.TimetableSolution {
	if limit <= 0 {
		limit = DefaultReturnCount
	}
	for i := range solutions {
		s := &solutions[i]
		s.PreferenceScore, s.Breakdown = r.scorer.TimetablePreferenceScore(s.Courses, criteria)
		s.CombinedScore = float64(s.ObjectiveValue)/objectiveScaleDivisor + float64(s.PreferenceScore)
	}
	sort.SliceStable(solutions, func(i, j int) bool {
		if solutions[i].CombinedScore != solutions[j].CombinedScore {
			return solutions[i].CombinedScore > solutions[j].CombinedScore
		}
		return solutions[i].ObjectiveValue > solutions[j].ObjectiveValue
	})
	if len(solutions) > limit {
		solutions = solutions[:limit]
	}
	return solutions
}
