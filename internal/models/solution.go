package models

// TimetableSolution is one complete assignment produced by the solver: the
// selected offerings plus the raw objective value and its percentage of the
// phase-one optimum. Ranking fields are attached afterwards.
type TimetableSolution struct {
	Courses        []CandidateCourse
	ObjectiveValue int64
	OptimalityPct  float64

	PreferenceScore int
	CombinedScore   float64
	Breakdown       PreferenceBreakdown
}

// TotalCredits sums the credits of the selected offerings.
func (s *TimetableSolution) TotalCredits() int {
	total := 0
	for _, c := range s.Courses {
		total += c.Credits
	}
	return total
}

// CreditsWhere sums credits over offerings matching the predicate.
func (s *TimetableSolution) CreditsWhere(match func(CandidateCourse) bool) int {
	total := 0
	for _, c := range s.Courses {
		if match(c) {
			total += c.Credits
		}
	}
	return total
}

// CourseIDs lists the selected offering ids in selection order.
func (s *TimetableSolution) CourseIDs() []int64 {
	ids := make([]int64, 0, len(s.Courses))
	for _, c := range s.Courses {
		ids = append(ids, c.ID)
	}
	return ids
}

// NonForcedIDs lists ids of selected offerings the user did not pre-add.
func (s *TimetableSolution) NonForcedIDs() []int64 {
	var ids []int64
	for _, c := range s.Courses {
		if !c.Forced {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// ContainsCourse reports whether the offering id was selected.
func (s *TimetableSolution) ContainsCourse(id int64) bool {
	for _, c := range s.Courses {
		if c.ID == id {
			return true
		}
	}
	return false
}
