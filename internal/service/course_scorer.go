package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// Scoring constants. Score components feed the solver objective as
// coefficients, never as hard constraints, so their relative magnitudes carry
// the policy: general-education time-of-day is near-hard, everything else is
// soft.
const (
	majorRequiredBonus             = 50
	genEdOvershootPenaltyPerCredit = 10

	preferredInstructorBonus = 1000
	avoidedInstructorPenalty = -2000
	preferredKeywordBonus    = 800
	avoidedKeywordPenalty    = -1500
	topicTagBonus            = 500

	genEdTimeOfDayThreshold = 0.8
	genEdTimeOfDayBonus     = 3000
	genEdTimeOfDayPenalty   = -5000

	majorTimeOfDayCap           = 500
	majorTimeOfDayFlatThreshold = 0.9
	majorTimeOfDayFlatBonus     = 300

	// morningBoundaryPeriod is the last period counted as morning.
	morningBoundaryPeriod = 4

	ratingBandExcellent = 2000
	ratingBandGreat     = 1500
	ratingBandGood      = 1000
	ratingBandFair      = 500
	ratingBandPoor      = -500
	ratingBandBad       = -1000
	ratingBandWorst     = -2000
)

// CourseScorer assigns the three per-course objective score components and
// re-scores completed timetables for final ranking.
type CourseScorer struct {
	logger *zap.Logger
}

// NewCourseScorer constructs the scorer.
func NewCourseScorer(logger *zap.Logger) *CourseScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseScorer{logger: logger}
}

// ScoreCandidates attaches all three score components to every candidate.
func (s *CourseScorer) ScoreCandidates(
	candidates []models.CandidateCourse,
	criteria models.ScoreCriteria,
	params models.ConstraintParameters,
) []models.CandidateCourse {
	for i := range candidates {
		c := &candidates[i]
		c.GraduationPriority = s.GraduationPriority(*c, criteria, params.GenEdShortages)
		c.PreferenceScore = s.PreferenceScore(*c, criteria)
		c.RatingScore = s.RatingScore(*c, criteria)
	}
	return candidates
}

// GraduationPriority starts from the shortage-derived category weight,
// penalizes general-education credits beyond the subcategory's remaining
// shortage, and rewards major-required offerings. May be negative.
func (s *CourseScorer) GraduationPriority(
	course models.CandidateCourse,
	criteria models.ScoreCriteria,
	shortages map[string]int,
) int {
	score := criteria.PriorityMap[course.CategoryKey()]
	if course.Category == models.CategoryGeneralEducation && course.GenEdGroup != "" {
		if shortage, ok := shortages[course.GenEdGroup]; ok && course.Credits > shortage {
			score -= (course.Credits - shortage) * genEdOvershootPenaltyPerCredit
		}
	}
	if course.Category == models.CategoryMajorRequired {
		score += majorRequiredBonus
	}
	return score
}

// PreferenceScore sums instructor, course-name and time-of-day preference
// contributions for a single offering.
func (s *CourseScorer) PreferenceScore(course models.CandidateCourse, criteria models.ScoreCriteria) int {
	score := 0
	if matchesAny(course.Instructor, criteria.PreferredInstructors) {
		score += preferredInstructorBonus
	}
	if matchesAny(course.Instructor, criteria.AvoidedInstructors) {
		score += avoidedInstructorPenalty
	}
	if matchesAny(course.Name, criteria.PreferredKeywords) {
		score += preferredKeywordBonus
	}
	if matchesAny(course.Name, criteria.AvoidedKeywords) {
		score += avoidedKeywordPenalty
	}
	if matchesAny(course.Name, criteria.TopicTags) {
		score += topicTagBonus
	}
	score += s.timeOfDayScore(course, criteria)
	return score
}

// timeOfDayScore applies the asymmetric half-day rule: general education is
// scored near-hard (large flat bonus or penalty at the 80% threshold), major
// and other categories get a soft ratio-scaled term so graduation priority
// still dominates.
func (s *CourseScorer) timeOfDayScore(course models.CandidateCourse, criteria models.ScoreCriteria) int {
	if !criteria.WantsTimeOfDay() || course.TotalHours() == 0 {
		return 0
	}
	ratio := preferredHalfRatio(course, criteria)
	if course.Category == models.CategoryGeneralEducation {
		if ratio >= genEdTimeOfDayThreshold {
			return genEdTimeOfDayBonus
		}
		return genEdTimeOfDayPenalty
	}
	scaled := int((ratio - 0.5) * 2 * majorTimeOfDayCap)
	if scaled > majorTimeOfDayCap {
		scaled = majorTimeOfDayCap
	}
	if scaled < -majorTimeOfDayCap {
		scaled = -majorTimeOfDayCap
	}
	if ratio >= majorTimeOfDayFlatThreshold {
		scaled += majorTimeOfDayFlatBonus
	}
	return scaled
}

// preferredHalfRatio is the fraction of the course's scheduled hours falling
// in the preferred half-day.
func preferredHalfRatio(course models.CandidateCourse, criteria models.ScoreCriteria) float64 {
	total, preferred := 0, 0
	for _, block := range course.Blocks {
		for _, period := range block.Periods {
			total++
			morning := period <= morningBoundaryPeriod
			if (criteria.PreferMorning && morning) || (criteria.PreferAfternoon && !morning) {
				preferred++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(preferred) / float64(total)
}

// RatingScore maps the average lecture rating for (course, instructor) onto
// non-overlapping score bands. Unknown pairs score zero.
func (s *CourseScorer) RatingScore(course models.CandidateCourse, criteria models.ScoreCriteria) int {
	rating, ok := criteria.Ratings[models.RatingKey{Course: course.Name, Instructor: course.Instructor}]
	if !ok {
		return 0
	}
	switch {
	case rating >= 4.5:
		return ratingBandExcellent
	case rating >= 4.0:
		return ratingBandGreat
	case rating >= 3.5:
		return ratingBandGood
	case rating >= 3.0:
		return ratingBandFair
	case rating >= 2.0:
		return ratingBandPoor
	case rating >= 1.5:
		return ratingBandBad
	default:
		return ratingBandWorst
	}
}

// TimetablePreferenceScore re-evaluates the instructor, keyword and
// time-of-day rules over a completed timetable and reports both the total and
// which preferences matched.
func (s *CourseScorer) TimetablePreferenceScore(
	courses []models.CandidateCourse,
	criteria models.ScoreCriteria,
) (int, models.PreferenceBreakdown) {
	score := 0
	var breakdown models.PreferenceBreakdown
	for _, course := range courses {
		if matchesAny(course.Instructor, criteria.PreferredInstructors) {
			score += preferredInstructorBonus
			breakdown.PreferredInstructors++
		}
		if matchesAny(course.Instructor, criteria.AvoidedInstructors) {
			score += avoidedInstructorPenalty
			breakdown.AvoidedInstructors++
		}
		if matchesAny(course.Name, criteria.PreferredKeywords) || matchesAny(course.Name, criteria.TopicTags) {
			score += preferredKeywordBonus
			breakdown.PreferredKeywords++
		}
		if matchesAny(course.Name, criteria.AvoidedKeywords) {
			score += avoidedKeywordPenalty
			breakdown.AvoidedKeywords++
		}
		if criteria.WantsTimeOfDay() && course.TotalHours() > 0 &&
			preferredHalfRatio(course, criteria) >= genEdTimeOfDayThreshold {
			score += topicTagBonus
			breakdown.TimeOfDayMatches++
		}
	}
	return score, breakdown
}

// matchesAny reports a case-insensitive substring match against any pattern.
func matchesAny(value string, patterns []string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return false
	}
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern != "" && strings.Contains(value, pattern) {
			return true
		}
	}
	return false
}
