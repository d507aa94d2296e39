package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

type departmentRelator interface {
	AreRelated(ctx context.Context, a, b int64) bool
}

// CandidateFilter reduces a raw catalog query result to the legal candidate
// set for one student and one request. Filtering is pure apart from logging:
// identical inputs yield an identical ordered output.
type CandidateFilter struct {
	departments        departmentRelator
	virtualRoomKeyword string
	logger             *zap.Logger
}

// FilterConfig carries the campus-specific filter knobs.
type FilterConfig struct {
	VirtualRoomKeyword string
}

// NewCandidateFilter wires the filter dependencies.
func NewCandidateFilter(departments departmentRelator, cfg FilterConfig, logger *zap.Logger) *CandidateFilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.VirtualRoomKeyword == "" {
		cfg.VirtualRoomKeyword = "가상"
	}
	return &CandidateFilter{
		departments:        departments,
		virtualRoomKeyword: cfg.VirtualRoomKeyword,
		logger:             logger,
	}
}

// FilterCandidates applies the eligibility rules in documented precedence,
// short-circuiting at the first matching drop rule per course:
//
//  1. excluded by id or fuzzy name (forced courses bypass)
//  2. already completed by the student (forced courses bypass)
//  3. major course targeted above the student's year
//  4. major-required course from an unrelated department
//  5. invalid offering: non-positive credits, placeholder period, virtual room
//  6. meets on a requested free day (forced courses bypass)
//  7. general-education restrictions: non-any-year target or satisfied subcategory
func (f *CandidateFilter) FilterCandidates(
	ctx context.Context,
	profile models.StudentProfile,
	criteria models.FilterCriteria,
	pool []models.CandidateCourse,
) []models.CandidateCourse {
	result := make([]models.CandidateCourse, 0, len(pool))
	for _, course := range pool {
		course.Forced = criteria.IsForced(course.ID)
		if reason := f.dropReason(ctx, profile, criteria, course); reason != "" {
			f.logger.Debug("candidate dropped",
				zap.Int64("courseId", course.ID),
				zap.String("course", course.Name),
				zap.String("reason", reason))
			continue
		}
		result = append(result, course)
	}
	return result
}

func (f *CandidateFilter) dropReason(
	ctx context.Context,
	profile models.StudentProfile,
	criteria models.FilterCriteria,
	course models.CandidateCourse,
) string {
	if !course.Forced {
		if lo.Contains(criteria.ExcludedIDs, course.ID) {
			return "excluded by id"
		}
		for _, name := range criteria.ExcludedNames {
			if fuzzyNameMatch(course.Name, name) {
				return "excluded by name"
			}
		}
		if profile.HasCompleted(course.Name) {
			return "already completed"
		}
	}

	if course.Category.IsMajor() &&
		course.TargetYear != models.AnyYear && course.TargetYear > profile.Year {
		return "target year above student year"
	}

	if course.Category == models.CategoryMajorRequired && profile.DepartmentID != 0 &&
		!f.departments.AreRelated(ctx, profile.DepartmentID, course.DepartmentID) {
		return "unrelated department"
	}

	if course.Credits <= 0 {
		return "non-positive credits"
	}
	if len(course.Blocks) == 0 {
		return "no schedule blocks"
	}
	for _, block := range course.Blocks {
		if block.HasPlaceholder() {
			return "placeholder time code"
		}
		if f.virtualRoomKeyword != "" && strings.Contains(block.Room, f.virtualRoomKeyword) {
			return "virtual classroom"
		}
	}

	if !course.Forced {
		for _, block := range course.Blocks {
			if criteria.IsFreeDay(block.Day) {
				return "meets on free day"
			}
		}
	}

	if course.Category == models.CategoryGeneralEducation {
		if course.TargetYear != models.AnyYear {
			return "year-restricted general education"
		}
		if course.GenEdGroup != "" && profile.ShortageByCategory[course.GenEdGroup] == 0 {
			return "general-education subcategory satisfied"
		}
	}
	return ""
}

const (
	// abundantSameYearElectives is the same-year major-elective count above
	// which lower-year electives get down-weighted instead of competing at
	// full priority.
	abundantSameYearElectives = 5
	lowerYearElectivePenalty  = 30
)

// DownweightLowerYearElectives lowers (never removes) the graduation priority
// of major electives targeted below the student's year when same-year
// electives are abundant. Operates on the post-scoring candidate set.
func (f *CandidateFilter) DownweightLowerYearElectives(profile models.StudentProfile, candidates []models.CandidateCourse) []models.CandidateCourse {
	sameYear := lo.CountBy(candidates, func(c models.CandidateCourse) bool {
		return c.Category == models.CategoryMajorElective && c.TargetYear == profile.Year
	})
	if sameYear < abundantSameYearElectives {
		return candidates
	}
	for i := range candidates {
		c := &candidates[i]
		if c.Category == models.CategoryMajorElective &&
			c.TargetYear != models.AnyYear && c.TargetYear < profile.Year {
			c.GraduationPriority -= lowerYearElectivePenalty
		}
	}
	return candidates
}

// RemoveExcludedNames drops caller-named courses from an already filtered
// set, always retaining forced courses.
func (f *CandidateFilter) RemoveExcludedNames(candidates []models.CandidateCourse, names []string) []models.CandidateCourse {
	if len(names) == 0 {
		return candidates
	}
	return lo.Filter(candidates, func(c models.CandidateCourse, _ int) bool {
		if c.Forced {
			return true
		}
		for _, name := range names {
			if fuzzyNameMatch(c.Name, name) {
				return false
			}
		}
		return true
	})
}

// fuzzyNameMatch compares course names ignoring case and internal spacing,
// accepting containment in either direction.
func fuzzyNameMatch(name, pattern string) bool {
	normalize := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	}
	a, b := normalize(name), normalize(pattern)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
