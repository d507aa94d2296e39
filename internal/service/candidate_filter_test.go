package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

type relatedPairs map[[2]int64]bool

func (r relatedPairs) AreRelated(_ context.Context, a, b int64) bool {
	if a == b {
		return true
	}
	return r[[2]int64{a, b}] || r[[2]int64{b, a}]
}

func filterCourse(id int64, name string, mutate func(*models.CandidateCourse)) models.CandidateCourse {
	c := models.CandidateCourse{
		ID:       id,
		Name:     name,
		Section:  "01",
		Credits:  3,
		Category: models.CategoryMajorElective,
		Blocks: []models.ScheduleBlock{
			{Day: models.Monday, Periods: []int{1, 2}, Room: "IT-505", Building: "IT"},
		},
	}
	if mutate != nil {
		mutate(&c)
	}
	return c
}

func newFilter(departments departmentRelator) *CandidateFilter {
	if departments == nil {
		departments = relatedPairs{}
	}
	return NewCandidateFilter(departments, FilterConfig{}, nil)
}

func ids(candidates []models.CandidateCourse) []int64 {
	out := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.ID)
	}
	return out
}

func TestFilterDropsExcludedAndCompleted(t *testing.T) {
	f := newFilter(nil)
	pool := []models.CandidateCourse{
		filterCourse(1, "자료구조", nil),
		filterCourse(2, "알고리즘", nil),
		filterCourse(3, "운영체제", nil),
	}
	profile := models.StudentProfile{Year: 2, CompletedCourses: []string{"알고리즘"}}
	criteria := models.FilterCriteria{ExcludedIDs: []int64{3}}

	got := f.FilterCandidates(context.Background(), profile, criteria, pool)
	assert.Equal(t, []int64{1}, ids(got))
}

func TestFilterForcedBypassesSoftDropRules(t *testing.T) {
	f := newFilter(nil)
	pool := []models.CandidateCourse{
		filterCourse(1, "알고리즘", nil),
	}
	profile := models.StudentProfile{Year: 2, CompletedCourses: []string{"알고리즘"}}
	criteria := models.FilterCriteria{
		ForcedIDs: []int64{1},
		FreeDays:  []models.Weekday{models.Monday},
	}

	got := f.FilterCandidates(context.Background(), profile, criteria, pool)
	require.Len(t, got, 1)
	assert.True(t, got[0].Forced)
}

func TestFilterDropsHigherYearMajors(t *testing.T) {
	f := newFilter(nil)
	pool := []models.CandidateCourse{
		filterCourse(1, "캡스톤디자인", func(c *models.CandidateCourse) { c.TargetYear = 4 }),
		filterCourse(2, "자료구조", func(c *models.CandidateCourse) { c.TargetYear = 2 }),
	}
	got := f.FilterCandidates(context.Background(), models.StudentProfile{Year: 2}, models.FilterCriteria{}, pool)
	assert.Equal(t, []int64{2}, ids(got))
}

func TestFilterDropsUnrelatedDepartmentRequired(t *testing.T) {
	f := newFilter(relatedPairs{{11, 12}: true})
	pool := []models.CandidateCourse{
		filterCourse(1, "회로이론", func(c *models.CandidateCourse) {
			c.Category = models.CategoryMajorRequired
			c.DepartmentID = 30
		}),
		filterCourse(2, "자료구조", func(c *models.CandidateCourse) {
			c.Category = models.CategoryMajorRequired
			c.DepartmentID = 12
		}),
	}
	got := f.FilterCandidates(context.Background(), models.StudentProfile{DepartmentID: 11, Year: 2}, models.FilterCriteria{}, pool)
	assert.Equal(t, []int64{2}, ids(got))
}

func TestFilterDropsInvalidOfferings(t *testing.T) {
	f := newFilter(nil)
	pool := []models.CandidateCourse{
		filterCourse(1, "무학점세미나", func(c *models.CandidateCourse) { c.Credits = 0 }),
		filterCourse(2, "시간미정", func(c *models.CandidateCourse) {
			c.Blocks[0].Periods = []int{models.PlaceholderPeriod}
		}),
		filterCourse(3, "원격강의", func(c *models.CandidateCourse) { c.Blocks[0].Room = "가상강의실" }),
		filterCourse(4, "자료구조", nil),
	}
	got := f.FilterCandidates(context.Background(), models.StudentProfile{Year: 2}, models.FilterCriteria{}, pool)
	assert.Equal(t, []int64{4}, ids(got))
}

func TestFilterGeneralEducationRules(t *testing.T) {
	f := newFilter(nil)
	genEd := func(id int64, group string, mutate func(*models.CandidateCourse)) models.CandidateCourse {
		return filterCourse(id, "교양과목", func(c *models.CandidateCourse) {
			c.Category = models.CategoryGeneralEducation
			c.GenEdGroup = group
			if mutate != nil {
				mutate(c)
			}
		})
	}
	pool := []models.CandidateCourse{
		genEd(1, "의사소통", nil),
		genEd(2, "자연과학", nil), // subcategory already satisfied
		genEd(3, "외국어", func(c *models.CandidateCourse) { c.TargetYear = 1 }),
	}
	profile := models.StudentProfile{
		Year:               2,
		ShortageByCategory: map[string]int{"의사소통": 3, "외국어": 3},
	}
	got := f.FilterCandidates(context.Background(), profile, models.FilterCriteria{}, pool)
	assert.Equal(t, []int64{1}, ids(got))
}

func TestFuzzyNameMatch(t *testing.T) {
	assert.True(t, fuzzyNameMatch("자료구조및실습", "자료구조"))
	assert.True(t, fuzzyNameMatch("Data Structures", "data structures"))
	assert.True(t, fuzzyNameMatch("자료 구조", "자료구조"))
	assert.False(t, fuzzyNameMatch("자료구조", ""))
	assert.False(t, fuzzyNameMatch("알고리즘", "자료구조"))
}

func TestDownweightLowerYearElectives(t *testing.T) {
	f := newFilter(nil)
	var candidates []models.CandidateCourse
	for i := int64(0); i < 5; i++ {
		candidates = append(candidates, filterCourse(i, "같은학년선택", func(c *models.CandidateCourse) {
			c.TargetYear = 3
			c.GraduationPriority = 50
		}))
	}
	candidates = append(candidates, filterCourse(100, "하위학년선택", func(c *models.CandidateCourse) {
		c.TargetYear = 2
		c.GraduationPriority = 50
	}))

	got := f.DownweightLowerYearElectives(models.StudentProfile{Year: 3}, candidates)
	assert.Equal(t, 50, got[0].GraduationPriority, "same-year electives keep their priority")
	assert.Equal(t, 20, got[5].GraduationPriority, "lower-year electives are down-weighted")
}

func TestDownweightSkippedWhenElectivesScarce(t *testing.T) {
	f := newFilter(nil)
	candidates := []models.CandidateCourse{
		filterCourse(1, "하위학년선택", func(c *models.CandidateCourse) {
			c.TargetYear = 2
			c.GraduationPriority = 50
		}),
	}
	got := f.DownweightLowerYearElectives(models.StudentProfile{Year: 3}, candidates)
	assert.Equal(t, 50, got[0].GraduationPriority)
}

func TestRemoveExcludedNamesKeepsForced(t *testing.T) {
	f := newFilter(nil)
	candidates := []models.CandidateCourse{
		filterCourse(1, "자료구조", func(c *models.CandidateCourse) { c.Forced = true }),
		filterCourse(2, "자료구조및실습", nil),
		filterCourse(3, "알고리즘", nil),
	}
	got := f.RemoveExcludedNames(candidates, []string{"자료구조"})
	assert.Equal(t, []int64{1, 3}, ids(got))
}
