package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/cpsolver"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

type stubDistances struct {
	minutes map[[2]string]int
}

func (s stubDistances) WalkMinutes(_ context.Context, from, to string) int {
	if from == to {
		return 0
	}
	if m, ok := s.minutes[[2]string{from, to}]; ok {
		return m
	}
	if m, ok := s.minutes[[2]string{to, from}]; ok {
		return m
	}
	return 0
}

func solveBuilt(t *testing.T, bm *BuiltModel) cpsolver.Result {
	t.Helper()
	return cpsolver.Solve(context.Background(), bm.Model,
		cpsolver.Options{Timeout: 5 * time.Second, Workers: 2})
}

func block(day models.Weekday, building string, periods ...int) models.ScheduleBlock {
	return models.ScheduleBlock{Day: day, Periods: periods, Building: building}
}

func TestBuildSelectsExactCreditsWithoutConflicts(t *testing.T) {
	candidates := []models.CandidateCourse{
		{ID: 501, Name: "자료구조", Section: "01", Credits: 3, Category: models.CategoryMajorRequired,
			Forced: true, GraduationPriority: 100,
			Blocks: []models.ScheduleBlock{block(models.Monday, "IT", 1, 2), block(models.Wednesday, "IT", 3)}},
		{ID: 502, Name: "알고리즘", Section: "01", Credits: 3, Category: models.CategoryMajorElective,
			GraduationPriority: 80,
			Blocks:             []models.ScheduleBlock{block(models.Tuesday, "IT", 1, 2)}},
		{ID: 503, Name: "글쓰기", Section: "01", Credits: 2, Category: models.CategoryGeneralEducation,
			GenEdGroup: "의사소통", GraduationPriority: 60,
			Blocks:     []models.ScheduleBlock{block(models.Thursday, "E8", 5)}},
		{ID: 504, Name: "운영체제", Section: "01", Credits: 3, Category: models.CategoryMajorElective,
			GraduationPriority: 90,
			Blocks:             []models.ScheduleBlock{block(models.Monday, "IT", 1, 2)}},
	}
	params := models.ConstraintParameters{
		TargetTotalCredits:    8,
		TargetMajorCredits:    6,
		TargetElectiveCredits: 2,
		GenEdShortages:        map[string]int{"의사소통": 2},
		MaxWalkingMinutes:     models.NoWalkingLimit,
	}

	builder := NewModelBuilder(stubDistances{}, zap.NewNop())
	bm := builder.Build(context.Background(), models.StudentProfile{Year: 2}, params, candidates)
	res := solveBuilt(t, bm)

	require.Equal(t, cpsolver.StatusOptimal, res.Status)
	selected := bm.SelectedCourses(res.Values)
	ids := make([]int64, 0, len(selected))
	for _, c := range selected {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []int64{501, 502, 503}, ids,
		"course 504 collides with the forced course and must be dropped")

	seen := make(map[models.SlotKey]bool)
	for _, c := range selected {
		for _, slot := range c.OccupiedSlots() {
			assert.False(t, seen[slot], "selected timetable must be conflict-free")
			seen[slot] = true
		}
	}
}

func TestBuildWalkingDistanceExclusion(t *testing.T) {
	candidates := []models.CandidateCourse{
		{ID: 1, Name: "회로이론", Section: "01", Credits: 3, Category: models.CategoryMajorRequired,
			Blocks: []models.ScheduleBlock{block(models.Monday, "E8", 1, 2)}},
		{ID: 2, Name: "전자기학", Section: "01", Credits: 3, Category: models.CategoryMajorRequired,
			Blocks: []models.ScheduleBlock{block(models.Monday, "IT", 3, 4)}},
	}
	params := models.ConstraintParameters{
		TargetTotalCredits: 6,
		TargetMajorCredits: 6,
		MaxWalkingMinutes:  5,
	}
	distances := stubDistances{minutes: map[[2]string]int{{"E8", "IT"}: 12}}
	builder := NewModelBuilder(distances, zap.NewNop())

	bm := builder.Build(context.Background(), models.StudentProfile{}, params, candidates)
	res := solveBuilt(t, bm)
	assert.Equal(t, cpsolver.StatusInfeasible, res.Status,
		"back-to-back meetings twelve minutes apart exceed the five-minute limit")

	params.MaxWalkingMinutes = models.NoWalkingLimit
	bm = builder.Build(context.Background(), models.StudentProfile{}, params, candidates)
	res = solveBuilt(t, bm)
	require.Equal(t, cpsolver.StatusOptimal, res.Status)
	assert.Len(t, bm.SelectedCourses(res.Values), 2)
}

func TestBuildOneSectionPerCourseName(t *testing.T) {
	candidates := []models.CandidateCourse{
		{ID: 10, Name: "데이터구조", Section: "01", Credits: 3, Category: models.CategoryMajorRequired,
			Blocks: []models.ScheduleBlock{block(models.Monday, "IT", 1, 2)}},
		{ID: 11, Name: "데이터구조", Section: "02", Credits: 3, Category: models.CategoryMajorRequired,
			Blocks: []models.ScheduleBlock{block(models.Tuesday, "IT", 1, 2)}},
	}
	params := models.ConstraintParameters{
		TargetTotalCredits: 6,
		TargetMajorCredits: 6,
		MaxWalkingMinutes:  models.NoWalkingLimit,
	}
	builder := NewModelBuilder(stubDistances{}, zap.NewNop())
	bm := builder.Build(context.Background(), models.StudentProfile{}, params, candidates)

	res := solveBuilt(t, bm)
	assert.Equal(t, cpsolver.StatusInfeasible, res.Status,
		"two sections of the same course can never be taken together")
}

func TestBuildGenEdSubcategoryBound(t *testing.T) {
	candidates := []models.CandidateCourse{
		{ID: 20, Name: "글쓰기", Section: "01", Credits: 2, Category: models.CategoryGeneralEducation,
			GenEdGroup: "의사소통",
			Blocks:     []models.ScheduleBlock{block(models.Monday, "E8", 1)}},
		{ID: 21, Name: "발표와토론", Section: "01", Credits: 2, Category: models.CategoryGeneralEducation,
			GenEdGroup: "의사소통",
			Blocks:     []models.ScheduleBlock{block(models.Tuesday, "E8", 1)}},
	}
	params := models.ConstraintParameters{
		TargetTotalCredits:    4,
		TargetElectiveCredits: 4,
		GenEdShortages:        map[string]int{"의사소통": 2},
		MaxWalkingMinutes:     models.NoWalkingLimit,
	}
	builder := NewModelBuilder(stubDistances{}, zap.NewNop())
	bm := builder.Build(context.Background(), models.StudentProfile{}, params, candidates)

	res := solveBuilt(t, bm)
	assert.Equal(t, cpsolver.StatusInfeasible, res.Status,
		"four communication credits exceed the two-credit shortage")
}

func TestBuildCompactnessPrefersGaplessDay(t *testing.T) {
	candidates := []models.CandidateCourse{
		{ID: 30, Name: "자료구조", Section: "01", Credits: 3, Category: models.CategoryMajorRequired,
			Forced: true,
			Blocks: []models.ScheduleBlock{block(models.Monday, "IT", 1)}},
		{ID: 31, Name: "교양영어", Section: "01", Credits: 2, Category: models.CategoryGeneralEducation,
			GenEdGroup: "외국어",
			Blocks:     []models.ScheduleBlock{block(models.Monday, "IT", 2)}},
		{ID: 32, Name: "교양영어", Section: "02", Credits: 2, Category: models.CategoryGeneralEducation,
			GenEdGroup: "외국어",
			Blocks:     []models.ScheduleBlock{block(models.Monday, "IT", 3)}},
	}
	params := models.ConstraintParameters{
		TargetTotalCredits:    5,
		TargetMajorCredits:    3,
		TargetElectiveCredits: 2,
		GenEdShortages:        map[string]int{"외국어": 2},
		MaxWalkingMinutes:     models.NoWalkingLimit,
		PreferCompact:         true,
	}
	builder := NewModelBuilder(stubDistances{}, zap.NewNop())
	bm := builder.Build(context.Background(), models.StudentProfile{}, params, candidates)

	res := solveBuilt(t, bm)
	require.Equal(t, cpsolver.StatusOptimal, res.Status)
	selected := bm.SelectedCourses(res.Values)
	require.Len(t, selected, 2)
	for _, c := range selected {
		assert.NotEqual(t, int64(32), c.ID,
			"the section leaving a one-hour hole must lose to the adjacent one")
	}
}

func TestBuildCompactnessRewardsBackToBackMeetings(t *testing.T) {
	// Neither alternative leaves a hole; only the back-to-back bonus separates
	// the section following the forced course from the one on another day.
	candidates := []models.CandidateCourse{
		{ID: 40, Name: "자료구조", Section: "01", Credits: 3, Category: models.CategoryMajorRequired,
			Forced: true,
			Blocks: []models.ScheduleBlock{block(models.Monday, "IT", 1)}},
		{ID: 41, Name: "교양영어", Section: "01", Credits: 2, Category: models.CategoryGeneralEducation,
			GenEdGroup: "외국어",
			Blocks:     []models.ScheduleBlock{block(models.Monday, "IT", 2)}},
		{ID: 42, Name: "교양영어", Section: "02", Credits: 2, Category: models.CategoryGeneralEducation,
			GenEdGroup: "외국어",
			Blocks:     []models.ScheduleBlock{block(models.Tuesday, "IT", 1)}},
	}
	params := models.ConstraintParameters{
		TargetTotalCredits:    5,
		TargetMajorCredits:    3,
		TargetElectiveCredits: 2,
		GenEdShortages:        map[string]int{"외국어": 2},
		MaxWalkingMinutes:     models.NoWalkingLimit,
		PreferCompact:         true,
	}
	builder := NewModelBuilder(stubDistances{}, zap.NewNop())
	bm := builder.Build(context.Background(), models.StudentProfile{}, params, candidates)

	res := solveBuilt(t, bm)
	require.Equal(t, cpsolver.StatusOptimal, res.Status)
	selected := bm.SelectedCourses(res.Values)
	require.Len(t, selected, 2)
	for _, c := range selected {
		assert.NotEqual(t, int64(42), c.ID,
			"the adjacent section must win over the same-score section on another day")
	}
}
