package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
	appErrors "github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/errors"
)

type stubCatalog struct {
	courses []models.CandidateCourse
	err     error
}

func (s stubCatalog) ListByTerm(_ context.Context, _ string) ([]models.CandidateCourse, error) {
	return s.courses, s.err
}

type stubRatings struct {
	ratings map[models.RatingKey]float64
}

func (s stubRatings) Snapshot(_ context.Context) (map[models.RatingKey]float64, error) {
	return s.ratings, nil
}

type stubRelator struct{}

func (stubRelator) AreRelated(_ context.Context, _, _ int64) bool { return true }

func newTestGenerationService(catalog stubCatalog, ratings stubRatings) *GenerationService {
	logger := zap.NewNop()
	return NewGenerationService(
		catalog,
		ratings,
		NewCandidateFilter(stubRelator{}, FilterConfig{}, logger),
		NewCourseScorer(logger),
		NewModelBuilder(stubDistances{}, logger),
		NewSolutionFinder(logger),
		nil,
		nil,
		logger,
		GenerationConfig{ReturnCount: 5, ResultTTL: time.Minute, DefaultPreset: PresetBasic},
	)
}

func major(id int64, name, section string, category models.CourseCategory, blocks ...models.ScheduleBlock) models.CandidateCourse {
	return models.CandidateCourse{
		ID: id, Name: name, Section: section, Credits: 3,
		Category: category, TargetYear: 2, DepartmentID: 11,
		Instructor: "김교수", Blocks: blocks,
	}
}

func genEd(id int64, name, group string, blocks ...models.ScheduleBlock) models.CandidateCourse {
	return models.CandidateCourse{
		ID: id, Name: name, Section: "01", Credits: 3,
		Category: models.CategoryGeneralEducation, GenEdGroup: group,
		TargetYear: models.AnyYear, Instructor: "이교수", Blocks: blocks,
	}
}

func scenarioCatalog() stubCatalog {
	return stubCatalog{courses: []models.CandidateCourse{
		major(501, "자료구조", "01", models.CategoryMajorRequired,
			block(models.Monday, "IT", 1, 2), block(models.Wednesday, "IT", 1)),
		major(502, "알고리즘", "01", models.CategoryMajorRequired,
			block(models.Tuesday, "IT", 1, 2), block(models.Thursday, "IT", 1)),
		major(503, "운영체제", "01", models.CategoryMajorElective,
			block(models.Tuesday, "IT", 3, 4), block(models.Thursday, "IT", 3)),
		major(504, "데이터구조", "01", models.CategoryMajorElective,
			block(models.Monday, "IT", 3, 4), block(models.Wednesday, "IT", 3)),
		major(505, "데이터구조", "02", models.CategoryMajorElective,
			block(models.Tuesday, "IT", 5, 6), block(models.Thursday, "IT", 5)),
		major(506, "컴퓨터구조", "01", models.CategoryMajorElective,
			block(models.Friday, "IT", 1, 2), block(models.Wednesday, "IT", 5)),
		genEd(601, "글쓰기", "의사소통",
			block(models.Monday, "E8", 5, 6, 7)),
		genEd(602, "일반물리", "자연과학",
			block(models.Tuesday, "S1", 7, 8, 9)),
		genEd(603, "생활영어", "외국어",
			block(models.Wednesday, "E8", 5, 6, 7)),
		genEd(605, "고급영어", "외국어",
			block(models.Thursday, "E8", 6, 7, 8)),
	}}
}

func scenarioRequest() GenerationRequest {
	shortages := map[string]int{"의사소통": 3, "자연과학": 3, "외국어": 3}
	return GenerationRequest{
		TermID: "2026-1",
		Profile: models.StudentProfile{
			DepartmentID:       11,
			Year:               2,
			CompletedCourses:   []string{"알고리즘"},
			ShortageByCategory: shortages,
		},
		Params: models.ConstraintParameters{
			TargetTotalCredits:    18,
			TargetMajorCredits:    9,
			TargetElectiveCredits: 9,
			GenEdShortages:        shortages,
			MaxWalkingMinutes:     models.NoWalkingLimit,
		},
		Filter: models.FilterCriteria{
			FreeDays:  []models.Weekday{models.Friday},
			ForcedIDs: []int64{501},
		},
		Score: models.ScoreCriteria{
			PreferMorning: true,
			PriorityMap: map[string]int{
				models.CategoryMajorRequired.String(): 90,
				models.CategoryMajorElective.String(): 90,
				"의사소통": 30, "자연과학": 30, "외국어": 30,
			},
		},
	}
}

func TestGenerateFullScenario(t *testing.T) {
	svc := newTestGenerationService(scenarioCatalog(), stubRatings{})
	req := scenarioRequest()

	result := svc.Generate(context.Background(), req)
	require.Equal(t, GenerationSuccess, result.Status, result.Message)
	require.NotEmpty(t, result.Timetables)
	assert.NotEmpty(t, result.ResultID)

	for _, tt := range result.Timetables {
		assert.Equal(t, 18, tt.TotalCredits())
		assert.Equal(t, 9, tt.CreditsWhere(func(c models.CandidateCourse) bool {
			return c.Category.IsMajor()
		}))
		assert.True(t, tt.ContainsCourse(501), "forced course must appear in every timetable")
		assert.False(t, tt.ContainsCourse(502), "completed courses are ineligible")
		assert.False(t, tt.ContainsCourse(506), "friday was requested class-free")
		assert.False(t, tt.ContainsCourse(504) && tt.ContainsCourse(505),
			"two sections of the same course can never be combined")

		seen := make(map[models.SlotKey]bool)
		for _, c := range tt.Courses {
			for _, slot := range c.OccupiedSlots() {
				assert.NotEqual(t, models.Friday, slot.Day)
				assert.False(t, seen[slot], "timetables must be conflict-free")
				seen[slot] = true
			}
		}
	}

	top := result.Timetables[0]
	assert.True(t, top.ContainsCourse(504),
		"with a morning preference the morning section must win")
	assert.InDelta(t, 100.0, top.OptimalityPct, 0.001)

	fetched, err := svc.GetResult(context.Background(), result.ResultID)
	require.NoError(t, err)
	assert.Equal(t, result.ResultID, fetched.ResultID)
	assert.Equal(t, len(result.Timetables), len(fetched.Timetables))
}

func TestGenerateRankingIsOrdered(t *testing.T) {
	svc := newTestGenerationService(scenarioCatalog(), stubRatings{})
	result := svc.Generate(context.Background(), scenarioRequest())
	require.Equal(t, GenerationSuccess, result.Status)

	for i := 1; i < len(result.Timetables); i++ {
		assert.GreaterOrEqual(t,
			result.Timetables[i-1].CombinedScore, result.Timetables[i].CombinedScore,
			"timetables must be ranked best first")
	}
	assert.LessOrEqual(t, len(result.Timetables), 5, "return count must be honoured")
}

func TestGenerateExcludedNamesNeverAppear(t *testing.T) {
	svc := newTestGenerationService(scenarioCatalog(), stubRatings{})
	req := scenarioRequest()
	req.Filter.ExcludedNames = []string{"고급영어"}

	result := svc.Generate(context.Background(), req)
	require.Equal(t, GenerationSuccess, result.Status, result.Message)
	require.NotEmpty(t, result.Timetables)
	for _, tt := range result.Timetables {
		assert.False(t, tt.ContainsCourse(605), "excluded course names must never be scheduled")
		assert.True(t, tt.ContainsCourse(603), "the remaining foreign-language section fills the shortage")
	}
}

func TestGenerateUnreachableTargetIsNoSolution(t *testing.T) {
	svc := newTestGenerationService(scenarioCatalog(), stubRatings{})
	req := scenarioRequest()
	req.Params.TargetTotalCredits = 30
	req.Params.TargetMajorCredits = 21

	result := svc.Generate(context.Background(), req)
	assert.Equal(t, GenerationNoSolution, result.Status)
	assert.Empty(t, result.Timetables)
	assert.NotEmpty(t, result.Message)
}

func TestGenerateInvalidParamsIsError(t *testing.T) {
	svc := newTestGenerationService(scenarioCatalog(), stubRatings{})
	req := scenarioRequest()
	req.Params.TargetMajorCredits = 10 // no longer sums to the total

	result := svc.Generate(context.Background(), req)
	assert.Equal(t, GenerationError, result.Status)
}

func TestGenerateCatalogFailureIsError(t *testing.T) {
	svc := newTestGenerationService(stubCatalog{err: errors.New("connection refused")}, stubRatings{})
	result := svc.Generate(context.Background(), scenarioRequest())
	assert.Equal(t, GenerationError, result.Status)
	assert.Empty(t, result.Timetables)
}

func TestGetResultUnknownID(t *testing.T) {
	svc := newTestGenerationService(scenarioCatalog(), stubRatings{})
	_, err := svc.GetResult(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrResultNotFound.Code, appErrors.FromError(err).Code)
}
