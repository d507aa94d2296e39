package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// CourseRepository loads candidate course offerings from the catalog store.
type CourseRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB, logger *zap.Logger) *CourseRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseRepository{db: db, logger: logger}
}

type offeringRow struct {
	ID           int64  `db:"id"`
	CourseName   string `db:"course_name"`
	Section      string `db:"section"`
	Credits      int    `db:"credits"`
	Category     string `db:"category"`
	GenEdGroup   string `db:"gen_ed_group"`
	TargetYear   int    `db:"target_year"`
	DepartmentID int64  `db:"department_id"`
	Instructor   string `db:"instructor"`
	Capacity     int    `db:"capacity"`
}

type scheduleRow struct {
	OfferingID int64  `db:"offering_id"`
	DayOfWeek  string `db:"day_of_week"`
	Periods    string `db:"periods"`
	Room       string `db:"room"`
}

// ListByTerm returns every offering of the term with its schedule blocks.
// Offerings whose day or category labels cannot be parsed are dropped with a
// log line rather than aborting the request.
func (r *CourseRepository) ListByTerm(ctx context.Context, termID string) ([]models.CandidateCourse, error) {
	const offeringQuery = `SELECT id, course_name, section, credits, category, gen_ed_group, target_year, department_id, instructor, capacity
		FROM course_offerings WHERE term_id = $1 ORDER BY id`
	var rows []offeringRow
	if err := r.db.SelectContext(ctx, &rows, offeringQuery, termID); err != nil {
		return nil, fmt.Errorf("list offerings for term %s: %w", termID, err)
	}

	const scheduleQuery = `SELECT offering_id, day_of_week, periods, room
		FROM offering_schedules WHERE term_id = $1 ORDER BY offering_id, day_of_week`
	var schedules []scheduleRow
	if err := r.db.SelectContext(ctx, &schedules, scheduleQuery, termID); err != nil {
		return nil, fmt.Errorf("list offering schedules for term %s: %w", termID, err)
	}

	blocksByOffering := make(map[int64][]models.ScheduleBlock, len(rows))
	for _, s := range schedules {
		day, ok := models.ParseWeekday(s.DayOfWeek)
		if !ok {
			r.logger.Warn("dropping schedule row with unknown day",
				zap.Int64("offeringId", s.OfferingID), zap.String("day", s.DayOfWeek))
			continue
		}
		blocksByOffering[s.OfferingID] = append(blocksByOffering[s.OfferingID], models.ScheduleBlock{
			Day:     day,
			Periods: parsePeriods(s.Periods),
			Room:    s.Room,
		})
	}

	courses := make([]models.CandidateCourse, 0, len(rows))
	for _, row := range rows {
		category, ok := models.ParseCourseCategory(row.Category)
		if !ok {
			r.logger.Warn("dropping offering with unknown category",
				zap.Int64("offeringId", row.ID), zap.String("category", row.Category))
			continue
		}
		course := models.CandidateCourse{
			ID:           row.ID,
			Name:         row.CourseName,
			Section:      row.Section,
			Credits:      row.Credits,
			Category:     category,
			GenEdGroup:   row.GenEdGroup,
			TargetYear:   row.TargetYear,
			DepartmentID: row.DepartmentID,
			Instructor:   row.Instructor,
			Capacity:     row.Capacity,
			Blocks:       blocksByOffering[row.ID],
		}
		course.NormalizeBlocks()
		courses = append(courses, course)
	}
	return courses, nil
}

// parsePeriods expands a "1,2,3" period list; the reserved "00" code maps to
// the placeholder period.
func parsePeriods(raw string) []int {
	parts := strings.Split(raw, ",")
	periods := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "00" {
			periods = append(periods, models.PlaceholderPeriod)
			continue
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		periods = append(periods, value)
	}
	return periods
}
