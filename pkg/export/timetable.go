package export

import (
	"fmt"
	"strings"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// TimetableRow is one course line of an exported result, flattened for
// spreadsheet consumption.
type TimetableRow struct {
	Rank       int     `csv:"rank"`
	CourseID   int64   `csv:"course_id"`
	Name       string  `csv:"course_name"`
	Section    string  `csv:"section"`
	Credits    int     `csv:"credits"`
	Category   string  `csv:"category"`
	GenEdGroup string  `csv:"gen_ed_group"`
	Instructor string  `csv:"instructor"`
	Schedule   string  `csv:"schedule"`
	Combined   float64 `csv:"combined_score"`
}

// Rows flattens ranked timetables into export rows, one per selected course.
func Rows(solutions []models.TimetableSolution) []TimetableRow {
	var rows []TimetableRow
	for i, s := range solutions {
		for _, c := range s.Courses {
			rows = append(rows, TimetableRow{
				Rank:       i + 1,
				CourseID:   c.ID,
				Name:       c.Name,
				Section:    c.Section,
				Credits:    c.Credits,
				Category:   c.Category.String(),
				GenEdGroup: c.GenEdGroup,
				Instructor: c.Instructor,
				Schedule:   FormatSchedule(c.Blocks),
				Combined:   s.CombinedScore,
			})
		}
	}
	return rows
}

// FormatSchedule renders meeting blocks as "MONDAY 1-3 (IT-505); ...".
func FormatSchedule(blocks []models.ScheduleBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		span := formatPeriods(b.Periods)
		if b.Room != "" {
			parts = append(parts, fmt.Sprintf("%s %s (%s)", b.Day, span, b.Room))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s", b.Day, span))
		}
	}
	return strings.Join(parts, "; ")
}

func formatPeriods(periods []int) string {
	if len(periods) == 0 {
		return ""
	}
	contiguous := true
	for i := 1; i < len(periods); i++ {
		if periods[i] != periods[i-1]+1 {
			contiguous = false
			break
		}
	}
	if contiguous && len(periods) > 1 {
		return fmt.Sprintf("%d-%d", periods[0], periods[len(periods)-1])
	}
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ",")
}
