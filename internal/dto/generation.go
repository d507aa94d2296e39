package dto

import (
	"fmt"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// maxPriorityWeight caps the shortage-derived category weight.
const maxPriorityWeight = 100

// StudentProfileRequest identifies the student and their graduation state.
type StudentProfileRequest struct {
	DepartmentID     int64    `json:"departmentId" validate:"min=0"`
	Year             int      `json:"year" validate:"required,min=1,max=6"`
	CompletedCourses []string `json:"completedCourses"`
	// ShortageByCategory maps graduation-category keys (major categories or
	// general-education subcategories) to remaining credits.
	ShortageByCategory map[string]int `json:"shortageByCategory"`
}

// CreditTargetRequest carries the exact credit goals for the timetable.
type CreditTargetRequest struct {
	Total    int `json:"total" validate:"required,min=1,max=27"`
	Major    int `json:"major" validate:"min=0"`
	Elective int `json:"elective" validate:"min=0"`
	// GenEdShortages bounds how many credits each general-education
	// subcategory may contribute.
	GenEdShortages map[string]int `json:"genEdShortages"`
}

// FilterRequest carries the hard eligibility knobs. Day names accept both
// English and Korean labels.
type FilterRequest struct {
	ExcludedCourseIDs   []int64  `json:"excludedCourseIds"`
	ExcludedCourseNames []string `json:"excludedCourseNames"`
	FreeDays            []string `json:"freeDays"`
	ForcedCourseIDs     []int64  `json:"forcedCourseIds"`
	// MaxWalkingMinutes omitted means no walking limit.
	MaxWalkingMinutes *int `json:"maxWalkingMinutes" validate:"omitempty,min=1,max=60"`
	PreferCompact     bool `json:"preferCompact"`
}

// PreferenceRequest carries the soft preferences.
type PreferenceRequest struct {
	PreferredInstructors []string `json:"preferredInstructors"`
	AvoidedInstructors   []string `json:"avoidedInstructors"`
	PreferredKeywords    []string `json:"preferredKeywords"`
	AvoidedKeywords      []string `json:"avoidedKeywords"`
	TopicTags            []string `json:"topicTags"`
	TimeOfDay            string   `json:"timeOfDay" validate:"omitempty,oneof=MORNING AFTERNOON"`
}

// GenerateTimetableRequest is the full generation payload.
type GenerateTimetableRequest struct {
	TermID      string                `json:"termId" validate:"required"`
	Student     StudentProfileRequest `json:"student" validate:"required"`
	Credits     CreditTargetRequest   `json:"credits" validate:"required"`
	Filters     FilterRequest         `json:"filters"`
	Preferences PreferenceRequest     `json:"preferences"`
	Preset      string                `json:"preset" validate:"omitempty,oneof=BASIC ADVANCED EXPERT ULTRA"`
}

// Profile converts the student section to the domain profile.
func (r GenerateTimetableRequest) Profile() models.StudentProfile {
	return models.StudentProfile{
		DepartmentID:       r.Student.DepartmentID,
		Year:               r.Student.Year,
		CompletedCourses:   r.Student.CompletedCourses,
		ShortageByCategory: r.Student.ShortageByCategory,
	}
}

// Params converts the credit and filter sections to constraint parameters.
func (r GenerateTimetableRequest) Params() models.ConstraintParameters {
	walking := models.NoWalkingLimit
	if r.Filters.MaxWalkingMinutes != nil {
		walking = *r.Filters.MaxWalkingMinutes
	}
	return models.ConstraintParameters{
		TargetTotalCredits:    r.Credits.Total,
		TargetMajorCredits:    r.Credits.Major,
		TargetElectiveCredits: r.Credits.Elective,
		GenEdShortages:        r.Credits.GenEdShortages,
		MaxWalkingMinutes:     walking,
		PreferCompact:         r.Filters.PreferCompact,
	}
}

// FilterCriteria converts the filter section, translating day labels.
func (r GenerateTimetableRequest) FilterCriteria() (models.FilterCriteria, error) {
	days := make([]models.Weekday, 0, len(r.Filters.FreeDays))
	for _, raw := range r.Filters.FreeDays {
		day, ok := models.ParseWeekday(raw)
		if !ok {
			return models.FilterCriteria{}, fmt.Errorf("unknown day name %q", raw)
		}
		days = append(days, day)
	}
	return models.FilterCriteria{
		ExcludedIDs:   r.Filters.ExcludedCourseIDs,
		ExcludedNames: r.Filters.ExcludedCourseNames,
		FreeDays:      days,
		ForcedIDs:     r.Filters.ForcedCourseIDs,
	}, nil
}

// ScoreCriteria converts the preference section and derives the per-category
// priority weights from the student's shortages as min(shortage*10, 100).
func (r GenerateTimetableRequest) ScoreCriteria() models.ScoreCriteria {
	priority := make(map[string]int, len(r.Student.ShortageByCategory))
	for key, shortage := range r.Student.ShortageByCategory {
		if shortage <= 0 {
			continue
		}
		weight := shortage * 10
		if weight > maxPriorityWeight {
			weight = maxPriorityWeight
		}
		priority[key] = weight
	}
	return models.ScoreCriteria{
		PreferredInstructors: r.Preferences.PreferredInstructors,
		AvoidedInstructors:   r.Preferences.AvoidedInstructors,
		PreferredKeywords:    r.Preferences.PreferredKeywords,
		AvoidedKeywords:      r.Preferences.AvoidedKeywords,
		TopicTags:            r.Preferences.TopicTags,
		PreferMorning:        r.Preferences.TimeOfDay == "MORNING",
		PreferAfternoon:      r.Preferences.TimeOfDay == "AFTERNOON",
		PriorityMap:          priority,
	}
}

// ScheduleView is one meeting of a selected course.
type ScheduleView struct {
	Day     string `json:"day"`
	Periods []int  `json:"periods"`
	Room    string `json:"room,omitempty"`
}

// CourseView is one selected course of a generated timetable.
type CourseView struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Section    string         `json:"section"`
	Credits    int            `json:"credits"`
	Category   string         `json:"category"`
	GenEdGroup string         `json:"genEdGroup,omitempty"`
	Instructor string         `json:"instructor,omitempty"`
	Forced     bool           `json:"forced,omitempty"`
	Schedule   []ScheduleView `json:"schedule"`
}

// TimetableView is one ranked timetable.
type TimetableView struct {
	Rank            int                        `json:"rank"`
	TotalCredits    int                        `json:"totalCredits"`
	ObjectiveValue  int64                      `json:"objectiveValue"`
	OptimalityPct   float64                    `json:"optimalityPct"`
	PreferenceScore int                        `json:"preferenceScore"`
	CombinedScore   float64                    `json:"combinedScore"`
	Breakdown       models.PreferenceBreakdown `json:"preferenceBreakdown"`
	Courses         []CourseView               `json:"courses"`
}

// NewTimetableView flattens a solution for the API response.
func NewTimetableView(rank int, s models.TimetableSolution) TimetableView {
	courses := make([]CourseView, 0, len(s.Courses))
	for _, c := range s.Courses {
		schedule := make([]ScheduleView, 0, len(c.Blocks))
		for _, b := range c.Blocks {
			schedule = append(schedule, ScheduleView{
				Day:     b.Day.String(),
				Periods: b.Periods,
				Room:    b.Room,
			})
		}
		courses = append(courses, CourseView{
			ID:         c.ID,
			Name:       c.Name,
			Section:    c.Section,
			Credits:    c.Credits,
			Category:   c.Category.String(),
			GenEdGroup: c.GenEdGroup,
			Instructor: c.Instructor,
			Forced:     c.Forced,
			Schedule:   schedule,
		})
	}
	return TimetableView{
		Rank:            rank,
		TotalCredits:    s.TotalCredits(),
		ObjectiveValue:  s.ObjectiveValue,
		OptimalityPct:   s.OptimalityPct,
		PreferenceScore: s.PreferenceScore,
		CombinedScore:   s.CombinedScore,
		Breakdown:       s.Breakdown,
		Courses:         courses,
	}
}

// GenerateTimetableResponse is the envelope payload of a generation call.
type GenerateTimetableResponse struct {
	ResultID       string          `json:"resultId"`
	Status         string          `json:"status"`
	Message        string          `json:"message,omitempty"`
	CandidateCount int             `json:"candidateCount"`
	SolutionCount  int             `json:"solutionCount"`
	ElapsedMS      int64           `json:"elapsedMs"`
	Timetables     []TimetableView `json:"timetables"`
}
