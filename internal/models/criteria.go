package models

import (
	"fmt"
)

// NoWalkingLimit disables the inter-building distance constraint entirely.
const NoWalkingLimit = -1

// StudentProfile carries the per-student facts the filter and scorer need.
// DepartmentID of zero means the student has no owning department.
type StudentProfile struct {
	DepartmentID     int64
	Year             int
	CompletedCourses []string
	// ShortageByCategory maps graduation-category keys to remaining credits.
	ShortageByCategory map[string]int
}

// HasCompleted reports whether the student already passed a course name.
func (p *StudentProfile) HasCompleted(name string) bool {
	for _, done := range p.CompletedCourses {
		if done == name {
			return true
		}
	}
	return false
}

// ConstraintParameters are the numeric targets handed to the model builder.
// Major and elective targets must already be reconciled against the total;
// Validate enforces that at the request boundary.
type ConstraintParameters struct {
	TargetTotalCredits    int
	TargetMajorCredits    int
	TargetElectiveCredits int
	// GenEdShortages maps a general-education subcategory to its remaining
	// credit shortage. Zero means the subcategory is already satisfied.
	GenEdShortages    map[string]int
	MaxWalkingMinutes int
	PreferCompact     bool
}

// Validate rejects parameter sets the solver must never see.
func (p ConstraintParameters) Validate() error {
	if p.TargetTotalCredits <= 0 {
		return fmt.Errorf("target total credits must be positive, got %d", p.TargetTotalCredits)
	}
	if p.TargetMajorCredits < 0 || p.TargetElectiveCredits < 0 {
		return fmt.Errorf("credit targets must not be negative")
	}
	if p.TargetMajorCredits+p.TargetElectiveCredits != p.TargetTotalCredits {
		return fmt.Errorf("major (%d) + elective (%d) credits must equal total (%d)",
			p.TargetMajorCredits, p.TargetElectiveCredits, p.TargetTotalCredits)
	}
	if p.MaxWalkingMinutes < 0 && p.MaxWalkingMinutes != NoWalkingLimit {
		return fmt.Errorf("max walking minutes must be positive or the no-limit sentinel")
	}
	return nil
}

// FilterCriteria are the request-side eligibility knobs for candidate
// filtering.
type FilterCriteria struct {
	ExcludedIDs   []int64
	ExcludedNames []string
	FreeDays      []Weekday
	ForcedIDs     []int64
}

// IsFreeDay reports whether the given day was requested class-free.
func (c FilterCriteria) IsFreeDay(day Weekday) bool {
	for _, free := range c.FreeDays {
		if free == day {
			return true
		}
	}
	return false
}

// IsForced reports whether the offering id was pre-selected by the user.
func (c FilterCriteria) IsForced(id int64) bool {
	for _, forced := range c.ForcedIDs {
		if forced == id {
			return true
		}
	}
	return false
}

// RatingKey addresses the lecture-review average for a course taught by a
// specific instructor.
type RatingKey struct {
	Course     string
	Instructor string
}

// ScoreCriteria is the immutable per-request snapshot of soft preferences.
type ScoreCriteria struct {
	PreferredInstructors []string
	AvoidedInstructors   []string
	PreferredKeywords    []string
	AvoidedKeywords      []string
	TopicTags            []string

	PreferMorning   bool
	PreferAfternoon bool

	// PriorityMap maps graduation-category keys to shortage-derived weights,
	// precomputed by the caller as min(shortage*10, 100).
	PriorityMap map[string]int

	// Ratings maps (course, instructor) to the average lecture rating.
	Ratings map[RatingKey]float64
}

// WantsTimeOfDay reports whether any half-day preference is active.
func (c ScoreCriteria) WantsTimeOfDay() bool {
	return c.PreferMorning || c.PreferAfternoon
}

// PreferenceBreakdown counts which soft preferences a finished timetable
// actually matched; it accompanies the final ranking.
type PreferenceBreakdown struct {
	PreferredInstructors int `json:"preferredInstructors"`
	AvoidedInstructors   int `json:"avoidedInstructors"`
	PreferredKeywords    int `json:"preferredKeywords"`
	AvoidedKeywords      int `json:"avoidedKeywords"`
	TimeOfDayMatches     int `json:"timeOfDayMatches"`
}
