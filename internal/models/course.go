package models

import (
	"sort"
	"strings"
)

// Weekday identifies a day of the class week. External payloads may carry
// localized day names; translation happens only at the I/O edge.
type Weekday int

const (
	WeekdayUnknown Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = map[Weekday]string{
	Monday:    "MONDAY",
	Tuesday:   "TUESDAY",
	Wednesday: "WEDNESDAY",
	Thursday:  "THURSDAY",
	Friday:    "FRIDAY",
	Saturday:  "SATURDAY",
	Sunday:    "SUNDAY",
}

var weekdayAliases = map[string]Weekday{
	"MONDAY": Monday, "MON": Monday, "월": Monday,
	"TUESDAY": Tuesday, "TUE": Tuesday, "화": Tuesday,
	"WEDNESDAY": Wednesday, "WED": Wednesday, "수": Wednesday,
	"THURSDAY": Thursday, "THU": Thursday, "목": Thursday,
	"FRIDAY": Friday, "FRI": Friday, "금": Friday,
	"SATURDAY": Saturday, "SAT": Saturday, "토": Saturday,
	"SUNDAY": Sunday, "SUN": Sunday, "일": Sunday,
}

// ParseWeekday translates an external day label (English or Korean) into a
// Weekday. The second return value reports whether the label was recognised.
func ParseWeekday(raw string) (Weekday, bool) {
	day, ok := weekdayAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return day, ok
}

func (w Weekday) String() string {
	if name, ok := weekdayNames[w]; ok {
		return name
	}
	return "UNKNOWN"
}

// CourseCategory classifies an offering for credit accounting.
type CourseCategory int

const (
	CategoryUnknown CourseCategory = iota
	CategoryMajorRequired
	CategoryMajorElective
	CategoryGeneralEducation
	CategoryFreeElective
	CategoryTeaching
)

var categoryNames = map[CourseCategory]string{
	CategoryMajorRequired:    "MAJOR_REQUIRED",
	CategoryMajorElective:    "MAJOR_ELECTIVE",
	CategoryGeneralEducation: "GENERAL_EDUCATION",
	CategoryFreeElective:     "FREE_ELECTIVE",
	CategoryTeaching:         "TEACHING",
}

var categoryAliases = map[string]CourseCategory{
	"MAJOR_REQUIRED": CategoryMajorRequired, "전공필수": CategoryMajorRequired,
	"MAJOR_ELECTIVE": CategoryMajorElective, "전공선택": CategoryMajorElective,
	"GENERAL_EDUCATION": CategoryGeneralEducation, "교양": CategoryGeneralEducation,
	"FREE_ELECTIVE": CategoryFreeElective, "일반선택": CategoryFreeElective,
	"TEACHING": CategoryTeaching, "교직": CategoryTeaching,
}

// ParseCourseCategory translates an external category label into a
// CourseCategory, accepting both canonical and localized forms.
func ParseCourseCategory(raw string) (CourseCategory, bool) {
	cat, ok := categoryAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return cat, ok
}

func (c CourseCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsMajor reports whether credits in this category count toward the major
// target rather than the elective target.
func (c CourseCategory) IsMajor() bool {
	return c == CategoryMajorRequired || c == CategoryMajorElective
}

// AnyYear is the target-year sentinel for offerings open to every year.
const AnyYear = 0

// PlaceholderPeriod marks schedule rows whose time code is the reserved "00"
// placeholder; such blocks carry no real meeting time.
const PlaceholderPeriod = 0

// SlotKey addresses one (day, period) cell of the weekly grid.
type SlotKey struct {
	Day    Weekday
	Period int
}

// ScheduleBlock is one meeting of an offering: a day, the occupied periods in
// ascending order and the room it takes place in.
type ScheduleBlock struct {
	Day      Weekday
	Periods  []int
	Room     string
	Building string
}

// HasPlaceholder reports whether the block carries the reserved "00" period.
func (b ScheduleBlock) HasPlaceholder() bool {
	for _, p := range b.Periods {
		if p == PlaceholderPeriod {
			return true
		}
	}
	return false
}

// StartPeriod returns the earliest period of the block, or 0 when empty.
func (b ScheduleBlock) StartPeriod() int {
	if len(b.Periods) == 0 {
		return 0
	}
	return b.Periods[0]
}

// EndPeriod returns the latest period of the block, or 0 when empty.
func (b ScheduleBlock) EndPeriod() int {
	if len(b.Periods) == 0 {
		return 0
	}
	return b.Periods[len(b.Periods)-1]
}

// BuildingCodeFromRoom derives the building portion of a room label such as
// "IT-505" or "60주년기념관 301". Unknown shapes fall back to the whole label.
func BuildingCodeFromRoom(room string) string {
	room = strings.TrimSpace(room)
	if room == "" {
		return ""
	}
	if idx := strings.IndexAny(room, " -"); idx > 0 {
		return room[:idx]
	}
	return room
}

// CandidateCourse is one schedulable offering eligible for selection in the
// current generation request. Instances are built fresh per request from
// upstream catalog data and are immutable once scored.
type CandidateCourse struct {
	ID           int64
	Name         string
	Section      string
	Credits      int
	Category     CourseCategory
	GenEdGroup   string // effective general-education subcategory, empty otherwise
	TargetYear   int    // AnyYear when unrestricted
	DepartmentID int64
	Instructor   string
	Capacity     int
	Blocks       []ScheduleBlock
	Forced       bool

	// Score components attached by the scorer, consumed as objective
	// coefficients only.
	GraduationPriority int
	PreferenceScore    int
	RatingScore        int
}

// CategoryKey returns the graduation-category identifier used for priority
// lookups: the subcategory for general-education offerings, the category name
// otherwise.
func (c *CandidateCourse) CategoryKey() string {
	if c.Category == CategoryGeneralEducation && c.GenEdGroup != "" {
		return c.GenEdGroup
	}
	return c.Category.String()
}

// OccupiedSlots expands the blocks into (day, period) cells.
func (c *CandidateCourse) OccupiedSlots() []SlotKey {
	var slots []SlotKey
	for _, block := range c.Blocks {
		for _, p := range block.Periods {
			slots = append(slots, SlotKey{Day: block.Day, Period: p})
		}
	}
	return slots
}

// OccupiesDay reports whether any block falls on the given day.
func (c *CandidateCourse) OccupiesDay(day Weekday) bool {
	for _, block := range c.Blocks {
		if block.Day == day {
			return true
		}
	}
	return false
}

// TotalHours counts the scheduled periods across all blocks.
func (c *CandidateCourse) TotalHours() int {
	total := 0
	for _, block := range c.Blocks {
		total += len(block.Periods)
	}
	return total
}

// NormalizeBlocks sorts periods within each block and derives missing
// building codes from the room label.
func (c *CandidateCourse) NormalizeBlocks() {
	for i := range c.Blocks {
		sort.Ints(c.Blocks[i].Periods)
		if c.Blocks[i].Building == "" {
			c.Blocks[i].Building = BuildingCodeFromRoom(c.Blocks[i].Room)
		}
	}
}
