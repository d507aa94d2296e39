package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// courseRow is one offering of the catalog CSV. The schedule column uses the
// same shape the exporter writes: "MONDAY 1-3 (IT-505); WEDNESDAY 2,5".
type courseRow struct {
	ID           int64   `csv:"course_id"`
	Name         string  `csv:"name"`
	Section      string  `csv:"section"`
	Credits      int     `csv:"credits"`
	Category     string  `csv:"category"`
	GenEdGroup   string  `csv:"gen_ed_group"`
	TargetYear   int     `csv:"target_year"`
	DepartmentID int64   `csv:"department_id"`
	Instructor   string  `csv:"instructor"`
	Capacity     int     `csv:"capacity"`
	Schedule     string  `csv:"schedule"`
	Rating       float64 `csv:"rating"`
}

// fileCatalog serves a CSV-loaded course list to the generation pipeline.
type fileCatalog struct {
	courses []models.CandidateCourse
	ratings map[models.RatingKey]float64
}

func (c *fileCatalog) ListByTerm(_ context.Context, _ string) ([]models.CandidateCourse, error) {
	return c.courses, nil
}

func (c *fileCatalog) Snapshot(_ context.Context) (map[models.RatingKey]float64, error) {
	return c.ratings, nil
}

func loadCatalog(path string) (*fileCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var rows []courseRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse catalog csv: %w", err)
	}

	catalog := &fileCatalog{ratings: make(map[models.RatingKey]float64)}
	for i, row := range rows {
		category, ok := models.ParseCourseCategory(row.Category)
		if !ok {
			return nil, fmt.Errorf("row %d: unknown category %q", i+2, row.Category)
		}
		blocks, err := parseScheduleSpec(row.Schedule)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		course := models.CandidateCourse{
			ID:           row.ID,
			Name:         row.Name,
			Section:      row.Section,
			Credits:      row.Credits,
			Category:     category,
			GenEdGroup:   row.GenEdGroup,
			TargetYear:   row.TargetYear,
			DepartmentID: row.DepartmentID,
			Instructor:   row.Instructor,
			Capacity:     row.Capacity,
			Blocks:       blocks,
		}
		course.NormalizeBlocks()
		catalog.courses = append(catalog.courses, course)
		if row.Rating > 0 {
			catalog.ratings[models.RatingKey{Course: row.Name, Instructor: row.Instructor}] = row.Rating
		}
	}
	return catalog, nil
}

// parseScheduleSpec parses "MONDAY 1-3 (IT-505); WEDNESDAY 2,5" into blocks.
func parseScheduleSpec(spec string) ([]models.ScheduleBlock, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	var blocks []models.ScheduleBlock
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		block, err := parseScheduleBlock(part)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func parseScheduleBlock(part string) (models.ScheduleBlock, error) {
	fields := strings.Fields(part)
	if len(fields) < 2 {
		return models.ScheduleBlock{}, fmt.Errorf("malformed schedule entry %q", part)
	}
	day, ok := models.ParseWeekday(fields[0])
	if !ok {
		return models.ScheduleBlock{}, fmt.Errorf("unknown day %q in schedule entry %q", fields[0], part)
	}
	periods, err := parsePeriods(fields[1])
	if err != nil {
		return models.ScheduleBlock{}, fmt.Errorf("schedule entry %q: %w", part, err)
	}
	block := models.ScheduleBlock{Day: day, Periods: periods}
	if len(fields) > 2 {
		room := strings.Join(fields[2:], " ")
		block.Room = strings.Trim(room, "()")
	}
	return block, nil
}

// parsePeriods expands a period list such as "1-3,5" into [1 2 3 5].
func parsePeriods(spec string) ([]int, error) {
	var periods []int
	for _, chunk := range strings.Split(spec, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if lo, hi, found := strings.Cut(chunk, "-"); found {
			start, err := strconv.Atoi(lo)
			if err != nil {
				return nil, fmt.Errorf("bad period range %q", chunk)
			}
			end, err := strconv.Atoi(hi)
			if err != nil || end < start {
				return nil, fmt.Errorf("bad period range %q", chunk)
			}
			for p := start; p <= end; p++ {
				periods = append(periods, p)
			}
			continue
		}
		p, err := strconv.Atoi(chunk)
		if err != nil {
			return nil, fmt.Errorf("bad period %q", chunk)
		}
		periods = append(periods, p)
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("empty period list %q", spec)
	}
	return periods, nil
}
