package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

func TestParseScheduleSpec(t *testing.T) {
	blocks, err := parseScheduleSpec("MONDAY 1-3 (IT-505); WEDNESDAY 2,5")
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, models.Monday, blocks[0].Day)
	assert.Equal(t, []int{1, 2, 3}, blocks[0].Periods)
	assert.Equal(t, "IT-505", blocks[0].Room)

	assert.Equal(t, models.Wednesday, blocks[1].Day)
	assert.Equal(t, []int{2, 5}, blocks[1].Periods)
	assert.Empty(t, blocks[1].Room)
}

func TestParseScheduleSpecKoreanDay(t *testing.T) {
	blocks, err := parseScheduleSpec("월 1-2")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, models.Monday, blocks[0].Day)
}

func TestParseScheduleSpecRejectsGarbage(t *testing.T) {
	_, err := parseScheduleSpec("SOMEDAY 1-2")
	assert.Error(t, err)

	_, err = parseScheduleSpec("MONDAY x-2")
	assert.Error(t, err)

	_, err = parseScheduleSpec("MONDAY 3-1")
	assert.Error(t, err, "descending ranges are invalid")
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.csv")
	csv := "course_id,name,section,credits,category,gen_ed_group,target_year,department_id,instructor,capacity,schedule,rating\n" +
		"501,자료구조,01,3,전공필수,,2,11,김교수,40,MONDAY 1-2 (IT-505); WEDNESDAY 1 (IT-505),4.2\n" +
		"601,글쓰기,01,3,교양,의사소통,0,0,이교수,60,MONDAY 5-7 (인문관 101),0\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	catalog, err := loadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog.courses, 2)

	major := catalog.courses[0]
	assert.Equal(t, models.CategoryMajorRequired, major.Category)
	assert.Equal(t, "IT", major.Blocks[0].Building, "building derives from the room label")

	genEd := catalog.courses[1]
	assert.Equal(t, models.CategoryGeneralEducation, genEd.Category)
	assert.Equal(t, "의사소통", genEd.GenEdGroup)
	assert.Equal(t, models.AnyYear, genEd.TargetYear)

	assert.Len(t, catalog.ratings, 1, "zero ratings are not recorded")
	assert.Equal(t, 4.2, catalog.ratings[models.RatingKey{Course: "자료구조", Instructor: "김교수"}])
}

func TestLoadCatalogRejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.csv")
	csv := "course_id,name,section,credits,category,gen_ed_group,target_year,department_id,instructor,capacity,schedule,rating\n" +
		"1,과목,01,3,mystery,,0,0,,0,MONDAY 1,0\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	_, err := loadCatalog(path)
	assert.Error(t, err)
}
