package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/service"
	appErrors "github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/errors"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/response"
)

type generatorMock struct {
	captured service.GenerationRequest
	result   *service.GenerationResult
	stored   map[string]*service.GenerationResult
}

func (m *generatorMock) Generate(_ context.Context, req service.GenerationRequest) *service.GenerationResult {
	m.captured = req
	return m.result
}

func (m *generatorMock) GetResult(_ context.Context, id string) (*service.GenerationResult, error) {
	if result, ok := m.stored[id]; ok {
		return result, nil
	}
	return nil, appErrors.Clone(appErrors.ErrResultNotFound, "")
}

func successResult() *service.GenerationResult {
	return &service.GenerationResult{
		ResultID: "result-1",
		Status:   service.GenerationSuccess,
		Timetables: []models.TimetableSolution{{
			Courses: []models.CandidateCourse{{
				ID: 501, Name: "자료구조", Section: "01", Credits: 3,
				Category: models.CategoryMajorRequired,
				Blocks: []models.ScheduleBlock{
					{Day: models.Monday, Periods: []int{1, 2}, Room: "IT-505"},
				},
			}},
			ObjectiveValue: 2400,
			OptimalityPct:  100,
		}},
		SolutionCount: 1,
	}
}

func newTestHandler(mock *generatorMock) *GenerationHandler {
	h := NewGenerationHandler(nil, nil, validator.New())
	h.service = mock
	return h
}

func validGenerationPayload() []byte {
	return []byte(`{
		"termId": "2026-1",
		"student": {"departmentId": 11, "year": 2, "shortageByCategory": {"MAJOR_REQUIRED": 9}},
		"credits": {"total": 18, "major": 9, "elective": 9},
		"filters": {"freeDays": ["금"], "forcedCourseIds": [501]},
		"preferences": {"timeOfDay": "MORNING"},
		"preset": "ADVANCED"
	}`)
}

func TestGenerationHandlerSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &generatorMock{result: successResult()}
	handler := newTestHandler(mock)

	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader(validGenerationPayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-1", mock.captured.TermID)
	assert.Equal(t, service.PresetAdvanced, mock.captured.Preset)
	assert.Equal(t, []models.Weekday{models.Friday}, mock.captured.Filter.FreeDays,
		"Korean day names must be parsed at the boundary")
	assert.True(t, mock.captured.Score.PreferMorning)
	assert.Equal(t, models.NoWalkingLimit, mock.captured.Params.MaxWalkingMinutes,
		"omitted walking limit means unrestricted")
	assert.Equal(t, 90, mock.captured.Score.PriorityMap["MAJOR_REQUIRED"],
		"priority weights derive from shortages")

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"resultId":"result-1"`)
	assert.Contains(t, string(payload), `"rank":1`)
}

func TestGenerationHandlerMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestHandler(&generatorMock{result: successResult()})

	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader([]byte(`{"termId":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerationHandlerUnknownDayName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestHandler(&generatorMock{result: successResult()})

	body := []byte(`{
		"termId": "2026-1",
		"student": {"year": 2},
		"credits": {"total": 18, "major": 9, "elective": 9},
		"filters": {"freeDays": ["someday"]}
	}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerationHandlerInvalidPreset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestHandler(&generatorMock{result: successResult()})

	body := []byte(`{
		"termId": "2026-1",
		"student": {"year": 2},
		"credits": {"total": 18, "major": 9, "elective": 9},
		"preset": "TURBO"
	}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetResultNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestHandler(&generatorMock{stored: map[string]*service.GenerationResult{}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/timetable/results/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.GetResult(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportResultCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	result := successResult()
	handler := newTestHandler(&generatorMock{stored: map[string]*service.GenerationResult{"result-1": result}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/timetable/results/result-1/export?format=csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "result-1"}}

	handler.ExportResult(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetables-result-1.csv")
	assert.Contains(t, w.Body.String(), "자료구조")
}

func TestExportResultSingleIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)
	result := successResult()
	handler := newTestHandler(&generatorMock{stored: map[string]*service.GenerationResult{"result-1": result}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/timetable/results/result-1/export?format=csv&index=1", nil)
	c.Params = gin.Params{{Key: "id", Value: "result-1"}}

	handler.ExportResult(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "자료구조")
}

func TestExportResultRejectsIndexOutOfRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	result := successResult()
	handler := newTestHandler(&generatorMock{stored: map[string]*service.GenerationResult{"result-1": result}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/timetable/results/result-1/export?index=5", nil)
	c.Params = gin.Params{{Key: "id", Value: "result-1"}}

	handler.ExportResult(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportResultRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	result := successResult()
	handler := newTestHandler(&generatorMock{stored: map[string]*service.GenerationResult{"result-1": result}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/timetable/results/result-1/export?format=xml", nil)
	c.Params = gin.Params{{Key: "id", Value: "result-1"}}

	handler.ExportResult(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportResultNoSolutionIsRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	empty := &service.GenerationResult{ResultID: "result-2", Status: service.GenerationNoSolution}
	handler := newTestHandler(&generatorMock{stored: map[string]*service.GenerationResult{"result-2": empty}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/timetable/results/result-2/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "result-2"}}

	handler.ExportResult(c)
	require.Equal(t, http.StatusPreconditionFailed, w.Code)
}
