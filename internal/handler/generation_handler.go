package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/dto"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/service"
	appErrors "github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/errors"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/export"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req service.GenerationRequest) *service.GenerationResult
	GetResult(ctx context.Context, resultID string) (*service.GenerationResult, error)
}

type asyncSubmitter interface {
	Submit(ctx context.Context, req service.GenerationRequest) (string, error)
}

// GenerationHandler exposes the timetable generation endpoints.
type GenerationHandler struct {
	service  timetableGenerator
	async    asyncSubmitter
	validate *validator.Validate
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
}

// NewGenerationHandler constructs the handler. A nil async generator disables
// the asynchronous endpoint.
func NewGenerationHandler(svc *service.GenerationService, async *service.AsyncGenerator, validate *validator.Validate) *GenerationHandler {
	if validate == nil {
		validate = validator.New()
	}
	h := &GenerationHandler{
		service:  svc,
		validate: validate,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
	}
	if async != nil {
		h.async = async
	}
	return h
}

// Generate godoc
// @Summary Generate ranked timetable candidates
// @Description Runs the two-phase constraint search for the student and returns ranked timetables. Infeasible requests return status NO_SOLUTION with HTTP 200.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *GenerationHandler) Generate(c *gin.Context) {
	genReq, ok := h.bindGenerationRequest(c)
	if !ok {
		return
	}
	result := h.service.Generate(c.Request.Context(), genReq)
	response.JSON(c, http.StatusOK, toGenerationResponse(result), nil)
}

// GenerateAsync godoc
// @Summary Queue a generation run and return its result id immediately
// @Description Accepts the same payload as the synchronous endpoint. Poll the result endpoint; the result reports PENDING until the run finishes.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 202 {object} response.Envelope
// @Router /timetable/generate/async [post]
func (h *GenerationHandler) GenerateAsync(c *gin.Context) {
	if h.async == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "asynchronous generation is disabled"))
		return
	}
	genReq, ok := h.bindGenerationRequest(c)
	if !ok {
		return
	}
	resultID, err := h.async.Submit(c.Request.Context(), genReq)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to queue generation"))
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"resultId": resultID, "status": string(service.GenerationPending)}, nil)
}

func (h *GenerationHandler) bindGenerationRequest(c *gin.Context) (service.GenerationRequest, bool) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return service.GenerationRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "generation payload failed validation"))
		return service.GenerationRequest{}, false
	}
	filterCriteria, err := req.FilterCriteria()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return service.GenerationRequest{}, false
	}
	return service.GenerationRequest{
		TermID:  req.TermID,
		Profile: req.Profile(),
		Params:  req.Params(),
		Filter:  filterCriteria,
		Score:   req.ScoreCriteria(),
		Preset:  service.Preset(req.Preset),
	}, true
}

// GetResult godoc
// @Summary Fetch a previous generation result
// @Tags Timetable
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/results/{id} [get]
func (h *GenerationHandler) GetResult(c *gin.Context) {
	result, err := h.service.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toGenerationResponse(result), nil)
}

// ExportResult godoc
// @Summary Export a generation result as CSV or PDF
// @Tags Timetable
// @Produce octet-stream
// @Param id path string true "Result ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Param index query int false "Export only the timetable at this rank (1-based)"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /timetable/results/{id}/export [get]
func (h *GenerationHandler) ExportResult(c *gin.Context) {
	result, err := h.service.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Status != service.GenerationSuccess || len(result.Timetables) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "result has no timetables to export"))
		return
	}

	timetables := result.Timetables
	if raw := c.Query("index"); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil || index < 1 || index > len(timetables) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("index must be between 1 and %d", len(timetables))))
			return
		}
		timetables = timetables[index-1 : index]
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		payload, err := h.csv.Render(timetables)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "csv export failed"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetables-%s.csv", result.ResultID))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.pdf.Render("Timetable Candidates", timetables)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "pdf export failed"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetables-%s.pdf", result.ResultID))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

func toGenerationResponse(result *service.GenerationResult) dto.GenerateTimetableResponse {
	views := make([]dto.TimetableView, 0, len(result.Timetables))
	for i, s := range result.Timetables {
		views = append(views, dto.NewTimetableView(i+1, s))
	}
	return dto.GenerateTimetableResponse{
		ResultID:       result.ResultID,
		Status:         string(result.Status),
		Message:        result.Message,
		CandidateCount: result.CandidateCount,
		SolutionCount:  result.SolutionCount,
		ElapsedMS:      result.ElapsedMS,
		Timetables:     views,
	}
}
