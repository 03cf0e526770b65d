package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context, actor *models.JWTClaims, departmentID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Enqueue(ctx context.Context, actor *models.JWTClaims, departmentID string, req dto.GenerateTimetableRequest, trigger models.GenerationTrigger) (*dto.GenerationAccepted, error)
	GetTimetable(ctx context.Context, actor *models.JWTClaims, departmentID string, query dto.TimetableQuery) (*service.TimetableView, bool, error)
	ListRuns(ctx context.Context, actor *models.JWTClaims, filter models.GenerationRunFilter) ([]models.GenerationRun, *models.Pagination, error)
	GetRun(ctx context.Context, actor *models.JWTClaims, id string) (*models.GenerationRun, error)
}

// TimetableHandler exposes generation and timetable views.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate the department timetable, replacing the current one
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Department ID"
// @Param async query bool false "Queue generation and return immediately"
// @Param payload body dto.GenerateTimetableRequest false "Strategy override"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, bindError(err))
		return
	}

	actor := claimsFromContext(c)
	departmentID := c.Param("id")
	if async, _ := strconv.ParseBool(c.Query("async")); async {
		accepted, err := h.service.Enqueue(c.Request.Context(), actor, departmentID, req, models.GenerationTriggerAsync)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, accepted)
		return
	}

	result, err := h.service.Generate(c.Request.Context(), actor, departmentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// View godoc
// @Summary Read the current timetable
// @Tags Timetable
// @Produce json
// @Param id path string true "Department ID"
// @Param view query string false "department, staff or classroom"
// @Param staff_id query string false "Staff ID for the staff view"
// @Param classroom_id query string false "Classroom ID for the classroom view"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/timetable [get]
func (h *TimetableHandler) View(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err))
		return
	}
	view, hit, err := h.service.GetTimetable(c.Request.Context(), claimsFromContext(c), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// ListRuns godoc
// @Summary List generation runs of a department, newest first
// @Tags Timetable
// @Produce json
// @Param id path string true "Department ID"
// @Param status query string false "queued, running, completed or failed"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/timetable/runs [get]
func (h *TimetableHandler) ListRuns(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.GenerationRunFilter{DepartmentID: c.Param("id"), Page: page, PageSize: size}
	switch status := models.GenerationRunStatus(c.Query("status")); status {
	case models.GenerationRunQueued, models.GenerationRunRunning, models.GenerationRunCompleted, models.GenerationRunFailed:
		filter.Status = &status
	}
	runs, pagination, err := h.service.ListRuns(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, pagination)
}

// GetRun godoc
// @Summary Get a generation run
// @Tags Timetable
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable-runs/{id} [get]
func (h *TimetableHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}
