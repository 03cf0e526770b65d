package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type timetableServiceMock struct {
	generateReq   *dto.GenerateTimetableRequest
	generateErr   error
	enqueued      *models.GenerationTrigger
	lastQuery     dto.TimetableQuery
	lastRunFilter models.GenerationRunFilter
	cacheHit      bool
	actor         *models.JWTClaims
}

func (m *timetableServiceMock) Generate(_ context.Context, actor *models.JWTClaims, departmentID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.actor = actor
	m.generateReq = &req
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateTimetableResponse{RunID: "run-1", Summary: dto.GenerationSummary{Strategy: "least_loaded", TotalEntries: 3}}, nil
}

func (m *timetableServiceMock) Enqueue(_ context.Context, _ *models.JWTClaims, _ string, req dto.GenerateTimetableRequest, trigger models.GenerationTrigger) (*dto.GenerationAccepted, error) {
	m.generateReq = &req
	m.enqueued = &trigger
	return &dto.GenerationAccepted{RunID: "run-2", Status: models.GenerationRunQueued}, nil
}

func (m *timetableServiceMock) GetTimetable(_ context.Context, _ *models.JWTClaims, departmentID string, query dto.TimetableQuery) (*service.TimetableView, bool, error) {
	m.lastQuery = query
	return &service.TimetableView{DepartmentID: departmentID, View: models.TimetableViewDepartment}, m.cacheHit, nil
}

func (m *timetableServiceMock) ListRuns(_ context.Context, _ *models.JWTClaims, filter models.GenerationRunFilter) ([]models.GenerationRun, *models.Pagination, error) {
	m.lastRunFilter = filter
	return []models.GenerationRun{{ID: "run-1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *timetableServiceMock) GetRun(_ context.Context, _ *models.JWTClaims, id string) (*models.GenerationRun, error) {
	if id != "run-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "generation run not found")
	}
	return &models.GenerationRun{ID: id, Status: models.GenerationRunCompleted}, nil
}

var adminClaims = &models.JWTClaims{UserID: "u1", Role: models.RoleDeptAdmin, DepartmentID: "dept-1"}

func timetableRouter(svc *timetableServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(svc)
	router := gin.New()
	router.Use(middleware.WithResponseMeta(), func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, adminClaims)
		c.Next()
	})
	router.POST("/departments/:id/timetable/generate", h.Generate)
	router.GET("/departments/:id/timetable", h.View)
	router.GET("/departments/:id/timetable/runs", h.ListRuns)
	router.GET("/timetable-runs/:id", h.GetRun)
	return router
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &env))
	return env
}

func TestTimetableHandlerGenerateWithoutBody(t *testing.T) {
	svc := &timetableServiceMock{}
	recorder := doRequest(timetableRouter(svc), http.MethodPost, "/departments/dept-1/timetable/generate", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, svc.generateReq)
	assert.Empty(t, svc.generateReq.Strategy)
	assert.Equal(t, "u1", svc.actor.UserID)

	var resp dto.GenerateTimetableResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, recorder).Data, &resp))
	assert.Equal(t, "run-1", resp.RunID)
}

func TestTimetableHandlerGenerateWithStrategy(t *testing.T) {
	svc := &timetableServiceMock{}
	recorder := doRequest(timetableRouter(svc), http.MethodPost, "/departments/dept-1/timetable/generate", `{"strategy":"random_retry","seed":9}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "random_retry", svc.generateReq.Strategy)
	require.NotNil(t, svc.generateReq.Seed)
	assert.Equal(t, int64(9), *svc.generateReq.Seed)
}

func TestTimetableHandlerGenerateAsync(t *testing.T) {
	svc := &timetableServiceMock{}
	recorder := doRequest(timetableRouter(svc), http.MethodPost, "/departments/dept-1/timetable/generate?async=true", "")

	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.NotNil(t, svc.enqueued)
	assert.Equal(t, models.GenerationTriggerAsync, *svc.enqueued)
	assert.Contains(t, recorder.Body.String(), `"status":"queued"`)
}

func TestTimetableHandlerGenerateErrors(t *testing.T) {
	svc := &timetableServiceMock{}
	recorder := doRequest(timetableRouter(svc), http.MethodPost, "/departments/dept-1/timetable/generate", `{"strategy":`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	svc.generateErr = appErrors.Clone(appErrors.ErrInputDataMissing, "missing required data for timetable generation: classrooms")
	recorder = doRequest(timetableRouter(svc), http.MethodPost, "/departments/dept-1/timetable/generate", "")
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	env := decodeEnvelope(t, recorder)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INPUT_DATA_MISSING", env.Error.Code)

	svc.generateErr = appErrors.Clone(appErrors.ErrConflict, "timetable generation already in progress for this department")
	recorder = doRequest(timetableRouter(svc), http.MethodPost, "/departments/dept-1/timetable/generate", "")
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestTimetableHandlerView(t *testing.T) {
	svc := &timetableServiceMock{cacheHit: true}
	recorder := doRequest(timetableRouter(svc), http.MethodGet, "/departments/dept-1/timetable?view=classroom&classroom_id=r1", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, models.TimetableViewClassroom, svc.lastQuery.View)
	assert.Equal(t, "r1", svc.lastQuery.ClassroomID)
	env := decodeEnvelope(t, recorder)
	assert.Equal(t, true, env.Meta["cache_hit"])
}

func TestTimetableHandlerRuns(t *testing.T) {
	svc := &timetableServiceMock{}
	router := timetableRouter(svc)

	recorder := doRequest(router, http.MethodGet, "/departments/dept-1/timetable/runs?status=failed&page=2", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "dept-1", svc.lastRunFilter.DepartmentID)
	assert.Equal(t, 2, svc.lastRunFilter.Page)
	require.NotNil(t, svc.lastRunFilter.Status)
	assert.Equal(t, models.GenerationRunFailed, *svc.lastRunFilter.Status)

	recorder = doRequest(router, http.MethodGet, "/departments/dept-1/timetable/runs?status=bogus", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, svc.lastRunFilter.Status)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/timetable-runs/run-1", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/timetable-runs/other", "").Code)
}
