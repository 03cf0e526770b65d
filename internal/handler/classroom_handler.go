package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type classroomService interface {
	List(ctx context.Context, actor *models.JWTClaims, filter models.ClassroomFilter) ([]models.Classroom, *models.Pagination, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.Classroom, error)
	Create(ctx context.Context, actor *models.JWTClaims, departmentID string, req dto.ClassroomRequest) (*models.Classroom, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.ClassroomRequest) (*models.Classroom, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
}

// ClassroomHandler handles classroom endpoints.
type ClassroomHandler struct {
	service classroomService
}

// NewClassroomHandler constructs a classroom handler.
func NewClassroomHandler(svc classroomService) *ClassroomHandler {
	return &ClassroomHandler{service: svc}
}

// List godoc
// @Summary List classrooms of a department
// @Tags Classrooms
// @Produce json
// @Param id path string true "Department ID"
// @Param min_capacity query int false "Minimum capacity"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/classrooms [get]
func (h *ClassroomHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.ClassroomFilter{
		DepartmentID: c.Param("id"),
		MinCapacity:  queryInt(c, "min_capacity", 0),
		Search:       strings.TrimSpace(c.Query("search")),
		Page:         page,
		PageSize:     size,
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	rooms, pagination, err := h.service.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, pagination)
}

// Get godoc
// @Summary Get classroom by id
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) Get(c *gin.Context) {
	room, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Create godoc
// @Summary Create classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param id path string true "Department ID"
// @Param payload body dto.ClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/classrooms [post]
func (h *ClassroomHandler) Create(c *gin.Context) {
	var req dto.ClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	room, err := h.service.Create(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// Update godoc
// @Summary Update classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param id path string true "Classroom ID"
// @Param payload body dto.ClassroomRequest true "Classroom payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /classrooms/{id} [put]
func (h *ClassroomHandler) Update(c *gin.Context) {
	var req dto.ClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	room, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Delete godoc
// @Summary Delete classroom
// @Tags Classrooms
// @Param id path string true "Classroom ID"
// @Success 204
// @Security BearerAuth
// @Router /classrooms/{id} [delete]
func (h *ClassroomHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
