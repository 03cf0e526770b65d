package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type staffService interface {
	List(ctx context.Context, actor *models.JWTClaims, filter models.StaffFilter) ([]models.StaffMember, *models.Pagination, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.StaffMember, error)
	Create(ctx context.Context, actor *models.JWTClaims, departmentID string, req dto.StaffRequest) (*models.StaffMember, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.StaffRequest) (*models.StaffMember, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
	SelectSubjects(ctx context.Context, actor *models.JWTClaims, id string, req dto.SelectSubjectsRequest) (*models.StaffMember, error)
	Unlock(ctx context.Context, actor *models.JWTClaims, id string) (*models.StaffMember, error)
}

// StaffHandler handles staff and subject selection endpoints.
type StaffHandler struct {
	service staffService
}

// NewStaffHandler constructs a staff handler.
func NewStaffHandler(svc staffService) *StaffHandler {
	return &StaffHandler{service: svc}
}

// List godoc
// @Summary List staff of a department
// @Tags Staff
// @Produce json
// @Param id path string true "Department ID"
// @Param role query string false "assistant_professor, professor or hod"
// @Param locked query bool false "Filter by locked selection"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.StaffFilter{
		DepartmentID: c.Param("id"),
		Search:       strings.TrimSpace(c.Query("search")),
		Page:         page,
		PageSize:     size,
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	if role := models.StaffRole(strings.ToLower(c.Query("role"))); role.Valid() {
		filter.Role = &role
	}
	if locked, err := strconv.ParseBool(c.Query("locked")); err == nil {
		filter.Locked = &locked
	}
	members, pagination, err := h.service.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, pagination)
}

// Get godoc
// @Summary Get staff member
// @Tags Staff
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	member, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Create godoc
// @Summary Create staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Department ID"
// @Param payload body dto.StaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.StaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	member, err := h.service.Create(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update godoc
// @Summary Update staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff ID"
// @Param payload body dto.StaffRequest true "Staff payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	var req dto.StaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	member, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Delete godoc
// @Summary Delete staff member
// @Tags Staff
// @Param id path string true "Staff ID"
// @Success 204
// @Security BearerAuth
// @Router /staff/{id} [delete]
func (h *StaffHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SelectSubjects godoc
// @Summary Select and lock the subjects a staff member teaches
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff ID"
// @Param payload body dto.SelectSubjectsRequest true "Subject ids"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /staff/{id}/subjects [post]
func (h *StaffHandler) SelectSubjects(c *gin.Context) {
	var req dto.SelectSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	member, err := h.service.SelectSubjects(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Unlock godoc
// @Summary Unlock a staff member's subject selection
// @Tags Staff
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /staff/{id}/unlock [post]
func (h *StaffHandler) Unlock(c *gin.Context) {
	member, err := h.service.Unlock(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}
