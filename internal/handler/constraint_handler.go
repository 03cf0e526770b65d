package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type constraintService interface {
	ListForDepartment(ctx context.Context, actor *models.JWTClaims, departmentID string) ([]models.Constraint, error)
	Effective(ctx context.Context, actor *models.JWTClaims, departmentID string, role models.StaffRole) (*models.RoleLimits, error)
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateConstraintRequest) (*models.Constraint, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateConstraintRequest) (*models.Constraint, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
	InstallDefaults(ctx context.Context, actor *models.JWTClaims, departmentID string) ([]models.Constraint, error)
}

// ConstraintHandler handles workload constraint endpoints.
type ConstraintHandler struct {
	service constraintService
}

// NewConstraintHandler constructs a constraint handler.
func NewConstraintHandler(svc constraintService) *ConstraintHandler {
	return &ConstraintHandler{service: svc}
}

// List godoc
// @Summary List constraints applying to a department, global rows included
// @Tags Constraints
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/constraints [get]
func (h *ConstraintHandler) List(c *gin.Context) {
	constraints, err := h.service.ListForDepartment(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraints, nil)
}

// Effective godoc
// @Summary Resolve the effective limits for a staff role
// @Tags Constraints
// @Produce json
// @Param id path string true "Department ID"
// @Param role query string true "assistant_professor, professor or hod"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/constraints/effective [get]
func (h *ConstraintHandler) Effective(c *gin.Context) {
	role := models.StaffRole(strings.ToLower(strings.TrimSpace(c.Query("role"))))
	if !role.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "role must be one of assistant_professor, professor, hod"))
		return
	}
	limits, err := h.service.Effective(c.Request.Context(), claimsFromContext(c), c.Param("id"), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, limits, nil)
}

// InstallDefaults godoc
// @Summary Install the default role constraints for a department
// @Tags Constraints
// @Produce json
// @Param id path string true "Department ID"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/constraints/defaults [post]
func (h *ConstraintHandler) InstallDefaults(c *gin.Context) {
	created, err := h.service.InstallDefaults(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Create godoc
// @Summary Create constraint
// @Tags Constraints
// @Accept json
// @Produce json
// @Param payload body dto.CreateConstraintRequest true "Constraint payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /constraints [post]
func (h *ConstraintHandler) Create(c *gin.Context) {
	var req dto.CreateConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	constraint, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, constraint)
}

// Update godoc
// @Summary Update constraint
// @Tags Constraints
// @Accept json
// @Produce json
// @Param id path string true "Constraint ID"
// @Param payload body dto.UpdateConstraintRequest true "Constraint payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /constraints/{id} [put]
func (h *ConstraintHandler) Update(c *gin.Context) {
	var req dto.UpdateConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	constraint, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraint, nil)
}

// Delete godoc
// @Summary Delete constraint
// @Tags Constraints
// @Param id path string true "Constraint ID"
// @Success 204
// @Security BearerAuth
// @Router /constraints/{id} [delete]
func (h *ConstraintHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
