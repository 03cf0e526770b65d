package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type constraintRepository interface {
	ListForDepartment(ctx context.Context, departmentID string) ([]models.Constraint, error)
	FindByID(ctx context.Context, id string) (*models.Constraint, error)
	CountForRole(ctx context.Context, departmentID string, role models.StaffRole) (int, error)
	Create(ctx context.Context, constraint *models.Constraint) error
	Update(ctx context.Context, constraint *models.Constraint) error
	Delete(ctx context.Context, id string) error
}

// DefaultConstraints are installed by InstallDefaults.
var DefaultConstraints = []models.Constraint{
	{Role: models.StaffRoleAssistantProfessor, SubjectType: models.SubjectTypeBoth, MaxSubjects: 2, MaxHours: 16},
	{Role: models.StaffRoleProfessor, SubjectType: models.SubjectTypeBoth, MaxSubjects: 3, MaxHours: 20},
	{Role: models.StaffRoleHOD, SubjectType: models.SubjectTypeBoth, MaxSubjects: 1, MaxHours: 8},
}

// ConstraintService manages workload constraints.
type ConstraintService struct {
	repo        constraintRepository
	departments departmentFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewConstraintService constructs a ConstraintService.
func NewConstraintService(repo constraintRepository, departments departmentFinder, validate *validator.Validate, logger *zap.Logger) *ConstraintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConstraintService{repo: repo, departments: departments, validator: validate, logger: logger}
}

// ListForDepartment returns the department's constraints and the global ones.
func (s *ConstraintService) ListForDepartment(ctx context.Context, actor *models.JWTClaims, departmentID string) ([]models.Constraint, error) {
	if err := ensureDepartmentAccess(actor, departmentID); err != nil {
		return nil, err
	}
	constraints, err := s.repo.ListForDepartment(ctx, departmentID)
	if err != nil {
		return nil, internalError(err, "failed to list constraints")
	}
	return constraints, nil
}

// Effective resolves the limits that apply to role inside the department.
func (s *ConstraintService) Effective(ctx context.Context, actor *models.JWTClaims, departmentID string, role models.StaffRole) (*models.RoleLimits, error) {
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown staff role")
	}
	constraints, err := s.ListForDepartment(ctx, actor, departmentID)
	if err != nil {
		return nil, err
	}
	limits := scheduler.ResolveLimits(constraints, departmentID, role)
	return &limits, nil
}

// Create adds a constraint. Global constraints need a main admin.
func (s *ConstraintService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateConstraintRequest) (*models.Constraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid constraint payload")
	}
	departmentID := trimOptional(req.DepartmentID)
	if err := s.authorize(actor, departmentID); err != nil {
		return nil, err
	}
	if departmentID != nil {
		if _, err := s.departments.FindByID(ctx, *departmentID); err != nil {
			return nil, lookupError(err, "department")
		}
	}

	constraint := &models.Constraint{
		DepartmentID: departmentID,
		Role:         req.Role,
		SubjectType:  req.SubjectType,
		MaxSubjects:  req.MaxSubjects,
		MaxHours:     req.MaxHours,
		CreatedBy:    actorID(actor),
	}
	if constraint.SubjectType == "" {
		constraint.SubjectType = models.SubjectTypeBoth
	}
	if err := s.repo.Create(ctx, constraint); err != nil {
		return nil, internalError(err, "failed to create constraint")
	}
	return constraint, nil
}

// Update replaces the limits of a constraint.
func (s *ConstraintService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateConstraintRequest) (*models.Constraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid constraint payload")
	}
	constraint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "constraint")
	}
	if err := s.authorize(actor, constraint.DepartmentID); err != nil {
		return nil, err
	}

	constraint.Role = req.Role
	constraint.MaxSubjects = req.MaxSubjects
	constraint.MaxHours = req.MaxHours
	if req.SubjectType != "" {
		constraint.SubjectType = req.SubjectType
	}
	if err := s.repo.Update(ctx, constraint); err != nil {
		return nil, internalError(err, "failed to update constraint")
	}
	return constraint, nil
}

// Delete removes a constraint.
func (s *ConstraintService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	constraint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "constraint")
	}
	if err := s.authorize(actor, constraint.DepartmentID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "constraint")
	}
	return nil
}

// InstallDefaults adds DefaultConstraints for every role the department has
// no constraint of its own for, and returns what was created.
func (s *ConstraintService) InstallDefaults(ctx context.Context, actor *models.JWTClaims, departmentID string) ([]models.Constraint, error) {
	if err := ensureDepartmentAdmin(actor, departmentID); err != nil {
		return nil, err
	}
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return nil, lookupError(err, "department")
	}

	created := make([]models.Constraint, 0, len(DefaultConstraints))
	for _, def := range DefaultConstraints {
		count, err := s.repo.CountForRole(ctx, departmentID, def.Role)
		if err != nil {
			return nil, internalError(err, "failed to inspect constraints")
		}
		if count > 0 {
			continue
		}
		dept := departmentID
		constraint := def
		constraint.DepartmentID = &dept
		constraint.CreatedBy = actorID(actor)
		if err := s.repo.Create(ctx, &constraint); err != nil {
			return nil, internalError(err, "failed to create constraint")
		}
		created = append(created, constraint)
	}
	s.logger.Sugar().Infow("default constraints installed", "department_id", departmentID, "created", len(created))
	return created, nil
}

func (s *ConstraintService) authorize(actor *models.JWTClaims, departmentID *string) error {
	if departmentID == nil || *departmentID == "" {
		return ensureMainAdmin(actor)
	}
	return ensureDepartmentAdmin(actor, *departmentID)
}

func actorID(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	id := actor.UserID
	return &id
}
