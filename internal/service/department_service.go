package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id string) error
}

// DepartmentService manages tenants.
type DepartmentService struct {
	repo      departmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(repo departmentRepository, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, validator: validate, logger: logger}
}

// List returns every department to main admins and only the caller's own
// department to everyone else.
func (s *DepartmentService) List(ctx context.Context, actor *models.JWTClaims, filter models.DepartmentFilter) ([]models.Department, *models.Pagination, error) {
	if actor != nil && actor.Role != models.RoleMainAdmin {
		if actor.DepartmentID == "" {
			return []models.Department{}, buildPagination(filter.Page, filter.PageSize, 0), nil
		}
		department, err := s.repo.FindByID(ctx, actor.DepartmentID)
		if err != nil {
			return nil, nil, lookupError(err, "department")
		}
		return []models.Department{*department}, buildPagination(1, filter.PageSize, 1), nil
	}

	departments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list departments")
	}
	return departments, buildPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a department the actor may see.
func (s *DepartmentService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.Department, error) {
	if err := ensureDepartmentAccess(actor, id); err != nil {
		return nil, err
	}
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "department")
	}
	return department, nil
}

// Create registers a department. Main admin only.
func (s *DepartmentService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateDepartmentRequest) (*models.Department, error) {
	if err := ensureMainAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid department payload")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureUniqueCode(ctx, code, ""); err != nil {
		return nil, err
	}

	department := &models.Department{
		Name:           strings.TrimSpace(req.Name),
		Code:           code,
		AutoRegenerate: req.AutoRegenerate,
	}
	if err := s.repo.Create(ctx, department); err != nil {
		return nil, internalError(err, "failed to create department")
	}
	s.logger.Sugar().Infow("department created", "department_id", department.ID, "code", department.Code)
	return department, nil
}

// Update modifies a department. Department admins may edit their own.
func (s *DepartmentService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateDepartmentRequest) (*models.Department, error) {
	if err := ensureDepartmentAdmin(actor, id); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid department payload")
	}
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "department")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureUniqueCode(ctx, code, id); err != nil {
		return nil, err
	}

	department.Name = strings.TrimSpace(req.Name)
	department.Code = code
	if req.AutoRegenerate != nil {
		department.AutoRegenerate = *req.AutoRegenerate
	}
	if err := s.repo.Update(ctx, department); err != nil {
		return nil, internalError(err, "failed to update department")
	}
	return department, nil
}

// Delete removes a department with everything it owns. Main admin only.
func (s *DepartmentService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if err := ensureMainAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "department")
	}
	s.logger.Sugar().Infow("department deleted", "department_id", id)
	return nil
}

func (s *DepartmentService) ensureUniqueCode(ctx context.Context, code, excludeID string) error {
	exists, err := s.repo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return internalError(err, "failed to check department code")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "department code already used")
	}
	return nil
}
