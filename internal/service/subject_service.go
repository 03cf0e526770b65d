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

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, departmentID, code, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

type departmentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// SubjectService manages department subjects.
type SubjectService struct {
	repo        subjectRepository
	departments departmentFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, departments departmentFinder, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, departments: departments, validator: validate, logger: logger}
}

// List returns the subjects of a department.
func (s *SubjectService) List(ctx context.Context, actor *models.JWTClaims, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	if err := ensureDepartmentAccess(actor, filter.DepartmentID); err != nil {
		return nil, nil, err
	}
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list subjects")
	}
	return subjects, buildPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a subject by id.
func (s *SubjectService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "subject")
	}
	if err := ensureDepartmentAccess(actor, subject.DepartmentID); err != nil {
		return nil, err
	}
	return subject, nil
}

// Create adds a subject to a department.
func (s *SubjectService) Create(ctx context.Context, actor *models.JWTClaims, departmentID string, req dto.SubjectRequest) (*models.Subject, error) {
	if err := ensureDepartmentAdmin(actor, departmentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return nil, lookupError(err, "department")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureUniqueCode(ctx, departmentID, code, ""); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		DepartmentID: departmentID,
		Name:         strings.TrimSpace(req.Name),
		Code:         code,
		Credits:      models.DefaultSubjectCredits,
	}
	if req.Credits != nil {
		subject.Credits = *req.Credits
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, internalError(err, "failed to create subject")
	}
	return subject, nil
}

// Update modifies a subject.
func (s *SubjectService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "subject")
	}
	if err := ensureDepartmentAdmin(actor, subject.DepartmentID); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureUniqueCode(ctx, subject.DepartmentID, code, id); err != nil {
		return nil, err
	}

	subject.Name = strings.TrimSpace(req.Name)
	subject.Code = code
	if req.Credits != nil {
		subject.Credits = *req.Credits
	}
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, internalError(err, "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject.
func (s *SubjectService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "subject")
	}
	if err := ensureDepartmentAdmin(actor, subject.DepartmentID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "subject")
	}
	return nil
}

func (s *SubjectService) ensureUniqueCode(ctx context.Context, departmentID, code, excludeID string) error {
	exists, err := s.repo.ExistsByCode(ctx, departmentID, code, excludeID)
	if err != nil {
		return internalError(err, "failed to check subject code")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "subject code already used in department")
	}
	return nil
}
