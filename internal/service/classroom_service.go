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

type classroomRepository interface {
	List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	ExistsByName(ctx context.Context, departmentID, name, excludeID string) (bool, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	Update(ctx context.Context, classroom *models.Classroom) error
	Delete(ctx context.Context, id string) error
}

// ClassroomService manages department classrooms.
type ClassroomService struct {
	repo        classroomRepository
	departments departmentFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewClassroomService constructs a ClassroomService.
func NewClassroomService(repo classroomRepository, departments departmentFinder, validate *validator.Validate, logger *zap.Logger) *ClassroomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{repo: repo, departments: departments, validator: validate, logger: logger}
}

// List returns the classrooms of a department.
func (s *ClassroomService) List(ctx context.Context, actor *models.JWTClaims, filter models.ClassroomFilter) ([]models.Classroom, *models.Pagination, error) {
	if err := ensureDepartmentAccess(actor, filter.DepartmentID); err != nil {
		return nil, nil, err
	}
	classrooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list classrooms")
	}
	return classrooms, buildPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a classroom by id.
func (s *ClassroomService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.Classroom, error) {
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "classroom")
	}
	if err := ensureDepartmentAccess(actor, classroom.DepartmentID); err != nil {
		return nil, err
	}
	return classroom, nil
}

// Create adds a classroom to a department.
func (s *ClassroomService) Create(ctx context.Context, actor *models.JWTClaims, departmentID string, req dto.ClassroomRequest) (*models.Classroom, error) {
	if err := ensureDepartmentAdmin(actor, departmentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid classroom payload")
	}
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return nil, lookupError(err, "department")
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, departmentID, name, ""); err != nil {
		return nil, err
	}

	classroom := &models.Classroom{DepartmentID: departmentID, Name: name, Capacity: req.Capacity}
	if err := s.repo.Create(ctx, classroom); err != nil {
		return nil, internalError(err, "failed to create classroom")
	}
	return classroom, nil
}

// Update modifies a classroom.
func (s *ClassroomService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.ClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid classroom payload")
	}
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "classroom")
	}
	if err := ensureDepartmentAdmin(actor, classroom.DepartmentID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, classroom.DepartmentID, name, id); err != nil {
		return nil, err
	}

	classroom.Name = name
	classroom.Capacity = req.Capacity
	if err := s.repo.Update(ctx, classroom); err != nil {
		return nil, internalError(err, "failed to update classroom")
	}
	return classroom, nil
}

// Delete removes a classroom.
func (s *ClassroomService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "classroom")
	}
	if err := ensureDepartmentAdmin(actor, classroom.DepartmentID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "classroom")
	}
	return nil
}

func (s *ClassroomService) ensureUniqueName(ctx context.Context, departmentID, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, departmentID, name, excludeID)
	if err != nil {
		return internalError(err, "failed to check classroom name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "classroom name already used in department")
	}
	return nil
}
