package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, int, error)
	FindByID(ctx context.Context, id string) (*models.StaffMember, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, member *models.StaffMember) error
	Update(ctx context.Context, member *models.StaffMember) error
	SaveSelection(ctx context.Context, id string, subjectIDs []string, locked bool) error
	Unlock(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type subjectCounter interface {
	CountInDepartment(ctx context.Context, departmentID string, ids []string) (int, error)
}

type constraintLister interface {
	ListForDepartment(ctx context.Context, departmentID string) ([]models.Constraint, error)
}

// StaffService manages staff profiles and their subject selection.
type StaffService struct {
	repo        staffRepository
	departments departmentFinder
	subjects    subjectCounter
	constraints constraintLister
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffRepository, departments departmentFinder, subjects subjectCounter, constraints constraintLister, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		repo:        repo,
		departments: departments,
		subjects:    subjects,
		constraints: constraints,
		validator:   validate,
		logger:      logger,
	}
}

// List returns the staff of a department.
func (s *StaffService) List(ctx context.Context, actor *models.JWTClaims, filter models.StaffFilter) ([]models.StaffMember, *models.Pagination, error) {
	if err := ensureDepartmentAccess(actor, filter.DepartmentID); err != nil {
		return nil, nil, err
	}
	members, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list staff")
	}
	return members, buildPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a staff member by id.
func (s *StaffService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.StaffMember, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "staff")
	}
	if err := ensureDepartmentAccess(actor, member.DepartmentID); err != nil {
		return nil, err
	}
	return member, nil
}

// Create adds a staff member with an empty, unlocked selection.
func (s *StaffService) Create(ctx context.Context, actor *models.JWTClaims, departmentID string, req dto.StaffRequest) (*models.StaffMember, error) {
	if err := ensureDepartmentAdmin(actor, departmentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid staff payload")
	}
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return nil, lookupError(err, "department")
	}
	email := trimOptional(req.Email)
	if err := s.ensureUniqueEmail(ctx, email, ""); err != nil {
		return nil, err
	}

	member := &models.StaffMember{
		DepartmentID: departmentID,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		StaffRole:    req.StaffRole,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, internalError(err, "failed to create staff")
	}
	return member, nil
}

// Update modifies a staff profile.
func (s *StaffService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.StaffRequest) (*models.StaffMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid staff payload")
	}
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "staff")
	}
	if err := ensureDepartmentAdmin(actor, member.DepartmentID); err != nil {
		return nil, err
	}
	email := trimOptional(req.Email)
	if err := s.ensureUniqueEmail(ctx, email, id); err != nil {
		return nil, err
	}

	member.Name = strings.TrimSpace(req.Name)
	member.Email = email
	member.StaffRole = req.StaffRole
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, internalError(err, "failed to update staff")
	}
	return member, nil
}

// Delete removes a staff member.
func (s *StaffService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "staff")
	}
	if err := ensureDepartmentAdmin(actor, member.DepartmentID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, "staff")
	}
	return nil
}

// SelectSubjects stores a staff member's subject choice and locks it. Staff
// users may only select for themselves; admins may select for anyone in
// their department.
func (s *StaffService) SelectSubjects(ctx context.Context, actor *models.JWTClaims, id string, req dto.SelectSubjectsRequest) (*models.StaffMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject selection payload")
	}
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "staff")
	}
	if err := ensureDepartmentAccess(actor, member.DepartmentID); err != nil {
		return nil, err
	}
	if actor != nil && !actor.IsAdmin() && actor.StaffID != member.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "staff may only select their own subjects")
	}
	if member.SubjectsLocked {
		return nil, appErrors.ErrSubjectsLocked
	}

	ids := dedupeIDs(req.SubjectIDs)
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one subject must be selected")
	}
	count, err := s.subjects.CountInDepartment(ctx, member.DepartmentID, ids)
	if err != nil {
		return nil, internalError(err, "failed to verify subjects")
	}
	if count != len(ids) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "every subject must belong to the staff member's department")
	}

	constraints, err := s.constraints.ListForDepartment(ctx, member.DepartmentID)
	if err != nil {
		return nil, internalError(err, "failed to load constraints")
	}
	limits := scheduler.ResolveLimits(constraints, member.DepartmentID, member.StaffRole)
	if len(ids) > limits.MaxSubjects {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("a %s may select at most %d subjects", member.StaffRole, limits.MaxSubjects))
	}

	if err := s.repo.SaveSelection(ctx, id, ids, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSubjectsLocked
		}
		return nil, internalError(err, "failed to save subject selection")
	}
	member.SubjectsSelected = ids
	member.SubjectsLocked = true
	s.logger.Sugar().Infow("staff subjects locked", "staff_id", id, "department_id", member.DepartmentID, "subjects", len(ids))
	return member, nil
}

// Unlock reopens a staff member's selection, keeping the chosen subjects.
func (s *StaffService) Unlock(ctx context.Context, actor *models.JWTClaims, id string) (*models.StaffMember, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "staff")
	}
	if err := ensureDepartmentAdmin(actor, member.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.repo.Unlock(ctx, id); err != nil {
		return nil, lookupError(err, "staff")
	}
	member.SubjectsLocked = false
	return member, nil
}

func (s *StaffService) ensureUniqueEmail(ctx context.Context, email *string, excludeID string) error {
	if email == nil {
		return nil
	}
	exists, err := s.repo.ExistsByEmail(ctx, *email, excludeID)
	if err != nil {
		return internalError(err, "failed to check staff email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	return nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
