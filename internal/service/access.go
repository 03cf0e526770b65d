package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// ensureDepartmentAccess applies the tenant rule. A nil actor is an internal
// caller such as a scheduled job and is always allowed.
func ensureDepartmentAccess(actor *models.JWTClaims, departmentID string) error {
	if actor == nil || actor.CanAccessDepartment(departmentID) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "department is outside your scope")
}

// ensureDepartmentAdmin additionally requires an administrative role.
func ensureDepartmentAdmin(actor *models.JWTClaims, departmentID string) error {
	if err := ensureDepartmentAccess(actor, departmentID); err != nil {
		return err
	}
	if actor != nil && !actor.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "administrator role required")
	}
	return nil
}

func ensureMainAdmin(actor *models.JWTClaims) error {
	if actor == nil || actor.Role == models.RoleMainAdmin {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "main administrator role required")
}

// lookupError maps repository lookup failures to NOT_FOUND or INTERNAL_ERROR.
func lookupError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+entity)
}

// deleteError maps a delete that matched no row to NOT_FOUND.
func deleteError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return internalError(err, "failed to delete "+entity)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(err error, message string) error {
	return appErrors.Validation(err, message)
}

func buildPagination(page, pageSize, total int) *models.Pagination {
	return models.NewPagination(page, pageSize, total)
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
