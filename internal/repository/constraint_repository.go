package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const constraintColumns = "id, department_id, role, subject_type, max_subjects, max_hours, created_by, created_at, updated_at"

// ConstraintRepository manages workload constraints.
type ConstraintRepository struct {
	db *sqlx.DB
}

// NewConstraintRepository constructs a ConstraintRepository.
func NewConstraintRepository(db *sqlx.DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

// ListForDepartment returns the department's own constraints plus every
// global one.
func (r *ConstraintRepository) ListForDepartment(ctx context.Context, departmentID string) ([]models.Constraint, error) {
	query := "SELECT " + constraintColumns + " FROM constraints WHERE department_id = $1 OR department_id IS NULL ORDER BY role ASC, created_at ASC"
	var constraints []models.Constraint
	if err := r.db.SelectContext(ctx, &constraints, query, departmentID); err != nil {
		return nil, fmt.Errorf("list department constraints: %w", err)
	}
	return constraints, nil
}

// FindByID fetches a constraint by ID.
func (r *ConstraintRepository) FindByID(ctx context.Context, id string) (*models.Constraint, error) {
	query := "SELECT " + constraintColumns + " FROM constraints WHERE id = $1"
	var constraint models.Constraint
	if err := r.db.GetContext(ctx, &constraint, query, id); err != nil {
		return nil, err
	}
	return &constraint, nil
}

// CountForRole counts constraints owned by departmentID for role, ignoring
// global rows.
func (r *ConstraintRepository) CountForRole(ctx context.Context, departmentID string, role models.StaffRole) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM constraints WHERE department_id = $1 AND role = $2`, departmentID, role); err != nil {
		return 0, fmt.Errorf("count role constraints: %w", err)
	}
	return count, nil
}

// Create inserts a constraint.
func (r *ConstraintRepository) Create(ctx context.Context, constraint *models.Constraint) error {
	if constraint.ID == "" {
		constraint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if constraint.CreatedAt.IsZero() {
		constraint.CreatedAt = now
	}
	constraint.UpdatedAt = now

	const query = `INSERT INTO constraints (id, department_id, role, subject_type, max_subjects, max_hours, created_by, created_at, updated_at)
		VALUES (:id, :department_id, :role, :subject_type, :max_subjects, :max_hours, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, constraint); err != nil {
		return fmt.Errorf("create constraint: %w", err)
	}
	return nil
}

// Update modifies the limits of a constraint.
func (r *ConstraintRepository) Update(ctx context.Context, constraint *models.Constraint) error {
	constraint.UpdatedAt = time.Now().UTC()
	const query = `UPDATE constraints SET role = :role, subject_type = :subject_type, max_subjects = :max_subjects, max_hours = :max_hours, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, constraint); err != nil {
		return fmt.Errorf("update constraint: %w", err)
	}
	return nil
}

// Delete removes a constraint.
func (r *ConstraintRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM constraints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete constraint: %w", err)
	}
	return expectAffected(res)
}
