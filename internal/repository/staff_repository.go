package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

const staffColumns = "id, department_id, name, email, staff_role, subjects_selected, subjects_locked, created_at, updated_at"

// StaffRepository manages persistence for department staff.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns staff matching filters along with total count.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, int, error) {
	base := "FROM staff WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("staff_role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Locked != nil {
		conditions = append(conditions, fmt.Sprintf("subjects_locked = $%d", len(args)+1))
		args = append(args, *filter.Locked)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(COALESCE(email, '')) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"name":       "name",
		"staff_role": "staff_role",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", staffColumns, base, column, order, size, offset)
	var members []models.StaffMember
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}
	return members, total, nil
}

// ListLocked returns the staff of a department whose subject selection is
// locked, in creation order. Only these members take part in generation.
func (r *StaffRepository) ListLocked(ctx context.Context, departmentID string) ([]models.StaffMember, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE department_id = $1 AND subjects_locked = TRUE ORDER BY created_at ASC, id ASC"
	var members []models.StaffMember
	if err := r.db.SelectContext(ctx, &members, query, departmentID); err != nil {
		return nil, fmt.Errorf("list locked staff: %w", err)
	}
	return members, nil
}

// FindByID fetches a staff member by ID.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.StaffMember, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE id = $1"
	var member models.StaffMember
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// ExistsByEmail checks whether another staff member uses email.
func (r *StaffRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	query := "SELECT 1 FROM staff WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check staff email: %w", err)
	}
	return true, nil
}

// Create inserts a staff member.
func (r *StaffRepository) Create(ctx context.Context, member *models.StaffMember) error {
	return r.create(ctx, r.db, member)
}

// CreateWithTx inserts inside tx.
func (r *StaffRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, member *models.StaffMember) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.create(ctx, tx, member)
}

func (r *StaffRepository) create(ctx context.Context, exec sqlx.ExtContext, member *models.StaffMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.SubjectsSelected == nil {
		member.SubjectsSelected = pq.StringArray{}
	}
	now := time.Now().UTC()
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now

	const query = `INSERT INTO staff (id, department_id, name, email, staff_role, subjects_selected, subjects_locked, created_at, updated_at)
		VALUES (:id, :department_id, :name, :email, :staff_role, :subjects_selected, :subjects_locked, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, member); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update modifies profile fields. Subject selection has its own method.
func (r *StaffRepository) Update(ctx context.Context, member *models.StaffMember) error {
	member.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff SET name = :name, email = :email, staff_role = :staff_role, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return nil
}

// SaveSelection stores the selected subjects and the lock flag. The guard on
// subjects_locked makes a concurrent second selection affect no rows.
func (r *StaffRepository) SaveSelection(ctx context.Context, id string, subjectIDs []string, locked bool) error {
	const query = `UPDATE staff SET subjects_selected = $2, subjects_locked = $3, updated_at = $4 WHERE id = $1 AND (subjects_locked = FALSE OR $3 = FALSE)`
	res, err := r.db.ExecContext(ctx, query, id, pq.StringArray(subjectIDs), locked, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save staff selection: %w", err)
	}
	return expectAffected(res)
}

// Unlock clears the lock flag, keeping the selection.
func (r *StaffRepository) Unlock(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE staff SET subjects_locked = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("unlock staff: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a staff member.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	return expectAffected(res)
}
