package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// TimetableRepository persists the current timetable of each department.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ReplaceAll deletes the department's entries and inserts entries inside tx.
// Readers never observe a mix of old and new entries.
func (r *TimetableRepository) ReplaceAll(ctx context.Context, tx *sqlx.Tx, departmentID string, entries []models.TimetableEntry) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_entries WHERE department_id = $1`, departmentID); err != nil {
		return fmt.Errorf("clear timetable: %w", err)
	}
	return r.insertEntries(ctx, tx, departmentID, entries)
}

// entryInsertBatch keeps one INSERT well below the Postgres bind parameter cap.
const entryInsertBatch = 500

func (r *TimetableRepository) insertEntries(ctx context.Context, exec sqlx.ExtContext, departmentID string, entries []models.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].DepartmentID = departmentID
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
	}

	const query = `INSERT INTO timetable_entries (id, department_id, day, time_slot, subject_id, staff_id, classroom_id, created_at)
		VALUES (:id, :department_id, :day, :time_slot, :subject_id, :staff_id, :classroom_id, :created_at)`
	for start := 0; start < len(entries); start += entryInsertBatch {
		end := min(start+entryInsertBatch, len(entries))
		if _, err := sqlx.NamedExecContext(ctx, exec, query, entries[start:end]); err != nil {
			return fmt.Errorf("insert timetable entries: %w", err)
		}
	}
	return nil
}

// ListDetailed returns entries joined with subject, staff and classroom names.
func (r *TimetableRepository) ListDetailed(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntryDetail, error) {
	query := `SELECT te.id, te.department_id, te.day, te.time_slot, te.subject_id, te.staff_id, te.classroom_id, te.created_at,
		s.name AS subject_name, s.code AS subject_code, st.name AS staff_name, c.name AS classroom_name
		FROM timetable_entries te
		JOIN subjects s ON s.id = te.subject_id
		JOIN staff st ON st.id = te.staff_id
		JOIN classrooms c ON c.id = te.classroom_id
		WHERE te.department_id = $1`
	args := []interface{}{filter.DepartmentID}
	if filter.StaffID != "" {
		args = append(args, filter.StaffID)
		query += fmt.Sprintf(" AND te.staff_id = $%d", len(args))
	}
	if filter.ClassroomID != "" {
		args = append(args, filter.ClassroomID)
		query += fmt.Sprintf(" AND te.classroom_id = $%d", len(args))
	}

	var entries []models.TimetableEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

