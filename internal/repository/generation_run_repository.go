package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const generationRunColumns = "id, department_id, strategy, trigger, status, requested_by, entries_count, summary, error_message, started_at, finished_at, created_at"

// GenerationRunRepository stores the audit trail of timetable generations.
type GenerationRunRepository struct {
	db *sqlx.DB
}

// NewGenerationRunRepository constructs a GenerationRunRepository.
func NewGenerationRunRepository(db *sqlx.DB) *GenerationRunRepository {
	return &GenerationRunRepository{db: db}
}

// Create inserts a run record.
func (r *GenerationRunRepository) Create(ctx context.Context, run *models.GenerationRun) error {
	return r.create(ctx, r.db, run)
}

// CreateWithTx inserts a run record inside an existing transaction.
func (r *GenerationRunRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, run *models.GenerationRun) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.create(ctx, tx, run)
}

func (r *GenerationRunRepository) create(ctx context.Context, exec sqlx.ExtContext, run *models.GenerationRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if len(run.Summary) == 0 {
		run.Summary = []byte("{}")
	}

	const query = `INSERT INTO timetable_generation_runs (id, department_id, strategy, trigger, status, requested_by, entries_count, summary, error_message, started_at, finished_at, created_at)
		VALUES (:id, :department_id, :strategy, :trigger, :status, :requested_by, :entries_count, :summary, :error_message, :started_at, :finished_at, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, run); err != nil {
		return fmt.Errorf("create generation run: %w", err)
	}
	return nil
}

// Save overwrites the mutable fields of an existing run.
func (r *GenerationRunRepository) Save(ctx context.Context, run *models.GenerationRun) error {
	return r.save(ctx, r.db, run)
}

// SaveWithTx overwrites the mutable fields of a run inside tx.
func (r *GenerationRunRepository) SaveWithTx(ctx context.Context, tx *sqlx.Tx, run *models.GenerationRun) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.save(ctx, tx, run)
}

func (r *GenerationRunRepository) save(ctx context.Context, exec sqlx.ExtContext, run *models.GenerationRun) error {
	if len(run.Summary) == 0 {
		run.Summary = []byte("{}")
	}
	const query = `UPDATE timetable_generation_runs SET strategy = :strategy, status = :status, entries_count = :entries_count, summary = :summary,
		error_message = :error_message, started_at = :started_at, finished_at = :finished_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, exec, query, run)
	if err != nil {
		return fmt.Errorf("update generation run: %w", err)
	}
	return expectAffected(res)
}

// FindByID fetches a run by ID.
func (r *GenerationRunRepository) FindByID(ctx context.Context, id string) (*models.GenerationRun, error) {
	query := "SELECT " + generationRunColumns + " FROM timetable_generation_runs WHERE id = $1"
	var run models.GenerationRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest first along with total count.
func (r *GenerationRunRepository) List(ctx context.Context, filter models.GenerationRunFilter) ([]models.GenerationRun, int, error) {
	base := "FROM timetable_generation_runs WHERE department_id = $1"
	args := []interface{}{filter.DepartmentID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		base += fmt.Sprintf(" AND status = $%d", len(args))
	}
	size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", generationRunColumns, base, size, offset)
	var runs []models.GenerationRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list generation runs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count generation runs: %w", err)
	}
	return runs, total, nil
}

// DeleteOlderThan purges finished runs created before cutoff and reports how
// many were removed.
func (r *GenerationRunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM timetable_generation_runs WHERE created_at < $1 AND status IN ('completed', 'failed')`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge generation runs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge generation runs: %w", err)
	}
	return affected, nil
}
