package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestGenerationRunRepositoryCreateDefaultsSummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	mock.ExpectExec("INSERT INTO timetable_generation_runs").
		WithArgs(sqlmock.AnyArg(), "d1", "least_loaded", "async", "queued", nil, 0, sqlmock.AnyArg(), nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.GenerationRun{
		DepartmentID: "d1",
		Strategy:     "least_loaded",
		Trigger:      models.GenerationTriggerAsync,
		Status:       models.GenerationRunQueued,
	}
	require.NoError(t, repo.Create(context.Background(), run))
	assert.NotEmpty(t, run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationRunRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	status := models.GenerationRunCompleted
	rows := sqlmock.NewRows([]string{"id", "department_id", "strategy", "trigger", "status", "requested_by", "entries_count", "summary", "error_message", "started_at", "finished_at", "created_at"}).
		AddRow("run-1", "d1", "least_loaded", "manual", "completed", "u1", 12, []byte(`{"total_entries":12}`), nil, time.Now(), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_generation_runs WHERE department_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("d1", "completed").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetable_generation_runs WHERE department_id = $1 AND status = $2")).
		WithArgs("d1", "completed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	runs, total, err := repo.List(context.Background(), models.GenerationRunFilter{DepartmentID: "d1", Status: &status})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 12, runs[0].EntriesCount)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationRunRepositoryDeleteOlderThan(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationRunRepository(db)

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_generation_runs WHERE created_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	removed, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 7, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
