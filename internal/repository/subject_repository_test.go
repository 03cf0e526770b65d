package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/database"
)

func TestSubjectRepositoryCountInDepartment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects WHERE department_id = ? AND id IN (?, ?)")).
		WithArgs("d1", "s1", "s2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountInDepartment(context.Background(), "d1", []string{"s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.CountInDepartment(context.Background(), "d1", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), "d1", "Networks", "CS201", 3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	subject := &models.Subject{DepartmentID: "d1", Name: "Networks", Code: "CS201", Credits: 3}
	err := database.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		return repo.CreateWithTx(context.Background(), tx, subject)
	})
	require.NoError(t, err)
	assert.NotEmpty(t, subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Error(t, repo.CreateWithTx(context.Background(), nil, subject))
}
