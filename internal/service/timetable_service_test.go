package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/jobs"
)

type departmentStoreStub struct {
	departments map[string]models.Department
}

func (s *departmentStoreStub) FindByID(_ context.Context, id string) (*models.Department, error) {
	department, ok := s.departments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &department, nil
}

func (s *departmentStoreStub) ListAutoRegenerate(context.Context) ([]models.Department, error) {
	var out []models.Department
	for _, department := range s.departments {
		if department.AutoRegenerate {
			out = append(out, department)
		}
	}
	return out, nil
}

type rosterStub struct {
	subjects    map[string][]models.Subject
	staff       map[string][]models.StaffMember
	classrooms  map[string][]models.Classroom
	constraints []models.Constraint
	staffErr    error
}

type rosterSubjects struct{ *rosterStub }

func (s rosterSubjects) ListByDepartment(_ context.Context, departmentID string) ([]models.Subject, error) {
	return s.subjects[departmentID], nil
}

type rosterClassrooms struct{ *rosterStub }

func (s rosterClassrooms) ListByDepartment(_ context.Context, departmentID string) ([]models.Classroom, error) {
	return s.classrooms[departmentID], nil
}

func (s *rosterStub) ListLocked(_ context.Context, departmentID string) ([]models.StaffMember, error) {
	if s.staffErr != nil {
		return nil, s.staffErr
	}
	return s.staff[departmentID], nil
}

func (s *rosterStub) ListForDepartment(context.Context, string) ([]models.Constraint, error) {
	return s.constraints, nil
}

type entryStoreStub struct {
	saved   map[string][]models.TimetableEntry
	details []models.TimetableEntryDetail
	reads   int
	err     error
}

func (s *entryStoreStub) ReplaceAll(_ context.Context, tx *sqlx.Tx, departmentID string, entries []models.TimetableEntry) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = map[string][]models.TimetableEntry{}
	}
	s.saved[departmentID] = entries
	return nil
}

func (s *entryStoreStub) ListDetailed(_ context.Context, filter models.TimetableFilter) ([]models.TimetableEntryDetail, error) {
	s.reads++
	var out []models.TimetableEntryDetail
	for _, detail := range s.details {
		if detail.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.StaffID != "" && detail.StaffID != filter.StaffID {
			continue
		}
		if filter.ClassroomID != "" && detail.ClassroomID != filter.ClassroomID {
			continue
		}
		out = append(out, detail)
	}
	return out, nil
}

type runStoreStub struct {
	mu     sync.Mutex
	runs   map[string]models.GenerationRun
	seq    int
	purged time.Time
}

func newRunStoreStub() *runStoreStub {
	return &runStoreStub{runs: map[string]models.GenerationRun{}}
}

func (s *runStoreStub) Create(_ context.Context, run *models.GenerationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == "" {
		s.seq++
		run.ID = fmt.Sprintf("run-%d", s.seq)
	}
	s.runs[run.ID] = *run
	return nil
}

func (s *runStoreStub) CreateWithTx(ctx context.Context, _ *sqlx.Tx, run *models.GenerationRun) error {
	return s.Create(ctx, run)
}

func (s *runStoreStub) Save(_ context.Context, run *models.GenerationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return sql.ErrNoRows
	}
	s.runs[run.ID] = *run
	return nil
}

func (s *runStoreStub) SaveWithTx(ctx context.Context, _ *sqlx.Tx, run *models.GenerationRun) error {
	return s.Save(ctx, run)
}

func (s *runStoreStub) FindByID(_ context.Context, id string) (*models.GenerationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &run, nil
}

func (s *runStoreStub) List(_ context.Context, filter models.GenerationRunFilter) ([]models.GenerationRun, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.GenerationRun
	for _, run := range s.runs {
		if run.DepartmentID == filter.DepartmentID {
			out = append(out, run)
		}
	}
	return out, len(out), nil
}

func (s *runStoreStub) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.purged = cutoff
	return 3, nil
}

func (s *runStoreStub) only(t *testing.T) models.GenerationRun {
	t.Helper()
	require.Len(t, s.runs, 1)
	for _, run := range s.runs {
		return run
	}
	return models.GenerationRun{}
}

type lockerStub struct {
	held     map[string]bool
	released []string
}

func (s *lockerStub) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	if s.held == nil {
		s.held = map[string]bool{}
	}
	if s.held[key] {
		return "", false, nil
	}
	s.held[key] = true
	return "token", true, nil
}

func (s *lockerStub) Release(_ context.Context, key, _ string) error {
	delete(s.held, key)
	s.released = append(s.released, key)
	return nil
}

type dispatcherStub struct {
	jobs []jobs.Job
	err  error
}

func (s *dispatcherStub) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

type timetableFixture struct {
	svc     *TimetableService
	roster  *rosterStub
	entries *entryStoreStub
	runs    *runStoreStub
	locker  *lockerStub
	queue   *dispatcherStub
	cache   *cacheRepoStub
	mock    sqlmock.Sqlmock
}

func newTimetableFixture(t *testing.T) *timetableFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	roster := &rosterStub{
		subjects: map[string][]models.Subject{
			"dept-1": {
				{ID: "math", DepartmentID: "dept-1", Code: "MATH", Name: "Mathematics", Credits: 3},
				{ID: "phys", DepartmentID: "dept-1", Code: "PHYS", Name: "Physics", Credits: 2},
			},
		},
		staff: map[string][]models.StaffMember{
			"dept-1": {
				{ID: "s1", DepartmentID: "dept-1", Name: "Ada", StaffRole: models.StaffRoleProfessor, SubjectsLocked: true},
			},
		},
		classrooms: map[string][]models.Classroom{
			"dept-1": {{ID: "r1", DepartmentID: "dept-1", Name: "Room 101", Capacity: 40}},
		},
		constraints: []models.Constraint{
			{ID: "c1", Role: models.StaffRoleProfessor, SubjectType: models.SubjectTypeBoth, MaxSubjects: 3, MaxHours: 20},
		},
	}
	fx := &timetableFixture{
		roster:  roster,
		entries: &entryStoreStub{},
		runs:    newRunStoreStub(),
		locker:  &lockerStub{},
		queue:   &dispatcherStub{},
		cache:   newCacheRepoStub(),
		mock:    mock,
	}
	departments := &departmentStoreStub{departments: map[string]models.Department{
		"dept-1": {ID: "dept-1", Code: "CS", Name: "Computer Science", AutoRegenerate: true},
		"dept-2": {ID: "dept-2", Code: "EE", Name: "Electrical"},
	}}
	cache := NewCacheService(fx.cache, nil, time.Minute, zap.NewNop(), true)
	fx.svc = NewTimetableService(
		departments,
		rosterSubjects{roster},
		roster,
		rosterClassrooms{roster},
		roster,
		fx.entries,
		fx.runs,
		fx.locker,
		sqlx.NewDb(db, "sqlmock"),
		fx.queue,
		cache,
		nil,
		nil,
		zap.NewNop(),
		TimetableServiceConfig{MaxRetries: 2},
	)
	return fx
}

var deptAdmin = &models.JWTClaims{UserID: "u1", Role: models.RoleDeptAdmin, DepartmentID: "dept-1"}

func TestTimetableServiceGenerate(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.svc.Generate(context.Background(), deptAdmin, "dept-1", dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	assert.Len(t, resp.Entries, 5)
	assert.Equal(t, "least_loaded", resp.Summary.Strategy)
	assert.Equal(t, 5, resp.Summary.TotalRequired)
	assert.Empty(t, resp.Summary.UnderScheduled)
	assert.Equal(t, "Monday", resp.Entries[0].Day)
	assert.Equal(t, "09:00-10:00", resp.Entries[0].TimeSlot)
	assert.Equal(t, "Mathematics", resp.Entries[0].SubjectName)
	assert.Equal(t, "Room 101", resp.Entries[0].ClassroomName)
	assert.Len(t, fx.entries.saved["dept-1"], 5)

	run := fx.runs.only(t)
	assert.Equal(t, resp.RunID, run.ID)
	assert.Equal(t, models.GenerationRunCompleted, run.Status)
	assert.Equal(t, models.GenerationTriggerManual, run.Trigger)
	assert.Equal(t, 5, run.EntriesCount)
	require.NotNil(t, run.RequestedBy)
	assert.Equal(t, "u1", *run.RequestedBy)

	var summary dto.GenerationSummary
	require.NoError(t, json.Unmarshal(run.Summary, &summary))
	assert.Equal(t, 5, summary.TotalEntries)

	assert.Equal(t, []string{"timetable:dept-1:*"}, fx.cache.deleted)
	assert.Equal(t, []string{"timetable:lock:dept-1"}, fx.locker.released)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTimetableServiceGenerateRandomRetryWithSeed(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	seed := int64(7)

	resp, err := fx.svc.Generate(context.Background(), deptAdmin, "dept-1", dto.GenerateTimetableRequest{Strategy: "random_retry", Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, "random_retry", resp.Summary.Strategy)
	assert.Len(t, resp.Entries, 5)
	assert.Equal(t, "random_retry", fx.runs.only(t).Strategy)
}

func TestTimetableServiceGenerateRejectsUnknownStrategy(t *testing.T) {
	fx := newTimetableFixture(t)

	_, err := fx.svc.Generate(context.Background(), deptAdmin, "dept-1", dto.GenerateTimetableRequest{Strategy: "genetic"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, fx.runs.runs)
}

func TestTimetableServiceGenerateForbidden(t *testing.T) {
	fx := newTimetableFixture(t)

	staff := &models.JWTClaims{UserID: "u2", Role: models.RoleStaff, DepartmentID: "dept-1", StaffID: "s1"}
	_, err := fx.svc.Generate(context.Background(), staff, "dept-1", dto.GenerateTimetableRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = fx.svc.Generate(context.Background(), deptAdmin, "dept-2", dto.GenerateTimetableRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestTimetableServiceGenerateMissingInputs(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.roster.staff["dept-1"] = nil
	fx.roster.classrooms["dept-1"] = nil

	_, err := fx.svc.Generate(context.Background(), deptAdmin, "dept-1", dto.GenerateTimetableRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInputDataMissing.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "staff with locked subjects")
	assert.Contains(t, appErr.Message, "classrooms")

	run := fx.runs.only(t)
	assert.Equal(t, models.GenerationRunFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Empty(t, fx.entries.saved)
	assert.Equal(t, []string{"timetable:lock:dept-1"}, fx.locker.released)
}

func TestTimetableServiceGenerateLockHeld(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.locker.held = map[string]bool{"timetable:lock:dept-1": true}

	_, err := fx.svc.Generate(context.Background(), deptAdmin, "dept-1", dto.GenerateTimetableRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, fx.runs.runs)
	assert.Empty(t, fx.locker.released)
}

func TestTimetableServiceGenerateRollsBackOnStoreFailure(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.entries.err = errors.New("disk full")
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err := fx.svc.Generate(context.Background(), deptAdmin, "dept-1", dto.GenerateTimetableRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.GenerationRunFailed, fx.runs.only(t).Status)
	assert.Empty(t, fx.cache.deleted)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTimetableServiceEnqueueAndHandleJob(t *testing.T) {
	fx := newTimetableFixture(t)

	accepted, err := fx.svc.Enqueue(context.Background(), deptAdmin, "dept-1", dto.GenerateTimetableRequest{}, models.GenerationTriggerAsync)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationRunQueued, accepted.Status)
	require.Len(t, fx.queue.jobs, 1)

	job := fx.queue.jobs[0]
	assert.Equal(t, GenerationJobType, job.Type)
	assert.Equal(t, accepted.RunID, job.ID)

	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	require.NoError(t, fx.svc.HandleJob(context.Background(), job))

	run := fx.runs.only(t)
	assert.Equal(t, models.GenerationRunCompleted, run.Status)
	assert.Equal(t, models.GenerationTriggerAsync, run.Trigger)
	assert.Equal(t, 5, run.EntriesCount)
	assert.NotNil(t, run.StartedAt)
	assert.NotNil(t, run.FinishedAt)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTimetableServiceEnqueueQueueFull(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.queue.err = jobs.ErrQueueFull

	_, err := fx.svc.Enqueue(context.Background(), deptAdmin, "dept-1", dto.GenerateTimetableRequest{}, models.GenerationTriggerAsync)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnavailable))
	assert.Equal(t, models.GenerationRunFailed, fx.runs.only(t).Status)
}

func TestTimetableServiceHandleJobRequeuesRetryableFailure(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.roster.staffErr = errors.New("connection reset")

	accepted, err := fx.svc.Enqueue(context.Background(), deptAdmin, "dept-1", dto.GenerateTimetableRequest{}, models.GenerationTriggerAsync)
	require.NoError(t, err)

	err = fx.svc.HandleJob(context.Background(), fx.queue.jobs[0])
	require.Error(t, err)
	assert.True(t, fx.svc.Retryable(err))
	run, _ := fx.runs.FindByID(context.Background(), accepted.RunID)
	assert.Equal(t, models.GenerationRunQueued, run.Status)

	last := fx.queue.jobs[0]
	last.Attempt = 2
	err = fx.svc.HandleJob(context.Background(), last)
	require.Error(t, err)
	run, _ = fx.runs.FindByID(context.Background(), accepted.RunID)
	assert.Equal(t, models.GenerationRunFailed, run.Status)
}

func TestTimetableServiceHandleJobLockHeldFailsRun(t *testing.T) {
	fx := newTimetableFixture(t)
	accepted, err := fx.svc.Enqueue(context.Background(), nil, "dept-1", dto.GenerateTimetableRequest{}, models.GenerationTriggerScheduled)
	require.NoError(t, err)
	fx.locker.held = map[string]bool{"timetable:lock:dept-1": true}

	last := fx.queue.jobs[0]
	last.Attempt = 2
	err = fx.svc.HandleJob(context.Background(), last)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	run, _ := fx.runs.FindByID(context.Background(), accepted.RunID)
	assert.Equal(t, models.GenerationRunFailed, run.Status)
}

func TestTimetableServiceRetryable(t *testing.T) {
	fx := newTimetableFixture(t)
	assert.False(t, fx.svc.Retryable(appErrors.ErrInputDataMissing))
	assert.False(t, fx.svc.Retryable(appErrors.Clone(appErrors.ErrNotFound, "gone")))
	assert.False(t, fx.svc.Retryable(nil))
	assert.True(t, fx.svc.Retryable(appErrors.ErrConflict))
	assert.True(t, fx.svc.Retryable(errors.New("boom")))
}

func TestTimetableServiceRegenerateAll(t *testing.T) {
	fx := newTimetableFixture(t)

	queued, err := fx.svc.RegenerateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, queued)
	require.Len(t, fx.queue.jobs, 1)
	payload := fx.queue.jobs[0].Payload.(GenerationJob)
	assert.Equal(t, "dept-1", payload.DepartmentID)
	assert.Equal(t, models.GenerationTriggerScheduled, fx.runs.only(t).Trigger)
}

func TestTimetableServicePurgeRuns(t *testing.T) {
	fx := newTimetableFixture(t)
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	fx.svc.now = func() time.Time { return now }

	removed, err := fx.svc.PurgeRuns(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.Equal(t, now.Add(-24*time.Hour), fx.runs.purged)

	removed, err = fx.svc.PurgeRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func timetableDetail(day, slot, subject, staff, room string) models.TimetableEntryDetail {
	return models.TimetableEntryDetail{TimetableEntry: models.TimetableEntry{
		DepartmentID: "dept-1", Day: day, TimeSlot: slot, SubjectID: subject, StaffID: staff, ClassroomID: room,
	}}
}

func TestTimetableServiceGetTimetableViews(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.entries.details = []models.TimetableEntryDetail{
		timetableDetail("Tuesday", "09:00-10:00", "math", "s1", "r1"),
		timetableDetail("Monday", "11:15-12:15", "phys", "s2", "r2"),
		timetableDetail("Monday", "09:00-10:00", "math", "s1", "r2"),
	}

	view, hit, err := fx.svc.GetTimetable(context.Background(), deptAdmin, "dept-1", dto.TimetableQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, view.Entries, 3)
	assert.Equal(t, "Monday", view.Entries[0].Day)
	assert.Equal(t, "09:00-10:00", view.Entries[0].TimeSlot)
	assert.Equal(t, "Tuesday", view.Entries[2].Day)
	assert.Len(t, view.Grid["Monday"]["09:00-10:00"], 1)
	assert.Len(t, view.Days, 5)
	assert.Len(t, view.TimeSlots, 7)

	_, hit, err = fx.svc.GetTimetable(context.Background(), deptAdmin, "dept-1", dto.TimetableQuery{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, fx.entries.reads)

	staff := &models.JWTClaims{UserID: "u2", Role: models.RoleStaff, DepartmentID: "dept-1", StaffID: "s1"}
	view, _, err = fx.svc.GetTimetable(context.Background(), staff, "dept-1", dto.TimetableQuery{View: models.TimetableViewStaff})
	require.NoError(t, err)
	assert.Equal(t, "s1", view.StaffID)
	assert.Len(t, view.Entries, 2)

	view, _, err = fx.svc.GetTimetable(context.Background(), deptAdmin, "dept-1", dto.TimetableQuery{View: models.TimetableViewClassroom, ClassroomID: "r2"})
	require.NoError(t, err)
	assert.Len(t, view.Entries, 2)
	_, ok := fx.cache.data["timetable:dept-1:classroom:r2"]
	assert.True(t, ok)
}

func TestTimetableServiceGetTimetableValidation(t *testing.T) {
	fx := newTimetableFixture(t)

	_, _, err := fx.svc.GetTimetable(context.Background(), deptAdmin, "dept-1", dto.TimetableQuery{View: models.TimetableViewClassroom})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, _, err = fx.svc.GetTimetable(context.Background(), deptAdmin, "dept-1", dto.TimetableQuery{View: "weekly"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, _, err = fx.svc.GetTimetable(context.Background(), deptAdmin, "dept-2", dto.TimetableQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	admin := &models.JWTClaims{Role: models.RoleMainAdmin}
	_, _, err = fx.svc.GetTimetable(context.Background(), admin, "dept-9", dto.TimetableQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableServiceRuns(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	resp, err := fx.svc.Generate(context.Background(), deptAdmin, "dept-1", dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	runs, pagination, err := fx.svc.ListRuns(context.Background(), deptAdmin, models.GenerationRunFilter{DepartmentID: "dept-1"})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, 1, pagination.TotalCount)

	run, err := fx.svc.GetRun(context.Background(), deptAdmin, resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationRunCompleted, run.Status)

	other := &models.JWTClaims{UserID: "u3", Role: models.RoleDeptAdmin, DepartmentID: "dept-2"}
	_, err = fx.svc.GetRun(context.Background(), other, resp.RunID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = fx.svc.GetRun(context.Background(), deptAdmin, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestNewGenerationSummaryKeepsCoverage(t *testing.T) {
	at := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	summary := scheduler.Summary{
		Strategy:      scheduler.StrategyLeastLoaded,
		TotalEntries:  2,
		TotalRequired: 3,
		Subjects: []scheduler.SubjectCoverage{
			{SubjectID: "sub-1", SubjectCode: "CS101", Required: 3, Scheduled: 2},
		},
		UnderScheduled: []string{"sub-1"},
	}

	got := newGenerationSummary(summary, 1500*time.Millisecond, at)
	assert.Equal(t, summary.Subjects, got.Subjects)
	assert.Equal(t, []string{"sub-1"}, got.UnderScheduled)
	assert.Equal(t, int64(1500), got.DurationMs)
	assert.Equal(t, at, got.GeneratedAt)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"subjects":[{"subject_id":"sub-1","subject_code":"CS101","required":3,"scheduled":2}]`)
}
