package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	"github.com/noah-isme/timetable-api/pkg/database"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/jobs"
)

// GenerationJobType tags queued generation jobs.
const GenerationJobType = "timetable.generate"

type timetableDepartmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
	ListAutoRegenerate(ctx context.Context) ([]models.Department, error)
}

type timetableSubjectLoader interface {
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error)
}

type timetableStaffLoader interface {
	ListLocked(ctx context.Context, departmentID string) ([]models.StaffMember, error)
}

type timetableClassroomLoader interface {
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Classroom, error)
}

type timetableEntryStore interface {
	ReplaceAll(ctx context.Context, tx *sqlx.Tx, departmentID string, entries []models.TimetableEntry) error
	ListDetailed(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntryDetail, error)
}

type generationRunStore interface {
	Create(ctx context.Context, run *models.GenerationRun) error
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, run *models.GenerationRun) error
	Save(ctx context.Context, run *models.GenerationRun) error
	SaveWithTx(ctx context.Context, tx *sqlx.Tx, run *models.GenerationRun) error
	FindByID(ctx context.Context, id string) (*models.GenerationRun, error)
	List(ctx context.Context, filter models.GenerationRunFilter) ([]models.GenerationRun, int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type generationLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type generationDispatcher interface {
	Enqueue(job jobs.Job) error
}

// TimetableServiceConfig governs generation behaviour.
type TimetableServiceConfig struct {
	Strategy    string
	Seed        int64
	MaxAttempts int
	LockTTL     time.Duration
	CacheTTL    time.Duration
	MaxRetries  int
}

// GenerationJob is the payload of a queued generation.
type GenerationJob struct {
	RunID        string
	DepartmentID string
	Strategy     string
	Seed         *int64
}

// TimetableView is a read projection of a department timetable.
type TimetableView struct {
	DepartmentID string                                              `json:"department_id"`
	View         models.TimetableView                                `json:"view"`
	StaffID      string                                              `json:"staff_id,omitempty"`
	ClassroomID  string                                              `json:"classroom_id,omitempty"`
	Days         []string                                            `json:"days"`
	TimeSlots    []string                                            `json:"time_slots"`
	Entries      []models.TimetableEntryDetail                       `json:"entries"`
	Grid         map[string]map[string][]models.TimetableEntryDetail `json:"grid"`
}

// TimetableService generates, stores and serves department timetables.
type TimetableService struct {
	departments timetableDepartmentReader
	subjects    timetableSubjectLoader
	staff       timetableStaffLoader
	classrooms  timetableClassroomLoader
	constraints constraintLister
	entries     timetableEntryStore
	runs        generationRunStore
	locker      generationLocker
	tx          database.TxBeginner
	queue       generationDispatcher
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         TimetableServiceConfig
	now         func() time.Time
}

// NewTimetableService wires generation dependencies. queue may be nil when
// only synchronous generation is needed.
func NewTimetableService(
	departments timetableDepartmentReader,
	subjects timetableSubjectLoader,
	staff timetableStaffLoader,
	classrooms timetableClassroomLoader,
	constraints constraintLister,
	entries timetableEntryStore,
	runs generationRunStore,
	locker generationLocker,
	tx database.TxBeginner,
	queue generationDispatcher,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Strategy == "" {
		cfg.Strategy = scheduler.StrategyLeastLoaded
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &TimetableService{
		departments: departments,
		subjects:    subjects,
		staff:       staff,
		classrooms:  classrooms,
		constraints: constraints,
		entries:     entries,
		runs:        runs,
		locker:      locker,
		tx:          tx,
		queue:       queue,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Generate builds and stores a new timetable for the department, replacing
// the current one.
func (s *TimetableService) Generate(ctx context.Context, actor *models.JWTClaims, departmentID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := ensureDepartmentAdmin(actor, departmentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid generation payload")
	}
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return nil, lookupError(err, "department")
	}
	strategy, err := s.strategyFor(req.Strategy, req.Seed)
	if err != nil {
		return nil, err
	}

	started := s.now().UTC()
	run := &models.GenerationRun{
		ID:           uuid.NewString(),
		DepartmentID: departmentID,
		Strategy:     strategy.Name(),
		Trigger:      models.GenerationTriggerManual,
		Status:       models.GenerationRunRunning,
		RequestedBy:  actorID(actor),
		StartedAt:    &started,
		CreatedAt:    started,
	}
	return s.execute(ctx, run, strategy, true)
}

// Enqueue records a queued run and hands it to the background workers.
func (s *TimetableService) Enqueue(ctx context.Context, actor *models.JWTClaims, departmentID string, req dto.GenerateTimetableRequest, trigger models.GenerationTrigger) (*dto.GenerationAccepted, error) {
	if err := ensureDepartmentAdmin(actor, departmentID); err != nil {
		return nil, err
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "background generation is not configured")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid generation payload")
	}
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return nil, lookupError(err, "department")
	}
	strategy, err := s.strategyFor(req.Strategy, req.Seed)
	if err != nil {
		return nil, err
	}

	run := &models.GenerationRun{
		DepartmentID: departmentID,
		Strategy:     strategy.Name(),
		Trigger:      trigger,
		Status:       models.GenerationRunQueued,
		RequestedBy:  actorID(actor),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, internalError(err, "failed to record generation run")
	}

	job := jobs.Job{
		ID:      run.ID,
		Type:    GenerationJobType,
		Payload: GenerationJob{RunID: run.ID, DepartmentID: departmentID, Strategy: strategy.Name(), Seed: req.Seed},
	}
	if err := s.queue.Enqueue(job); err != nil {
		msg := "failed to enqueue generation"
		finished := s.now().UTC()
		run.Status = models.GenerationRunFailed
		run.ErrorMessage = &msg
		run.FinishedAt = &finished
		if saveErr := s.runs.Save(context.WithoutCancel(ctx), run); saveErr != nil {
			s.logger.Sugar().Warnw("failed to mark run failed", "run_id", run.ID, "error", saveErr)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "generation queue unavailable")
	}
	s.metrics.RecordJobEnqueued(string(trigger))
	s.logger.Sugar().Infow("timetable generation queued", "department_id", departmentID, "run_id", run.ID, "trigger", trigger)
	return &dto.GenerationAccepted{RunID: run.ID, Status: run.Status}, nil
}

// HandleJob runs a queued generation. It is the queue handler.
func (s *TimetableService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(GenerationJob)
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unexpected generation payload %T", job.Payload))
	}
	run, err := s.runs.FindByID(ctx, payload.RunID)
	if err != nil {
		return lookupError(err, "generation run")
	}
	strategy, err := s.strategyFor(payload.Strategy, payload.Seed)
	if err != nil {
		return err
	}

	started := s.now().UTC()
	run.Status = models.GenerationRunRunning
	run.StartedAt = &started
	run.ErrorMessage = nil
	if err := s.runs.Save(ctx, run); err != nil {
		return internalError(err, "failed to mark run running")
	}

	_, err = s.execute(ctx, run, strategy, false)
	if err != nil && s.Retryable(err) && job.Attempt < s.cfg.MaxRetries {
		run.Status = models.GenerationRunQueued
		if saveErr := s.runs.Save(context.WithoutCancel(ctx), run); saveErr != nil {
			s.logger.Sugar().Warnw("failed to requeue run", "run_id", run.ID, "error", saveErr)
		}
	}
	return err
}

// Retryable reports whether a failed generation may succeed when repeated.
func (s *TimetableService) Retryable(err error) bool {
	appErr := appErrors.FromError(err)
	if appErr == nil {
		return false
	}
	switch appErr.Code {
	case appErrors.ErrInputDataMissing.Code,
		appErrors.ErrNotFound.Code,
		appErrors.ErrValidation.Code,
		appErrors.ErrForbidden.Code:
		return false
	}
	return true
}

// RegenerateAll queues a scheduled generation for every department that opted
// in and returns how many were queued.
func (s *TimetableService) RegenerateAll(ctx context.Context) (int, error) {
	departments, err := s.departments.ListAutoRegenerate(ctx)
	if err != nil {
		return 0, internalError(err, "failed to list departments")
	}
	queued := 0
	for _, department := range departments {
		if _, err := s.Enqueue(ctx, nil, department.ID, dto.GenerateTimetableRequest{}, models.GenerationTriggerScheduled); err != nil {
			s.logger.Sugar().Warnw("scheduled generation not queued", "department_id", department.ID, "error", err)
			continue
		}
		queued++
	}
	return queued, nil
}

// PurgeRuns removes finished runs older than retention.
func (s *TimetableService) PurgeRuns(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	removed, err := s.runs.DeleteOlderThan(ctx, s.now().UTC().Add(-retention))
	if err != nil {
		return 0, internalError(err, "failed to purge generation runs")
	}
	return removed, nil
}

// GetTimetable returns one view of the department's current timetable and
// whether it was served from cache.
func (s *TimetableService) GetTimetable(ctx context.Context, actor *models.JWTClaims, departmentID string, query dto.TimetableQuery) (*TimetableView, bool, error) {
	if err := ensureDepartmentAccess(actor, departmentID); err != nil {
		return nil, false, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, false, validationError(err, "invalid timetable query")
	}

	filter := models.TimetableFilter{DepartmentID: departmentID}
	view := query.View
	if view == "" {
		view = models.TimetableViewDepartment
	}
	switch view {
	case models.TimetableViewStaff:
		filter.StaffID = strings.TrimSpace(query.StaffID)
		if filter.StaffID == "" && actor != nil && actor.Role == models.RoleStaff {
			filter.StaffID = actor.StaffID
		}
		if filter.StaffID == "" {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "staff_id is required for the staff view")
		}
	case models.TimetableViewClassroom:
		filter.ClassroomID = strings.TrimSpace(query.ClassroomID)
		if filter.ClassroomID == "" {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "classroom_id is required for the classroom view")
		}
	}

	key := viewCacheKey(departmentID, view, filter.StaffID+filter.ClassroomID)
	var cached TimetableView
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return nil, false, lookupError(err, "department")
	}
	entries, err := s.entries.ListDetailed(ctx, filter)
	if err != nil {
		return nil, false, internalError(err, "failed to load timetable")
	}
	sortDetails(entries)

	result := &TimetableView{
		DepartmentID: departmentID,
		View:         view,
		StaffID:      filter.StaffID,
		ClassroomID:  filter.ClassroomID,
		Days:         scheduler.Days,
		TimeSlots:    scheduler.TimeSlots,
		Entries:      entries,
		Grid:         buildGrid(entries),
	}
	s.cache.Set(ctx, key, *result, s.cfg.CacheTTL)
	return result, false, nil
}

// ListRuns returns the generation history of a department.
func (s *TimetableService) ListRuns(ctx context.Context, actor *models.JWTClaims, filter models.GenerationRunFilter) ([]models.GenerationRun, *models.Pagination, error) {
	if err := ensureDepartmentAccess(actor, filter.DepartmentID); err != nil {
		return nil, nil, err
	}
	runs, total, err := s.runs.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list generation runs")
	}
	return runs, buildPagination(filter.Page, filter.PageSize, total), nil
}

// GetRun returns one generation run.
func (s *TimetableService) GetRun(ctx context.Context, actor *models.JWTClaims, id string) (*models.GenerationRun, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "generation run")
	}
	if err := ensureDepartmentAccess(actor, run.DepartmentID); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *TimetableService) strategyFor(name string, seed *int64) (scheduler.Strategy, error) {
	if strings.TrimSpace(name) == "" {
		name = s.cfg.Strategy
	}
	opts := scheduler.Options{Seed: s.cfg.Seed, MaxAttempts: s.cfg.MaxAttempts}
	if seed != nil {
		opts.Seed = *seed
	}
	strategy, err := scheduler.New(name, opts)
	if err != nil {
		return nil, validationError(err, "unknown scheduling strategy")
	}
	return strategy, nil
}

// execute runs strategy for run under the department lock and persists the
// result. newRun selects insert over update for the run record.
func (s *TimetableService) execute(ctx context.Context, run *models.GenerationRun, strategy scheduler.Strategy, newRun bool) (*dto.GenerateTimetableResponse, error) {
	start := time.Now()
	key := lockKey(run.DepartmentID)
	token, acquired, err := s.locker.Acquire(ctx, key, s.cfg.LockTTL)
	if err != nil {
		return nil, s.fail(ctx, run, newRun, start, internalError(err, "failed to acquire generation lock"))
	}
	if !acquired {
		s.metrics.RecordLockContention()
		s.logger.Sugar().Infow("timetable generation rejected, lock held", "department_id", run.DepartmentID, "run_id", run.ID)
		conflict := appErrors.Clone(appErrors.ErrConflict, "timetable generation already in progress for this department")
		if newRun {
			return nil, conflict
		}
		return nil, s.fail(ctx, run, newRun, start, conflict)
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Sugar().Warnw("failed to release generation lock", "department_id", run.DepartmentID, "error", err)
		}
	}()

	s.logger.Sugar().Infow("timetable generation started", "department_id", run.DepartmentID, "run_id", run.ID, "strategy", strategy.Name(), "trigger", run.Trigger)

	in, err := s.loadInputs(ctx, run.DepartmentID)
	if err != nil {
		return nil, s.fail(ctx, run, newRun, start, err)
	}

	entries := strategy.Assign(in)
	if err := scheduler.Verify(in, entries, strategy.GlobalSlots()); err != nil {
		return nil, s.fail(ctx, run, newRun, start, internalError(err, "generated timetable violates placement rules"))
	}

	summary := newGenerationSummary(scheduler.Summarize(strategy.Name(), in, entries), time.Since(start), s.now().UTC())
	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, s.fail(ctx, run, newRun, start, internalError(err, "failed to encode generation summary"))
	}

	finished := s.now().UTC()
	run.Strategy = strategy.Name()
	run.Status = models.GenerationRunCompleted
	run.EntriesCount = len(entries)
	run.Summary = payload
	run.ErrorMessage = nil
	run.FinishedAt = &finished

	err = database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.entries.ReplaceAll(ctx, tx, run.DepartmentID, entries); err != nil {
			return err
		}
		if newRun {
			return s.runs.CreateWithTx(ctx, tx, run)
		}
		return s.runs.SaveWithTx(ctx, tx, run)
	})
	if err != nil {
		return nil, s.fail(ctx, run, newRun, start, internalError(err, "failed to store timetable"))
	}

	s.cache.Invalidate(ctx, viewCachePattern(run.DepartmentID))
	s.metrics.RecordGeneration(run.DepartmentID, run.Strategy, string(run.Trigger), true, len(entries), len(summary.UnderScheduled), time.Since(start))
	s.logger.Sugar().Infow("timetable generated",
		"department_id", run.DepartmentID,
		"run_id", run.ID,
		"strategy", run.Strategy,
		"entries", len(entries),
		"under_scheduled", len(summary.UnderScheduled),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &dto.GenerateTimetableResponse{
		RunID:   run.ID,
		Entries: enrichEntries(in, entries),
		Summary: summary,
	}, nil
}

// fail records a failed run and returns cause.
func (s *TimetableService) fail(ctx context.Context, run *models.GenerationRun, newRun bool, start time.Time, cause error) error {
	msg := cause.Error()
	finished := s.now().UTC()
	run.Status = models.GenerationRunFailed
	run.ErrorMessage = &msg
	run.EntriesCount = 0
	run.FinishedAt = &finished

	persistCtx := context.WithoutCancel(ctx)
	var err error
	if newRun {
		err = s.runs.Create(persistCtx, run)
	} else {
		err = s.runs.Save(persistCtx, run)
	}
	if err != nil {
		s.logger.Sugar().Warnw("failed to record failed run", "run_id", run.ID, "error", err)
	}

	s.metrics.RecordGeneration(run.DepartmentID, run.Strategy, string(run.Trigger), false, 0, 0, time.Since(start))
	s.logger.Sugar().Warnw("timetable generation failed", "department_id", run.DepartmentID, "run_id", run.ID, "error", cause)
	return cause
}

// loadInputs reads everything a run needs concurrently. Only staff with a
// locked selection take part.
func (s *TimetableService) loadInputs(ctx context.Context, departmentID string) (scheduler.Input, error) {
	in := scheduler.Input{DepartmentID: departmentID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		subjects, err := s.subjects.ListByDepartment(gctx, departmentID)
		if err != nil {
			return fmt.Errorf("load subjects: %w", err)
		}
		in.Subjects = subjects
		return nil
	})
	g.Go(func() error {
		staff, err := s.staff.ListLocked(gctx, departmentID)
		if err != nil {
			return fmt.Errorf("load staff: %w", err)
		}
		in.Staff = staff
		return nil
	})
	g.Go(func() error {
		classrooms, err := s.classrooms.ListByDepartment(gctx, departmentID)
		if err != nil {
			return fmt.Errorf("load classrooms: %w", err)
		}
		in.Classrooms = classrooms
		return nil
	})
	g.Go(func() error {
		constraints, err := s.constraints.ListForDepartment(gctx, departmentID)
		if err != nil {
			return fmt.Errorf("load constraints: %w", err)
		}
		in.Constraints = constraints
		return nil
	})
	if err := g.Wait(); err != nil {
		return in, internalError(err, "failed to load generation inputs")
	}

	var missing []string
	if len(in.Subjects) == 0 {
		missing = append(missing, "subjects")
	}
	if len(in.Staff) == 0 {
		missing = append(missing, "staff with locked subjects")
	}
	if len(in.Classrooms) == 0 {
		missing = append(missing, "classrooms")
	}
	if len(missing) > 0 {
		return in, appErrors.Clone(appErrors.ErrInputDataMissing, "missing required data for timetable generation: "+strings.Join(missing, ", "))
	}
	return in, nil
}

func newGenerationSummary(summary scheduler.Summary, took time.Duration, at time.Time) dto.GenerationSummary {
	return dto.GenerationSummary{
		Strategy:       summary.Strategy,
		TotalEntries:   summary.TotalEntries,
		TotalRequired:  summary.TotalRequired,
		Subjects:       summary.Subjects,
		UnderScheduled: summary.UnderScheduled,
		DurationMs:     took.Milliseconds(),
		GeneratedAt:    at,
	}
}

func enrichEntries(in scheduler.Input, entries []models.TimetableEntry) []models.TimetableEntryDetail {
	subjects := make(map[string]models.Subject, len(in.Subjects))
	for _, subject := range in.Subjects {
		subjects[subject.ID] = subject
	}
	staff := make(map[string]string, len(in.Staff))
	for _, member := range in.Staff {
		staff[member.ID] = member.Name
	}
	rooms := make(map[string]string, len(in.Classrooms))
	for _, room := range in.Classrooms {
		rooms[room.ID] = room.Name
	}

	details := make([]models.TimetableEntryDetail, 0, len(entries))
	for _, entry := range entries {
		details = append(details, models.TimetableEntryDetail{
			TimetableEntry: entry,
			SubjectName:    subjects[entry.SubjectID].Name,
			SubjectCode:    subjects[entry.SubjectID].Code,
			StaffName:      staff[entry.StaffID],
			ClassroomName:  rooms[entry.ClassroomID],
		})
	}
	sortDetails(details)
	return details
}

func sortDetails(entries []models.TimetableEntryDetail) {
	sort.SliceStable(entries, func(i, j int) bool {
		return scheduler.Before(entries[i].Day, entries[i].TimeSlot, entries[j].Day, entries[j].TimeSlot)
	})
}

func buildGrid(entries []models.TimetableEntryDetail) map[string]map[string][]models.TimetableEntryDetail {
	grid := make(map[string]map[string][]models.TimetableEntryDetail, len(scheduler.Days))
	for _, day := range scheduler.Days {
		grid[day] = make(map[string][]models.TimetableEntryDetail)
	}
	for _, entry := range entries {
		day, ok := grid[entry.Day]
		if !ok {
			continue
		}
		day[entry.TimeSlot] = append(day[entry.TimeSlot], entry)
	}
	return grid
}

func lockKey(departmentID string) string {
	return "timetable:lock:" + departmentID
}

func viewCacheKey(departmentID string, view models.TimetableView, subject string) string {
	key := fmt.Sprintf("timetable:%s:%s", departmentID, view)
	if subject != "" {
		key += ":" + subject
	}
	return key
}

func viewCachePattern(departmentID string) string {
	return "timetable:" + departmentID + ":*"
}
