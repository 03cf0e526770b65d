// Package cron runs the periodic timetable jobs: scheduled regeneration and
// generation run retention.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Maintainer is the slice of the timetable service the jobs drive.
type Maintainer interface {
	RegenerateAll(ctx context.Context) (int, error)
	PurgeRuns(ctx context.Context, retention time.Duration) (int64, error)
}

// Config selects which jobs run and when.
type Config struct {
	AutoRegenerate     bool
	AutoRegenerateSpec string
	RunRetention       time.Duration
	RetentionSpec      string
	JobTimeout         time.Duration
}

// Runner owns the cron instance.
type Runner struct {
	cron    *cron.Cron
	svc     Maintainer
	cfg     Config
	logger  *zap.Logger
	entries map[string]cron.EntryID
}

// New registers the enabled jobs without starting them.
func New(svc Maintainer, cfg Config, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	cronLogger := zapCronLogger{logger.Sugar()}
	r := &Runner{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		svc:     svc,
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}

	if cfg.AutoRegenerate {
		if err := r.add("auto_regenerate", cfg.AutoRegenerateSpec, r.regenerate); err != nil {
			return nil, err
		}
	}
	if cfg.RunRetention > 0 && cfg.RetentionSpec != "" {
		if err := r.add("run_retention", cfg.RetentionSpec, r.purge); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Runner) add(name, spec string, fn func()) error {
	id, err := r.cron.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	r.entries[name] = id
	return nil
}

// Jobs lists the registered job names.
func (r *Runner) Jobs() []string {
	names := make([]string, 0, len(r.entries))
	for _, name := range []string{"auto_regenerate", "run_retention"} {
		if _, ok := r.entries[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Start begins scheduling in the background.
func (r *Runner) Start() {
	r.cron.Start()
	r.logger.Sugar().Infow("cron started", "jobs", r.Jobs())
}

// Stop halts scheduling and returns a context done once running jobs finish.
func (r *Runner) Stop() context.Context {
	return r.cron.Stop()
}

func (r *Runner) regenerate() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.JobTimeout)
	defer cancel()

	queued, err := r.svc.RegenerateAll(ctx)
	if err != nil {
		r.logger.Sugar().Errorw("scheduled regeneration failed", "error", err)
		return
	}
	r.logger.Sugar().Infow("scheduled regeneration queued", "departments", queued)
}

func (r *Runner) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.JobTimeout)
	defer cancel()

	removed, err := r.svc.PurgeRuns(ctx, r.cfg.RunRetention)
	if err != nil {
		r.logger.Sugar().Errorw("generation run purge failed", "error", err)
		return
	}
	r.logger.Sugar().Infow("generation runs purged", "removed", removed, "retention", r.cfg.RunRetention.String())
}

type zapCronLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
