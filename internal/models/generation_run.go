package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// GenerationRunStatus tracks the lifecycle of a timetable generation.
type GenerationRunStatus string

const (
	GenerationRunQueued    GenerationRunStatus = "queued"
	GenerationRunRunning   GenerationRunStatus = "running"
	GenerationRunCompleted GenerationRunStatus = "completed"
	GenerationRunFailed    GenerationRunStatus = "failed"
)

// GenerationTrigger records what started a run.
type GenerationTrigger string

const (
	GenerationTriggerManual    GenerationTrigger = "manual"
	GenerationTriggerAsync     GenerationTrigger = "async"
	GenerationTriggerScheduled GenerationTrigger = "scheduled"
)

// GenerationRun is the audit record of one generation attempt.
type GenerationRun struct {
	ID           string              `db:"id" json:"id"`
	DepartmentID string              `db:"department_id" json:"department_id"`
	Strategy     string              `db:"strategy" json:"strategy"`
	Trigger      GenerationTrigger   `db:"trigger" json:"trigger"`
	Status       GenerationRunStatus `db:"status" json:"status"`
	RequestedBy  *string             `db:"requested_by" json:"requested_by,omitempty"`
	EntriesCount int                 `db:"entries_count" json:"entries_count"`
	Summary      types.JSONText      `db:"summary" json:"summary,omitempty"`
	ErrorMessage *string             `db:"error_message" json:"error_message,omitempty"`
	StartedAt    *time.Time          `db:"started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time          `db:"finished_at" json:"finished_at,omitempty"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
}

// GenerationRunFilter narrows run history listings.
type GenerationRunFilter struct {
	DepartmentID string
	Status       *GenerationRunStatus
	Page         int
	PageSize     int
}
