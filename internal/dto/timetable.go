package dto

import (
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

// GenerateTimetableRequest optionally overrides the configured strategy.
type GenerateTimetableRequest struct {
	Strategy string `json:"strategy" validate:"omitempty,oneof=least_loaded random_retry"`
	Seed     *int64 `json:"seed"`
}

// GenerationSummary is stored on the run record and returned to callers.
type GenerationSummary struct {
	Strategy       string                      `json:"strategy"`
	TotalEntries   int                         `json:"total_entries"`
	TotalRequired  int                         `json:"total_required"`
	Subjects       []scheduler.SubjectCoverage `json:"subjects"`
	UnderScheduled []string                    `json:"under_scheduled"`
	DurationMs     int64                       `json:"duration_ms"`
	GeneratedAt    time.Time                   `json:"generated_at"`
}

// GenerateTimetableResponse is returned by a synchronous generation.
type GenerateTimetableResponse struct {
	RunID   string                        `json:"run_id"`
	Entries []models.TimetableEntryDetail `json:"entries"`
	Summary GenerationSummary             `json:"summary"`
}

// GenerationAccepted is returned when generation was queued.
type GenerationAccepted struct {
	RunID  string                     `json:"run_id"`
	Status models.GenerationRunStatus `json:"status"`
}

// TimetableQuery selects a timetable view.
type TimetableQuery struct {
	View        models.TimetableView `form:"view" validate:"omitempty,oneof=department staff classroom"`
	StaffID     string               `form:"staff_id"`
	ClassroomID string               `form:"classroom_id"`
}
