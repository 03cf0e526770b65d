// Package scheduler places subjects onto the fixed weekly grid.
//
// A Strategy consumes a department's subjects, eligible staff, classrooms and
// workload constraints and returns timetable entries that never double book a
// staff member or a classroom, never exceed a role's effective max_hours and
// only pair a subject with staff allowed to teach it. Demand that cannot be
// placed is dropped; strategies never fail.
package scheduler

import (
	"fmt"
	"strings"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Strategy names accepted by New.
const (
	StrategyLeastLoaded = "least_loaded"
	StrategyRandomRetry = "random_retry"
)

// DefaultMaxAttempts bounds the random draws per placement.
const DefaultMaxAttempts = 50

// Input is everything one generation run needs.
type Input struct {
	DepartmentID string
	Subjects     []models.Subject
	Staff        []models.StaffMember
	Classrooms   []models.Classroom
	Constraints  []models.Constraint
}

// Strategy is a placement algorithm. Implementations keep all run state local
// to Assign so one value can serve concurrent runs.
type Strategy interface {
	// Name identifies the strategy in logs, metrics and run records.
	Name() string

	// Assign places as much of the subjects' demand as it can.
	Assign(in Input) []models.TimetableEntry

	// GlobalSlots reports whether a grid cell holds at most one entry per run.
	GlobalSlots() bool
}

// Options configures New.
type Options struct {
	Seed        int64
	MaxAttempts int
}

// New returns the strategy registered under name. An empty name selects the
// least loaded strategy.
func New(name string, opts Options) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyLeastLoaded:
		return NewLeastLoaded(), nil
	case StrategyRandomRetry:
		return NewRandomRetry(opts.Seed, opts.MaxAttempts), nil
	default:
		return nil, fmt.Errorf("unknown scheduling strategy %q", name)
	}
}

// workload tracks hours placed per staff member against their effective cap.
type workload struct {
	hours map[string]int
	caps  map[string]int
}

func newWorkload(in Input) *workload {
	w := &workload{
		hours: make(map[string]int, len(in.Staff)),
		caps:  make(map[string]int, len(in.Staff)),
	}
	byRole := make(map[models.StaffRole]int)
	for _, member := range in.Staff {
		limit, ok := byRole[member.StaffRole]
		if !ok {
			limit = ResolveLimits(in.Constraints, in.DepartmentID, member.StaffRole).MaxHours
			byRole[member.StaffRole] = limit
		}
		w.caps[member.ID] = limit
	}
	return w
}

func (w *workload) underCap(staffID string) bool {
	return w.hours[staffID] < w.caps[staffID]
}

func (w *workload) add(staffID string) {
	w.hours[staffID]++
}

// leastLoaded picks the eligible member with the fewest placed hours who is
// still under cap. Ties go to the earlier member in input order.
func (w *workload) leastLoaded(staff []models.StaffMember, subjectID string) (models.StaffMember, bool) {
	var (
		best  models.StaffMember
		found bool
	)
	for _, member := range staff {
		if !member.CanTeach(subjectID) || !w.underCap(member.ID) {
			continue
		}
		if !found || w.hours[member.ID] < w.hours[best.ID] {
			best = member
			found = true
		}
	}
	return best, found
}

func newEntry(departmentID string, subject models.Subject, member models.StaffMember, room models.Classroom, cell Cell) models.TimetableEntry {
	return models.TimetableEntry{
		DepartmentID: departmentID,
		Day:          cell.DayName(),
		TimeSlot:     cell.TimeSlot(),
		SubjectID:    subject.ID,
		StaffID:      member.ID,
		ClassroomID:  room.ID,
	}
}
