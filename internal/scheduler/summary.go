package scheduler

import (
	"fmt"

	"github.com/noah-isme/timetable-api/internal/models"
)

// SubjectCoverage compares a subject's weekly demand with what was placed.
type SubjectCoverage struct {
	SubjectID   string `json:"subject_id"`
	SubjectCode string `json:"subject_code"`
	Required    int    `json:"required"`
	Scheduled   int    `json:"scheduled"`
}

// Summary describes the outcome of one Assign call.
type Summary struct {
	Strategy       string            `json:"strategy"`
	TotalEntries   int               `json:"total_entries"`
	TotalRequired  int               `json:"total_required"`
	Subjects       []SubjectCoverage `json:"subjects"`
	UnderScheduled []string          `json:"under_scheduled"`
	StaffHours     map[string]int    `json:"staff_hours"`
}

// Summarize reports demand against placement per subject, in input order.
func Summarize(strategy string, in Input, entries []models.TimetableEntry) Summary {
	scheduled := make(map[string]int, len(in.Subjects))
	hours := make(map[string]int)
	for _, e := range entries {
		scheduled[e.SubjectID]++
		hours[e.StaffID]++
	}

	summary := Summary{
		Strategy:       strategy,
		TotalEntries:   len(entries),
		Subjects:       make([]SubjectCoverage, 0, len(in.Subjects)),
		UnderScheduled: make([]string, 0),
		StaffHours:     hours,
	}
	for _, subject := range in.Subjects {
		cov := SubjectCoverage{
			SubjectID:   subject.ID,
			SubjectCode: subject.Code,
			Required:    subject.SlotsNeeded(),
			Scheduled:   scheduled[subject.ID],
		}
		summary.TotalRequired += cov.Required
		summary.Subjects = append(summary.Subjects, cov)
		if cov.Scheduled < cov.Required {
			summary.UnderScheduled = append(summary.UnderScheduled, subject.ID)
		}
	}
	return summary
}

// Verify checks entries against the placement invariants. globalSlots adds
// the one-entry-per-cell rule used by LeastLoaded.
func Verify(in Input, entries []models.TimetableEntry, globalSlots bool) error {
	staffByID := make(map[string]models.StaffMember, len(in.Staff))
	for _, m := range in.Staff {
		staffByID[m.ID] = m
	}
	load := newWorkload(in)

	staffSeen := make(map[occupancyKey]struct{}, len(entries))
	roomSeen := make(map[occupancyKey]struct{}, len(entries))
	cellSeen := make(map[Cell]struct{}, len(entries))
	for i, e := range entries {
		cell, ok := CellOf(e.Day, e.TimeSlot)
		if !ok {
			return fmt.Errorf("entry %d: %s %s is not on the grid", i, e.Day, e.TimeSlot)
		}
		member, ok := staffByID[e.StaffID]
		if !ok {
			return fmt.Errorf("entry %d: unknown staff %s", i, e.StaffID)
		}
		if !member.CanTeach(e.SubjectID) {
			return fmt.Errorf("entry %d: staff %s not eligible for subject %s", i, e.StaffID, e.SubjectID)
		}

		sk := occupancyKey{id: e.StaffID, cell: cell}
		if _, dup := staffSeen[sk]; dup {
			return fmt.Errorf("entry %d: staff %s double booked on %s %s", i, e.StaffID, e.Day, e.TimeSlot)
		}
		staffSeen[sk] = struct{}{}

		rk := occupancyKey{id: e.ClassroomID, cell: cell}
		if _, dup := roomSeen[rk]; dup {
			return fmt.Errorf("entry %d: classroom %s double booked on %s %s", i, e.ClassroomID, e.Day, e.TimeSlot)
		}
		roomSeen[rk] = struct{}{}

		if globalSlots {
			if _, dup := cellSeen[cell]; dup {
				return fmt.Errorf("entry %d: slot %s %s used twice", i, e.Day, e.TimeSlot)
			}
			cellSeen[cell] = struct{}{}
		}

		load.add(e.StaffID)
		if load.hours[e.StaffID] > load.caps[e.StaffID] {
			return fmt.Errorf("staff %s exceeds max hours %d", e.StaffID, load.caps[e.StaffID])
		}
	}
	return nil
}
