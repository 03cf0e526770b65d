package scheduler

import "github.com/noah-isme/timetable-api/internal/models"

// LeastLoaded is the deterministic strategy. Subjects are taken in input
// order; each repetition goes to the eligible member with the fewest hours and
// lands in the first free grid cell. A cell holds at most one entry per run,
// so a department timetable never exceeds SlotsPerWeek entries.
type LeastLoaded struct{}

// NewLeastLoaded returns the deterministic strategy.
func NewLeastLoaded() *LeastLoaded { return &LeastLoaded{} }

// Name implements Strategy.
func (*LeastLoaded) Name() string { return StrategyLeastLoaded }

// GlobalSlots implements Strategy.
func (*LeastLoaded) GlobalSlots() bool { return true }

// Assign implements Strategy.
func (*LeastLoaded) Assign(in Input) []models.TimetableEntry {
	entries := make([]models.TimetableEntry, 0)
	if len(in.Classrooms) == 0 || len(in.Staff) == 0 {
		return entries
	}

	index := NewAvailabilityIndex()
	load := newWorkload(in)
	cells := Cells()

	for _, subject := range in.Subjects {
		for rep := 0; rep < subject.SlotsNeeded(); rep++ {
			member, ok := load.leastLoaded(in.Staff, subject.ID)
			if !ok {
				break
			}
			cell, room, ok := firstFreeCell(index, cells, member.ID, in.Classrooms)
			if !ok {
				continue
			}
			index.Reserve(member.ID, room.ID, cell)
			load.add(member.ID)
			entries = append(entries, newEntry(in.DepartmentID, subject, member, room, cell))
		}
	}
	return entries
}

func firstFreeCell(index *AvailabilityIndex, cells []Cell, staffID string, rooms []models.Classroom) (Cell, models.Classroom, bool) {
	for _, cell := range cells {
		if index.IsSlotUsed(cell) || index.IsStaffBusy(staffID, cell) {
			continue
		}
		for _, room := range rooms {
			if !index.IsRoomBusy(room.ID, cell) {
				return cell, room, true
			}
		}
	}
	return Cell{}, models.Classroom{}, false
}
