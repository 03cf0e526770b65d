package scheduler

import (
	"math/rand"
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

// RandomRetry draws random (day, slot, classroom) triples until one is free
// for both the staff member and the room, giving up on a repetition after
// maxAttempts draws. Staff is chosen once per subject. Cells may hold several
// entries as long as staff and rooms differ.
type RandomRetry struct {
	seed        int64
	maxAttempts int
}

// NewRandomRetry returns the randomized strategy. A zero seed draws a fresh
// seed per run; any other value makes every run reproducible.
func NewRandomRetry(seed int64, maxAttempts int) *RandomRetry {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RandomRetry{seed: seed, maxAttempts: maxAttempts}
}

// Name implements Strategy.
func (*RandomRetry) Name() string { return StrategyRandomRetry }

// GlobalSlots implements Strategy.
func (*RandomRetry) GlobalSlots() bool { return false }

// Assign implements Strategy.
func (r *RandomRetry) Assign(in Input) []models.TimetableEntry {
	entries := make([]models.TimetableEntry, 0)
	if len(in.Classrooms) == 0 || len(in.Staff) == 0 {
		return entries
	}

	seed := r.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	index := NewAvailabilityIndex()
	load := newWorkload(in)

	for _, subject := range in.Subjects {
		member, ok := load.leastLoaded(in.Staff, subject.ID)
		if !ok {
			continue
		}
		for rep := 0; rep < subject.SlotsNeeded() && load.underCap(member.ID); rep++ {
			for attempt := 0; attempt < r.maxAttempts; attempt++ {
				cell := Cell{Day: rng.Intn(len(Days)), Slot: rng.Intn(len(TimeSlots))}
				room := in.Classrooms[rng.Intn(len(in.Classrooms))]
				if index.IsStaffBusy(member.ID, cell) || index.IsRoomBusy(room.ID, cell) {
					continue
				}
				index.Reserve(member.ID, room.ID, cell)
				load.add(member.ID)
				entries = append(entries, newEntry(in.DepartmentID, subject, member, room, cell))
				break
			}
		}
	}

	SortEntries(entries)
	return entries
}
