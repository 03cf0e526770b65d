package scheduler

type occupancyKey struct {
	id   string
	cell Cell
}

// AvailabilityIndex records which staff members, classrooms and grid cells are
// taken during a single generation run. It is not safe for concurrent use and
// is never shared between runs.
type AvailabilityIndex struct {
	staff map[occupancyKey]struct{}
	rooms map[occupancyKey]struct{}
	cells map[Cell]struct{}
}

// NewAvailabilityIndex returns an empty index.
func NewAvailabilityIndex() *AvailabilityIndex {
	return &AvailabilityIndex{
		staff: make(map[occupancyKey]struct{}),
		rooms: make(map[occupancyKey]struct{}),
		cells: make(map[Cell]struct{}),
	}
}

// IsStaffBusy reports whether staffID already teaches at cell.
func (a *AvailabilityIndex) IsStaffBusy(staffID string, cell Cell) bool {
	_, busy := a.staff[occupancyKey{id: staffID, cell: cell}]
	return busy
}

// IsRoomBusy reports whether roomID is already booked at cell.
func (a *AvailabilityIndex) IsRoomBusy(roomID string, cell Cell) bool {
	_, busy := a.rooms[occupancyKey{id: roomID, cell: cell}]
	return busy
}

// IsSlotUsed reports whether anything at all is booked at cell.
func (a *AvailabilityIndex) IsSlotUsed(cell Cell) bool {
	_, used := a.cells[cell]
	return used
}

// Reserve marks the staff member, the classroom and the cell as taken.
func (a *AvailabilityIndex) Reserve(staffID, roomID string, cell Cell) {
	a.staff[occupancyKey{id: staffID, cell: cell}] = struct{}{}
	a.rooms[occupancyKey{id: roomID, cell: cell}] = struct{}{}
	a.cells[cell] = struct{}{}
}

// Reserved returns the number of reserved cells.
func (a *AvailabilityIndex) Reserved() int {
	return len(a.cells)
}
