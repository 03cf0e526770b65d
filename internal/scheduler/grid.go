package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Days is the fixed teaching week in grid order.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// TimeSlots is the fixed daily slot list in grid order. Every stored entry
// uses exactly one of these strings.
var TimeSlots = []string{
	"09:00-10:00",
	"10:00-11:00",
	"11:15-12:15",
	"12:15-13:15",
	"14:15-15:15",
	"15:15-16:15",
	"16:30-17:30",
}

// SlotsPerWeek is the size of the weekly grid.
var SlotsPerWeek = len(Days) * len(TimeSlots)

// Cell addresses one (day, time slot) position by index.
type Cell struct {
	Day  int
	Slot int
}

// DayName returns the day label of the cell.
func (c Cell) DayName() string { return Days[c.Day] }

// TimeSlot returns the slot label of the cell.
func (c Cell) TimeSlot() string { return TimeSlots[c.Slot] }

// Cells enumerates the grid day by day, slot by slot.
func Cells() []Cell {
	cells := make([]Cell, 0, SlotsPerWeek)
	for d := range Days {
		for s := range TimeSlots {
			cells = append(cells, Cell{Day: d, Slot: s})
		}
	}
	return cells
}

var (
	dayIndex  = indexOf(Days, strings.ToLower)
	slotIndex = indexOf(TimeSlots, func(s string) string { return s })
)

func indexOf(values []string, key func(string) string) map[string]int {
	out := make(map[string]int, len(values))
	for i, v := range values {
		out[key(v)] = i
	}
	return out
}

// NormalizeDay maps any casing of a weekday to its canonical label.
func NormalizeDay(raw string) (string, bool) {
	idx, ok := dayIndex[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", false
	}
	return Days[idx], true
}

// NormalizeSlot converts legacy renderings such as "9:00-10:00" or the
// 12 hour afternoon form "2:15-3:15" to the canonical slot string.
func NormalizeSlot(raw string) (string, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if _, ok := slotIndex[raw]; ok {
		return raw, true
	}
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return "", false
	}
	start, ok := normalizeClock(parts[0])
	if !ok {
		return "", false
	}
	end, ok := normalizeClock(parts[1])
	if !ok {
		return "", false
	}
	candidate := start + "-" + end
	if _, ok := slotIndex[candidate]; !ok {
		return "", false
	}
	return candidate, true
}

// normalizeClock reads H:MM or HH:MM. Hours before 8 are afternoon hours
// written in 12 hour form.
func normalizeClock(raw string) (string, bool) {
	hm := strings.SplitN(raw, ":", 2)
	if len(hm) != 2 {
		return "", false
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", false
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil || minute < 0 || minute > 59 || len(hm[1]) != 2 {
		return "", false
	}
	if hour < 8 {
		hour += 12
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// CellOf resolves the grid position of a day and slot label.
func CellOf(day, slot string) (Cell, bool) {
	d, ok := dayIndex[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		return Cell{}, false
	}
	normalized, ok := NormalizeSlot(slot)
	if !ok {
		return Cell{}, false
	}
	return Cell{Day: d, Slot: slotIndex[normalized]}, true
}

// SortEntries orders entries by day then slot. Unknown labels sort last.
func SortEntries(entries []models.TimetableEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return gridRank(entries[i].Day, entries[i].TimeSlot) < gridRank(entries[j].Day, entries[j].TimeSlot)
	})
}

// Before reports whether (dayA, slotA) comes earlier in the week than
// (dayB, slotB).
func Before(dayA, slotA, dayB, slotB string) bool {
	return gridRank(dayA, slotA) < gridRank(dayB, slotB)
}

func gridRank(day, slot string) int {
	cell, ok := CellOf(day, slot)
	if !ok {
		return SlotsPerWeek
	}
	return cell.Day*len(TimeSlots) + cell.Slot
}
