// Package selection holds the slot picking model of a schedule screen.
package selection

import (
	"slices"

	"github.com/nekogravitycat/court-timetable/internal/availability"
)

// Set is the list of selected slot ids in the order the user picked them.
// It never holds the same id twice.
type Set []string

func (s Set) Contains(slotID string) bool {
	return slices.Contains(s, slotID)
}

// Toggle selects an absent slot or deselects a present one and returns the new set.
// Booked slots are never selectable, so toggling one returns s unchanged.
// The input set is not modified.
func Toggle(s Set, slotID string, status availability.Status) Set {
	if status == availability.StatusBooked {
		return s
	}

	if i := slices.Index(s, slotID); i >= 0 {
		next := make(Set, 0, len(s)-1)
		next = append(next, s[:i]...)
		return append(next, s[i+1:]...)
	}

	next := make(Set, 0, len(s)+1)
	next = append(next, s...)
	return append(next, slotID)
}

// ComputeTotal sums the price of every table slot whose id is selected.
// Selected ids missing from the table contribute nothing.
func ComputeTotal(s Set, table []availability.TimeTableData) int64 {
	if len(s) == 0 {
		return 0
	}

	selected := make(map[string]struct{}, len(s))
	for _, id := range s {
		selected[id] = struct{}{}
	}

	var total int64
	for _, court := range table {
		for _, slot := range court.Slots {
			if _, ok := selected[slot.SlotID]; ok {
				total += slot.Price
			}
		}
	}
	return total
}
