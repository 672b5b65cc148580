package selection

import "github.com/nekogravitycat/court-timetable/internal/availability"

// CheckoutSlot is a selected slot together with the court it belongs to.
type CheckoutSlot struct {
	availability.TimeTableSlot
	CourtID   string
	CourtName string
}

// Checkout is the payload handed to booking creation.
type Checkout struct {
	Slots      []CheckoutSlot
	TotalPrice int64
}

// BuildCheckout collects the selected slots in selection order.
// Ids no longer present in the table are skipped, matching ComputeTotal.
func BuildCheckout(s Set, table []availability.TimeTableData) Checkout {
	type located struct {
		slot  availability.TimeTableSlot
		court *availability.TimeTableData
	}

	index := make(map[string]located)
	for i := range table {
		court := &table[i]
		for _, slot := range court.Slots {
			index[slot.SlotID] = located{slot: slot, court: court}
		}
	}

	out := Checkout{Slots: make([]CheckoutSlot, 0, len(s))}
	for _, id := range s {
		l, ok := index[id]
		if !ok {
			continue
		}
		out.Slots = append(out.Slots, CheckoutSlot{
			TimeTableSlot: l.slot,
			CourtID:       l.court.CourtID,
			CourtName:     l.court.CourtName,
		})
	}
	out.TotalPrice = ComputeTotal(s, table)
	return out
}
