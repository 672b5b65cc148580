package availability

import "time"

// SlotID builds the stable identifier of a slot from its court, date and start time.
// Only the calendar date of date is used.
func SlotID(courtID string, date time.Time, start string) string {
	return courtID + "_" + date.Format(DateLayout) + "_" + start
}

// Transform maps a backend availability snapshot into one table row per court.
// Courts and slots keep the order the backend sent them in.
func Transform(raw *RawVenueAvailability, date time.Time) ([]TimeTableData, error) {
	if raw == nil || raw.Courts == nil {
		return nil, ErrInvalidInput
	}

	table := make([]TimeTableData, 0, len(raw.Courts))
	for _, court := range raw.Courts {
		slots := make([]TimeTableSlot, 0, len(court.Slots))
		for _, s := range court.Slots {
			slots = append(slots, TimeTableSlot{
				SlotID:  SlotID(court.CourtID, date, s.Time),
				Time:    s.Time,
				EndTime: s.EndTime,
				Status:  s.Status,
				Price:   s.Price,
			})
		}
		table = append(table, TimeTableData{
			CourtID:   court.CourtID,
			CourtName: court.CourtName,
			Slots:     slots,
		})
	}
	return table, nil
}
