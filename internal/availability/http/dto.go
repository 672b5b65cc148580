package http

import (
	"github.com/nekogravitycat/court-timetable/internal/availability"
)

// GetTimetableRequest binds GET /venues/:id/timetable.
type GetTimetableRequest struct {
	VenueID string `uri:"id" binding:"required"`
}

type TimetableQuery struct {
	Date string `form:"date" binding:"required"`
}

type SlotResponse struct {
	SlotID  string `json:"slot_id"`
	Time    string `json:"time"`
	EndTime string `json:"end_time"`
	Status  string `json:"status"`
	Price   int64  `json:"price"`
}

type CourtResponse struct {
	CourtID   string         `json:"court_id"`
	CourtName string         `json:"court_name"`
	Slots     []SlotResponse `json:"slots"`
}

type TimetableResponse struct {
	VenueID   string          `json:"venue_id"`
	VenueName string          `json:"venue_name"`
	Date      string          `json:"date"`
	Courts    []CourtResponse `json:"courts"`
}

func NewSlotResponse(s availability.TimeTableSlot) SlotResponse {
	return SlotResponse{
		SlotID:  s.SlotID,
		Time:    s.Time,
		EndTime: s.EndTime,
		Status:  string(s.Status),
		Price:   s.Price,
	}
}

// NewCourtResponses keeps court and slot order and never returns nil slices,
// so empty venues serialize as [] instead of null.
func NewCourtResponses(courts []availability.TimeTableData) []CourtResponse {
	out := make([]CourtResponse, len(courts))
	for i, c := range courts {
		slots := make([]SlotResponse, len(c.Slots))
		for j, s := range c.Slots {
			slots[j] = NewSlotResponse(s)
		}
		out[i] = CourtResponse{
			CourtID:   c.CourtID,
			CourtName: c.CourtName,
			Slots:     slots,
		}
	}
	return out
}

func NewTimetableResponse(t *availability.Timetable) TimetableResponse {
	return TimetableResponse{
		VenueID:   t.VenueID,
		VenueName: t.VenueName,
		Date:      t.Date.Format(availability.DateLayout),
		Courts:    NewCourtResponses(t.Courts),
	}
}
