package http

import (
	"time"

	"github.com/nekogravitycat/court-timetable/internal/availability"
	availHttp "github.com/nekogravitycat/court-timetable/internal/availability/http"
	"github.com/nekogravitycat/court-timetable/internal/pkg/request"
	"github.com/nekogravitycat/court-timetable/internal/schedule"
)

// ListSessionsRequest defines query parameters for listing the caller's sessions.
type ListSessionsRequest struct {
	request.ListParams
	VenueID string `form:"venue_id"`
}

type OpenSessionRequest struct {
	VenueID string `json:"venue_id" binding:"required"`
	Date    string `json:"date" binding:"required"`
}

// Validate parses the date and returns it.
func (r *OpenSessionRequest) Validate() (time.Time, error) {
	return availability.ParseDate(r.Date)
}

type ToggleSlotRequest struct {
	SlotID string `json:"slot_id" binding:"required"`
}

// ChangeContextRequest switches the venue and/or date of a session.
// Omitted fields keep their current value.
type ChangeContextRequest struct {
	VenueID string `json:"venue_id"`
	Date    string `json:"date"`
}

func (r *ChangeContextRequest) Validate() (time.Time, error) {
	if r.Date == "" {
		return time.Time{}, nil
	}
	return availability.ParseDate(r.Date)
}

type SessionResponse struct {
	ID              string     `json:"id"`
	VenueID         string     `json:"venue_id"`
	Date            string     `json:"date"`
	SelectedSlotIDs []string   `json:"selected_slot_ids"`
	BookingID       *string    `json:"booking_id"`
	HoldExpiresAt   *time.Time `json:"hold_expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewSessionResponse(s *schedule.Session) SessionResponse {
	ids := make([]string, len(s.SelectedSlotIDs))
	copy(ids, s.SelectedSlotIDs)

	return SessionResponse{
		ID:              s.ID,
		VenueID:         s.VenueID,
		Date:            s.Date.Format(availability.DateLayout),
		SelectedSlotIDs: ids,
		BookingID:       s.BookingID,
		HoldExpiresAt:   s.HoldExpiresAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

type ViewResponse struct {
	Session              SessionResponse             `json:"session"`
	Timetable            availHttp.TimetableResponse `json:"timetable"`
	TotalPrice           int64                       `json:"total_price"`
	HoldRemainingSeconds int64                       `json:"hold_remaining_seconds"`
}

func NewViewResponse(v *schedule.View) ViewResponse {
	return ViewResponse{
		Session:              NewSessionResponse(v.Session),
		Timetable:            availHttp.NewTimetableResponse(v.Timetable),
		TotalPrice:           v.TotalPrice,
		HoldRemainingSeconds: int64(v.HoldRemaining / time.Second),
	}
}

// CheckoutSlotResponse is a selected slot enriched with its court.
type CheckoutSlotResponse struct {
	availHttp.SlotResponse
	CourtID   string `json:"court_id"`
	CourtName string `json:"court_name"`
}

type CheckoutResponse struct {
	BookingID     string                 `json:"booking_id"`
	Slots         []CheckoutSlotResponse `json:"slots"`
	TotalPrice    int64                  `json:"total_price"`
	HoldExpiresAt time.Time              `json:"hold_expires_at"`
}

func NewCheckoutResponse(r *schedule.CheckoutResult) CheckoutResponse {
	slots := make([]CheckoutSlotResponse, len(r.Checkout.Slots))
	for i, cs := range r.Checkout.Slots {
		slots[i] = CheckoutSlotResponse{
			SlotResponse: availHttp.NewSlotResponse(cs.TimeTableSlot),
			CourtID:      cs.CourtID,
			CourtName:    cs.CourtName,
		}
	}
	return CheckoutResponse{
		BookingID:     r.BookingID,
		Slots:         slots,
		TotalPrice:    r.Checkout.TotalPrice,
		HoldExpiresAt: r.HoldExpiresAt,
	}
}
