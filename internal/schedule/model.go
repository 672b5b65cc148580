package schedule

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/court-timetable/internal/availability"
	"github.com/nekogravitycat/court-timetable/internal/pkg/apperror"
	"github.com/nekogravitycat/court-timetable/internal/selection"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "schedule session not found")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrSlotNotFound      = apperror.New(http.StatusNotFound, "slot not found in schedule")
	ErrSlotUnavailable   = apperror.New(http.StatusConflict, "a selected slot is no longer available")
	ErrEmptySelection    = apperror.New(http.StatusBadRequest, "no slots selected")
	ErrHoldActive        = apperror.New(http.StatusConflict, "session already has an active booking hold")
	ErrConcurrentUpdate  = apperror.New(http.StatusConflict, "schedule session was modified concurrently, retry")
	ErrInvalidVenue      = apperror.New(http.StatusBadRequest, "venue_id is required")
	ErrBookingRejected   = apperror.New(http.StatusBadGateway, "booking backend rejected the checkout")
	ErrUpstreamForbidden = apperror.New(http.StatusForbidden, "booking backend refused the request")
)

// Session is the selection state of one schedule screen.
type Session struct {
	ID              string
	UserID          string
	VenueID         string
	Date            time.Time
	SelectedSlotIDs selection.Set
	BookingID       *string
	HoldExpiresAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasActiveHold reports whether a checkout hold is still running at now.
// A hold without a booking id is a checkout still waiting on the backend.
func (s *Session) HasActiveHold(now time.Time) bool {
	return s.HoldExpiresAt != nil && s.HoldExpiresAt.After(now)
}

// View is a session rendered against the current availability table.
type View struct {
	Session       *Session
	Timetable     *availability.Timetable
	TotalPrice    int64
	HoldRemaining time.Duration
}

// CheckoutResult is what a successful checkout hands back to the client.
type CheckoutResult struct {
	BookingID     string
	Checkout      selection.Checkout
	HoldExpiresAt time.Time
}

type Filter struct {
	UserID   string
	VenueID  string
	Page     int
	PageSize int
}
