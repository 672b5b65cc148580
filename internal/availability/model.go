package availability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/court-timetable/internal/pkg/apperror"
)

var (
	// ErrInvalidInput is returned when an availability payload is missing its courts.
	ErrInvalidInput  = apperror.New(http.StatusBadRequest, "invalid availability payload")
	ErrVenueNotFound = apperror.New(http.StatusNotFound, "venue not found")
	ErrUpstream      = apperror.New(http.StatusBadGateway, "failed to load schedule")
	ErrInvalidDate   = apperror.New(http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
)

// DateLayout is the calendar-date format used in queries and slot ids.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
)

// RawAvailabilitySlot is one bookable interval for one court, as sent by the backend.
type RawAvailabilitySlot struct {
	Time    string // HH:mm
	EndTime string // HH:mm
	Price   int64
	Status  Status
}

type RawCourtAvailability struct {
	CourtID   string
	CourtName string
	Slots     []RawAvailabilitySlot
}

// RawVenueAvailability is the backend snapshot for one (venue, date) query.
// A nil Courts slice means the payload did not carry the field at all.
type RawVenueAvailability struct {
	VenueID   string
	VenueName string
	Courts    []RawCourtAvailability
}

type TimeTableSlot struct {
	SlotID  string
	Time    string
	EndTime string
	Status  Status
	Price   int64
}

// TimeTableData is one court row of the availability table.
type TimeTableData struct {
	CourtID   string
	CourtName string
	Slots     []TimeTableSlot
}

// Timetable is the transformed availability of a venue on one date.
type Timetable struct {
	VenueID   string
	VenueName string
	Date      time.Time
	Courts    []TimeTableData
}

// FindSlot returns the slot with the given id and its parent court row.
func (t *Timetable) FindSlot(slotID string) (*TimeTableSlot, *TimeTableData, bool) {
	for i := range t.Courts {
		court := &t.Courts[i]
		for j := range court.Slots {
			if court.Slots[j].SlotID == slotID {
				return &court.Slots[j], court, true
			}
		}
	}
	return nil, nil, false
}

// ParseDate parses a YYYY-MM-DD query value.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return d, nil
}
