package availability

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// wireVenue mirrors the availability payload as the backend actually sends it.
// Field names drifted between backend versions, so every field has fallbacks.
type wireVenue struct {
	VenueID        string       `json:"venueId"`
	VenueIDSnake   string       `json:"venue_id"`
	ID             string       `json:"id"`
	VenueName      string       `json:"venueName"`
	VenueNameSnake string       `json:"venue_name"`
	Name           string       `json:"name"`
	Courts         *[]wireCourt `json:"courts"`
}

type wireCourt struct {
	CourtID        string     `json:"courtId"`
	CourtIDSnake   string     `json:"court_id"`
	ID             string     `json:"id"`
	CourtName      string     `json:"courtName"`
	CourtNameSnake string     `json:"court_name"`
	Name           string     `json:"name"`
	Slots          []wireSlot `json:"slots"`
}

type wireSlot struct {
	Time           string          `json:"time"`
	StartTime      string          `json:"startTime"`
	StartTimeSnake string          `json:"start_time"`
	EndTime        string          `json:"endTime"`
	EndTimeSnake   string          `json:"end_time"`
	Price          json.RawMessage `json:"price"`
	Status         string          `json:"status"`
	IsBooked       *bool           `json:"isBooked"`
	IsBookedSnake  *bool           `json:"is_booked"`
}

// DecodeVenueAvailability decodes a backend availability body into the strict
// RawVenueAvailability shape. A payload without courts is rejected.
func DecodeVenueAvailability(body []byte) (*RawVenueAvailability, error) {
	var w wireVenue
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if w.Courts == nil {
		return nil, fmt.Errorf("%w: missing courts", ErrInvalidInput)
	}

	raw := &RawVenueAvailability{
		VenueID:   firstNonEmpty(w.VenueID, w.VenueIDSnake, w.ID),
		VenueName: firstNonEmpty(w.VenueName, w.VenueNameSnake, w.Name),
		Courts:    make([]RawCourtAvailability, 0, len(*w.Courts)),
	}

	for i, c := range *w.Courts {
		court := RawCourtAvailability{
			CourtID:   firstNonEmpty(c.CourtID, c.CourtIDSnake, c.ID),
			CourtName: firstNonEmpty(c.CourtName, c.CourtNameSnake, c.Name),
			Slots:     make([]RawAvailabilitySlot, 0, len(c.Slots)),
		}
		for j, s := range c.Slots {
			price, err := parsePrice(s.Price)
			if err != nil {
				return nil, fmt.Errorf("%w: court %d slot %d: %v", ErrInvalidInput, i, j, err)
			}
			court.Slots = append(court.Slots, RawAvailabilitySlot{
				Time:    firstNonEmpty(s.Time, s.StartTime, s.StartTimeSnake),
				EndTime: firstNonEmpty(s.EndTime, s.EndTimeSnake),
				Price:   price,
				Status:  slotStatus(s),
			})
		}
		raw.Courts = append(raw.Courts, court)
	}

	return raw, nil
}

// parsePrice accepts a JSON number or a numeric string. Missing prices are 0.
func parsePrice(msg json.RawMessage) (int64, error) {
	text := strings.TrimSpace(string(msg))
	if text == "" || text == "null" {
		return 0, nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return 0, nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", text)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid price %q", text)
	}
	f = math.Round(f)
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("price %q out of range", text)
	}
	return int64(f), nil
}

func slotStatus(s wireSlot) Status {
	switch strings.ToLower(strings.TrimSpace(s.Status)) {
	case string(StatusBooked):
		return StatusBooked
	case string(StatusAvailable):
		return StatusAvailable
	}
	if (s.IsBooked != nil && *s.IsBooked) || (s.IsBookedSnake != nil && *s.IsBookedSnake) {
		return StatusBooked
	}
	if s.Status != "" {
		return Status(s.Status)
	}
	return StatusAvailable
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
