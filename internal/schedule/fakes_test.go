package schedule_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/court-timetable/internal/availability"
	"github.com/nekogravitycat/court-timetable/internal/schedule"
	"github.com/nekogravitycat/court-timetable/internal/selection"
	"github.com/nekogravitycat/court-timetable/internal/upstream"
)

// memoryRepo is an in-memory schedule.Repository that hands out copies like a database would.
type memoryRepo struct {
	mu       sync.Mutex
	sessions map[string]*schedule.Session
	clock    time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		sessions: map[string]*schedule.Session{},
		clock:    time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Millisecond)
	return r.clock
}

func clone(s *schedule.Session) *schedule.Session {
	c := *s
	c.SelectedSlotIDs = append(selection.Set{}, s.SelectedSlotIDs...)
	return &c
}

func (r *memoryRepo) Create(ctx context.Context, s *schedule.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = uuid.NewString()
	s.CreatedAt = r.tick()
	s.UpdatedAt = s.CreatedAt
	r.sessions[s.ID] = clone(s)
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*schedule.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return clone(s), nil
}

func (r *memoryRepo) List(ctx context.Context, filter schedule.Filter) ([]*schedule.Session, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*schedule.Session
	for _, s := range r.sessions {
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		out = append(out, clone(s))
	}
	return out, len(out), nil
}

func (r *memoryRepo) UpdateSelection(ctx context.Context, id string, ids selection.Set, lastUpdated time.Time) (*schedule.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || !s.UpdatedAt.Equal(lastUpdated) {
		return nil, schedule.ErrConcurrentUpdate
	}
	s.SelectedSlotIDs = append(selection.Set{}, ids...)
	s.UpdatedAt = r.tick()
	return clone(s), nil
}

func (r *memoryRepo) ResetContext(ctx context.Context, id string, venueID string, date time.Time) (*schedule.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	s.VenueID = venueID
	s.Date = date
	s.SelectedSlotIDs = selection.Set{}
	s.BookingID = nil
	s.HoldExpiresAt = nil
	s.UpdatedAt = r.tick()
	return clone(s), nil
}

func (r *memoryRepo) ClaimCheckout(ctx context.Context, id string, lastUpdated, now, until time.Time) (*schedule.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || !s.UpdatedAt.Equal(lastUpdated) || s.HasActiveHold(now) {
		return nil, schedule.ErrConcurrentUpdate
	}
	s.BookingID = nil
	s.HoldExpiresAt = &until
	s.UpdatedAt = r.tick()
	return clone(s), nil
}

// pending reports whether s still carries the unbooked claim ending at until.
func pending(s *schedule.Session, until time.Time) bool {
	return s.BookingID == nil && s.HoldExpiresAt != nil && s.HoldExpiresAt.Equal(until)
}

func (r *memoryRepo) ReleaseCheckout(ctx context.Context, id string, claimedUntil time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok && pending(s, claimedUntil) {
		s.HoldExpiresAt = nil
		s.UpdatedAt = r.tick()
	}
	return nil
}

func (r *memoryRepo) SetHold(ctx context.Context, id string, claimedUntil time.Time, bookingID string, expiresAt time.Time) (*schedule.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || !pending(s, claimedUntil) {
		return nil, schedule.ErrConcurrentUpdate
	}
	s.BookingID = &bookingID
	s.HoldExpiresAt = &expiresAt
	s.UpdatedAt = r.tick()
	return clone(s), nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

// stubAvailability serves fixed raw snapshots per venue, transformed for the requested date.
type stubAvailability struct {
	venues      map[string]*availability.RawVenueAvailability
	requests    []string
	invalidated int
}

func (s *stubAvailability) GetTimetable(ctx context.Context, venueID string, date time.Time) (*availability.Timetable, error) {
	s.requests = append(s.requests, venueID+"|"+date.Format(availability.DateLayout))
	raw, ok := s.venues[venueID]
	if !ok {
		return nil, availability.ErrVenueNotFound
	}
	courts, err := availability.Transform(raw, date)
	if err != nil {
		return nil, err
	}
	return &availability.Timetable{VenueID: venueID, VenueName: raw.VenueName, Date: date, Courts: courts}, nil
}

func (s *stubAvailability) Invalidate(ctx context.Context, venueID string, date time.Time) error {
	s.invalidated++
	return nil
}

type stubBooker struct {
	result   *upstream.BookingResult
	err      error
	token    string
	payloads []upstream.BookingRequest

	// inFlight runs while the booking request is outstanding.
	inFlight func()
}

func (b *stubBooker) CreateBooking(ctx context.Context, token string, payload upstream.BookingRequest) (*upstream.BookingResult, error) {
	b.token = token
	b.payloads = append(b.payloads, payload)
	if hook := b.inFlight; hook != nil {
		b.inFlight = nil
		hook()
	}
	return b.result, b.err
}
