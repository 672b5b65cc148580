package schedule

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/court-timetable/internal/availability"
	"github.com/nekogravitycat/court-timetable/internal/selection"
	"github.com/nekogravitycat/court-timetable/internal/upstream"
)

// Booker creates bookings on the backend from a checkout hand-off.
type Booker interface {
	CreateBooking(ctx context.Context, token string, payload upstream.BookingRequest) (*upstream.BookingResult, error)
}

type Service interface {
	Open(ctx context.Context, userID, venueID string, date time.Time, now time.Time) (*View, error)
	Get(ctx context.Context, id, userID string) (*Session, error)
	List(ctx context.Context, filter Filter) ([]*Session, int, error)
	View(ctx context.Context, id, userID string, now time.Time) (*View, error)
	Toggle(ctx context.Context, id, userID, slotID string, now time.Time) (*View, error)
	ChangeContext(ctx context.Context, id, userID, venueID string, date time.Time, now time.Time) (*View, error)
	Clear(ctx context.Context, id, userID string, now time.Time) (*View, error)
	Checkout(ctx context.Context, id, userID, token string, now time.Time) (*CheckoutResult, error)
	Delete(ctx context.Context, id, userID string) error
}

type service struct {
	repo    Repository
	avail   availability.Service
	booker  Booker
	holdTTL time.Duration
	logger  *zap.Logger
}

func NewService(repo Repository, avail availability.Service, booker Booker, holdTTL time.Duration, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:    repo,
		avail:   avail,
		booker:  booker,
		holdTTL: holdTTL,
		logger:  logger,
	}
}

// owned loads a session and checks it belongs to userID.
func (s *service) owned(ctx context.Context, id, userID string) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrPermissionDenied
	}
	return sess, nil
}

func (s *service) render(ctx context.Context, sess *Session, now time.Time) (*View, error) {
	table, err := s.avail.GetTimetable(ctx, sess.VenueID, sess.Date)
	if err != nil {
		return nil, err
	}
	return newView(sess, table, now), nil
}

func newView(sess *Session, table *availability.Timetable, now time.Time) *View {
	view := &View{
		Session:    sess,
		Timetable:  table,
		TotalPrice: selection.ComputeTotal(sess.SelectedSlotIDs, table.Courts),
	}
	if sess.HoldExpiresAt != nil {
		view.HoldRemaining = Remaining(now, *sess.HoldExpiresAt)
	}
	return view
}

func (s *service) Open(ctx context.Context, userID, venueID string, date time.Time, now time.Time) (*View, error) {
	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		return nil, ErrInvalidVenue
	}

	// Fetch first so a session is never created for a venue that cannot be loaded.
	table, err := s.avail.GetTimetable(ctx, venueID, date)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		UserID:          userID,
		VenueID:         venueID,
		Date:            table.Date,
		SelectedSlotIDs: selection.Set{},
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}

	return newView(sess, table, now), nil
}

func (s *service) Get(ctx context.Context, id, userID string) (*Session, error) {
	return s.owned(ctx, id, userID)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Session, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) View(ctx context.Context, id, userID string, now time.Time) (*View, error) {
	sess, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, sess, now)
}

func (s *service) Toggle(ctx context.Context, id, userID, slotID string, now time.Time) (*View, error) {
	sess, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	// The held booking was priced from this selection.
	if sess.HasActiveHold(now) {
		return nil, ErrHoldActive
	}

	table, err := s.avail.GetTimetable(ctx, sess.VenueID, sess.Date)
	if err != nil {
		return nil, err
	}

	// Deselecting an id that vanished from a refreshed table is still allowed.
	status := availability.StatusAvailable
	if slot, _, ok := table.FindSlot(slotID); ok {
		status = slot.Status
	} else if !sess.SelectedSlotIDs.Contains(slotID) {
		return nil, ErrSlotNotFound
	}

	next := selection.Toggle(sess.SelectedSlotIDs, slotID, status)
	if len(next) != len(sess.SelectedSlotIDs) {
		sess, err = s.repo.UpdateSelection(ctx, sess.ID, next, sess.UpdatedAt)
		if err != nil {
			return nil, err
		}
	}

	return newView(sess, table, now), nil
}

func (s *service) ChangeContext(ctx context.Context, id, userID, venueID string, date time.Time, now time.Time) (*View, error) {
	sess, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		venueID = sess.VenueID
	}
	if date.IsZero() {
		date = sess.Date
	}

	// The selection is cleared before the new table is requested.
	sess, err = s.repo.ResetContext(ctx, sess.ID, venueID, date)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, sess, now)
}

func (s *service) Clear(ctx context.Context, id, userID string, now time.Time) (*View, error) {
	sess, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sess.HasActiveHold(now) {
		return nil, ErrHoldActive
	}

	if len(sess.SelectedSlotIDs) > 0 {
		sess, err = s.repo.UpdateSelection(ctx, sess.ID, selection.Set{}, sess.UpdatedAt)
		if err != nil {
			return nil, err
		}
	}
	return s.render(ctx, sess, now)
}

func (s *service) Checkout(ctx context.Context, id, userID, token string, now time.Time) (*CheckoutResult, error) {
	sess, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sess.HasActiveHold(now) {
		return nil, ErrHoldActive
	}
	if len(sess.SelectedSlotIDs) == 0 {
		return nil, ErrEmptySelection
	}

	// Re-read the backend so a slot booked by someone else since the last render is caught.
	if err := s.avail.Invalidate(ctx, sess.VenueID, sess.Date); err != nil {
		s.logger.Warn("availability invalidate failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
	table, err := s.avail.GetTimetable(ctx, sess.VenueID, sess.Date)
	if err != nil {
		return nil, err
	}

	for _, slotID := range sess.SelectedSlotIDs {
		if slot, _, ok := table.FindSlot(slotID); ok && slot.Status == availability.StatusBooked {
			return nil, ErrSlotUnavailable
		}
	}

	checkout := selection.BuildCheckout(sess.SelectedSlotIDs, table.Courts)
	if len(checkout.Slots) == 0 {
		return nil, ErrEmptySelection
	}

	// Claim the session before calling the backend so concurrent checkouts
	// cannot both create a booking.
	claimed, err := s.repo.ClaimCheckout(ctx, sess.ID, sess.UpdatedAt, now, now.Add(s.holdTTL))
	if err != nil {
		return nil, err
	}
	claimedUntil := *claimed.HoldExpiresAt

	result, err := s.booker.CreateBooking(ctx, token, newBookingRequest(sess, checkout))
	if err != nil {
		if relErr := s.repo.ReleaseCheckout(ctx, sess.ID, claimedUntil); relErr != nil {
			s.logger.Warn("release checkout claim failed", zap.String("session_id", sess.ID), zap.Error(relErr))
		}
		return nil, bookingError(err)
	}

	expiresAt := claimedUntil
	if result.ExpiresAt != nil {
		expiresAt = *result.ExpiresAt
	}

	if _, err := s.repo.SetHold(ctx, sess.ID, claimedUntil, result.ID, expiresAt); err != nil {
		s.logger.Error("booking created but not recorded on session",
			zap.String("session_id", sess.ID),
			zap.String("booking_id", result.ID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.avail.Invalidate(ctx, sess.VenueID, sess.Date); err != nil {
		s.logger.Warn("availability invalidate failed", zap.String("session_id", sess.ID), zap.Error(err))
	}

	s.logger.Info("checkout handed off",
		zap.String("session_id", sess.ID),
		zap.String("booking_id", result.ID),
		zap.Int("slots", len(checkout.Slots)),
		zap.Int64("total_price", checkout.TotalPrice),
	)

	return &CheckoutResult{
		BookingID:     result.ID,
		Checkout:      checkout,
		HoldExpiresAt: expiresAt,
	}, nil
}

func (s *service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func newBookingRequest(sess *Session, checkout selection.Checkout) upstream.BookingRequest {
	slots := make([]upstream.BookingSlot, len(checkout.Slots))
	for i, cs := range checkout.Slots {
		slots[i] = upstream.BookingSlot{
			SlotID:    cs.SlotID,
			CourtID:   cs.CourtID,
			CourtName: cs.CourtName,
			Time:      cs.Time,
			EndTime:   cs.EndTime,
			Status:    string(cs.Status),
			Price:     cs.Price,
		}
	}
	return upstream.BookingRequest{
		VenueID:    sess.VenueID,
		Date:       sess.Date.Format(availability.DateLayout),
		Slots:      slots,
		TotalPrice: checkout.TotalPrice,
	}
}

func bookingError(err error) error {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusConflict:
			return ErrSlotUnavailable
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrUpstreamForbidden
		}
		return fmt.Errorf("%w: %v", ErrBookingRejected, err)
	}
	return fmt.Errorf("%w: %v", ErrBookingRejected, err)
}
