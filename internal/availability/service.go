package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/court-timetable/internal/upstream"
)

// Fetcher loads raw availability bodies from the booking backend.
type Fetcher interface {
	FetchAvailability(ctx context.Context, venueID string, date time.Time) ([]byte, error)
}

type Service interface {
	GetTimetable(ctx context.Context, venueID string, date time.Time) (*Timetable, error)
	Invalidate(ctx context.Context, venueID string, date time.Time) error
}

type service struct {
	fetcher Fetcher
	cache   Cache
	logger  *zap.Logger
}

// NewService creates the availability service. cache may be nil to always hit the backend.
func NewService(fetcher Fetcher, cache Cache, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
	}
}

func (s *service) GetTimetable(ctx context.Context, venueID string, date time.Time) (*Timetable, error) {
	// Normalize to a calendar date so callers passing a timestamp get the same ids.
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	body, cached := s.cached(ctx, venueID, day)
	if !cached {
		var err error
		body, err = s.fetcher.FetchAvailability(ctx, venueID, day)
		if err != nil {
			if errors.Is(err, upstream.ErrNotFound) {
				return nil, ErrVenueNotFound
			}
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	raw, err := DecodeVenueAvailability(body)
	if err != nil {
		s.logger.Warn("backend sent malformed availability",
			zap.String("venue_id", venueID),
			zap.String("date", day.Format(DateLayout)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	courts, err := Transform(raw, day)
	if err != nil {
		return nil, err
	}

	if !cached && s.cache != nil {
		if err := s.cache.Set(ctx, venueID, day, body); err != nil {
			s.logger.Warn("availability cache write failed", zap.String("venue_id", venueID), zap.Error(err))
		}
	}

	return &Timetable{
		VenueID:   venueID,
		VenueName: raw.VenueName,
		Date:      day,
		Courts:    courts,
	}, nil
}

func (s *service) cached(ctx context.Context, venueID string, day time.Time) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	body, ok, err := s.cache.Get(ctx, venueID, day)
	if err != nil {
		s.logger.Warn("availability cache read failed", zap.String("venue_id", venueID), zap.Error(err))
		return nil, false
	}
	return body, ok
}

func (s *service) Invalidate(ctx context.Context, venueID string, date time.Time) error {
	if s.cache == nil {
		return nil
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return s.cache.Delete(ctx, venueID, day)
}
