package availability_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-timetable/internal/availability"
	"github.com/nekogravitycat/court-timetable/internal/upstream"
)

const exampleBody = `{"venueId":"v1","venueName":"X","courts":[{"courtId":"c1","courtName":"Court 1","slots":[
	{"time":"08:00","endTime":"09:00","price":100000,"status":"available"},
	{"time":"09:00","endTime":"10:00","price":100000,"status":"booked"}]}]}`

type fakeFetcher struct {
	body  []byte
	err   error
	calls int
}

func (f *fakeFetcher) FetchAvailability(ctx context.Context, venueID string, date time.Time) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

type fakeCache struct {
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func key(venueID string, date time.Time) string {
	return venueID + "|" + date.Format(availability.DateLayout)
}

func (c *fakeCache) Get(ctx context.Context, venueID string, date time.Time) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	b, ok := c.entries[key(venueID, date)]
	return b, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, venueID string, date time.Time, body []byte) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key(venueID, date)] = body
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, venueID string, date time.Time) error {
	delete(c.entries, key(venueID, date))
	return nil
}

func TestServiceGetTimetable(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC)

	t.Run("Miss fetches, transforms and caches", func(t *testing.T) {
		fetcher := &fakeFetcher{body: []byte(exampleBody)}
		cache := newFakeCache()
		svc := availability.NewService(fetcher, cache, nil)

		table, err := svc.GetTimetable(ctx, "v1", date)
		require.NoError(t, err)
		assert.Equal(t, "v1", table.VenueID)
		assert.Equal(t, "X", table.VenueName)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), table.Date)
		require.Len(t, table.Courts, 1)
		assert.Equal(t, "c1_2024-05-01_08:00", table.Courts[0].Slots[0].SlotID)

		assert.Contains(t, cache.entries, "v1|2024-05-01")
		assert.Equal(t, 1, fetcher.calls)
	})

	t.Run("Hit skips the backend", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("should not be called")}
		cache := newFakeCache()
		cache.entries["v1|2024-05-01"] = []byte(exampleBody)
		svc := availability.NewService(fetcher, cache, nil)

		table, err := svc.GetTimetable(ctx, "v1", date)
		require.NoError(t, err)
		assert.Len(t, table.Courts, 1)
		assert.Zero(t, fetcher.calls)
	})

	t.Run("Cache failures are bypassed", func(t *testing.T) {
		fetcher := &fakeFetcher{body: []byte(exampleBody)}
		cache := newFakeCache()
		cache.getErr = errors.New("redis down")
		cache.setErr = errors.New("redis down")
		svc := availability.NewService(fetcher, cache, nil)

		table, err := svc.GetTimetable(ctx, "v1", date)
		require.NoError(t, err)
		assert.Len(t, table.Courts, 1)
	})

	t.Run("Works without a cache", func(t *testing.T) {
		svc := availability.NewService(&fakeFetcher{body: []byte(exampleBody)}, nil, nil)
		_, err := svc.GetTimetable(ctx, "v1", date)
		require.NoError(t, err)
		require.NoError(t, svc.Invalidate(ctx, "v1", date))
	})

	t.Run("Unknown venue", func(t *testing.T) {
		fetcher := &fakeFetcher{err: &upstream.StatusError{Code: http.StatusNotFound, Body: "not found"}}
		svc := availability.NewService(fetcher, newFakeCache(), nil)

		_, err := svc.GetTimetable(ctx, "nope", date)
		assert.ErrorIs(t, err, availability.ErrVenueNotFound)
	})

	t.Run("Backend failure", func(t *testing.T) {
		fetcher := &fakeFetcher{err: &upstream.StatusError{Code: http.StatusServiceUnavailable}}
		svc := availability.NewService(fetcher, newFakeCache(), nil)

		_, err := svc.GetTimetable(ctx, "v1", date)
		assert.ErrorIs(t, err, availability.ErrUpstream)
	})

	t.Run("Malformed payload is not cached", func(t *testing.T) {
		fetcher := &fakeFetcher{body: []byte(`{"venueId":"v1"}`)}
		cache := newFakeCache()
		svc := availability.NewService(fetcher, cache, nil)

		_, err := svc.GetTimetable(ctx, "v1", date)
		assert.ErrorIs(t, err, availability.ErrInvalidInput)
		assert.ErrorIs(t, err, availability.ErrUpstream)
		assert.Empty(t, cache.entries)
	})

	t.Run("Invalidate drops the entry", func(t *testing.T) {
		cache := newFakeCache()
		cache.entries["v1|2024-05-01"] = []byte(exampleBody)
		svc := availability.NewService(&fakeFetcher{}, cache, nil)

		require.NoError(t, svc.Invalidate(ctx, "v1", date))
		assert.Empty(t, cache.entries)
	})
}
