package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-timetable/internal/availability"
)

func sampleVenue() *availability.RawVenueAvailability {
	return &availability.RawVenueAvailability{
		VenueID:   "v1",
		VenueName: "X",
		Courts: []availability.RawCourtAvailability{
			{
				CourtID:   "c1",
				CourtName: "Court 1",
				Slots: []availability.RawAvailabilitySlot{
					{Time: "08:00", EndTime: "09:00", Price: 100000, Status: availability.StatusAvailable},
					{Time: "09:00", EndTime: "10:00", Price: 100000, Status: availability.StatusBooked},
				},
			},
		},
	}
}

func TestTransform(t *testing.T) {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Example venue", func(t *testing.T) {
		table, err := availability.Transform(sampleVenue(), date)
		require.NoError(t, err)
		require.Len(t, table, 1)

		court := table[0]
		assert.Equal(t, "c1", court.CourtID)
		assert.Equal(t, "Court 1", court.CourtName)
		require.Len(t, court.Slots, 2)

		assert.Equal(t, availability.TimeTableSlot{
			SlotID: "c1_2024-05-01_08:00", Time: "08:00", EndTime: "09:00",
			Status: availability.StatusAvailable, Price: 100000,
		}, court.Slots[0])
		assert.Equal(t, "c1_2024-05-01_09:00", court.Slots[1].SlotID)
		assert.Equal(t, availability.StatusBooked, court.Slots[1].Status)
	})

	t.Run("Preserves court and slot order", func(t *testing.T) {
		raw := &availability.RawVenueAvailability{
			Courts: []availability.RawCourtAvailability{
				{CourtID: "z", Slots: []availability.RawAvailabilitySlot{{Time: "20:00"}, {Time: "07:00"}, {Time: "13:00"}}},
				{CourtID: "a", Slots: nil},
				{CourtID: "m", Slots: []availability.RawAvailabilitySlot{{Time: "10:00"}, {Time: "10:00"}}},
			},
		}

		table, err := availability.Transform(raw, date)
		require.NoError(t, err)
		require.Len(t, table, 3)

		assert.Equal(t, []string{"z", "a", "m"}, []string{table[0].CourtID, table[1].CourtID, table[2].CourtID})
		assert.Len(t, table[0].Slots, 3)
		assert.Empty(t, table[1].Slots)
		assert.Len(t, table[2].Slots, 2, "duplicate start times are kept")

		assert.Equal(t, "20:00", table[0].Slots[0].Time)
		assert.Equal(t, "07:00", table[0].Slots[1].Time)
		assert.Equal(t, "13:00", table[0].Slots[2].Time)
	})

	t.Run("Empty courts yields empty table", func(t *testing.T) {
		table, err := availability.Transform(&availability.RawVenueAvailability{Courts: []availability.RawCourtAvailability{}}, date)
		require.NoError(t, err)
		assert.NotNil(t, table)
		assert.Empty(t, table)
	})

	t.Run("Missing courts is invalid input", func(t *testing.T) {
		_, err := availability.Transform(&availability.RawVenueAvailability{VenueID: "v1"}, date)
		assert.ErrorIs(t, err, availability.ErrInvalidInput)

		_, err = availability.Transform(nil, date)
		assert.ErrorIs(t, err, availability.ErrInvalidInput)
	})

	t.Run("Identifiers are deterministic", func(t *testing.T) {
		first, err := availability.Transform(sampleVenue(), date)
		require.NoError(t, err)
		second, err := availability.Transform(sampleVenue(), date)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Time of day is ignored", func(t *testing.T) {
		evening := time.Date(2024, 5, 1, 22, 45, 13, 0, time.UTC)
		table, err := availability.Transform(sampleVenue(), evening)
		require.NoError(t, err)
		assert.Equal(t, "c1_2024-05-01_08:00", table[0].Slots[0].SlotID)
	})

	t.Run("Input is not mutated", func(t *testing.T) {
		raw := sampleVenue()
		_, err := availability.Transform(raw, date)
		require.NoError(t, err)
		assert.Equal(t, sampleVenue(), raw)
	})
}

func TestSlotID(t *testing.T) {
	date := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "court-7_2026-02-08_18:30", availability.SlotID("court-7", date, "18:30"))
}

func TestParseDate(t *testing.T) {
	d, err := availability.ParseDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = availability.ParseDate("01/05/2024")
	assert.ErrorIs(t, err, availability.ErrInvalidDate)
}

func TestTimetableFindSlot(t *testing.T) {
	table, err := availability.Transform(sampleVenue(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	tt := &availability.Timetable{Courts: table}

	slot, court, ok := tt.FindSlot("c1_2024-05-01_09:00")
	require.True(t, ok)
	assert.Equal(t, availability.StatusBooked, slot.Status)
	assert.Equal(t, "c1", court.CourtID)

	_, _, ok = tt.FindSlot("nonexistent_id")
	assert.False(t, ok)
}
