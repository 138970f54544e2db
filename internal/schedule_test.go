package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/pawhaven/bookingsync/internal"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain date", input: "2025-10-08", want: "2025-10-08"},
		{name: "embedded T marker", input: "2025-10-08T00:00:00", want: "2025-10-08"},
		{name: "rfc3339", input: "2025-10-08T07:00:00Z", want: "2025-10-08"},
		{name: "space separated timestamp", input: "2025-10-08 07:00:00", want: "2025-10-08"},
		{name: "surrounding whitespace", input: "  2025-10-08 ", want: "2025-10-08"},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.NormalizeDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrMalformedSchedule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "24 hour", input: "09:00", want: "09:00"},
		{name: "with seconds", input: "09:00:00", want: "09:00"},
		{name: "12 hour", input: "2:30 PM", want: "14:30"},
		{name: "12 hour compact", input: "2:30PM", want: "14:30"},
		{name: "midnight", input: "12:00 AM", want: "00:00"},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "noonish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.NormalizeClock(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrMalformedSchedule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBookingWindow(t *testing.T) {
	t.Run("same day window", func(t *testing.T) {
		b := models.Booking{Date: "2025-10-08", StartTime: "09:00", EndTime: "10:00"}

		start, err := b.StartAt(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 10, 8, 9, 0, 0, 0, time.UTC), start)

		end, err := b.EndAt(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 10, 8, 10, 0, 0, 0, time.UTC), end)

		hours, err := b.DurationHours()
		require.NoError(t, err)
		assert.Equal(t, 1.0, hours)
	})

	t.Run("overnight rolls to next day", func(t *testing.T) {
		b := models.Booking{Date: "2025-10-08", StartTime: "22:00", EndTime: "06:00"}

		end, err := b.EndAt(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 10, 9, 6, 0, 0, 0, time.UTC), end)

		hours, err := b.DurationHours()
		require.NoError(t, err)
		assert.Equal(t, 8.0, hours)
	})

	t.Run("malformed date surfaces schedule error", func(t *testing.T) {
		b := models.Booking{Date: "whenever", StartTime: "09:00", EndTime: "10:00"}
		_, err := b.StartAt(time.UTC)
		assert.ErrorIs(t, err, models.ErrMalformedSchedule)
	})
}

func TestBookingEarnings(t *testing.T) {
	t.Run("server total wins", func(t *testing.T) {
		b := models.Booking{TotalAmount: 120, HourlyRate: 25, Date: "2025-10-08", StartTime: "09:00", EndTime: "10:00"}
		assert.Equal(t, 120.0, b.Earnings())
	})

	t.Run("derived from window and rate", func(t *testing.T) {
		b := models.Booking{HourlyRate: 25, Date: "2025-10-08", StartTime: "09:00", EndTime: "12:00"}
		assert.Equal(t, 75.0, b.Earnings())
	})

	t.Run("falls back to reported duration when window is unusable", func(t *testing.T) {
		b := models.Booking{HourlyRate: 20, Duration: 2, Date: "bad"}
		assert.Equal(t, 40.0, b.Earnings())
	})
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from models.BookingStatus
		to   models.BookingStatus
		ok   bool
	}{
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusPending, models.StatusActive, false},
		{models.StatusPending, models.StatusCompleted, false},
		{models.StatusConfirmed, models.StatusActive, true},
		{models.StatusConfirmed, models.StatusCancelled, true},
		{models.StatusConfirmed, models.StatusCompleted, false},
		{models.StatusActive, models.StatusCompleted, true},
		{models.StatusActive, models.StatusCancelled, false},
		{models.StatusCompleted, models.StatusActive, false},
		{models.StatusCancelled, models.StatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, models.StatusCompleted.IsTerminal())
	assert.True(t, models.StatusCancelled.IsTerminal())
	assert.False(t, models.StatusActive.IsTerminal())
}
