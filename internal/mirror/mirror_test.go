package mirror_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/pawhaven/bookingsync/internal"
	"github.com/pawhaven/bookingsync/internal/mirror"
)

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	data   []byte
	getErr error
	setErr error
	sets   int
}

func (s *memStore) Get(_ context.Context) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.data == nil {
		return nil, mirror.ErrNotFound
	}
	return s.data, nil
}

func (s *memStore) Set(_ context.Context, data []byte) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.sets++
	s.data = append([]byte(nil), data...)
	return nil
}

func storedBlob(t *testing.T, bookings []models.Booking) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"version":  1,
		"bookings": bookings,
	})
	require.NoError(t, err)
	return raw
}

func booking(id, sitterID string, status models.BookingStatus) models.Booking {
	return models.Booking{
		ID:         id,
		SitterID:   sitterID,
		PetOwnerID: "owner-1",
		Date:       "2025-10-08",
		StartTime:  "09:00",
		EndTime:    "10:00",
		HourlyRate: 25,
		Status:     status,
	}
}

func TestLoadDedupesByID(t *testing.T) {
	first := booking("b1", "s1", models.StatusPending)
	first.SitterName = "kept"
	dupe := booking("b1", "s1", models.StatusConfirmed)
	dupe.SitterName = "dropped"
	other := booking("b2", "s1", models.StatusConfirmed)

	store := &memStore{data: storedBlob(t, []models.Booking{first, dupe, other, dupe})}
	m := mirror.New(store, nil)

	loaded := m.Load(context.Background())
	require.Len(t, loaded, 2)
	assert.Equal(t, "kept", loaded[0].SitterName)

	// Deduplicated list was written back; loading again changes nothing.
	assert.Equal(t, 1, store.sets)
	again := m.Load(context.Background())
	assert.Len(t, again, 2)
	assert.Equal(t, 1, store.sets)
}

func TestLoadToleratesBadStores(t *testing.T) {
	tests := []struct {
		name  string
		store *memStore
	}{
		{name: "empty store", store: &memStore{}},
		{name: "corrupted blob", store: &memStore{data: []byte("{not json")}},
		{name: "unknown version", store: &memStore{data: []byte(`{"version":9,"bookings":[{"id":"x"}]}`)}},
		{name: "store read failure", store: &memStore{getErr: errors.New("disk on fire")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mirror.New(tt.store, nil)
			assert.Empty(t, m.Load(context.Background()))
			assert.Equal(t, 0, m.Len())
		})
	}
}

func TestLoadAcceptsLegacyArray(t *testing.T) {
	raw, err := json.Marshal([]models.Booking{booking("b1", "s1", models.StatusPending)})
	require.NoError(t, err)

	m := mirror.New(&memStore{data: raw}, nil)
	loaded := m.Load(context.Background())
	require.Len(t, loaded, 1)
	assert.Equal(t, "b1", loaded[0].ID)
}

func TestUpsertAndReplacePersist(t *testing.T) {
	store := &memStore{}
	m := mirror.New(store, nil)
	ctx := context.Background()

	m.Upsert(ctx, booking("b1", "s1", models.StatusPending))
	m.Upsert(ctx, booking("b2", "s1", models.StatusConfirmed))
	assert.Equal(t, 2, m.Len())

	updated := booking("b1", "s1", models.StatusConfirmed)
	m.Upsert(ctx, updated)
	assert.Equal(t, 2, m.Len())
	got, ok := m.Get("b1")
	require.True(t, ok)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	// A fresh mirror over the same store sees the persisted state.
	reloaded := mirror.New(store, nil)
	assert.Len(t, reloaded.Load(ctx), 2)

	m.Replace(ctx, []models.Booking{booking("b9", "s2", models.StatusActive)})
	assert.Equal(t, 1, m.Len())
	_, ok = m.Get("b1")
	assert.False(t, ok)
}

func TestPersistFailureDoesNotLoseMemoryState(t *testing.T) {
	store := &memStore{setErr: errors.New("write refused")}
	m := mirror.New(store, nil)

	m.Upsert(context.Background(), booking("b1", "s1", models.StatusPending))
	got, ok := m.Get("b1")
	assert.True(t, ok)
	assert.Equal(t, "b1", got.ID)
}

func TestFilters(t *testing.T) {
	m := mirror.New(&memStore{}, nil, mirror.WithLocation(time.UTC))
	ctx := context.Background()

	pending := booking("b1", "s1", models.StatusPending)
	pending.Date = "2025-10-09"
	confirmed := booking("b2", "s1", models.StatusConfirmed)
	confirmed.Date = "2025-10-08"
	past := booking("b3", "s1", models.StatusConfirmed)
	past.Date = "2025-10-01"
	active := booking("b4", "s1", models.StatusActive)
	completed := booking("b5", "s1", models.StatusCompleted)
	otherSitter := booking("b6", "s2", models.StatusPending)
	otherSitter.Date = "2025-10-10"

	for _, b := range []models.Booking{pending, confirmed, past, active, completed, otherSitter} {
		m.Upsert(ctx, b)
	}

	assert.Len(t, m.ForSitter("s1"), 5)
	assert.Len(t, m.ForOwner("owner-1"), 6)
	assert.Len(t, m.ActiveForSitter("s1"), 1)
	assert.Len(t, m.PendingForSitter("s1"), 1)
	assert.Len(t, m.CompletedForSitter("s1"), 1)

	now := time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)
	upcoming := m.UpcomingForSitter("s1", now)
	require.Len(t, upcoming, 2)
	// Sorted soonest first; the past confirmed booking is excluded.
	assert.Equal(t, "b2", upcoming[0].ID)
	assert.Equal(t, "b1", upcoming[1].ID)
}

func TestUpcomingSkipsMalformedDates(t *testing.T) {
	m := mirror.New(&memStore{}, nil, mirror.WithLocation(time.UTC))
	ctx := context.Background()

	good := booking("b1", "s1", models.StatusConfirmed)
	good.Date = "2025-10-09T00:00:00"
	bad := booking("b2", "s1", models.StatusConfirmed)
	bad.Date = "someday"

	m.Upsert(ctx, good)
	m.Upsert(ctx, bad)

	now := time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)
	upcoming := m.UpcomingForSitter("s1", now)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "b1", upcoming[0].ID)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := t.TempDir() + "/cache/bookings.json"
	store := mirror.NewFileStore(path)
	ctx := context.Background()

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, mirror.ErrNotFound)

	require.NoError(t, store.Set(ctx, []byte(`{"version":1,"bookings":[]}`)))
	raw, err := store.Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"bookings":[]}`, string(raw))
}
