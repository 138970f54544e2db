package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	models "github.com/pawhaven/bookingsync/internal"
)

// ErrNotFound is returned by a Store when nothing has been persisted yet.
var ErrNotFound = errors.New("mirror: no stored bookings")

// Store persists the mirror as a single opaque blob under one well-known
// key. Backends must treat Set as a full overwrite.
type Store interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, data []byte) error
}

const storeVersion = 1

// envelope tags the persisted blob so a format change across app upgrades
// reads as an empty cache instead of silent corruption.
type envelope struct {
	Version  int              `json:"version"`
	Bookings []models.Booking `json:"bookings"`
}

// Mirror is the local copy of booking records. It is a cache, not a
// source of truth: the server wins every conflict, and an unreadable store
// degrades to an empty list.
type Mirror struct {
	mu       sync.RWMutex
	store    Store
	log      *slog.Logger
	loc      *time.Location
	bookings []models.Booking
}

type Option func(*Mirror)

func WithLocation(loc *time.Location) Option {
	return func(m *Mirror) {
		m.loc = loc
	}
}

func New(store Store, log *slog.Logger, opts ...Option) *Mirror {
	if log == nil {
		log = slog.Default()
	}
	m := &Mirror{
		store: store,
		log:   log,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the persisted records, drops duplicate ids keeping the first
// occurrence, and writes the deduplicated list back if anything was
// dropped. It never fails: corruption, version drift, and store errors all
// come back as an empty list.
func (m *Mirror) Load(ctx context.Context) []models.Booking {
	raw, err := m.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.log.Warn("booking store unreadable, starting empty", "error", err)
		}
		m.reset(nil)
		return nil
	}

	bookings, ok := decode(raw)
	if !ok {
		m.log.Warn("booking store corrupted, starting empty")
		m.reset(nil)
		return nil
	}

	deduped := dedupByID(bookings)
	if len(deduped) < len(bookings) {
		m.log.Info("dropped duplicate bookings from store",
			"kept", len(deduped), "dropped", len(bookings)-len(deduped))
		m.persist(ctx, deduped)
	}

	m.reset(deduped)
	return m.All()
}

func decode(raw []byte) ([]models.Booking, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Version == storeVersion {
		return env.Bookings, true
	}
	// Pre-versioning installs persisted a bare array.
	var legacy []models.Booking
	if err := json.Unmarshal(raw, &legacy); err == nil {
		return legacy, true
	}
	return nil, false
}

func dedupByID(bookings []models.Booking) []models.Booking {
	seen := make(map[string]struct{}, len(bookings))
	deduped := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if _, dup := seen[b.ID]; dup {
			continue
		}
		seen[b.ID] = struct{}{}
		deduped = append(deduped, b)
	}
	return deduped
}

// Replace overwrites the mirror with the server's truth.
func (m *Mirror) Replace(ctx context.Context, bookings []models.Booking) {
	deduped := dedupByID(bookings)
	m.reset(deduped)
	m.persist(ctx, deduped)
}

// Upsert inserts or overwrites a single record by id.
func (m *Mirror) Upsert(ctx context.Context, booking models.Booking) {
	m.mu.Lock()
	replaced := false
	for i := range m.bookings {
		if m.bookings[i].ID == booking.ID {
			m.bookings[i] = booking
			replaced = true
			break
		}
	}
	if !replaced {
		m.bookings = append(m.bookings, booking)
	}
	snapshot := append([]models.Booking(nil), m.bookings...)
	m.mu.Unlock()

	m.persist(ctx, snapshot)
}

func (m *Mirror) reset(bookings []models.Booking) {
	m.mu.Lock()
	m.bookings = bookings
	m.mu.Unlock()
}

// persist serializes the full list to the store. Write failures are logged
// and swallowed: readers keep the in-memory copy and the next refresh
// repopulates the store.
func (m *Mirror) persist(ctx context.Context, bookings []models.Booking) {
	raw, err := json.Marshal(envelope{Version: storeVersion, Bookings: bookings})
	if err != nil {
		m.log.Error("marshaling bookings for store", "error", err)
		return
	}
	if err := m.store.Set(ctx, raw); err != nil {
		m.log.Warn("persisting bookings", "error", err, "count", len(bookings))
	}
}

func (m *Mirror) All() []models.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Booking(nil), m.bookings...)
}

func (m *Mirror) Get(id string) (models.Booking, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.ID == id {
			return b, true
		}
	}
	return models.Booking{}, false
}

func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

func (m *Mirror) ForSitter(sitterID string) []models.Booking {
	return m.filter(func(b models.Booking) bool {
		return b.SitterID == sitterID
	})
}

func (m *Mirror) ForOwner(ownerID string) []models.Booking {
	return m.filter(func(b models.Booking) bool {
		return b.PetOwnerID == ownerID
	})
}

// UpcomingForSitter lists the sitter's pending and confirmed bookings
// scheduled for today or later, soonest first. Records whose date cannot be
// normalized are skipped rather than guessed at.
func (m *Mirror) UpcomingForSitter(sitterID string, now time.Time) []models.Booking {
	today := now.In(m.loc).Format(models.DateLayout)
	upcoming := m.filter(func(b models.Booking) bool {
		if b.SitterID != sitterID {
			return false
		}
		if b.Status != models.StatusPending && b.Status != models.StatusConfirmed {
			return false
		}
		day, err := models.NormalizeDate(b.Date)
		if err != nil {
			return false
		}
		return day >= today
	})
	sort.SliceStable(upcoming, func(i, j int) bool {
		di, _ := models.NormalizeDate(upcoming[i].Date)
		dj, _ := models.NormalizeDate(upcoming[j].Date)
		if di != dj {
			return di < dj
		}
		return upcoming[i].StartTime < upcoming[j].StartTime
	})
	return upcoming
}

func (m *Mirror) ActiveForSitter(sitterID string) []models.Booking {
	return m.sitterWithStatus(sitterID, models.StatusActive)
}

func (m *Mirror) PendingForSitter(sitterID string) []models.Booking {
	return m.sitterWithStatus(sitterID, models.StatusPending)
}

func (m *Mirror) CompletedForSitter(sitterID string) []models.Booking {
	return m.sitterWithStatus(sitterID, models.StatusCompleted)
}

func (m *Mirror) sitterWithStatus(sitterID string, status models.BookingStatus) []models.Booking {
	return m.filter(func(b models.Booking) bool {
		return b.SitterID == sitterID && b.Status == status
	})
}

func (m *Mirror) filter(keep func(models.Booking) bool) []models.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := make([]models.Booking, 0)
	for _, b := range m.bookings {
		if keep(b) {
			matched = append(matched, b)
		}
	}
	return matched
}
