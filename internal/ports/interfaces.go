package ports

import (
	"context"
	"time"

	models "github.com/pawhaven/bookingsync/internal"
)

// BookingAPI is the remote side of the sync layer: every call performs an
// authoritative state change (or read) against the backend.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*models.Booking, error)
	CancelBooking(ctx context.Context, id, reason string) (*models.Booking, error)
	StartSession(ctx context.Context, id string) (*models.Booking, error)
	CompleteSession(ctx context.Context, id string) (*models.Booking, error)
	AutoCompleteSessions(ctx context.Context) (models.SweepResult, error)
}

// BookingMirror is the local, non-authoritative copy of booking records.
// Mutations persist through the backing store but never fail the caller;
// the read methods are pure filters over the in-memory snapshot.
type BookingMirror interface {
	Load(ctx context.Context) []models.Booking
	Replace(ctx context.Context, bookings []models.Booking)
	Upsert(ctx context.Context, booking models.Booking)
	All() []models.Booking
	Get(id string) (models.Booking, bool)
	Len() int
	ForSitter(sitterID string) []models.Booking
	ForOwner(ownerID string) []models.Booking
	UpcomingForSitter(sitterID string, now time.Time) []models.Booking
	ActiveForSitter(sitterID string) []models.Booking
	PendingForSitter(sitterID string) []models.Booking
	CompletedForSitter(sitterID string) []models.Booking
}

type BookingService interface {
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*models.Booking, error)
	StartSession(ctx context.Context, id string) (*models.Booking, error)
	CompleteSession(ctx context.Context, id string) (*models.Booking, error)
	CancelBooking(ctx context.Context, id, reason string) (*models.Booking, error)
	AutoCompleteSessions(ctx context.Context) (models.SweepResult, error)
	Refresh(ctx context.Context) ([]models.Booking, error)
	EarningsForSitter(sitterID string) models.SitterEarnings
	Subscribe(fn func()) (unsubscribe func())
	Mirror() BookingMirror
}
