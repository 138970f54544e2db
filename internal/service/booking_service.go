package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	models "github.com/pawhaven/bookingsync/internal"
	"github.com/pawhaven/bookingsync/internal/fanout"
	"github.com/pawhaven/bookingsync/internal/ports"
)

// sitterShare is the fraction of a booking's amount paid out to the sitter;
// the remainder is the platform commission.
const sitterShare = 0.9

// bookingService performs authoritative transitions through the backend and
// reconciles the local mirror afterwards. Nothing is mutated optimistically:
// a failed call leaves the mirror exactly as it was.
type bookingService struct {
	api    ports.BookingAPI
	mirror ports.BookingMirror
	hub    *fanout.Hub
	now    func() time.Time
	loc    *time.Location
	log    *slog.Logger
}

type Option func(*bookingService)

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *bookingService) {
		s.now = now
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *bookingService) {
		s.loc = loc
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *bookingService) {
		s.log = log
	}
}

func NewBookingService(api ports.BookingAPI, mirror ports.BookingMirror, hub *fanout.Hub, opts ...Option) *bookingService {
	s := &bookingService{
		api:    api,
		mirror: mirror,
		hub:    hub,
		now:    time.Now,
		loc:    time.Local,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking posts the request and, on success, inserts the
// server-assigned record into the mirror. On failure the mirror is left
// untouched and the error surfaces to the caller.
func (s *bookingService) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	booking, err := s.api.CreateBooking(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}
	s.mirror.Upsert(ctx, *booking)
	s.hub.Notify()
	s.log.Info("booking created", "id", booking.ID, "sitter", booking.SitterID, "status", booking.Status)
	return booking, nil
}

// ConfirmBooking transitions pending -> confirmed.
func (s *bookingService) ConfirmBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.transition(ctx, id, models.StatusConfirmed, nil, func(ctx context.Context) (*models.Booking, error) {
		return s.api.ConfirmBooking(ctx, id)
	})
}

// StartSession transitions confirmed -> active. The gate rejects sessions
// whose scheduled date is still in the future before any network call.
func (s *bookingService) StartSession(ctx context.Context, id string) (*models.Booking, error) {
	gate := func(b models.Booking) error {
		day, err := models.NormalizeDate(b.Date)
		if err != nil {
			return err
		}
		today := s.now().In(s.loc).Format(models.DateLayout)
		if day > today {
			return fmt.Errorf("booking %s scheduled for %s: %w", id, day, models.ErrSessionNotDue)
		}
		return nil
	}
	return s.transition(ctx, id, models.StatusActive, gate, func(ctx context.Context) (*models.Booking, error) {
		return s.api.StartSession(ctx, id)
	})
}

// CompleteSession transitions active -> completed. A session whose end time
// has not elapsed is rejected client-side with ErrSessionOngoing.
func (s *bookingService) CompleteSession(ctx context.Context, id string) (*models.Booking, error) {
	gate := func(b models.Booking) error {
		end, err := b.EndAt(s.loc)
		if err != nil {
			return err
		}
		if s.now().Before(end) {
			return fmt.Errorf("booking %s ends at %s: %w", id, end.Format(time.RFC3339), models.ErrSessionOngoing)
		}
		return nil
	}
	return s.transition(ctx, id, models.StatusCompleted, gate, func(ctx context.Context) (*models.Booking, error) {
		return s.api.CompleteSession(ctx, id)
	})
}

// CancelBooking transitions pending|confirmed -> cancelled.
func (s *bookingService) CancelBooking(ctx context.Context, id, reason string) (*models.Booking, error) {
	return s.transition(ctx, id, models.StatusCancelled, nil, func(ctx context.Context) (*models.Booking, error) {
		return s.api.CancelBooking(ctx, id, reason)
	})
}

// transition runs the shared gate-call-reconcile path. The status check and
// the optional gate run against the mirrored record before the network
// call; the server remains the final authority either way.
func (s *bookingService) transition(
	ctx context.Context,
	id string,
	target models.BookingStatus,
	gate func(models.Booking) error,
	call func(context.Context) (*models.Booking, error),
) (*models.Booking, error) {
	current, ok := s.mirror.Get(id)
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, models.ErrBookingNotFound)
	}
	if !current.Status.CanTransition(target) {
		return nil, fmt.Errorf("booking %s: %s -> %s: %w", id, current.Status, target, models.ErrInvalidTransition)
	}
	if gate != nil {
		if err := gate(current); err != nil {
			return nil, err
		}
	}

	updated, err := call(ctx)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Backend acknowledged without echoing the record.
		current.Status = target
		current.UpdatedAt = s.now().UTC()
		updated = &current
	}

	s.mirror.Upsert(ctx, *updated)
	s.hub.Notify()
	s.log.Info("booking transitioned", "id", id, "status", updated.Status)
	return updated, nil
}

// AutoCompleteSessions asks the backend to complete any active sessions
// whose end time has passed, then refreshes the mirror when anything moved.
func (s *bookingService) AutoCompleteSessions(ctx context.Context) (models.SweepResult, error) {
	result, err := s.api.AutoCompleteSessions(ctx)
	if err != nil {
		return models.SweepResult{}, err
	}
	if result.CompletedCount > 0 {
		if _, err := s.Refresh(ctx); err != nil {
			s.log.Warn("refreshing mirror after sweep", "error", err)
		}
	}
	return result, nil
}

// Refresh reloads the mirror from the server. On failure the cached copy
// stays in place and is returned alongside the error.
func (s *bookingService) Refresh(ctx context.Context) ([]models.Booking, error) {
	bookings, err := s.api.ListBookings(ctx)
	if err != nil {
		return s.mirror.All(), fmt.Errorf("refreshing bookings: %w", err)
	}
	s.mirror.Replace(ctx, bookings)
	s.hub.Notify()
	return bookings, nil
}

// EarningsForSitter rolls completed and in-progress sessions into payout
// totals with this-week/this-month windows, applying the sitter share.
func (s *bookingService) EarningsForSitter(sitterID string) models.SitterEarnings {
	bookings := append(s.mirror.CompletedForSitter(sitterID), s.mirror.ActiveForSitter(sitterID)...)

	now := s.now().In(s.loc)
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc).
		AddDate(0, 0, -int(now.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)

	var earnings models.SitterEarnings
	earnings.CompletedJobs = len(bookings)
	for i := range bookings {
		amount := bookings[i].Earnings() * sitterShare
		earnings.Total += amount

		day, err := models.ComposeAt(bookings[i].Date, "00:00", s.loc)
		if err != nil {
			continue
		}
		if !day.Before(weekStart) {
			earnings.ThisWeek += amount
		}
		if !day.Before(monthStart) {
			earnings.ThisMonth += amount
		}
	}
	return earnings
}

// Subscribe registers fn to run after every mirror-changing operation.
func (s *bookingService) Subscribe(fn func()) func() {
	return s.hub.Subscribe(fn)
}

func (s *bookingService) Mirror() ports.BookingMirror {
	return s.mirror
}
