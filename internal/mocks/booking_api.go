package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	models "github.com/pawhaven/bookingsync/internal"
)

type MockBookingAPI struct {
	mock.Mock
}

func (m *MockBookingAPI) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingAPI) ListBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingAPI) ConfirmBooking(ctx context.Context, id string) (*models.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingAPI) CancelBooking(ctx context.Context, id, reason string) (*models.Booking, error) {
	return m.booking(m.Called(ctx, id, reason))
}

func (m *MockBookingAPI) StartSession(ctx context.Context, id string) (*models.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingAPI) CompleteSession(ctx context.Context, id string) (*models.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingAPI) AutoCompleteSessions(ctx context.Context) (models.SweepResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.SweepResult), args.Error(1)
}

func (m *MockBookingAPI) booking(args mock.Arguments) (*models.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
