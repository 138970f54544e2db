package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	models "github.com/pawhaven/bookingsync/internal"
	"github.com/pawhaven/bookingsync/internal/ports"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) ConfirmBooking(ctx context.Context, id string) (*models.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingService) StartSession(ctx context.Context, id string) (*models.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingService) CompleteSession(ctx context.Context, id string) (*models.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingService) CancelBooking(ctx context.Context, id, reason string) (*models.Booking, error) {
	return m.booking(m.Called(ctx, id, reason))
}

func (m *MockBookingService) AutoCompleteSessions(ctx context.Context) (models.SweepResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.SweepResult), args.Error(1)
}

func (m *MockBookingService) Refresh(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingService) EarningsForSitter(sitterID string) models.SitterEarnings {
	args := m.Called(sitterID)
	return args.Get(0).(models.SitterEarnings)
}

func (m *MockBookingService) Subscribe(fn func()) func() {
	args := m.Called(fn)
	return args.Get(0).(func())
}

func (m *MockBookingService) Mirror() ports.BookingMirror {
	args := m.Called()
	return args.Get(0).(ports.BookingMirror)
}

func (m *MockBookingService) booking(args mock.Arguments) (*models.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
