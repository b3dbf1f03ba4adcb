package handlers

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/models"
)

// MockGateway is a mock implementation of every service the views use.
// The bus is real so views can be driven by invalidations.
type MockGateway struct {
	mock.Mock
	bus *cache.Bus
}

func newMockGateway() *MockGateway {
	return &MockGateway{bus: cache.NewBus()}
}

func (m *MockGateway) Bus() *cache.Bus { return m.bus }

func (m *MockGateway) ListCars(ctx context.Context, q gateway.PageQuery) (models.CarList, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(models.CarList), args.Error(1)
}

func (m *MockGateway) GetCar(ctx context.Context, id string) (models.Car, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Car), args.Error(1)
}

func (m *MockGateway) CreateCar(ctx context.Context, form *gateway.CarForm) (*models.Car, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

func (m *MockGateway) UpdateCar(ctx context.Context, id string, form *gateway.CarForm) (*models.Car, error) {
	args := m.Called(ctx, id, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

func (m *MockGateway) DeleteCar(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGateway) ListUsers(ctx context.Context, q gateway.PageQuery) (models.UserPage, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(models.UserPage), args.Error(1)
}

func (m *MockGateway) GetUser(ctx context.Context, id string) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockGateway) UpdateUserStatus(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockGateway) VerifyUserDocument(ctx context.Context, id string, v gateway.DocumentVerification) error {
	args := m.Called(ctx, id, v)
	return args.Error(0)
}

func (m *MockGateway) SetGlobalVerification(ctx context.Context, id string, verified bool) error {
	args := m.Called(ctx, id, verified)
	return args.Error(0)
}

func (m *MockGateway) ListBookings(ctx context.Context, q gateway.PageQuery) (models.BookingPage, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(models.BookingPage), args.Error(1)
}

func (m *MockGateway) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *MockGateway) DashboardStats(ctx context.Context, r gateway.DateRange) (models.DashboardStats, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(models.DashboardStats), args.Error(1)
}

func (m *MockGateway) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResult), args.Error(1)
}

// MockSession is a mock implementation of SessionStore
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Begin(token string, user models.User) error {
	args := m.Called(token, user)
	return args.Error(0)
}

func (m *MockSession) End() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSession) RequireAdmin() (*models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
