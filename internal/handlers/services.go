// Package handlers holds the console's view controllers. Each one owns the
// local state of a screen, reads through live gateway queries and turns
// remote failures into notification text; none of them is fatal.
package handlers

import (
	"context"
	"errors"

	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/models"
)

// CarService is the car part of the gateway.
type CarService interface {
	Bus() *cache.Bus
	ListCars(ctx context.Context, q gateway.PageQuery) (models.CarList, error)
	GetCar(ctx context.Context, id string) (models.Car, error)
	CreateCar(ctx context.Context, form *gateway.CarForm) (*models.Car, error)
	UpdateCar(ctx context.Context, id string, form *gateway.CarForm) (*models.Car, error)
	DeleteCar(ctx context.Context, id string) error
}

// UserService is the user part of the gateway.
type UserService interface {
	Bus() *cache.Bus
	ListUsers(ctx context.Context, q gateway.PageQuery) (models.UserPage, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	UpdateUserStatus(ctx context.Context, id string, active bool) error
	VerifyUserDocument(ctx context.Context, id string, v gateway.DocumentVerification) error
	SetGlobalVerification(ctx context.Context, id string, verified bool) error
}

// BookingService is the booking part of the gateway.
type BookingService interface {
	Bus() *cache.Bus
	ListBookings(ctx context.Context, q gateway.PageQuery) (models.BookingPage, error)
	GetBooking(ctx context.Context, id string) (models.Booking, error)
}

// StatsService reads the dashboard aggregate.
type StatsService interface {
	DashboardStats(ctx context.Context, r gateway.DateRange) (models.DashboardStats, error)
}

// LoginService exchanges credentials for a session.
type LoginService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error)
}

// ErrNotFound is reported by detail views when the record does not exist.
var ErrNotFound = errors.New("not found")

// Notify turns err into the text shown to the user: the not-found state, the
// server message when there is one, otherwise fallback. Local errors speak for themselves.
func Notify(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	var apiErr *gateway.Error
	if errors.As(err, &apiErr) {
		return gateway.Message(err, fallback)
	}
	if errors.Is(err, ErrNotFound) {
		return err.Error()
	}
	if fallback != "" {
		return fallback + ": " + err.Error()
	}
	return err.Error()
}

// notFound maps a 404 from a detail read to ErrNotFound.
func notFound(err error, what string) error {
	if gateway.IsNotFound(err) {
		return &NotFoundError{What: what, Err: err}
	}
	return err
}

// NotFoundError is the empty state of a detail view.
type NotFoundError struct {
	What string
	Err  error
}

func (e *NotFoundError) Error() string { return e.What + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Unwrap() error { return e.Err }
