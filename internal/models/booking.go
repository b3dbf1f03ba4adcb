package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentSuccess is the only payment status shown as paid.
const PaymentSuccess = "success"

// Booking is a reservation. User and Car are nil when the referenced record
// was deleted on the server.
type Booking struct {
	ID         primitive.ObjectID `json:"_id"`
	User       *User              `json:"user"`
	Car        *Car               `json:"car"`
	StartDate  time.Time          `json:"startDate"`
	EndDate    time.Time          `json:"endDate"`
	Status     BookingStatus      `json:"status"`
	TotalPrice float64            `json:"totalPrice"`
	Payment    *Payment           `json:"payment,omitempty"`
	Address    string             `json:"address,omitempty"` // pickup address override
	CreatedAt  *time.Time         `json:"createdAt,omitempty"`
}

// Payment is the payment record attached to a booking.
type Payment struct {
	Status            string `json:"status"`
	RazorpayPaymentID string `json:"razorpayPaymentId,omitempty"`
}

// BookingPage is the envelope of GET /bookings/all-bookings.
type BookingPage struct {
	Data          []Booking `json:"data"`
	TotalBookings int       `json:"totalBookings"`
	TotalPages    int       `json:"totalPages"`
}

// Paid reports whether the booking's payment succeeded.
func (b *Booking) Paid() bool {
	return b.Payment != nil && b.Payment.Status == PaymentSuccess
}
