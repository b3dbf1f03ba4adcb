package listing

import (
	"math"
	"time"

	"github.com/ukydev/fleet-admin/internal/models"
)

// Placeholders for references whose record was deleted.
const (
	UserDeleted  = "User Deleted"
	CarDeleted   = "Car Deleted"
	NotAvailable = "N/A"
	UnknownName  = "Unknown"
)

// Payment labels.
const (
	PaymentPaid    = "Paid"
	PaymentPending = "Pending"
)

const dateLayout = "02-01-2006"

// Row is a booking prepared for display.
type Row struct {
	ID            string
	Customer      string
	CustomerEmail string
	Car           string
	Registration  string
	Start         string
	End           string
	Days          int
	Status        string
	Total         float64
	Payment       string
	TransactionID string
	Address       string
}

// BookingRow renders b. Missing user or car references degrade to
// placeholders.
func BookingRow(b *models.Booking) Row {
	r := Row{
		ID:            b.ID.Hex(),
		Customer:      UserDeleted,
		CustomerEmail: NotAvailable,
		Car:           CarDeleted,
		Registration:  NotAvailable,
		Start:         FormatDate(&b.StartDate),
		End:           FormatDate(&b.EndDate),
		Days:          TripDays(b.StartDate, b.EndDate),
		Status:        string(b.Status),
		Total:         b.TotalPrice,
		Payment:       PaymentPending,
		TransactionID: NotAvailable,
		Address:       b.Address,
	}
	if b.User != nil {
		r.Customer = b.User.Name
		if r.Customer == "" {
			r.Customer = UnknownName
		}
		r.CustomerEmail = b.User.Email
	}
	if b.Car != nil {
		r.Car = b.Car.DisplayName()
		if b.Car.RegistrationNumber != "" {
			r.Registration = b.Car.RegistrationNumber
		}
	}
	if b.Paid() {
		r.Payment = PaymentPaid
	}
	if b.Payment != nil && b.Payment.RazorpayPaymentID != "" {
		r.TransactionID = b.Payment.RazorpayPaymentID
	}
	return r
}

// BookingRows renders every booking of a page.
func BookingRows(bookings []models.Booking) []Row {
	rows := make([]Row, len(bookings))
	for i := range bookings {
		rows[i] = BookingRow(&bookings[i])
	}
	return rows
}

// FormatDate renders DD-MM-YYYY, or N/A for a missing date.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	return t.Format(dateLayout)
}

// TripDays is the booked span in days, partial days rounded up.
func TripDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 0
	}
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}
