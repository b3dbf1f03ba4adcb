package handlers

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/listing"
	"github.com/ukydev/fleet-admin/internal/models"
)

// MsgLoadBookingsFailed is shown when the booking list cannot load.
const MsgLoadBookingsFailed = "Failed to load bookings"

// BookingsView is the paged reservation list.
type BookingsView struct {
	svc   BookingService
	pager *listing.Pager
	query *gateway.Query[models.BookingPage]
	log   logrus.FieldLogger
	mu    sync.Mutex
}

// NewBookingsView starts on page 1 with limit rows per page.
func NewBookingsView(svc BookingService, limit int, log logrus.FieldLogger) *BookingsView {
	if log == nil {
		log = logrus.StandardLogger()
	}
	v := &BookingsView{svc: svc, pager: listing.NewPager(limit), log: log.WithField("view", "bookings")}
	v.query = gateway.NewQuery(svc.Bus(), gateway.BookingTags(), v.fetcher())
	v.query.Observe(func(s gateway.State[models.BookingPage]) {
		if s.HasData && !s.Loading {
			v.mu.Lock()
			v.pager.SetTotalPages(s.Data.TotalPages)
			v.mu.Unlock()
		}
	})
	return v
}

func (v *BookingsView) fetcher() gateway.Fetcher[models.BookingPage] {
	v.mu.Lock()
	q := gateway.PageQuery{Search: v.pager.Search, Page: v.pager.Page, Limit: v.pager.Limit}
	v.mu.Unlock()
	return func(ctx context.Context) (models.BookingPage, error) {
		return v.svc.ListBookings(ctx, q)
	}
}

// Load fetches the current page and keeps it fresh.
func (v *BookingsView) Load(ctx context.Context) error { return v.query.Start(ctx).Err }

// Close stops the live query.
func (v *BookingsView) Close() { v.query.Close() }

// State is the query state.
func (v *BookingsView) State() gateway.State[models.BookingPage] { return v.query.State() }

// Pager returns a copy of the paging state.
func (v *BookingsView) Pager() listing.Pager {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *v.pager
}

// Update changes the pager and refetches.
func (v *BookingsView) Update(ctx context.Context, change func(p *listing.Pager)) error {
	v.mu.Lock()
	change(v.pager)
	v.mu.Unlock()
	v.query.Reset(gateway.BookingTags(), v.fetcher())
	return v.query.Refetch(ctx).Err
}

// Rows renders the current page.
func (v *BookingsView) Rows() []listing.Row { return listing.BookingRows(v.State().Data.Data) }

// Total is the server-side booking count.
func (v *BookingsView) Total() int { return v.State().Data.TotalBookings }

// BookingDetail reads one booking. A missing booking is reported as
// ErrNotFound.
func BookingDetail(ctx context.Context, svc BookingService, id string) (models.Booking, listing.Row, error) {
	b, err := svc.GetBooking(ctx, id)
	if err != nil {
		return models.Booking{}, listing.Row{}, notFound(err, "Booking")
	}
	return b, listing.BookingRow(&b), nil
}
