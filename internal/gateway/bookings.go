package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/models"
)

// BookingTags are the tags provided by the booking list.
func BookingTags() []cache.Tag { return []cache.Tag{cache.TypeTag(cache.TypeBookings)} }

// BookingDetailTags are the tags provided by a single booking.
func BookingDetailTags(id string) []cache.Tag {
	return []cache.Tag{cache.IDTag(cache.TypeBookings, id)}
}

// ListBookings returns one page of reservations.
func (c *Client) ListBookings(ctx context.Context, q PageQuery) (models.BookingPage, error) {
	key := cache.QueryKey("bookings", q.params())
	return cached(ctx, c, key, BookingTags(), func(ctx context.Context) (models.BookingPage, error) {
		var out models.BookingPage
		err := c.do(ctx, request{method: http.MethodGet, path: "/bookings/all-bookings", query: q.values()}, &out)
		return out, err
	})
}

// GetBooking returns one reservation.
func (c *Client) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	return cached(ctx, c, "booking:"+id, BookingDetailTags(id), func(ctx context.Context) (models.Booking, error) {
		var out envelope[models.Booking]
		err := c.do(ctx, request{method: http.MethodGet, path: "/bookings/" + url.PathEscape(id)}, &out)
		return out.Data, err
	})
}
