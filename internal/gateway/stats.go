package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/models"
)

// isoMillis matches the API's expected timestamp layout.
const isoMillis = "2006-01-02T15:04:05.000Z"

// DateRange bounds a dashboard read.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) values() url.Values {
	v := url.Values{}
	v.Set("startDate", r.Start.UTC().Format(isoMillis))
	v.Set("endDate", r.End.UTC().Format(isoMillis))
	return v
}

// DashboardStats returns the aggregate projection for r. The read provides
// no tags; it expires with the cache TTL.
func (c *Client) DashboardStats(ctx context.Context, r DateRange) (models.DashboardStats, error) {
	params := map[string]string{
		"startDate": r.Start.UTC().Format(isoMillis),
		"endDate":   r.End.UTC().Format(isoMillis),
	}
	key := cache.QueryKey("stats", params)
	return cached(ctx, c, key, nil, func(ctx context.Context) (models.DashboardStats, error) {
		var out envelope[models.DashboardStats]
		err := c.do(ctx, request{method: http.MethodGet, path: "/admin/stats", query: r.values()}, &out)
		return out.Data, err
	})
}
