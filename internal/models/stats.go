package models

// DashboardStats is the server-computed dashboard projection for a date range.
type DashboardStats struct {
	TotalUsers     int            `json:"totalUsers"`
	TotalCars      int            `json:"totalCars"`
	ActiveBookings int            `json:"activeBookings"`
	TotalRevenue   float64        `json:"totalRevenue"`
	RevenueChart   []RevenuePoint `json:"revenueChart"`
	RecentActivity []Booking      `json:"recentActivity"`
}

// RevenuePoint is one bucket of the revenue series.
type RevenuePoint struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}
