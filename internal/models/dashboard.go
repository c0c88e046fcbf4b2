package models

import "time"

// BookingCounts groups bookings by status.
type BookingCounts struct {
	Total    int `db:"total" json:"total"`
	Pending  int `db:"pending" json:"pending"`
	Approved int `db:"approved" json:"approved"`
	Rejected int `db:"rejected" json:"rejected"`
	Upcoming int `db:"upcoming" json:"upcoming"`
}

// DashboardStats is the role-scoped summary shown on the dashboard.
type DashboardStats struct {
	Scope               string        `json:"scope"`
	Bookings            BookingCounts `json:"bookings"`
	Halls               int           `json:"halls"`
	Departments         int           `json:"departments"`
	Users               int           `json:"users"`
	PendingPressRelease int           `json:"pending_press_releases"`
	GeneratedAt         time.Time     `json:"generated_at"`
}

// SystemMetrics is an in-process snapshot of request and cache counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	EventsPublished          uint64    `json:"events_published"`
	EventsFailed             uint64    `json:"events_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
