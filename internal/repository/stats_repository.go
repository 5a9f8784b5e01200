package repository

import (
	"context"
	"database/sql"

	"github.com/andhika-rp/bioskop-booking/internal/model"
)

// Stats is the staff dashboard summary.
type Stats struct {
	TotalFilms      int `json:"total_films"`
	ActiveShowtimes int `json:"active_showtimes"`
	PendingBookings int `json:"pending_bookings"`
}

// StatsRepo aggregates counters across tables for the staff dashboard.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo constructs a StatsRepo with the given DB handle.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Snapshot returns the current counts in one round trip.
func (r *StatsRepo) Snapshot(ctx context.Context) (*Stats, error) {
	const q = `SELECT
	             (SELECT COUNT(*) FROM films),
	             (SELECT COUNT(*) FROM showtimes),
	             (SELECT COUNT(*) FROM bookings WHERE status = ?)`
	var s Stats
	err := r.db.QueryRowContext(ctx, q, model.BookingPending).
		Scan(&s.TotalFilms, &s.ActiveShowtimes, &s.PendingBookings)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
