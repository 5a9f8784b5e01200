package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/andhika-rp/bioskop-booking/internal/model"
)

// ShowtimeRepo provides read access to showtimes.  The engine resolves
// a showtime to its studio when building seat grids; listing endpoints
// use the joined form for display.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

// DB exposes the underlying handle so the engine can open transactions
// spanning multiple repositories.
func (r *ShowtimeRepo) DB() *sql.DB {
	return r.db
}

// GetByID retrieves a showtime by its id.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id string) (*model.Showtime, error) {
	const q = `SELECT id, film_id, studio_id, starts_at, price FROM showtimes WHERE id = ?`
	var s model.Showtime
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.FilmID, &s.StudioID, &s.StartsAt, &s.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &s, nil
}
