package repository

import (
	"context"
	"database/sql"

	"github.com/andhika-rp/bioskop-booking/internal/seat"
)

// SeatRepo materializes the derived seat universe into the auxiliary
// seats table.  Nothing in the booking write path reads this table —
// seats are always re-derived from studio capacity — but keeping the
// rows around lets display tooling browse them directly.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// EnsureAll populates the seats table from the current studios when it
// is empty.  It returns the number of seats inserted (zero when the
// table was already populated or no studios exist).
func (r *SeatRepo) EnsureAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	studios, err := NewStudioRepo(r.db).ListAll(ctx)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, st := range studios {
		derived := seat.Derive(st.ID, st.Capacity)
		if len(derived) == 0 {
			continue
		}
		query := `INSERT IGNORE INTO seats (id, studio_id, seat_number) VALUES `
		args := make([]interface{}, 0, len(derived)*3)
		for i, s := range derived {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?)"
			args = append(args, s.ID, st.ID, s.Number)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return inserted, err
		}
		inserted += len(derived)
	}
	return inserted, nil
}
