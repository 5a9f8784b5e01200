package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/andhika-rp/bioskop-booking/internal/model"
)

// SeatStatusRepo encapsulates database operations for seat_statuses,
// the per-(showtime, seat) availability ledger.  A row exists only once
// a booking attempt has touched the seat for that showtime; absence
// means Available.  The unique key on (seat_id, showtime_id) backs the
// at-most-one-row invariant, and the upsert below relies on it.
//
// All mutating methods take a *sql.Tx: seat statuses change only inside
// the booking engine's transactions, never independently.
type SeatStatusRepo struct {
	db *sql.DB
}

// NewSeatStatusRepo constructs a SeatStatusRepo given a DB handle.
func NewSeatStatusRepo(db *sql.DB) *SeatStatusRepo {
	return &SeatStatusRepo{db: db}
}

// ListByShowtime returns every recorded seat status for a showtime.
// Seats without a row are implicitly Available and are not included;
// the engine overlays this onto the derived seat universe.
func (r *SeatStatusRepo) ListByShowtime(ctx context.Context, showtimeID string) ([]model.SeatStatus, error) {
	const q = `SELECT id, seat_id, showtime_id, status
	           FROM seat_statuses
	           WHERE showtime_id = ?`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.SeatStatus
	for rows.Next() {
		var s model.SeatStatus
		if err := rows.Scan(&s.ID, &s.SeatID, &s.ShowtimeID, &s.Status); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UnavailableTx returns, holding row locks until the transaction ends,
// the subset of seatIDs whose status for the showtime is currently
// Pending or Booked.  The engine calls this before writing so that a
// booking batch is rejected whole when any requested seat is taken,
// and the locks keep a concurrent transaction from racing the check.
func (r *SeatStatusRepo) UnavailableTx(ctx context.Context, tx *sql.Tx, showtimeID string, seatIDs []string) ([]string, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seatIDs)), ",")
	query := `SELECT seat_id FROM seat_statuses
	          WHERE showtime_id = ? AND status IN (?, ?) AND seat_id IN (` + placeholders + `)
	          FOR UPDATE`
	args := make([]interface{}, 0, len(seatIDs)+3)
	args = append(args, showtimeID, model.SeatPending, model.SeatBooked)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taken []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		taken = append(taken, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return taken, nil
}

// BulkUpsertTx sets the status of every listed seat for the showtime
// in one statement, inserting rows that do not exist yet and
// overwriting those that do.  The upsert depends on the unique
// (seat_id, showtime_id) key.  Passing an empty slice has no effect.
func (r *SeatStatusRepo) BulkUpsertTx(ctx context.Context, tx *sql.Tx, showtimeID string, seatIDs []string, status string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO seat_statuses (seat_id, showtime_id, status) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*3)
	for i, id := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, id, showtimeID, status)
	}
	query += ` ON DUPLICATE KEY UPDATE status = VALUES(status)`
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
