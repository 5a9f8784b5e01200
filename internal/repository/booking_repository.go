package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/andhika-rp/bioskop-booking/internal/model"
	"github.com/andhika-rp/bioskop-booking/internal/seat"
)

// BookingRepo provides CRUD operations for bookings and their seat
// associations.  Bookings group one or more seats for a showtime and
// user; the seats reserved under a booking live in booking_seats and
// never change after creation.  All timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a new booking within the scope of an existing
// transaction.  The caller supplies the id and created_at and must
// commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, user_id, showtime_id, status, payment_proof_url, total_price, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		b.ID, b.UserID, b.ShowtimeID, b.Status, b.PaymentProofURL, b.TotalPrice,
		b.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	return err
}

// CreateSeatsBulkTx inserts one booking_seats row per seat id in a
// single statement, all associated with the same booking.  Passing an
// empty slice has no effect and returns nil.
func (r *BookingRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, bookingID string, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*2)
	for i, id := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, bookingID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a booking by its id.  ErrBookingNotFound is
// returned when no booking exists; callers treat that as an absent
// result rather than a failure.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT id, user_id, showtime_id, status, payment_proof_url, total_price, created_at
	           FROM bookings WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetForUpdateTx re-reads a booking inside a transaction, locking its
// row so a concurrent status update serializes behind this one.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Booking, error) {
	const q = `SELECT id, user_id, showtime_id, status, payment_proof_url, total_price, created_at
	           FROM bookings WHERE id = ? FOR UPDATE`
	return r.scanOne(tx.QueryRowContext(ctx, q, id))
}

func (r *BookingRepo) scanOne(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	var proof sql.NullString
	err := row.Scan(&b.ID, &b.UserID, &b.ShowtimeID, &b.Status, &proof, &b.TotalPrice, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	b.PaymentProofURL = proof.String
	return &b, nil
}

// UpdateStatusTx writes the booking's status field within the given
// transaction.  Seat side effects are the engine's responsibility and
// are applied in the same transaction.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// SeatIDsTx returns the seat ids associated with a booking, read
// within the given transaction.
func (r *BookingRepo) SeatIDsTx(ctx context.Context, tx *sql.Tx, bookingID string) ([]string, error) {
	const q = `SELECT seat_id FROM booking_seats WHERE booking_id = ? ORDER BY id`
	rows, err := tx.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seatIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seatIDs = append(seatIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seatIDs, nil
}

// ListStalePendingIDs returns the ids of Pending bookings created at or
// before the cutoff.  The expiry reaper feeds these back through the
// engine one at a time so each expiry gets the normal transactional
// seat release.
func (r *BookingRepo) ListStalePendingIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	const q = `SELECT id FROM bookings WHERE status = ? AND created_at <= ?`
	rows, err := r.db.QueryContext(ctx, q, model.BookingPending, cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// BookingSeatInfo is one seat attached to a booking in list responses.
// SeatNumber is display data derived from the seat id suffix.
type BookingSeatInfo struct {
	SeatID     string `json:"seat_id"`
	SeatNumber string `json:"seat_number"`
}

// BookingDetail is a booking enriched for display with its showtime,
// film, studio and seats.  Showtime fields are pointers because a
// booking can outlive its showtime's metadata.
type BookingDetail struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	ShowtimeID      string            `json:"showtime_id"`
	Status          string            `json:"status"`
	PaymentProofURL string            `json:"payment_proof_url,omitempty"`
	TotalPrice      int64             `json:"total_price"`
	CreatedAt       time.Time         `json:"created_at"`
	FilmTitle       *string           `json:"film_title,omitempty"`
	StudioName      *string           `json:"studio_name,omitempty"`
	StartsAt        *string           `json:"starts_at,omitempty"`
	Seats           []BookingSeatInfo `json:"seats"`
}

// ListByUser returns every booking for the given user, newest first,
// enriched with showtime, film, studio and seat display data.  When no
// bookings exist an empty slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]BookingDetail, error) {
	return r.list(ctx, `WHERE b.user_id = ?`, userID)
}

// ListAll returns every booking unfiltered, newest first, with the same
// enrichment as ListByUser.  Intended for staff review.
func (r *BookingRepo) ListAll(ctx context.Context) ([]BookingDetail, error) {
	return r.list(ctx, ``)
}

func (r *BookingRepo) list(ctx context.Context, where string, args ...interface{}) ([]BookingDetail, error) {
	// Enrichment is a read-side join; relationships resolve through
	// LEFT JOINs so a booking still lists when its showtime is gone.
	q := `SELECT b.id, b.user_id, b.showtime_id, b.status, b.payment_proof_url, b.total_price, b.created_at,
	             f.title, st.name, s.starts_at
	      FROM bookings b
	      LEFT JOIN showtimes s ON s.id = b.showtime_id
	      LEFT JOIN films f ON f.id = s.film_id
	      LEFT JOIN studios st ON st.id = s.studio_id
	      ` + where + `
	      ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]BookingDetail, 0)
	index := make(map[string]int)
	for rows.Next() {
		var d BookingDetail
		var proof sql.NullString
		var filmTitle, studioName sql.NullString
		var startsAt sql.NullTime
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.ShowtimeID, &d.Status, &proof, &d.TotalPrice, &d.CreatedAt,
			&filmTitle, &studioName, &startsAt,
		); err != nil {
			return nil, err
		}
		d.PaymentProofURL = proof.String
		if filmTitle.Valid {
			v := filmTitle.String
			d.FilmTitle = &v
		}
		if studioName.Valid {
			v := studioName.String
			d.StudioName = &v
		}
		if startsAt.Valid {
			iso := startsAt.Time.UTC().Format(time.RFC3339)
			d.StartsAt = &iso
		}
		d.Seats = []BookingSeatInfo{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	// Populate seats for all bookings in a single query.
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	seatQuery := `SELECT booking_id, seat_id FROM booking_seats
	              WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
	              ORDER BY booking_id, id`
	srows, err := r.db.QueryContext(ctx, seatQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid, sid string
		if err := srows.Scan(&bid, &sid); err != nil {
			return nil, err
		}
		idx, ok := index[bid]
		if !ok {
			continue
		}
		details[idx].Seats = append(details[idx].Seats, BookingSeatInfo{
			SeatID:     sid,
			SeatNumber: seat.Number(sid),
		})
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
