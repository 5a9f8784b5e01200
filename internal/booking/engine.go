// Package booking implements the seat-inventory and booking-transaction
// engine.  It exclusively owns the write path to bookings, booking_seats
// and seat_statuses: every mutation is a single SQL transaction guarded
// by a per-showtime lock, so a booking and its seat side effects commit
// together or not at all.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/andhika-rp/bioskop-booking/internal/cache"
	"github.com/andhika-rp/bioskop-booking/internal/model"
	"github.com/andhika-rp/bioskop-booking/internal/queue"
	"github.com/andhika-rp/bioskop-booking/internal/repository"
	"github.com/andhika-rp/bioskop-booking/internal/seat"
)

// ErrNoSeats is returned when a booking request carries an empty seat
// selection.  Validation happens before any write begins.
var ErrNoSeats = errors.New("no seats selected")

// ErrUnknownStatus is returned when a status update names a value
// outside the booking vocabulary.
var ErrUnknownStatus = errors.New("unknown booking status")

// ErrInvalidTransition is returned when a status update would move a
// booking out of a terminal state.
var ErrInvalidTransition = errors.New("invalid booking status transition")

// SeatUnavailableError rejects a booking whose requested seats are not
// all Available.  The whole batch fails; Seats lists the offenders.
type SeatUnavailableError struct {
	Seats []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %v", e.Seats)
}

// Request carries the caller-supplied fields of a new booking.  The
// total price is pre-computed by the caller; the proof URL is opaque.
type Request struct {
	UserID          string
	ShowtimeID      string
	TotalPrice      int64
	PaymentProofURL string
}

// SeatAvailability is one entry of the full seat grid for a showtime.
type SeatAvailability struct {
	SeatID     string `json:"seat_id"`
	ShowtimeID string `json:"showtime_id"`
	Status     string `json:"status"`
	SeatNumber string `json:"seat_number"`
}

// Engine orchestrates booking creation and status transitions together
// with their seat-status side effects.  Grid and Events may be nil; the
// engine then runs without caching or event publishing.
type Engine struct {
	db           *sql.DB
	showtimes    *repository.ShowtimeRepo
	studios      *repository.StudioRepo
	seatStatuses *repository.SeatStatusRepo
	bookings     *repository.BookingRepo
	grid         *cache.SeatGridCache
	events       *queue.Publisher
	locks        *showtimeLocks
	now          func() time.Time
}

// NewEngine constructs an Engine.  The repositories must be non-nil and
// bound to the same database as db.
func NewEngine(
	db *sql.DB,
	showtimes *repository.ShowtimeRepo,
	studios *repository.StudioRepo,
	seatStatuses *repository.SeatStatusRepo,
	bookings *repository.BookingRepo,
	grid *cache.SeatGridCache,
	events *queue.Publisher,
) *Engine {
	if db == nil || showtimes == nil || studios == nil || seatStatuses == nil || bookings == nil {
		panic("nil dependency passed to NewEngine")
	}
	return &Engine{
		db:           db,
		showtimes:    showtimes,
		studios:      studios,
		seatStatuses: seatStatuses,
		bookings:     bookings,
		grid:         grid,
		events:       events,
		locks:        newShowtimeLocks(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SeatStatuses returns the full seat grid for a showtime: one entry per
// derived seat of the showtime's studio, defaulting to Available unless
// a recorded status overrides it.  An unresolved showtime or studio
// yields an empty grid and no error — the caller renders "no seats"
// rather than a failure.
func (e *Engine) SeatStatuses(ctx context.Context, showtimeID string) ([]SeatAvailability, error) {
	var cached []SeatAvailability
	if e.grid.Get(ctx, showtimeID, &cached) {
		return cached, nil
	}

	// The miss path runs under the showtime lock: a mutation commits
	// and invalidates while holding it, so a grid read here cannot be
	// re-cached after an invalidation that superseded it.
	unlock := e.locks.lock(showtimeID)
	defer unlock()

	// Another reader may have repopulated the cache while we waited.
	if e.grid.Get(ctx, showtimeID, &cached) {
		return cached, nil
	}

	show, err := e.showtimes.GetByID(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return []SeatAvailability{}, nil
		}
		return nil, err
	}
	studio, err := e.studios.GetByID(ctx, show.StudioID)
	if err != nil {
		if errors.Is(err, repository.ErrStudioNotFound) {
			return []SeatAvailability{}, nil
		}
		return nil, err
	}
	recorded, err := e.seatStatuses.ListByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	overrides := make(map[string]string, len(recorded))
	for _, s := range recorded {
		overrides[s.SeatID] = s.Status
	}

	derived := seat.Derive(studio.ID, studio.Capacity)
	grid := make([]SeatAvailability, 0, len(derived))
	for _, s := range derived {
		status := model.SeatAvailable
		if recordedStatus, ok := overrides[s.ID]; ok {
			status = recordedStatus
		}
		grid = append(grid, SeatAvailability{
			SeatID:     s.ID,
			ShowtimeID: showtimeID,
			Status:     status,
			SeatNumber: s.Number,
		})
	}
	e.grid.Set(ctx, showtimeID, grid)
	return grid, nil
}

// CreateBooking creates a booking in Pending state and marks every
// requested seat Pending for the showtime, atomically.  A requested
// seat already Pending or Booked rejects the whole batch with
// *SeatUnavailableError before anything is written.
func (e *Engine) CreateBooking(ctx context.Context, req Request, seatIDs []string) (*model.Booking, error) {
	if len(seatIDs) == 0 {
		return nil, ErrNoSeats
	}
	// Deduplicate so a repeated seat id cannot double-insert.
	unique := make([]string, 0, len(seatIDs))
	seen := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return nil, ErrNoSeats
	}

	unlock := e.locks.lock(req.ShowtimeID)
	defer unlock()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Availability check and the writes below commit as one unit; the
	// row locks taken here hold until commit so a concurrent request
	// for an overlapping seat waits and then sees this booking's rows.
	taken, err := e.seatStatuses.UnavailableTx(ctx, tx, req.ShowtimeID, unique)
	if err != nil {
		return nil, fmt.Errorf("check seat availability: %w", err)
	}
	if len(taken) > 0 {
		return nil, &SeatUnavailableError{Seats: taken}
	}

	b := &model.Booking{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		ShowtimeID:      req.ShowtimeID,
		Status:          model.BookingPending,
		PaymentProofURL: req.PaymentProofURL,
		TotalPrice:      req.TotalPrice,
		CreatedAt:       e.now(),
	}
	if err := e.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	if err := e.bookings.CreateSeatsBulkTx(ctx, tx, b.ID, unique); err != nil {
		return nil, fmt.Errorf("insert booking seats: %w", err)
	}
	if err := e.seatStatuses.BulkUpsertTx(ctx, tx, req.ShowtimeID, unique, model.SeatPending); err != nil {
		return nil, fmt.Errorf("mark seats pending: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	e.grid.Invalidate(ctx, req.ShowtimeID)
	e.publish(ctx, b, unique)
	return b, nil
}

// UpdateBookingStatus sets a booking's status and applies the seat side
// effects in the same transaction: Confirmed books the seats,
// Rejected and Expired release them, Pending re-entry changes nothing.
// An unknown booking returns repository.ErrBookingNotFound without
// touching any seat status.
func (e *Engine) UpdateBookingStatus(ctx context.Context, bookingID, newStatus string) (*model.Booking, error) {
	if !model.ValidBookingStatus(newStatus) {
		return nil, ErrUnknownStatus
	}
	// Resolve the showtime first so the write can serialize on it.
	existing, err := e.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.lock(existing.ShowtimeID)
	defer unlock()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Re-read under lock: the status may have moved since the lookup.
	b, err := e.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(b.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, newStatus)
	}
	if b.Status == newStatus {
		// Idempotent re-write, nothing to change; the deferred
		// rollback discards the read-only transaction.
		return b, nil
	}
	if err := e.bookings.UpdateStatusTx(ctx, tx, bookingID, newStatus); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	seatIDs, err := e.bookings.SeatIDsTx(ctx, tx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking seats: %w", err)
	}
	if after := model.SeatStatusAfter(newStatus); after != "" {
		if err := e.seatStatuses.BulkUpsertTx(ctx, tx, b.ShowtimeID, seatIDs, after); err != nil {
			return nil, fmt.Errorf("update seat statuses: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	b.Status = newStatus
	e.grid.Invalidate(ctx, b.ShowtimeID)
	e.publish(ctx, b, seatIDs)
	return b, nil
}

// ExpireStale moves Pending bookings older than olderThan to Expired,
// releasing their seats through the normal transition path.  It returns
// how many bookings were expired.  Races with a concurrent confirm are
// benign: the transition guard skips bookings that left Pending.
func (e *Engine) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := e.now().Add(-olderThan)
	ids, err := e.bookings.ListStalePendingIDs(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, id := range ids {
		if _, err := e.UpdateBookingStatus(ctx, id, model.BookingExpired); err != nil {
			if errors.Is(err, ErrInvalidTransition) || errors.Is(err, repository.ErrBookingNotFound) {
				continue
			}
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// ListUserBookings returns a user's bookings with display enrichment.
func (e *Engine) ListUserBookings(ctx context.Context, userID string) ([]repository.BookingDetail, error) {
	return e.bookings.ListByUser(ctx, userID)
}

// ListAllBookings returns every booking for staff review.
func (e *Engine) ListAllBookings(ctx context.Context) ([]repository.BookingDetail, error) {
	return e.bookings.ListAll(ctx)
}

// publish emits a booking event after a committed mutation.  Publish
// failures are logged and dropped: the commit already happened and must
// not be reported as failed.
func (e *Engine) publish(ctx context.Context, b *model.Booking, seatIDs []string) {
	if e.events == nil {
		return
	}
	ev := queue.BookingEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		ShowtimeID: b.ShowtimeID,
		Status:     b.Status,
		SeatIDs:    seatIDs,
		TotalPrice: b.TotalPrice,
		OccurredAt: e.now().Format(time.RFC3339),
	}
	if err := e.events.Publish(ctx, ev); err != nil {
		log.Printf("booking: publish event for %s failed: %v", b.ID, err)
	}
}
