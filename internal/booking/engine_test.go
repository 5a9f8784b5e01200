package booking

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andhika-rp/bioskop-booking/internal/model"
	"github.com/andhika-rp/bioskop-booking/internal/repository"
)

var testNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	e := NewEngine(
		db,
		repository.NewShowtimeRepo(db),
		repository.NewStudioRepo(db),
		repository.NewSeatStatusRepo(db),
		repository.NewBookingRepo(db),
		nil, // no grid cache
		nil, // no event publisher
	)
	e.now = func() time.Time { return testNow }
	return e, mock, func() { db.Close() }
}

func bookingColumns() []string {
	return []string{"id", "user_id", "showtime_id", "status", "payment_proof_url", "total_price", "created_at"}
}

func TestCreateBookingRejectsEmptySeats(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	_, err := e.CreateBooking(context.Background(), Request{ShowtimeID: "show-1"}, nil)
	assert.ErrorIs(t, err, ErrNoSeats)

	_, err = e.CreateBooking(context.Background(), Request{ShowtimeID: "show-1"}, []string{"", ""})
	assert.ErrorIs(t, err, ErrNoSeats)

	// No SQL may run for a rejected request.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingCommitsAllEffects(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seat_id FROM seat_statuses").
		WithArgs("show-1", model.SeatPending, model.SeatBooked, "st9-A1", "st9-A2").
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(sqlmock.AnyArg(), "user-1", "show-1", model.BookingPending, "https://proof.example/p.jpg", int64(90000), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO booking_seats").
		WithArgs(sqlmock.AnyArg(), "st9-A1", sqlmock.AnyArg(), "st9-A2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO seat_statuses").
		WithArgs("st9-A1", "show-1", model.SeatPending, "st9-A2", "show-1", model.SeatPending).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	req := Request{
		UserID:          "user-1",
		ShowtimeID:      "show-1",
		TotalPrice:      90000,
		PaymentProofURL: "https://proof.example/p.jpg",
	}
	b, err := e.CreateBooking(context.Background(), req, []string{"st9-A1", "st9-A2", "st9-A2"})
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, testNow, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRejectsTakenSeat(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seat_id FROM seat_statuses").
		WithArgs("show-1", model.SeatPending, model.SeatBooked, "st9-A1", "st9-A2").
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow("st9-A2"))
	mock.ExpectRollback()

	_, err := e.CreateBooking(context.Background(), Request{UserID: "u", ShowtimeID: "show-1"}, []string{"st9-A1", "st9-A2"})
	var unavailable *SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"st9-A2"}, unavailable.Seats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRollsBackOnStorageError(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seat_id FROM seat_statuses").
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := e.CreateBooking(context.Background(), Request{UserID: "u", ShowtimeID: "show-1"}, []string{"st9-A1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingStatusNotFound(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	mock.ExpectQuery("FROM bookings WHERE id").
		WithArgs("missing-id").
		WillReturnError(sql.ErrNoRows)

	_, err := e.UpdateBookingStatus(context.Background(), "missing-id", model.BookingConfirmed)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
	// No transaction, no seat mutation.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingStatusRejectsUnknownValue(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	_, err := e.UpdateBookingStatus(context.Background(), "b1", "Cancelled")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectStatusUpdate(mock sqlmock.Sqlmock, bookingID, from, to, seatStatus string) {
	pendingRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(bookingColumns()).
			AddRow(bookingID, "user-1", "show-1", from, "", int64(45000), testNow)
	}
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs(bookingID).WillReturnRows(pendingRow())
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs(bookingID).WillReturnRows(pendingRow())
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(to, bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT seat_id FROM booking_seats").
		WithArgs(bookingID).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow("st9-A1"))
	mock.ExpectExec("INSERT INTO seat_statuses").
		WithArgs("st9-A1", "show-1", seatStatus).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestUpdateBookingStatusConfirmedBooksSeats(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	expectStatusUpdate(mock, "b1", model.BookingPending, model.BookingConfirmed, model.SeatBooked)

	b, err := e.UpdateBookingStatus(context.Background(), "b1", model.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingStatusRejectedReleasesSeats(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	expectStatusUpdate(mock, "b2", model.BookingPending, model.BookingRejected, model.SeatAvailable)

	b, err := e.UpdateBookingStatus(context.Background(), "b2", model.BookingRejected)
	require.NoError(t, err)
	assert.Equal(t, model.BookingRejected, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingStatusGuardsTerminalStates(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	confirmedRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(bookingColumns()).
			AddRow("b3", "user-1", "show-1", model.BookingConfirmed, "", int64(45000), testNow)
	}
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs("b3").WillReturnRows(confirmedRow())
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs("b3").WillReturnRows(confirmedRow())
	mock.ExpectRollback()

	_, err := e.UpdateBookingStatus(context.Background(), "b3", model.BookingRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingStatusIdempotentRewrite(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	confirmedRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(bookingColumns()).
			AddRow("b4", "user-1", "show-1", model.BookingConfirmed, "", int64(45000), testNow)
	}
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs("b4").WillReturnRows(confirmedRow())
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs("b4").WillReturnRows(confirmedRow())
	mock.ExpectRollback()

	b, err := e.UpdateBookingStatus(context.Background(), "b4", model.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatStatusesUnknownShowtimeIsEmptyGrid(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	mock.ExpectQuery("FROM showtimes WHERE id").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	grid, err := e.SeatStatuses(context.Background(), "nope")
	require.NoError(t, err)
	require.NotNil(t, grid)
	assert.Empty(t, grid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatStatusesFullGridWithOverrides(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	mock.ExpectQuery("FROM showtimes WHERE id").
		WithArgs("show-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "film_id", "studio_id", "starts_at", "price"}).
			AddRow("show-1", "f1", "st9", testNow, int64(45000)))
	mock.ExpectQuery("FROM studios WHERE id").
		WithArgs("st9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity"}).
			AddRow("st9", "Studio 9", 15))
	mock.ExpectQuery("FROM seat_statuses").
		WithArgs("show-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "seat_id", "showtime_id", "status"}).
			AddRow(1, "st9-A3", "show-1", model.SeatPending).
			AddRow(2, "st9-B5", "show-1", model.SeatBooked))

	grid, err := e.SeatStatuses(context.Background(), "show-1")
	require.NoError(t, err)
	require.Len(t, grid, 15)

	byID := make(map[string]SeatAvailability, len(grid))
	for _, s := range grid {
		byID[s.SeatID] = s
	}
	assert.Equal(t, model.SeatAvailable, byID["st9-A1"].Status)
	assert.Equal(t, model.SeatPending, byID["st9-A3"].Status)
	assert.Equal(t, model.SeatBooked, byID["st9-B5"].Status)
	assert.Equal(t, "A1", byID["st9-A1"].SeatNumber)
	// Derivation order: A1..A10 then B1..B5.
	assert.Equal(t, "st9-A1", grid[0].SeatID)
	assert.Equal(t, "st9-B5", grid[14].SeatID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatStatusesMissWaitsForShowtimeLock(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	mock.ExpectQuery("FROM showtimes WHERE id").
		WithArgs("show-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "film_id", "studio_id", "starts_at", "price"}).
			AddRow("show-1", "f1", "st9", testNow, int64(45000)))
	mock.ExpectQuery("FROM studios WHERE id").
		WithArgs("st9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity"}).
			AddRow("st9", "Studio 9", 5))
	mock.ExpectQuery("FROM seat_statuses").
		WithArgs("show-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "seat_id", "showtime_id", "status"}))

	// A writer holding the showtime lock (as every mutation does until
	// after its commit and cache invalidation) must block a cache-miss
	// read, so the read cannot re-cache state a mutation superseded.
	unlockWriter := e.locks.lock("show-1")

	read := make(chan struct{})
	go func() {
		grid, err := e.SeatStatuses(context.Background(), "show-1")
		assert.NoError(t, err)
		assert.Len(t, grid, 5)
		close(read)
	}()

	select {
	case <-read:
		t.Fatal("seat grid read completed while a mutation held the showtime lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlockWriter()
	select {
	case <-read:
	case <-time.After(2 * time.Second):
		t.Fatal("seat grid read did not complete after the lock was released")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConcurrentCreateBookingSameSeat(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	// The per-showtime lock serializes the two calls, so the mock sees
	// one complete transaction after the other: whichever call wins
	// finds no taken rows and commits, the loser finds the seat Pending
	// and rolls back.  AnyArg covers the fields that differ per caller.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seat_id FROM seat_statuses").
		WithArgs("show-1", model.SeatPending, model.SeatBooked, "st9-A1").
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "show-1", model.BookingPending, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO booking_seats").
		WithArgs(sqlmock.AnyArg(), "st9-A1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO seat_statuses").
		WithArgs("st9-A1", "show-1", model.SeatPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seat_id FROM seat_statuses").
		WithArgs("show-1", model.SeatPending, model.SeatBooked, "st9-A1").
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow("st9-A1"))
	mock.ExpectRollback()

	type outcome struct {
		booking *model.Booking
		err     error
	}
	results := make(chan outcome, 2)
	for _, user := range []string{"user-1", "user-2"} {
		go func(userID string) {
			b, err := e.CreateBooking(context.Background(), Request{
				UserID:     userID,
				ShowtimeID: "show-1",
				TotalPrice: 45000,
			}, []string{"st9-A1"})
			results <- outcome{booking: b, err: err}
		}(user)
	}

	successes, rejections := 0, 0
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err == nil {
			require.NotNil(t, r.booking)
			assert.Equal(t, model.BookingPending, r.booking.Status)
			successes++
			continue
		}
		var unavailable *SeatUnavailableError
		require.ErrorAs(t, r.err, &unavailable)
		assert.Equal(t, []string{"st9-A1"}, unavailable.Seats)
		rejections++
	}
	assert.Equal(t, 1, successes, "exactly one booking must win the seat")
	assert.Equal(t, 1, rejections, "the other booking must be rejected")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireStaleReleasesSeats(t *testing.T) {
	e, mock, done := newTestEngine(t)
	defer done()

	mock.ExpectQuery("SELECT id FROM bookings WHERE status").
		WithArgs(model.BookingPending, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b5"))
	expectStatusUpdate(mock, "b5", model.BookingPending, model.BookingExpired, model.SeatAvailable)

	n, err := e.ExpireStale(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
