package model

import "time"

// Booking lifecycle states.  Bookings are created Pending and moved by
// staff action to Confirmed or Rejected; Expired is reached only
// through the stale-booking reaper.
const (
	BookingPending   = "Pending"
	BookingConfirmed = "Confirmed"
	BookingRejected  = "Rejected"
	BookingExpired   = "Expired"
)

// Booking is a user's request to hold a set of seats for one showtime.
// Seat associations live in booking_seats and are fixed at creation
// time; only Status ever changes afterwards, and only through the
// booking engine.  Bookings are never physically deleted.
//
// Fields:
//  ID              – primary key identifier (UUID).
//  UserID          – opaque id of the user who created the booking.
//  ShowtimeID      – showtime the seats belong to.
//  Status          – one of the Booking* constants above.
//  PaymentProofURL – opaque URL of the uploaded payment proof.
//  TotalPrice      – pre-computed total, supplied by the caller.
//  CreatedAt       – creation timestamp in UTC.
type Booking struct {
	ID              string    // bookings.id
	UserID          string    // bookings.user_id
	ShowtimeID      string    // bookings.showtime_id
	Status          string    // bookings.status
	PaymentProofURL string    // bookings.payment_proof_url
	TotalPrice      int64     // bookings.total_price
	CreatedAt       time.Time // bookings.created_at
}

// BookingSeat links a booking to one derived seat.  Rows are immutable
// once written; status transitions never touch them.
type BookingSeat struct {
	ID        uint64 // booking_seats.id
	BookingID string // booking_seats.booking_id
	SeatID    string // booking_seats.seat_id
}

// ValidBookingStatus reports whether s is a known booking status.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingRejected, BookingExpired:
		return true
	}
	return false
}

// bookingTransitions lists the statuses a booking may move to from a
// given status.  Confirmed, Rejected and Expired are terminal; the
// only move allowed out of them is the idempotent re-write of the same
// value, which CanTransition accepts unconditionally.
var bookingTransitions = map[string][]string{
	BookingPending: {BookingConfirmed, BookingRejected, BookingExpired},
}

// CanTransition reports whether a booking currently in from may be set
// to to.  Setting the current status again is always permitted so that
// retried staff actions stay idempotent.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SeatStatusAfter returns the seat status implied by a booking moving
// to the given status, or "" when the transition has no seat side
// effect (re-entering Pending).
func SeatStatusAfter(bookingStatus string) string {
	switch bookingStatus {
	case BookingConfirmed:
		return SeatBooked
	case BookingRejected, BookingExpired:
		return SeatAvailable
	}
	return ""
}
