package model

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingRejected, true},
		{BookingPending, BookingExpired, true},
		{BookingPending, BookingPending, true},
		{BookingConfirmed, BookingConfirmed, true},
		{BookingConfirmed, BookingRejected, false},
		{BookingConfirmed, BookingPending, false},
		{BookingRejected, BookingConfirmed, false},
		{BookingExpired, BookingPending, false},
		{BookingExpired, BookingExpired, true},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSeatStatusAfter(t *testing.T) {
	cases := []struct {
		status string
		want   string
	}{
		{BookingConfirmed, SeatBooked},
		{BookingRejected, SeatAvailable},
		{BookingExpired, SeatAvailable},
		{BookingPending, ""},
	}
	for _, tc := range cases {
		if got := SeatStatusAfter(tc.status); got != tc.want {
			t.Errorf("SeatStatusAfter(%s) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestValidBookingStatus(t *testing.T) {
	for _, s := range []string{BookingPending, BookingConfirmed, BookingRejected, BookingExpired} {
		if !ValidBookingStatus(s) {
			t.Errorf("ValidBookingStatus(%s) = false", s)
		}
	}
	for _, s := range []string{"", "pending", "Cancelled", "Booked"} {
		if ValidBookingStatus(s) {
			t.Errorf("ValidBookingStatus(%q) = true", s)
		}
	}
}
