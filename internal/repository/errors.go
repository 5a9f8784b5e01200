// Package repository defines data access for the booking core's tables.
// Sentinel errors declared here let the engine distinguish recoverable
// lookup misses from storage failures: an unresolved showtime or studio
// degrades to an empty seat grid, an unknown booking surfaces as
// not-found, and everything else is a storage error.
package repository

import "errors"

// ErrStudioNotFound is returned when a studio lookup yields no rows.
var ErrStudioNotFound = errors.New("studio not found")

// ErrShowtimeNotFound is returned when a showtime lookup yields no rows.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrBookingNotFound is returned when a booking lookup yields no rows.
// Callers treat this as an absent result, not a hard failure.
var ErrBookingNotFound = errors.New("booking not found")
