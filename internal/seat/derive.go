// Package seat derives the addressable seat universe of a studio from
// its capacity.  Seats are not independently persisted in normal
// operation: every layer that needs the full grid recomputes it with
// Derive, so the enumeration must be a stable, pure function of the
// capacity alone.
package seat

import (
	"strconv"
	"strings"
)

// seatsPerRow is the packing factor: seats are assigned ten per row in
// creation order, rows lettered alphabetically starting at 'A'.  The
// last row may be partial.
const seatsPerRow = 10

// Seat is one derived seat.  ID is the globally addressable form
// ("{studioID}-{row}{column}"); Number is the display form within the
// studio ("A1", "B5").
type Seat struct {
	ID     string
	Number string
}

// Derive enumerates every seat of a studio with the given capacity, in
// creation order.  Calling it twice with the same inputs yields the
// same slice.  Capacity <= 0 yields an empty slice, never nil.
func Derive(studioID string, capacity int) []Seat {
	if capacity < 0 {
		capacity = 0
	}
	seats := make([]Seat, 0, capacity)
	for i := 0; i < capacity; i++ {
		row := string(rune('A' + i/seatsPerRow))
		number := row + strconv.Itoa(i%seatsPerRow+1)
		seats = append(seats, Seat{
			ID:     studioID + "-" + number,
			Number: number,
		})
	}
	return seats
}

// Number extracts the display seat number from a seat id: the segment
// between the first separator and the next, so a studio id that itself
// contains a separator does not leak into the number.  Ids without a
// separator are returned whole so malformed legacy ids still render
// something.
func Number(seatID string) string {
	if parts := strings.Split(seatID, "-"); len(parts) > 1 {
		return parts[1]
	}
	return seatID
}
