package model

// Seat availability values for a (showtime, seat) pair.  A missing
// seat_statuses row means SeatAvailable; rows appear only once a
// booking attempt has touched the seat for that showtime.
const (
	SeatAvailable = "Available"
	SeatPending   = "Pending"
	SeatBooked    = "Booked"
)

// SeatStatus records the availability of one derived seat for one
// showtime.  At most one row exists per (SeatID, ShowtimeID), enforced
// by a unique key in the database.
//
// Fields:
//  ID         – primary key identifier.
//  SeatID     – derived seat id ("{studioID}-{row}{column}").
//  ShowtimeID – showtime the status is scoped to.
//  Status     – one of SeatAvailable, SeatPending, SeatBooked.
type SeatStatus struct {
	ID         uint64 // seat_statuses.id
	SeatID     string // seat_statuses.seat_id
	ShowtimeID string // seat_statuses.showtime_id
	Status     string // seat_statuses.status
}
