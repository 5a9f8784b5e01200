// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingEvent is published after every committed booking mutation:
// once on creation and once per status change.  It carries enough for
// downstream consumers to log or notify without querying the database.
type BookingEvent struct {
	BookingID  string   `json:"booking_id"`
	UserID     string   `json:"user_id"`
	ShowtimeID string   `json:"showtime_id"`
	Status     string   `json:"status"`
	SeatIDs    []string `json:"seat_ids"`
	TotalPrice int64    `json:"total_price"`
	OccurredAt string   `json:"occurred_at"`
}
