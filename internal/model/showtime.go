package model

import "time"

// Film carries the metadata attached to showtimes on read paths.
// The engine never writes films; they exist here only so listing
// endpoints can enrich bookings with a title.
type Film struct {
	ID    string // films.id
	Title string // films.title
}

// Showtime schedules a film in a studio at a date/time with a price.
// The booking engine resolves a showtime to its studio to derive the
// seat universe; everything else is display data.
//
// Fields:
//  ID       – primary key identifier.
//  FilmID   – film being screened.
//  StudioID – studio hosting the screening.
//  StartsAt – scheduled start, stored in UTC.
//  Price    – ticket price per seat.
type Showtime struct {
	ID       string    // showtimes.id
	FilmID   string    // showtimes.film_id
	StudioID string    // showtimes.studio_id
	StartsAt time.Time // showtimes.starts_at
	Price    int64     // showtimes.price
}
