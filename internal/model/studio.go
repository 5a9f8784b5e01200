package model

// Studio represents a screening room.  Its capacity alone determines
// the seat universe: seats are not persisted as first-class rows but
// derived on demand (see internal/seat), so capacity is treated as
// immutable once showtimes reference the studio.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – display name of the studio.
//  Capacity – number of seats; rows of ten are derived from it.
type Studio struct {
	ID       string // studios.id
	Name     string // studios.name
	Capacity int    // studios.capacity
}
