package model

import "time"

// Seat status values. Status is a cached occupancy flag kept in
// sync with the seat's active reservation.
const (
	SeatAvailable   = "available"
	SeatOccupied    = "occupied"
	SeatMaintenance = "maintenance"
)

// Seat describes a seat in a study room. (RoomID, SeatNumber) is
// unique.
//
// Fields:
//  ID         – primary key identifier.
//  RoomID     – room to which this seat belongs.
//  SeatNumber – label of the seat within the room.
//  Status     – available, occupied or maintenance.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Seat struct {
	ID         uint64    `json:"id"`          // seats.id
	RoomID     uint64    `json:"room_id"`     // seats.room_id
	SeatNumber string    `json:"seat_number"` // seats.seat_number
	Status     string    `json:"status"`      // seats.status
	CreatedAt  time.Time `json:"created_at"`  // seats.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // seats.updated_at
}
