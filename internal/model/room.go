package model

import "time"

// Room status values.
const (
	RoomOpen        = "open"
	RoomClosed      = "closed"
	RoomMaintenance = "maintenance"
)

// Room represents a study room. Room names are unique. OpenTime
// and CloseTime are "HH:MM" strings. Deleting a room deletes its
// seats.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique room name.
//  Location    – building / floor description.
//  Capacity    – number of seats the room is meant to hold.
//  OpenTime    – daily opening time.
//  CloseTime   – daily closing time.
//  Description – optional free text.
//  Status      – open, closed or maintenance.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Room struct {
	ID          uint64    `json:"id"`          // rooms.id
	Name        string    `json:"name"`        // rooms.name
	Location    string    `json:"location"`    // rooms.location
	Capacity    uint32    `json:"capacity"`    // rooms.capacity
	OpenTime    string    `json:"open_time"`   // rooms.open_time
	CloseTime   string    `json:"close_time"`  // rooms.close_time
	Description *string   `json:"description"` // rooms.description (nullable)
	Status      string    `json:"status"`      // rooms.status
	CreatedAt   time.Time `json:"created_at"`  // rooms.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // rooms.updated_at
}
