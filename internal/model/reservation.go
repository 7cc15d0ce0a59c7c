package model

import "time"

// Reservation records a user's booking of one seat for a time
// window on a calendar day. Date is an opaque "YYYY-MM-DD" day key
// and StartTime/EndTime are "HH:MM" strings; both compare
// lexicographically in chronological order.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who made the reservation.
//  SeatID    – reserved seat.
//  RoomID    – room containing the seat at creation time.
//  Date      – calendar day of the reservation.
//  StartTime – inclusive start of the window.
//  EndTime   – exclusive end of the window.
//  Status    – see the Reservation* constants.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64    `json:"id"`         // reservations.id
	UserID    uint64    `json:"user_id"`    // reservations.user_id
	SeatID    uint64    `json:"seat_id"`    // reservations.seat_id
	RoomID    uint64    `json:"room_id"`    // reservations.room_id
	Date      string    `json:"date"`       // reservations.reserve_date
	StartTime string    `json:"start_time"` // reservations.start_time
	EndTime   string    `json:"end_time"`   // reservations.end_time
	Status    string    `json:"status"`     // reservations.status
	CreatedAt time.Time `json:"created_at"` // reservations.created_at
	UpdatedAt time.Time `json:"updated_at"` // reservations.updated_at
}

// IsActive reports whether the reservation occupies its seat.
func (r *Reservation) IsActive() bool { return IsActiveStatus(r.Status) }

// ReservationUser, ReservationSeat and ReservationRoom are the
// joined projections attached to reservation listings.
type ReservationUser struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Phone     string `json:"phone"`
}

type ReservationSeat struct {
	ID         uint64 `json:"id"`
	SeatNumber string `json:"seat_number"`
	Status     string `json:"status"`
}

type ReservationRoom struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ReservationDetail is a reservation joined with its user, seat and
// room. Seat and Room are nil when the referenced rows were deleted.
type ReservationDetail struct {
	Reservation
	User *ReservationUser `json:"user"`
	Seat *ReservationSeat `json:"seat"`
	Room *ReservationRoom `json:"room"`
}
