package model

import "time"

// Check-in status values.
const (
	CheckInOpen   = "checked-in"
	CheckInClosed = "checked-out"
)

// CheckIn is one occupancy session for a reservation. It is created
// at check-in, updated once at check-out and never deleted, which
// makes the check_ins table the ledger study statistics derive from.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who checked in.
//  ReservationID   – reservation being used.
//  RoomID          – room of the seat.
//  SeatID          – occupied seat.
//  CheckInTime     – start of the session.
//  CheckOutTime    – end of the session (nil while open).
//  Status          – checked-in or checked-out.
//  QRCodeUsed      – whether the session started from a QR token.
//  QRCodeData      – the token presented, if any.
//  DurationMinutes – whole minutes between check-in and check-out.
//  CreatedAt       – creation timestamp.
type CheckIn struct {
	ID              uint64     `json:"id"`               // check_ins.id
	UserID          uint64     `json:"user_id"`          // check_ins.user_id
	ReservationID   uint64     `json:"reservation_id"`   // check_ins.reservation_id
	RoomID          uint64     `json:"room_id"`          // check_ins.room_id
	SeatID          uint64     `json:"seat_id"`          // check_ins.seat_id
	CheckInTime     time.Time  `json:"check_in_time"`    // check_ins.check_in_time
	CheckOutTime    *time.Time `json:"check_out_time"`   // check_ins.check_out_time (nullable)
	Status          string     `json:"status"`           // check_ins.status
	QRCodeUsed      bool       `json:"qr_code_used"`     // check_ins.qr_code_used
	QRCodeData      string     `json:"qr_code_data"`     // check_ins.qr_code_data
	DurationMinutes uint32     `json:"duration_minutes"` // check_ins.duration_minutes
	CreatedAt       time.Time  `json:"created_at"`       // check_ins.created_at
}
