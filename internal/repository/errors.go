// Package repository implements MySQL data access for the study-room
// entities. Sentinel errors let the service and handler layers map
// failures to HTTP statuses with errors.Is.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrStudentIDExists     = errors.New("student id already exists")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomNameExists      = errors.New("room name already exists")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrSeatNumberExists    = errors.New("seat number already exists in this room")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrCheckInNotFound     = errors.New("check-in record not found")
	ErrFeedbackNotFound    = errors.New("feedback not found")
	ErrViolationNotFound   = errors.New("violation not found")

	// ErrSlotTaken is returned when the active-slot unique indexes on
	// reservations reject an insert or update.
	ErrSlotTaken = errors.New("time slot already reserved")
)

const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
