// Package service holds the reservation lifecycle, the conflict detector,
// the check-in/check-out engine and the statistics aggregator.
package service

import "errors"

// Kind classifies a service error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindForbidden
	KindNotFound
)

// Error is a classified, client-safe service error.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

var (
	ErrForbidden = &Error{KindForbidden, "not authorized to access this resource"}

	ErrUserConflict     = &Error{KindConflict, "you already have a reservation during this time"}
	ErrSeatConflict     = &Error{KindConflict, "this seat is already reserved during this time"}
	ErrSlotConflict     = &Error{KindConflict, "this time slot was just reserved, please choose another"}
	ErrSeatUnavailable  = &Error{KindConflict, "seat is not available"}
	ErrSeatRoomMismatch = &Error{KindValidation, "seat does not belong to the given room"}

	ErrInvalidTransition = &Error{KindConflict, "reservation status does not allow this operation"}
	ErrStatusNotEditable = &Error{KindValidation, "status can only be changed to confirmed or cancelled"}
	ErrNotConfirmed      = &Error{KindValidation, "only confirmed reservations can generate a qr code"}

	ErrAlreadyCheckedIn  = &Error{KindConflict, "already checked in"}
	ErrAlreadyCheckedOut = &Error{KindConflict, "already checked out"}

	ErrInvalidQR = &Error{KindValidation, "invalid or expired qr code"}
	ErrQRUsed    = &Error{KindConflict, "qr code already used"}

	// ErrReservationNotOwned hides reservations of other users on the QR
	// path, which reports them as missing.
	ErrReservationNotOwned = &Error{KindNotFound, "reservation not found"}
)

// KindOf returns the kind of err, or 0 when err is not a service Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
