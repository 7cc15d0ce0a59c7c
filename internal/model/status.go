package model

// Reservation status values.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCheckedIn = "checked_in"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

// ActiveStatuses is the set of reservation statuses that occupy a
// seat. The conflict checks, the active_slot unique-index column and
// the transition table all read from it.
var ActiveStatuses = []string{
	ReservationPending,
	ReservationConfirmed,
	ReservationCheckedIn,
}

var transitions = map[string][]string{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed: {ReservationCheckedIn, ReservationCancelled},
	ReservationCheckedIn: {ReservationCompleted, ReservationCancelled},
}

// IsActiveStatus reports whether status is in ActiveStatuses.
func IsActiveStatus(status string) bool {
	for _, s := range ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsReservationStatus reports whether status is a known reservation status.
func IsReservationStatus(status string) bool {
	switch status {
	case ReservationPending, ReservationConfirmed, ReservationCheckedIn,
		ReservationCancelled, ReservationCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a reservation may move from one
// status to another. Terminal statuses have no outgoing edges.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveSlot returns the value stored in reservations.active_slot:
// 1 for active statuses and nil otherwise. MySQL unique indexes skip
// NULL, so uniqueness on (seat, date, start, active_slot) only binds
// active rows.
func ActiveSlot(status string) *uint8 {
	if !IsActiveStatus(status) {
		return nil
	}
	one := uint8(1)
	return &one
}
