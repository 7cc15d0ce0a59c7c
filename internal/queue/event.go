// Package queue publishes reservation domain events to RabbitMQ and runs
// the consumer that records them in an audit log.
package queue

import "time"

// EventsQueue is the durable queue every domain event is routed to.
const EventsQueue = "studyroom.events"

// Event types.
const (
	ReservationCreated   = "reservation.created"
	ReservationCancelled = "reservation.cancelled"
	CheckInStarted       = "checkin.started"
	CheckOutCompleted    = "checkin.completed"
)

// Event is the payload published after a reservation or session
// changes. It carries enough for consumers to log or notify without
// querying the database.
type Event struct {
	Type            string `json:"type"`
	ReservationID   uint64 `json:"reservation_id"`
	UserID          uint64 `json:"user_id"`
	SeatID          uint64 `json:"seat_id"`
	RoomID          uint64 `json:"room_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          string `json:"status"`
	CheckInID       uint64 `json:"check_in_id,omitempty"`
	DurationMinutes uint32 `json:"duration_minutes,omitempty"`
	OccurredAt      string `json:"occurred_at"`
}

// Stamp sets OccurredAt to t in RFC3339.
func (e Event) Stamp(t time.Time) Event {
	e.OccurredAt = t.UTC().Format(time.RFC3339)
	return e
}
