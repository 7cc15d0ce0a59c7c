package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID uint64
	Role   string
}

func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// owns reports whether the caller may act on a resource of userID.
func (c Caller) owns(userID uint64) bool { return c.IsAdmin() || c.UserID == userID }

// Store runs a function inside one storage transaction.
type Store interface {
	InTx(ctx context.Context, fn func(tx repository.TxStore) error) error
}

// EventPublisher delivers domain events after a transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// Deps are shared by the services.
type Deps struct {
	Store    Store
	Events   EventPublisher
	Log      *zap.Logger
	Now      func() time.Time
	Location *time.Location
}

func (d *Deps) defaults() {
	if d.Events == nil {
		d.Events = queue.Nop{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
}

func (d *Deps) publish(ctx context.Context, typ string, r *model.Reservation, ci *model.CheckIn) {
	ev := queue.Event{
		Type:          typ,
		ReservationID: r.ID,
		UserID:        r.UserID,
		SeatID:        r.SeatID,
		RoomID:        r.RoomID,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Status:        r.Status,
	}
	if ci != nil {
		ev.CheckInID = ci.ID
		ev.DurationMinutes = ci.DurationMinutes
	}
	// Events are best effort; the publisher logs its own failures.
	_ = d.Events.Publish(context.WithoutCancel(ctx), ev.Stamp(d.Now()))
}
