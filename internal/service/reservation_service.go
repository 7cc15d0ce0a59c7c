package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/metrics"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// ReservationReader serves the joined read side of reservations.
type ReservationReader interface {
	ListDetailed(ctx context.Context, userID *uint64) ([]model.ReservationDetail, error)
	GetDetail(ctx context.Context, id uint64) (*model.ReservationDetail, error)
}

// ReservationService owns reservation state and the seat occupancy it
// implies. Every mutation runs in one transaction.
type ReservationService struct {
	Deps
	reads         ReservationReader
	defaultStatus string
}

func NewReservationService(deps Deps, reads ReservationReader, defaultStatus string) *ReservationService {
	deps.defaults()
	if defaultStatus != model.ReservationPending {
		defaultStatus = model.ReservationConfirmed
	}
	return &ReservationService{Deps: deps, reads: reads, defaultStatus: defaultStatus}
}

// CreateInput is a reservation request. RoomID is optional; when set it
// must match the seat's room.
type CreateInput struct {
	SeatID    uint64
	RoomID    uint64
	Date      string
	StartTime string
	EndTime   string
}

// Create books the seat for the caller and marks it occupied.
func (s *ReservationService) Create(ctx context.Context, caller Caller, in CreateInput) (*model.Reservation, error) {
	if err := ValidateSlot(in.Date, in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	var created *model.Reservation
	err := s.Store.InTx(ctx, func(tx repository.TxStore) error {
		seat, err := tx.GetSeat(ctx, in.SeatID, true)
		if err != nil {
			return err
		}
		room, err := tx.GetRoom(ctx, seat.RoomID)
		if err != nil {
			return err
		}
		if in.RoomID != 0 && in.RoomID != room.ID {
			return ErrSeatRoomMismatch
		}

		// Overlaps are reported before occupancy so a clash names its scope.
		cand := Candidate{UserID: caller.UserID, SeatID: seat.ID, Date: in.Date,
			Interval: Interval{Start: in.StartTime, End: in.EndTime}}
		if err := s.detect(ctx, tx, cand); err != nil {
			return err
		}
		if seat.Status != model.SeatAvailable {
			return ErrSeatUnavailable
		}

		now := s.Now().UTC()
		r := &model.Reservation{
			UserID:    caller.UserID,
			SeatID:    seat.ID,
			RoomID:    room.ID,
			Date:      in.Date,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Status:    s.defaultStatus,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.CreateReservation(ctx, r); err != nil {
			return slotErr(err)
		}
		if err := tx.SetSeatStatus(ctx, seat.ID, model.SeatOccupied); err != nil {
			return err
		}
		created = r
		return nil
	})
	metrics.ReservationOps.WithLabelValues("create", metrics.ResultOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.Log.Info("reservation created", zap.Uint64("reservation_id", created.ID),
		zap.Uint64("user_id", created.UserID), zap.Uint64("seat_id", created.SeatID))
	s.publish(ctx, queue.ReservationCreated, created, nil)
	return created, nil
}

// detect loads the active reservations of both scopes and runs Detect.
func (s *ReservationService) detect(ctx context.Context, tx repository.TxStore, c Candidate) error {
	userRows, err := tx.ListActiveByUserDate(ctx, c.UserID, c.Date)
	if err != nil {
		return err
	}
	seatRows, err := tx.ListActiveBySeatDate(ctx, c.SeatID, c.Date)
	if err != nil {
		return err
	}
	err = Detect(c, userRows, seatRows)
	switch {
	case errors.Is(err, ErrUserConflict):
		metrics.Conflicts.WithLabelValues("user").Inc()
	case errors.Is(err, ErrSeatConflict):
		metrics.Conflicts.WithLabelValues("seat").Inc()
	}
	return err
}

// slotErr maps a storage uniqueness rejection to a conflict.
func slotErr(err error) error {
	if errors.Is(err, repository.ErrSlotTaken) {
		metrics.Conflicts.WithLabelValues("storage").Inc()
		return ErrSlotConflict
	}
	return err
}

// Confirm moves a pending reservation to confirmed. Admin only.
func (s *ReservationService) Confirm(ctx context.Context, caller Caller, id uint64) (*model.Reservation, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	var out *model.Reservation
	err := s.Store.InTx(ctx, func(tx repository.TxStore) error {
		r, err := tx.GetReservation(ctx, id, true)
		if err != nil {
			return err
		}
		if !model.CanTransition(r.Status, model.ReservationConfirmed) {
			return ErrInvalidTransition
		}
		r.Status = model.ReservationConfirmed
		r.UpdatedAt = s.Now().UTC()
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	metrics.ReservationOps.WithLabelValues("confirm", metrics.ResultOf(err)).Inc()
	return out, err
}

// UpdateInput carries the editable fields. Nil fields are unchanged.
// User, seat and room are not editable.
type UpdateInput struct {
	Date      *string
	StartTime *string
	EndTime   *string
	Status    *string
}

// Update revalidates and persists date, time and status changes. A
// status of cancelled runs the cancellation path; confirmed requires an
// admin. Other statuses are reached only through check-in and check-out.
func (s *ReservationService) Update(ctx context.Context, caller Caller, id uint64, in UpdateInput) (*model.Reservation, error) {
	var (
		out       *model.Reservation
		cancelled bool
	)
	err := s.Store.InTx(ctx, func(tx repository.TxStore) error {
		r, err := tx.GetReservation(ctx, id, true)
		if err != nil {
			return err
		}
		if !caller.owns(r.UserID) {
			return ErrForbidden
		}

		if in.Status != nil && *in.Status != r.Status {
			switch *in.Status {
			case model.ReservationCancelled:
				if err := s.cancelTx(ctx, tx, r); err != nil {
					return err
				}
				out, cancelled = r, true
				return nil
			case model.ReservationConfirmed:
				if !caller.IsAdmin() {
					return ErrForbidden
				}
				if !model.CanTransition(r.Status, model.ReservationConfirmed) {
					return ErrInvalidTransition
				}
				r.Status = model.ReservationConfirmed
			default:
				return ErrStatusNotEditable
			}
		}

		next := *r
		if in.Date != nil {
			next.Date = *in.Date
		}
		if in.StartTime != nil {
			next.StartTime = *in.StartTime
		}
		if in.EndTime != nil {
			next.EndTime = *in.EndTime
		}
		if next.Date != r.Date || next.StartTime != r.StartTime || next.EndTime != r.EndTime {
			if r.Status == model.ReservationCheckedIn {
				return ErrInvalidTransition
			}
			if err := ValidateSlot(next.Date, next.StartTime, next.EndTime); err != nil {
				return err
			}
			if next.IsActive() {
				cand := Candidate{ID: r.ID, UserID: r.UserID, SeatID: r.SeatID, Date: next.Date,
					Interval: Interval{Start: next.StartTime, End: next.EndTime}}
				if err := s.detect(ctx, tx, cand); err != nil {
					return err
				}
			}
		}
		next.UpdatedAt = s.Now().UTC()
		if err := tx.UpdateReservation(ctx, &next); err != nil {
			return slotErr(err)
		}
		out = &next
		return nil
	})
	metrics.ReservationOps.WithLabelValues("update", metrics.ResultOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	if cancelled {
		s.publish(ctx, queue.ReservationCancelled, out, nil)
	}
	return out, nil
}

// Cancel sets the reservation to cancelled and releases its seat. An
// open session is checked out first so the ledger stays closed.
func (s *ReservationService) Cancel(ctx context.Context, caller Caller, id uint64) (*model.Reservation, error) {
	var out *model.Reservation
	err := s.Store.InTx(ctx, func(tx repository.TxStore) error {
		r, err := tx.GetReservation(ctx, id, true)
		if err != nil {
			return err
		}
		if !caller.owns(r.UserID) {
			return ErrForbidden
		}
		if err := s.cancelTx(ctx, tx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	metrics.ReservationOps.WithLabelValues("cancel", metrics.ResultOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.Log.Info("reservation cancelled", zap.Uint64("reservation_id", out.ID), zap.Uint64("by_user", caller.UserID))
	s.publish(ctx, queue.ReservationCancelled, out, nil)
	return out, nil
}

func (s *ReservationService) cancelTx(ctx context.Context, tx repository.TxStore, r *model.Reservation) error {
	if !model.CanTransition(r.Status, model.ReservationCancelled) {
		return ErrInvalidTransition
	}
	now := s.Now()
	if r.Status == model.ReservationCheckedIn {
		ci, err := tx.GetOpenCheckIn(ctx, r.ID)
		switch {
		case err == nil:
			if err := closeSession(ctx, tx, ci, now, s.Location); err != nil {
				return err
			}
		case !errors.Is(err, repository.ErrCheckInNotFound):
			return err
		}
	}
	r.Status = model.ReservationCancelled
	r.UpdatedAt = now.UTC()
	if err := tx.UpdateReservation(ctx, r); err != nil {
		return err
	}
	return tx.SetSeatStatus(ctx, r.SeatID, model.SeatAvailable)
}

// Delete removes a reservation. Admin only. An active reservation is
// cancelled first so its seat is released.
func (s *ReservationService) Delete(ctx context.Context, caller Caller, id uint64) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	err := s.Store.InTx(ctx, func(tx repository.TxStore) error {
		r, err := tx.GetReservation(ctx, id, true)
		if err != nil {
			return err
		}
		if r.IsActive() {
			if err := s.cancelTx(ctx, tx, r); err != nil {
				return err
			}
		}
		return tx.DeleteReservation(ctx, id)
	})
	metrics.ReservationOps.WithLabelValues("delete", metrics.ResultOf(err)).Inc()
	return err
}

// List returns the caller's reservations, or every reservation for an
// admin unless mine is set.
func (s *ReservationService) List(ctx context.Context, caller Caller, mine bool) ([]model.ReservationDetail, error) {
	if caller.IsAdmin() && !mine {
		return s.reads.ListDetailed(ctx, nil)
	}
	uid := caller.UserID
	return s.reads.ListDetailed(ctx, &uid)
}

// Get returns one reservation the caller owns, or any for an admin.
func (s *ReservationService) Get(ctx context.Context, caller Caller, id uint64) (*model.ReservationDetail, error) {
	d, err := s.reads.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.owns(d.UserID) {
		return nil, ErrForbidden
	}
	return d, nil
}
