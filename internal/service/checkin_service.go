package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/metrics"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// CheckInReader lists sessions for the read endpoints.
type CheckInReader interface {
	ListByUser(ctx context.Context, userID uint64) ([]model.CheckIn, error)
}

// ReplayGuard remembers QR token ids that already produced a check-in.
// Claim returns false when id was claimed before.
type ReplayGuard interface {
	Claim(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, id string) error
}

// CheckInService turns reservations into sessions and closes them.
type CheckInService struct {
	Deps
	reads  CheckInReader
	qr     *QRIssuer
	replay ReplayGuard
}

// NewCheckInService wires the engine. replay may be nil, which disables
// single-use enforcement of QR tokens.
func NewCheckInService(deps Deps, reads CheckInReader, qr *QRIssuer, replay ReplayGuard) *CheckInService {
	deps.defaults()
	return &CheckInService{Deps: deps, reads: reads, qr: qr, replay: replay}
}

// CheckIn opens a session for the reservation. qrData is recorded when
// the check-in came from a QR token.
func (s *CheckInService) CheckIn(ctx context.Context, caller Caller, reservationID uint64, qrData string) (*model.CheckIn, error) {
	var (
		ci  *model.CheckIn
		res *model.Reservation
	)
	err := s.Store.InTx(ctx, func(tx repository.TxStore) error {
		r, err := tx.GetReservation(ctx, reservationID, true)
		if err != nil {
			return err
		}
		if !caller.owns(r.UserID) {
			return ErrForbidden
		}
		if _, err := tx.GetOpenCheckIn(ctx, r.ID); err == nil {
			return ErrAlreadyCheckedIn
		} else if !errors.Is(err, repository.ErrCheckInNotFound) {
			return err
		}
		if !model.CanTransition(r.Status, model.ReservationCheckedIn) {
			return ErrInvalidTransition
		}

		now := s.Now().UTC()
		c := &model.CheckIn{
			UserID:        r.UserID,
			ReservationID: r.ID,
			RoomID:        r.RoomID,
			SeatID:        r.SeatID,
			CheckInTime:   now,
			Status:        model.CheckInOpen,
			QRCodeUsed:    qrData != "",
			QRCodeData:    qrData,
			CreatedAt:     now,
		}
		if err := tx.CreateCheckIn(ctx, c); err != nil {
			return err
		}
		if err := tx.SetSeatStatus(ctx, r.SeatID, model.SeatOccupied); err != nil {
			return err
		}
		r.Status = model.ReservationCheckedIn
		r.UpdatedAt = now
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}
		ci, res = c, r
		return nil
	})
	metrics.ReservationOps.WithLabelValues("check_in", metrics.ResultOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.Log.Info("checked in", zap.Uint64("check_in_id", ci.ID), zap.Uint64("reservation_id", res.ID),
		zap.Bool("qr", ci.QRCodeUsed))
	s.publish(ctx, queue.CheckInStarted, res, ci)
	return ci, nil
}

// QRCode is an issued check-in token.
type QRCode struct {
	Data      string    `json:"qr_code_data"`
	ExpiresIn int       `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueQR signs a token for a confirmed reservation of the caller.
// Reservations of other users are reported as not found.
func (s *CheckInService) IssueQR(ctx context.Context, caller Caller, reservationID uint64) (*QRCode, error) {
	var r *model.Reservation
	err := s.Store.InTx(ctx, func(tx repository.TxStore) error {
		var err error
		r, err = tx.GetReservation(ctx, reservationID, false)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, ErrReservationNotOwned
		}
		return nil, err
	}
	if r.UserID != caller.UserID {
		return nil, ErrReservationNotOwned
	}
	if r.Status != model.ReservationConfirmed {
		return nil, ErrNotConfirmed
	}
	tok, exp, err := s.qr.Issue(r.ID, r.UserID, s.Now())
	if err != nil {
		return nil, err
	}
	return &QRCode{Data: tok, ExpiresIn: int(s.qr.TTL() / time.Second), ExpiresAt: exp.UTC()}, nil
}

// VerifyQR checks the token and follows the regular check-in path. A
// token produces at most one check-in while the replay guard is up.
// When reservationID is non-zero the token must have been issued for it.
func (s *CheckInService) VerifyQR(ctx context.Context, caller Caller, token string, reservationID uint64) (*model.CheckIn, error) {
	now := s.Now()
	claims, err := s.qr.Parse(token, now)
	if err != nil {
		return nil, err
	}
	if reservationID != 0 && claims.ReservationID != reservationID {
		return nil, ErrInvalidQR
	}

	claimed := false
	if s.replay != nil {
		ok, err := s.replay.Claim(ctx, claims.ID, claims.Remaining(now))
		switch {
		case err != nil:
			s.Log.Warn("qr replay guard unavailable", zap.Error(err))
		case !ok:
			return nil, ErrQRUsed
		default:
			claimed = true
		}
	}

	ci, err := s.CheckIn(ctx, caller, claims.ReservationID, token)
	if err != nil && claimed {
		if rerr := s.replay.Release(context.WithoutCancel(ctx), claims.ID); rerr != nil {
			s.Log.Warn("qr replay release failed", zap.Error(rerr))
		}
	}
	return ci, err
}

// CheckOut closes the session, completes the reservation, releases the
// seat and accrues the session onto the user's study totals.
func (s *CheckInService) CheckOut(ctx context.Context, caller Caller, checkInID uint64) (*model.CheckIn, error) {
	var (
		ci  *model.CheckIn
		res *model.Reservation
	)
	err := s.Store.InTx(ctx, func(tx repository.TxStore) error {
		peek, err := tx.GetCheckIn(ctx, checkInID, false)
		if err != nil {
			return err
		}
		if !caller.owns(peek.UserID) {
			return ErrForbidden
		}
		// Lock order matches CheckIn: reservation, then session.
		r, err := tx.GetReservation(ctx, peek.ReservationID, true)
		if err != nil && !errors.Is(err, repository.ErrReservationNotFound) {
			return err
		}
		c, err := tx.GetCheckIn(ctx, checkInID, true)
		if err != nil {
			return err
		}
		if c.Status == model.CheckInClosed {
			return ErrAlreadyCheckedOut
		}

		now := s.Now()
		if err := closeSession(ctx, tx, c, now, s.Location); err != nil {
			return err
		}
		if r != nil && model.CanTransition(r.Status, model.ReservationCompleted) {
			r.Status = model.ReservationCompleted
			r.UpdatedAt = now.UTC()
			if err := tx.UpdateReservation(ctx, r); err != nil {
				return err
			}
		}
		if err := tx.SetSeatStatus(ctx, c.SeatID, model.SeatAvailable); err != nil {
			return err
		}
		ci, res = c, r
		return nil
	})
	metrics.ReservationOps.WithLabelValues("check_out", metrics.ResultOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.Log.Info("checked out", zap.Uint64("check_in_id", ci.ID), zap.Uint32("duration_minutes", ci.DurationMinutes))
	if res != nil {
		s.publish(ctx, queue.CheckOutCompleted, res, ci)
	}
	return ci, nil
}

// ListMine returns the caller's sessions, newest first.
func (s *CheckInService) ListMine(ctx context.Context, caller Caller) ([]model.CheckIn, error) {
	return s.reads.ListByUser(ctx, caller.UserID)
}
