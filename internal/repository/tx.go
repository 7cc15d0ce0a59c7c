package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxStore is the set of operations the reservation and check-in flows
// run inside one transaction. Methods taking lock acquire row locks
// with SELECT ... FOR UPDATE.
type TxStore interface {
	GetRoom(ctx context.Context, id uint64) (*model.Room, error)
	GetSeat(ctx context.Context, id uint64, lock bool) (*model.Seat, error)
	SetSeatStatus(ctx context.Context, id uint64, status string) error

	GetReservation(ctx context.Context, id uint64, lock bool) (*model.Reservation, error)
	ListActiveByUserDate(ctx context.Context, userID uint64, date string) ([]model.Reservation, error)
	ListActiveBySeatDate(ctx context.Context, seatID uint64, date string) ([]model.Reservation, error)
	CreateReservation(ctx context.Context, r *model.Reservation) error
	UpdateReservation(ctx context.Context, r *model.Reservation) error
	DeleteReservation(ctx context.Context, id uint64) error

	GetCheckIn(ctx context.Context, id uint64, lock bool) (*model.CheckIn, error)
	GetOpenCheckIn(ctx context.Context, reservationID uint64) (*model.CheckIn, error)
	CreateCheckIn(ctx context.Context, ci *model.CheckIn) error
	CloseCheckIn(ctx context.Context, ci *model.CheckIn) error

	GetUser(ctx context.Context, id uint64, lock bool) (*model.User, error)
	UpdateStudyStats(ctx context.Context, u *model.User) error
}

// Store opens transactions over the shared pool.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// InTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(newTxStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

type txStore struct {
	rooms        *RoomRepo
	seats        *SeatRepo
	reservations *ReservationRepo
	checkIns     *CheckInRepo
	users        *UserRepo
}

func newTxStore(tx DBTX) *txStore {
	return &txStore{
		rooms:        NewRoomRepo(tx),
		seats:        NewSeatRepo(tx),
		reservations: NewReservationRepo(tx),
		checkIns:     NewCheckInRepo(tx),
		users:        NewUserRepo(tx),
	}
}

func (t *txStore) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	return t.rooms.GetByID(ctx, id)
}

func (t *txStore) GetSeat(ctx context.Context, id uint64, lock bool) (*model.Seat, error) {
	if lock {
		return t.seats.GetByIDForUpdate(ctx, id)
	}
	return t.seats.GetByID(ctx, id)
}

func (t *txStore) SetSeatStatus(ctx context.Context, id uint64, status string) error {
	return t.seats.SetStatus(ctx, id, status)
}

func (t *txStore) GetReservation(ctx context.Context, id uint64, lock bool) (*model.Reservation, error) {
	if lock {
		return t.reservations.GetByIDForUpdate(ctx, id)
	}
	return t.reservations.GetByID(ctx, id)
}

func (t *txStore) ListActiveByUserDate(ctx context.Context, userID uint64, date string) ([]model.Reservation, error) {
	return t.reservations.ListActiveByUserDate(ctx, userID, date)
}

func (t *txStore) ListActiveBySeatDate(ctx context.Context, seatID uint64, date string) ([]model.Reservation, error) {
	return t.reservations.ListActiveBySeatDate(ctx, seatID, date)
}

func (t *txStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	return t.reservations.Create(ctx, r)
}

func (t *txStore) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	return t.reservations.Update(ctx, r)
}

func (t *txStore) DeleteReservation(ctx context.Context, id uint64) error {
	return t.reservations.Delete(ctx, id)
}

func (t *txStore) GetCheckIn(ctx context.Context, id uint64, lock bool) (*model.CheckIn, error) {
	if lock {
		return t.checkIns.GetByIDForUpdate(ctx, id)
	}
	return t.checkIns.GetByID(ctx, id)
}

func (t *txStore) GetOpenCheckIn(ctx context.Context, reservationID uint64) (*model.CheckIn, error) {
	return t.checkIns.GetOpenByReservation(ctx, reservationID)
}

func (t *txStore) CreateCheckIn(ctx context.Context, ci *model.CheckIn) error {
	return t.checkIns.Create(ctx, ci)
}

func (t *txStore) CloseCheckIn(ctx context.Context, ci *model.CheckIn) error {
	return t.checkIns.Close(ctx, ci)
}

func (t *txStore) GetUser(ctx context.Context, id uint64, lock bool) (*model.User, error) {
	if lock {
		return t.users.GetByIDForUpdate(ctx, id)
	}
	return t.users.GetByID(ctx, id)
}

func (t *txStore) UpdateStudyStats(ctx context.Context, u *model.User) error {
	return t.users.UpdateStudyStats(ctx, u)
}
