package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

const seatColumns = "id, room_id, seat_number, status, created_at, updated_at"

// SeatRepo provides data access for seats.
type SeatRepo struct{ db DBTX }

func NewSeatRepo(db DBTX) *SeatRepo { return &SeatRepo{db: db} }

func scanSeat(s rowScanner) (*model.Seat, error) {
	var st model.Seat
	if err := s.Scan(&st.ID, &st.RoomID, &st.SeatNumber, &st.Status, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	return &st, nil
}

// Create inserts a seat. A duplicate seat number within the room yields
// ErrSeatNumberExists.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	if s.Status == "" {
		s.Status = model.SeatAvailable
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO seats (room_id, seat_number, status) VALUES (?, ?, ?)",
		s.RoomID, s.SeatNumber, s.Status)
	if err != nil {
		if isDuplicate(err) {
			return ErrSeatNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

func (r *SeatRepo) get(ctx context.Context, query string, id uint64) (*model.Seat, error) {
	s, err := scanSeat(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSeatNotFound
	}
	return s, err
}

// GetByID returns a seat or ErrSeatNotFound.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	return r.get(ctx, "SELECT "+seatColumns+" FROM seats WHERE id = ?", id)
}

// GetByIDForUpdate locks the seat row. Concurrent reservations of the
// same seat serialize on this lock.
func (r *SeatRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Seat, error) {
	return r.get(ctx, "SELECT "+seatColumns+" FROM seats WHERE id = ? FOR UPDATE", id)
}

// List returns seats, optionally restricted to one room.
func (r *SeatRepo) List(ctx context.Context, roomID *uint64) ([]model.Seat, error) {
	q := "SELECT " + seatColumns + " FROM seats"
	var args []any
	if roomID != nil {
		q += " WHERE room_id = ?"
		args = append(args, *roomID)
	}
	q += " ORDER BY room_id, seat_number"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Seat
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Update writes room, seat number and status.
func (r *SeatRepo) Update(ctx context.Context, s *model.Seat) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE seats SET room_id = ?, seat_number = ?, status = ? WHERE id = ?",
		s.RoomID, s.SeatNumber, s.Status, s.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrSeatNumberExists
		}
		return err
	}
	return requireRow(res, ErrSeatNotFound)
}

// SetStatus updates the occupancy flag. A missing seat is not an error:
// releasing a deleted seat is a no-op.
func (r *SeatRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE seats SET status = ? WHERE id = ?", status, id)
	return err
}

func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM seats WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrSeatNotFound)
}
