package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

const reservationColumns = "id, user_id, seat_id, room_id, reserve_date, start_time, end_time, status, created_at, updated_at"

// ReservationRepo provides data access for reservations.
type ReservationRepo struct{ db DBTX }

func NewReservationRepo(db DBTX) *ReservationRepo { return &ReservationRepo{db: db} }

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var r model.Reservation
	if err := s.Scan(&r.ID, &r.UserID, &r.SeatID, &r.RoomID, &r.Date, &r.StartTime, &r.EndTime,
		&r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// activeFilter returns "status IN (?,...)" and its args for model.ActiveStatuses.
func activeFilter(col string) (string, []any) {
	args := make([]any, len(model.ActiveStatuses))
	for i, s := range model.ActiveStatuses {
		args[i] = s
	}
	return col + " IN (" + strings.TrimSuffix(strings.Repeat("?,", len(args)), ",") + ")", args
}

// Create inserts a reservation and sets its ID. A collision on the
// active-slot unique indexes yields ErrSlotTaken.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	out, err := r.db.ExecContext(ctx,
		`INSERT INTO reservations (user_id, seat_id, room_id, reserve_date, start_time, end_time, status, active_slot)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.UserID, res.SeatID, res.RoomID, res.Date, res.StartTime, res.EndTime, res.Status, model.ActiveSlot(res.Status))
	if err != nil {
		if isDuplicate(err) {
			return ErrSlotTaken
		}
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

func (r *ReservationRepo) get(ctx context.Context, query string, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return r.get(ctx, "SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id)
}

func (r *ReservationRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Reservation, error) {
	return r.get(ctx, "SELECT "+reservationColumns+" FROM reservations WHERE id = ? FOR UPDATE", id)
}

// ListActiveByUserDate returns the user's active reservations on date.
func (r *ReservationRepo) ListActiveByUserDate(ctx context.Context, userID uint64, date string) ([]model.Reservation, error) {
	return r.listActive(ctx, "user_id", userID, date)
}

// ListActiveBySeatDate returns the seat's active reservations on date.
func (r *ReservationRepo) ListActiveBySeatDate(ctx context.Context, seatID uint64, date string) ([]model.Reservation, error) {
	return r.listActive(ctx, "seat_id", seatID, date)
}

func (r *ReservationRepo) listActive(ctx context.Context, col string, id uint64, date string) ([]model.Reservation, error) {
	cond, statusArgs := activeFilter("status")
	q := "SELECT " + reservationColumns + " FROM reservations WHERE " + col + " = ? AND reserve_date = ? AND " +
		cond + " ORDER BY start_time FOR UPDATE"
	args := append([]any{id, date}, statusArgs...)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// Update writes date, times, status and the derived active slot. User,
// seat and room never change after creation.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	out, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET reserve_date = ?, start_time = ?, end_time = ?, status = ?, active_slot = ?
		 WHERE id = ?`,
		res.Date, res.StartTime, res.EndTime, res.Status, model.ActiveSlot(res.Status), res.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrSlotTaken
		}
		return err
	}
	return requireRow(out, ErrReservationNotFound)
}

func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	out, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(out, ErrReservationNotFound)
}

const reservationDetailQuery = `
SELECT r.id, r.user_id, r.seat_id, r.room_id, r.reserve_date, r.start_time, r.end_time, r.status, r.created_at, r.updated_at,
       u.name, u.student_id, u.phone,
       s.seat_number, s.status,
       rm.name, rm.location
FROM reservations r
LEFT JOIN users u ON u.id = r.user_id
LEFT JOIN seats s ON s.id = r.seat_id
LEFT JOIN rooms rm ON rm.id = r.room_id`

func scanReservationDetail(s rowScanner) (*model.ReservationDetail, error) {
	var (
		d                       model.ReservationDetail
		uName, uStudent, uPhone sql.NullString
		seatNumber, seatStatus  sql.NullString
		roomName, roomLocation  sql.NullString
	)
	if err := s.Scan(&d.ID, &d.UserID, &d.SeatID, &d.RoomID, &d.Date, &d.StartTime, &d.EndTime,
		&d.Status, &d.CreatedAt, &d.UpdatedAt,
		&uName, &uStudent, &uPhone, &seatNumber, &seatStatus, &roomName, &roomLocation); err != nil {
		return nil, err
	}
	if uName.Valid {
		d.User = &model.ReservationUser{ID: d.UserID, Name: uName.String, StudentID: uStudent.String, Phone: uPhone.String}
	}
	if seatNumber.Valid {
		d.Seat = &model.ReservationSeat{ID: d.SeatID, SeatNumber: seatNumber.String, Status: seatStatus.String}
	}
	if roomName.Valid {
		d.Room = &model.ReservationRoom{ID: d.RoomID, Name: roomName.String, Location: roomLocation.String}
	}
	return &d, nil
}

// ListDetailed returns reservations joined with user, seat and room,
// newest day first. A nil userID lists every user's reservations.
func (r *ReservationRepo) ListDetailed(ctx context.Context, userID *uint64) ([]model.ReservationDetail, error) {
	q := reservationDetailQuery
	var args []any
	if userID != nil {
		q += "\nWHERE r.user_id = ?"
		args = append(args, *userID)
	}
	q += "\nORDER BY r.reserve_date DESC, r.start_time DESC, r.id DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReservationDetail
	for rows.Next() {
		d, err := scanReservationDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// GetDetail returns one joined reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	d, err := scanReservationDetail(r.db.QueryRowContext(ctx, reservationDetailQuery+"\nWHERE r.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return d, err
}
