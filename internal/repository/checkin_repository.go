package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

const checkInColumns = "id, user_id, reservation_id, room_id, seat_id, check_in_time, check_out_time, status, qr_code_used, qr_code_data, duration_minutes, created_at"

// CheckInRepo stores occupancy sessions. Rows are inserted at check-in
// and closed once at check-out; nothing deletes them.
type CheckInRepo struct{ db DBTX }

func NewCheckInRepo(db DBTX) *CheckInRepo { return &CheckInRepo{db: db} }

func scanCheckIn(s rowScanner) (*model.CheckIn, error) {
	var (
		ci  model.CheckIn
		out sql.NullTime
		qr  sql.NullString
	)
	if err := s.Scan(&ci.ID, &ci.UserID, &ci.ReservationID, &ci.RoomID, &ci.SeatID, &ci.CheckInTime,
		&out, &ci.Status, &ci.QRCodeUsed, &qr, &ci.DurationMinutes, &ci.CreatedAt); err != nil {
		return nil, err
	}
	if out.Valid {
		t := out.Time
		ci.CheckOutTime = &t
	}
	ci.QRCodeData = qr.String
	return &ci, nil
}

func (r *CheckInRepo) Create(ctx context.Context, ci *model.CheckIn) error {
	if ci.Status == "" {
		ci.Status = model.CheckInOpen
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO check_ins (user_id, reservation_id, room_id, seat_id, check_in_time, status, qr_code_used, qr_code_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ci.UserID, ci.ReservationID, ci.RoomID, ci.SeatID, ci.CheckInTime.UTC(), ci.Status, ci.QRCodeUsed, ci.QRCodeData)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ci.ID = uint64(id)
	return nil
}

func (r *CheckInRepo) get(ctx context.Context, query string, arg any) (*model.CheckIn, error) {
	ci, err := scanCheckIn(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCheckInNotFound
	}
	return ci, err
}

func (r *CheckInRepo) GetByID(ctx context.Context, id uint64) (*model.CheckIn, error) {
	return r.get(ctx, "SELECT "+checkInColumns+" FROM check_ins WHERE id = ?", id)
}

func (r *CheckInRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.CheckIn, error) {
	return r.get(ctx, "SELECT "+checkInColumns+" FROM check_ins WHERE id = ? FOR UPDATE", id)
}

// GetOpenByReservation returns the reservation's session that has not
// been checked out, or ErrCheckInNotFound.
func (r *CheckInRepo) GetOpenByReservation(ctx context.Context, reservationID uint64) (*model.CheckIn, error) {
	return r.get(ctx,
		"SELECT "+checkInColumns+" FROM check_ins WHERE reservation_id = ? AND status = '"+model.CheckInOpen+
			"' ORDER BY id DESC LIMIT 1 FOR UPDATE",
		reservationID)
}

// Close persists check-out time, status and duration.
func (r *CheckInRepo) Close(ctx context.Context, ci *model.CheckIn) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE check_ins SET check_out_time = ?, status = ?, duration_minutes = ? WHERE id = ?",
		utcOrNil(ci.CheckOutTime), ci.Status, ci.DurationMinutes, ci.ID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrCheckInNotFound)
}

// ListByUser returns the user's sessions, newest first.
func (r *CheckInRepo) ListByUser(ctx context.Context, userID uint64) ([]model.CheckIn, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+checkInColumns+" FROM check_ins WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CheckIn
	for rows.Next() {
		ci, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ci)
	}
	return out, rows.Err()
}
