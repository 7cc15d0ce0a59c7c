package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

const roomColumns = "id,name,location,capacity,open_time,close_time,description,status,created_at,updated_at"

// RoomRepo provides CRUD for study rooms.
type RoomRepo struct{ db DBTX }

func NewRoomRepo(db DBTX) *RoomRepo { return &RoomRepo{db: db} }

func scanRoom(s rowScanner) (*model.Room, error) {
	var (
		rm   model.Room
		desc sql.NullString
	)
	if err := s.Scan(&rm.ID, &rm.Name, &rm.Location, &rm.Capacity, &rm.OpenTime, &rm.CloseTime,
		&desc, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		rm.Description = &d
	}
	return &rm, nil
}

// Create inserts a room and sets its ID.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	if rm.Status == "" {
		rm.Status = model.RoomOpen
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (name, location, capacity, open_time, close_time, description, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rm.Name, rm.Location, rm.Capacity, rm.OpenTime, rm.CloseTime, rm.Description, rm.Status)
	if err != nil {
		if isDuplicate(err) {
			return ErrRoomNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

// GetByID returns a room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// List returns all rooms ordered by name.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+roomColumns+" FROM rooms ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

// Update overwrites every editable column of the room.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET name = ?, location = ?, capacity = ?, open_time = ?, close_time = ?,
		 description = ?, status = ? WHERE id = ?`,
		rm.Name, rm.Location, rm.Capacity, rm.OpenTime, rm.CloseTime, rm.Description, rm.Status, rm.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrRoomNameExists
		}
		return err
	}
	return requireRow(res, ErrRoomNotFound)
}

// Delete removes the room. The seats foreign key cascades, so the room
// and its seats disappear in one statement.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrRoomNotFound)
}
