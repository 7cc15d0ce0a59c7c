package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

func setup(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var reservationCols = []string{"id", "user_id", "seat_id", "room_id", "reserve_date", "start_time", "end_time", "status", "created_at", "updated_at"}

func TestReservationRepo_CreateSetsActiveSlot(t *testing.T) {
	db, mock := setup(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(1), uint64(2), uint64(3), "2024-01-01", "09:00", "11:00", "confirmed", 1).
		WillReturnResult(sqlmock.NewResult(42, 1))

	r := &model.Reservation{UserID: 1, SeatID: 2, RoomID: 3, Date: "2024-01-01", StartTime: "09:00", EndTime: "11:00", Status: "confirmed"}
	require.NoError(t, repo.Create(context.Background(), r))
	assert.Equal(t, uint64(42), r.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_CreateDuplicateIsSlotTaken(t *testing.T) {
	db, mock := setup(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec("INSERT INTO reservations").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), &model.Reservation{Status: "pending"})
	assert.ErrorIs(t, err, ErrSlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_ListActiveBySeatDate(t *testing.T) {
	db, mock := setup(t)
	repo := NewReservationRepo(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE seat_id = ? AND reserve_date = ? AND status IN (?,?,?)")).
		WithArgs(uint64(5), "2024-01-01", "pending", "confirmed", "checked_in").
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(1, 7, 5, 3, "2024-01-01", "09:00", "11:00", "confirmed", now, now).
			AddRow(2, 8, 5, 3, "2024-01-01", "13:00", "14:00", "pending", now, now))

	got, err := repo.ListActiveBySeatDate(context.Background(), 5, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "09:00", got[0].StartTime)
	assert.Equal(t, uint64(8), got[1].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_GetDetailNullJoins(t *testing.T) {
	db, mock := setup(t)
	repo := NewReservationRepo(db)
	now := time.Now()

	cols := append(append([]string{}, reservationCols...),
		"name", "student_id", "phone", "seat_number", "seat_status", "room_name", "location")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = ?")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(9, 1, 2, 3, "2024-01-01", "09:00", "11:00", "cancelled", now, now,
				"Ann", "S001", "123", nil, nil, "Quiet Room", "Floor 2"))

	d, err := repo.GetDetail(context.Background(), 9)
	require.NoError(t, err)
	require.NotNil(t, d.User)
	assert.Equal(t, "S001", d.User.StudentID)
	assert.Nil(t, d.Seat, "deleted seat is not populated")
	require.NotNil(t, d.Room)
	assert.Equal(t, "Quiet Room", d.Room.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_GetByIDForUpdateNotFound(t *testing.T) {
	db, mock := setup(t)
	repo := NewSeatRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM seats WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByIDForUpdate(context.Background(), 3)
	assert.ErrorIs(t, err, ErrSeatNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepo_CreateDuplicateNumber(t *testing.T) {
	db, mock := setup(t)
	repo := NewSeatRepo(db)

	mock.ExpectExec("INSERT INTO seats").
		WithArgs(uint64(1), "A1", "available").
		WillReturnError(&mysql.MySQLError{Number: 1062})

	err := repo.Create(context.Background(), &model.Seat{RoomID: 1, SeatNumber: "A1"})
	assert.ErrorIs(t, err, ErrSeatNumberExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByIDScansNullableDate(t *testing.T) {
	db, mock := setup(t)
	repo := NewUserRepo(db)
	now := time.Now()

	cols := []string{"id", "name", "student_id", "password_hash", "phone", "role", "study_minutes", "study_days", "last_study_date", "created_at", "updated_at"}
	mock.ExpectQuery("FROM users WHERE id=").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Ann", "S001", "hash", "123", "user", 90, 1, nil, now, now))

	u, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), u.StudyMinutes)
	assert.Nil(t, u.LastStudyDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateDuplicateStudentID(t *testing.T) {
	db, mock := setup(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ann", "S001", "hash", "", "user").
		WillReturnError(&mysql.MySQLError{Number: 1062})

	err := repo.Create(context.Background(), &model.User{Name: "Ann", StudentID: " S001 ", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrStudentIDExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_DeleteMissing(t *testing.T) {
	db, mock := setup(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("DELETE FROM users").WithArgs(uint64(4)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InTxCommitsAndRollsBack(t *testing.T) {
	db, mock := setup(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seats SET status").WithArgs("occupied", uint64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(tx TxStore) error {
		return tx.SetSeatStatus(context.Background(), 1, model.SeatOccupied)
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()
	err = store.InTx(context.Background(), func(TxStore) error { return boom })
	assert.ErrorIs(t, err, boom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepo_ListFiltersAndPages(t *testing.T) {
	db, mock := setup(t)
	repo := NewFeedbackRepo(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM feedbacks f\nWHERE f.status = ? AND f.type = ?")).
		WithArgs("pending", "equipment").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT ? OFFSET ?")).
		WithArgs("pending", "equipment", 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "content", "status", "response", "created_at", "updated_at", "name", "student_id", "phone"}).
			AddRow(3, 1, "equipment", "lamp broken", "pending", nil, now, now, "Ann", "S001", "123"))

	items, total, err := repo.List(context.Background(), FeedbackFilter{Status: "pending", Type: "equipment"}, Page{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Response)
	require.NotNil(t, items[0].User)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestViolationRepo_ListResolvedFilter(t *testing.T) {
	db, mock := setup(t)
	repo := NewViolationRepo(db)
	resolved := true

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM violations v\nWHERE v.is_resolved = ?")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT ? OFFSET ?")).
		WithArgs(true, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := repo.List(context.Background(), ViolationFilter{IsResolved: &resolved}, Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatisticsRepo_Grouped(t *testing.T) {
	db, mock := setup(t)
	repo := NewStatisticsRepo(db)

	mock.ExpectQuery("SELECT type, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"type", "n"}).AddRow("no_show", 2).AddRow("other", 1))

	got, err := repo.ViolationsByType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"no_show": 2, "other": 1}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPage(t *testing.T) {
	p := Page{Page: 0, Limit: 500}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, 3, Page{Page: 1, Limit: 5}.Pages(11))
	assert.Equal(t, 0, Page{Page: 1, Limit: 5}.Pages(0))
}
