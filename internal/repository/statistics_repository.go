package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// Session is one closed check-in with the name of its room.
type Session struct {
	CheckInTime     time.Time
	DurationMinutes uint32
	RoomName        string
}

// ReservationCounts holds a total and its completed/cancelled share.
type ReservationCounts struct {
	Total     int
	Completed int
	Cancelled int
}

// StatisticsRepo runs the read-only aggregate queries.
type StatisticsRepo struct{ db DBTX }

func NewStatisticsRepo(db DBTX) *StatisticsRepo { return &StatisticsRepo{db: db} }

// ClosedSessions returns the user's checked-out sessions, oldest first.
// Rooms deleted since the session are reported as "unknown".
func (r *StatisticsRepo) ClosedSessions(ctx context.Context, userID uint64) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.check_in_time, c.duration_minutes, COALESCE(rm.name, 'unknown')
		 FROM check_ins c
		 LEFT JOIN rooms rm ON rm.id = c.room_id
		 WHERE c.user_id = ? AND c.status = ?
		 ORDER BY c.check_in_time`,
		userID, model.CheckInClosed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.CheckInTime, &s.DurationMinutes, &s.RoomName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StatisticsRepo) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

func (r *StatisticsRepo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM users")
}

func (r *StatisticsRepo) CountViolations(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM violations")
}

func (r *StatisticsRepo) CountFeedbacks(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM feedbacks")
}

const reservationCountsSelect = `SELECT COUNT(*),
       COALESCE(SUM(status = 'completed'), 0),
       COALESCE(SUM(status = 'cancelled'), 0)
FROM reservations`

func (r *StatisticsRepo) reservationCounts(ctx context.Context, where string, args ...any) (ReservationCounts, error) {
	var c ReservationCounts
	err := r.db.QueryRowContext(ctx, reservationCountsSelect+where, args...).Scan(&c.Total, &c.Completed, &c.Cancelled)
	return c, err
}

// ReservationTotals counts every reservation.
func (r *StatisticsRepo) ReservationTotals(ctx context.Context) (ReservationCounts, error) {
	return r.reservationCounts(ctx, "")
}

// ReservationsOnDate counts reservations scheduled for the day key.
func (r *StatisticsRepo) ReservationsOnDate(ctx context.Context, date string) (ReservationCounts, error) {
	return r.reservationCounts(ctx, "\nWHERE reserve_date = ?", date)
}

// ReservationsCreatedBetween counts reservations created in [from, to).
func (r *StatisticsRepo) ReservationsCreatedBetween(ctx context.Context, from, to time.Time) (ReservationCounts, error) {
	return r.reservationCounts(ctx, "\nWHERE created_at >= ? AND created_at < ?", from.UTC(), to.UTC())
}

// ReservationsPerDate counts reservations per day key in [from, to].
func (r *StatisticsRepo) ReservationsPerDate(ctx context.Context, from, to string) (map[string]int, error) {
	return r.grouped(ctx,
		"SELECT reserve_date, COUNT(*) FROM reservations WHERE reserve_date BETWEEN ? AND ? GROUP BY reserve_date",
		from, to)
}

func (r *StatisticsRepo) ViolationsByType(ctx context.Context) (map[string]int, error) {
	return r.grouped(ctx, "SELECT type, COUNT(*) FROM violations GROUP BY type")
}

func (r *StatisticsRepo) FeedbacksByStatus(ctx context.Context) (map[string]int, error) {
	return r.grouped(ctx, "SELECT status, COUNT(*) FROM feedbacks GROUP BY status")
}

func (r *StatisticsRepo) grouped(ctx context.Context, q string, args ...any) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			key sql.NullString
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key.String] = n
	}
	return out, rows.Err()
}
