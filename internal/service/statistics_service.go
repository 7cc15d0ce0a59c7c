package service

import (
	"context"
	"math"
	"time"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// StatsSource is the read side the aggregator draws from.
type StatsSource interface {
	ClosedSessions(ctx context.Context, userID uint64) ([]repository.Session, error)
	CountUsers(ctx context.Context) (int, error)
	CountViolations(ctx context.Context) (int, error)
	CountFeedbacks(ctx context.Context) (int, error)
	ReservationTotals(ctx context.Context) (repository.ReservationCounts, error)
	ReservationsOnDate(ctx context.Context, date string) (repository.ReservationCounts, error)
	ReservationsCreatedBetween(ctx context.Context, from, to time.Time) (repository.ReservationCounts, error)
	ReservationsPerDate(ctx context.Context, from, to string) (map[string]int, error)
	ViolationsByType(ctx context.Context) (map[string]int, error)
	FeedbacksByStatus(ctx context.Context) (map[string]int, error)
}

// UserLookup loads a user profile.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// UserStats summarizes one user's study time. Every duration is derived
// from closed check-ins; the profile counters are echoed for comparison.
type UserStats struct {
	TotalStudyDuration   uint64            `json:"total_study_duration"`
	DailyStudyDuration   map[string]uint64 `json:"daily_study_duration"`
	RoomUsage            map[string]uint64 `json:"room_usage"`
	TotalSessions        int               `json:"total_sessions"`
	StudyDays            int               `json:"study_days"`
	AverageDailyDuration uint64            `json:"average_daily_duration"`
	MaxDailyDuration     uint64            `json:"max_daily_duration"`
	CurrentMonthDuration uint64            `json:"current_month_duration"`
	MonthlyStats         map[string]uint64 `json:"monthly_stats"`
	ProfileStudyMinutes  uint64            `json:"profile_study_minutes"`
	ProfileStudyDays     uint32            `json:"profile_study_days"`
}

// DayCount is one point of the trailing reservation trend.
type DayCount struct {
	Date         string `json:"date"`
	Reservations int    `json:"reservations"`
}

// SystemStats summarizes platform usage for admins. Rates are
// percentages rounded to two decimals.
type SystemStats struct {
	TotalUsers            int            `json:"total_users"`
	TotalReservations     int            `json:"total_reservations"`
	CompletedReservations int            `json:"completed_reservations"`
	CancelledReservations int            `json:"cancelled_reservations"`
	TotalViolations       int            `json:"total_violations"`
	TotalFeedbacks        int            `json:"total_feedbacks"`
	CompletionRate        float64        `json:"completion_rate"`
	TodayReservations     int            `json:"today_reservations"`
	TodayCompleted        int            `json:"today_completed"`
	TodayCompletionRate   float64        `json:"today_completion_rate"`
	MonthlyReservations   int            `json:"monthly_reservations"`
	MonthlyCompleted      int            `json:"monthly_completed"`
	MonthlyCompletionRate float64        `json:"monthly_completion_rate"`
	Last7Days             []DayCount     `json:"last_7_days"`
	ViolationStats        map[string]int `json:"violation_stats"`
	FeedbackStats         map[string]int `json:"feedback_stats"`
}

// StatisticsService aggregates, it never writes.
type StatisticsService struct {
	src   StatsSource
	users UserLookup
	now   func() time.Time
	loc   *time.Location
}

func NewStatisticsService(src StatsSource, users UserLookup, now func() time.Time, loc *time.Location) *StatisticsService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &StatisticsService{src: src, users: users, now: now, loc: loc}
}

// ForUser returns the caller's study statistics.
func (s *StatisticsService) ForUser(ctx context.Context, userID uint64) (*UserStats, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.src.ClosedSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := AggregateSessions(sessions, s.now(), s.loc)
	st.ProfileStudyMinutes = u.StudyMinutes
	st.ProfileStudyDays = u.StudyDays
	return &st, nil
}

// AggregateSessions builds per-day, per-room and per-month breakdowns of
// closed sessions. Days and months are taken from check-in time in loc.
func AggregateSessions(sessions []repository.Session, now time.Time, loc *time.Location) UserStats {
	st := UserStats{
		DailyStudyDuration: map[string]uint64{},
		RoomUsage:          map[string]uint64{},
		MonthlyStats:       map[string]uint64{},
	}
	currentMonth := now.In(loc).Format("2006-01")
	for _, sess := range sessions {
		mins := uint64(sess.DurationMinutes)
		local := sess.CheckInTime.In(loc)
		st.TotalStudyDuration += mins
		st.TotalSessions++
		st.DailyStudyDuration[local.Format(dateLayout)] += mins
		st.RoomUsage[sess.RoomName] += mins
		month := local.Format("2006-01")
		st.MonthlyStats[month] += mins
		if month == currentMonth {
			st.CurrentMonthDuration += mins
		}
	}
	st.StudyDays = len(st.DailyStudyDuration)
	for _, mins := range st.DailyStudyDuration {
		if mins > st.MaxDailyDuration {
			st.MaxDailyDuration = mins
		}
	}
	if st.StudyDays > 0 {
		st.AverageDailyDuration = uint64(math.Round(float64(st.TotalStudyDuration) / float64(st.StudyDays)))
	}
	return st
}

// System returns platform-wide statistics.
func (s *StatisticsService) System(ctx context.Context) (*SystemStats, error) {
	var (
		st  SystemStats
		err error
	)
	if st.TotalUsers, err = s.src.CountUsers(ctx); err != nil {
		return nil, err
	}
	if st.TotalViolations, err = s.src.CountViolations(ctx); err != nil {
		return nil, err
	}
	if st.TotalFeedbacks, err = s.src.CountFeedbacks(ctx); err != nil {
		return nil, err
	}

	all, err := s.src.ReservationTotals(ctx)
	if err != nil {
		return nil, err
	}
	st.TotalReservations, st.CompletedReservations, st.CancelledReservations = all.Total, all.Completed, all.Cancelled
	st.CompletionRate = Percent(all.Completed, all.Total)

	now := s.now().In(s.loc)
	today := now.Format(dateLayout)
	day, err := s.src.ReservationsOnDate(ctx, today)
	if err != nil {
		return nil, err
	}
	st.TodayReservations, st.TodayCompleted = day.Total, day.Completed
	st.TodayCompletionRate = Percent(day.Completed, day.Total)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	month, err := s.src.ReservationsCreatedBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	st.MonthlyReservations, st.MonthlyCompleted = month.Total, month.Completed
	st.MonthlyCompletionRate = Percent(month.Completed, month.Total)

	first := now.AddDate(0, 0, -6).Format(dateLayout)
	perDay, err := s.src.ReservationsPerDate(ctx, first, today)
	if err != nil {
		return nil, err
	}
	st.Last7Days = make([]DayCount, 0, 7)
	for i := 6; i >= 0; i-- {
		key := now.AddDate(0, 0, -i).Format(dateLayout)
		st.Last7Days = append(st.Last7Days, DayCount{Date: key, Reservations: perDay[key]})
	}

	if st.ViolationStats, err = s.src.ViolationsByType(ctx); err != nil {
		return nil, err
	}
	if st.FeedbackStats, err = s.src.FeedbacksByStatus(ctx); err != nil {
		return nil, err
	}
	return &st, nil
}

// Percent returns part/total as a percentage with two decimals, or 0
// when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}
