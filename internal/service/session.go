package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/study-room-reservation/internal/metrics"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// SessionMinutes returns the whole minutes between in and out, never
// negative.
func SessionMinutes(in, out time.Time) uint32 {
	d := out.Sub(in)
	if d <= 0 {
		return 0
	}
	return uint32(d / time.Minute)
}

// AccrueStudy adds minutes to the user's study time and counts a study
// day unless one was already counted for now's calendar day in loc.
func AccrueStudy(u *model.User, minutes uint32, now time.Time, loc *time.Location) {
	u.StudyMinutes += uint64(minutes)
	if u.LastStudyDate == nil || DayKey(*u.LastStudyDate, loc) != DayKey(now, loc) {
		u.StudyDays++
		t := now.UTC()
		u.LastStudyDate = &t
	}
}

// closeSession checks the session out at now and accrues its duration
// onto the owning user. A deleted user only skips the accrual.
func closeSession(ctx context.Context, tx repository.TxStore, ci *model.CheckIn, now time.Time, loc *time.Location) error {
	out := now.UTC()
	ci.CheckOutTime = &out
	ci.Status = model.CheckInClosed
	ci.DurationMinutes = SessionMinutes(ci.CheckInTime, out)
	if err := tx.CloseCheckIn(ctx, ci); err != nil {
		return err
	}
	metrics.SessionMinutes.Observe(float64(ci.DurationMinutes))

	u, err := tx.GetUser(ctx, ci.UserID, true)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	AccrueStudy(u, ci.DurationMinutes, now, loc)
	return tx.UpdateStudyStats(ctx, u)
}
