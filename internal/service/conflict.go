package service

import (
	"time"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// Interval is a half-open [Start, End) window of "HH:MM" strings. The
// fixed-width 24-hour format compares lexicographically in time order.
type Interval struct {
	Start string
	End   string
}

// Overlaps reports whether a and b share any instant. Touching windows
// (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return (a.Start <= b.Start && b.Start < a.End) ||
		(a.Start < b.End && b.End <= a.End) ||
		(b.Start <= a.Start && b.End >= a.End)
}

// Candidate is a proposed reservation. ID is zero for a new reservation
// and the reservation's own id on update, so it never conflicts with
// itself.
type Candidate struct {
	ID     uint64
	UserID uint64
	SeatID uint64
	Date   string
	Interval
}

// Detect checks the candidate against the user's and the seat's
// reservations. A user-scope hit wins over a seat-scope hit. Rows that
// are not active or not on the candidate's date are ignored.
func Detect(c Candidate, userRows, seatRows []model.Reservation) error {
	if clashes(c, userRows) {
		return ErrUserConflict
	}
	if clashes(c, seatRows) {
		return ErrSeatConflict
	}
	return nil
}

func clashes(c Candidate, rows []model.Reservation) bool {
	for i := range rows {
		r := &rows[i]
		if c.ID != 0 && r.ID == c.ID {
			continue
		}
		if r.Date != c.Date || !r.IsActive() {
			continue
		}
		if Overlaps(c.Interval, Interval{Start: r.StartTime, End: r.EndTime}) {
			return true
		}
	}
	return false
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ValidateSlot checks a "YYYY-MM-DD" date and two "HH:MM" times with
// start strictly before end.
func ValidateSlot(date, start, end string) error {
	if _, err := time.Parse(dateLayout, date); err != nil || len(date) != len(dateLayout) {
		return validation("date must be formatted YYYY-MM-DD")
	}
	if !validClock(start) || !validClock(end) {
		return validation("start and end time must be formatted HH:MM")
	}
	if start >= end {
		return validation("start time must be before end time")
	}
	return nil
}

func validClock(s string) bool {
	if len(s) != len(clockLayout) {
		return false
	}
	_, err := time.Parse(clockLayout, s)
	return err == nil
}

// DayKey formats t as the calendar day it falls on in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}
