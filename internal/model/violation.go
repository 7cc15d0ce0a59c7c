package model

import "time"

// Violation type and penalty values.
const (
	ViolationLateCheckIn    = "late_check_in"
	ViolationEarlyCheckOut  = "early_check_out"
	ViolationNoShow         = "no_show"
	ViolationOccupyOvertime = "occupy_overtime"
	ViolationOther          = "other"

	PenaltyWarning = "warning"
	PenaltySuspend = "suspend"
	PenaltyBan     = "ban"
	PenaltyNone    = "none"
)

// ViolationMaxDescription is the maximum description length in characters.
const ViolationMaxDescription = 200

// Violation is a rule breach recorded by an admin against a user's
// reservation. ResolvedAt is set when IsResolved turns true.
type Violation struct {
	ID                  uint64     `json:"id"`                    // violations.id
	UserID              uint64     `json:"user_id"`               // violations.user_id
	ReservationID       uint64     `json:"reservation_id"`        // violations.reservation_id
	Type                string     `json:"type"`                  // violations.type
	Description         *string    `json:"description"`           // violations.description (nullable)
	Penalty             string     `json:"penalty"`               // violations.penalty
	PenaltyDurationDays uint32     `json:"penalty_duration_days"` // violations.penalty_duration_days
	IsResolved          bool       `json:"is_resolved"`           // violations.is_resolved
	ResolvedAt          *time.Time `json:"resolved_at"`           // violations.resolved_at (nullable)
	CreatedAt           time.Time  `json:"created_at"`            // violations.created_at
	UpdatedAt           time.Time  `json:"updated_at"`            // violations.updated_at

	User *ReservationUser `json:"user,omitempty"`
}
