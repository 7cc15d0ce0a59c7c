package model

import "time"

// Feedback type and status values.
const (
	FeedbackEnvironment = "environment"
	FeedbackEquipment   = "equipment"
	FeedbackSuggestion  = "suggestion"
	FeedbackOther       = "other"

	FeedbackPending    = "pending"
	FeedbackInProgress = "in_progress"
	FeedbackResolved   = "resolved"
	FeedbackRejected   = "rejected"
)

// FeedbackMaxContent is the maximum feedback content length in characters.
const FeedbackMaxContent = 500

// Feedback is a message submitted by a user and handled by admins.
type Feedback struct {
	ID        uint64    `json:"id"`         // feedbacks.id
	UserID    uint64    `json:"user_id"`    // feedbacks.user_id
	Type      string    `json:"type"`       // feedbacks.type
	Content   string    `json:"content"`    // feedbacks.content
	Status    string    `json:"status"`     // feedbacks.status
	Response  *string   `json:"response"`   // feedbacks.response (nullable)
	CreatedAt time.Time `json:"created_at"` // feedbacks.created_at
	UpdatedAt time.Time `json:"updated_at"` // feedbacks.updated_at

	User *ReservationUser `json:"user,omitempty"`
}
