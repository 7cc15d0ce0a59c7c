package model

import "time"

// Role names stored in users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the
// `users` table. StudentID is the login identifier. The password
// hash is never serialized.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Name          – display name.
//  StudentID     – unique student number used to log in.
//  PasswordHash  – bcrypt hashed password.
//  Phone         – contact phone number.
//  Role          – user or admin.
//  StudyMinutes  – cumulative study time accrued at check-out.
//  StudyDays     – number of distinct calendar days with a check-out.
//  LastStudyDate – time of the last check-out that counted a study day.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64     `json:"id"`              // users.id
	Name          string     `json:"name"`            // users.name
	StudentID     string     `json:"student_id"`      // users.student_id
	PasswordHash  string     `json:"-"`               // users.password_hash
	Phone         string     `json:"phone"`           // users.phone
	Role          string     `json:"role"`            // users.role
	StudyMinutes  uint64     `json:"study_minutes"`   // users.study_minutes
	StudyDays     uint32     `json:"study_days"`      // users.study_days
	LastStudyDate *time.Time `json:"last_study_date"` // users.last_study_date (nullable)
	CreatedAt     time.Time  `json:"created_at"`      // users.created_at
	UpdatedAt     time.Time  `json:"updated_at"`      // users.updated_at
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// RefreshToken models an entry in the `refresh_tokens` table. The
// plain token is not stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
