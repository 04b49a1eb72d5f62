package models

import "time"

// Session is one authenticated login instance. A user may hold many
// concurrent sessions; tokens embed the session ID so a revoked session
// kills its tokens regardless of signature validity. Swept sessions are
// soft-deleted so the row survives for audit history.
type Session struct {
	Base
	UserID           string     `json:"user_id"            gorm:"index;not null"`
	AccessExpiresAt  time.Time  `json:"access_expires_at"  gorm:"not null"`
	RefreshExpiresAt time.Time  `json:"refresh_expires_at" gorm:"index;not null"`
	RevokedAt        *time.Time `json:"revoked_at"`
	IP               string     `json:"ip"`
	UA               string     `json:"user_agent"`
	LastActivityAt   time.Time  `json:"last_activity_at"`
}

func (Session) TableName() string { return "sessions" }

// Revoked reports whether the session has been explicitly revoked.
func (s *Session) Revoked() bool { return s.RevokedAt != nil }

// Live reports whether the session is still usable at the given instant:
// not revoked and the refresh window has not closed.
func (s *Session) Live(now time.Time) bool {
	return !s.Revoked() && now.Before(s.RefreshExpiresAt)
}
