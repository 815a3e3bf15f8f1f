package account

import "time"

// Session is an authenticated operator session.
type Session struct {
	Token     string
	AccountID string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has lapsed at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
