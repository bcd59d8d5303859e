package sessions

import "time"

// Session records one authenticated device/browser for a user.
type Session struct {
	ID         string
	UserID     string
	UserAgent  string
	ClientIP   string
	CreatedAt  time.Time
	LastSeenAt *time.Time
	RevokedAt  *time.Time
}

// Active reports whether the session is still usable.
func (s Session) Active() bool {
	return s.RevokedAt == nil
}
