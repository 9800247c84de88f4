package entity

import "time"

// Session is an authenticated admin. The token is opaque to clients.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewSession(token string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
