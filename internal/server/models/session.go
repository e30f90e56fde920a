package models

import "time"

// AdminSession is an issued admin bearer token.
type AdminSession struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s AdminSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
