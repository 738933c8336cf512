package models

import "time"

// Session is the authenticated identity held by the session store.
type Session struct {
	Token  string    `json:"token"`
	User   User      `json:"user"`
	Expiry time.Time `json:"expiry,omitempty"`
}

// Expired reports whether the session has a known expiry before now.
func (s Session) Expired(now time.Time) bool {
	return !s.Expiry.IsZero() && !now.Before(s.Expiry)
}

// AuthResponse is returned by the login and register endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
