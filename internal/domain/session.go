package domain

import "time"

// SessionTTL is the fixed lifetime of a session, measured from its creation.
const SessionTTL = 7 * 24 * time.Hour

// ErrNoSessionToken is returned when a request carries no bearer token.
var ErrNoSessionToken = NewError(ErrUnauthenticated, "Unauthorized")

// Session binds an opaque bearer token to a user.
// The token itself is the key of Document.Sessions.
type Session struct {
	UserID    string `json:"userId"`
	CreatedAt int64  `json:"createdAt"` // Unix milliseconds
}

// NewSession creates a session for userID created at now.
func NewSession(userID string, now time.Time) Session {
	return Session{
		UserID:    userID,
		CreatedAt: now.UnixMilli(),
	}
}

// Created returns the creation time of the session.
func (s Session) Created() time.Time {
	return time.UnixMilli(s.CreatedAt)
}

// Expired reports whether the session has outlived SessionTTL at now.
func (s Session) Expired(now time.Time) bool {
	return now.Sub(s.Created()) > SessionTTL
}

// SessionResponse is returned on successful registration or login.
type SessionResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}
