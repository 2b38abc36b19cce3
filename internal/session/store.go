package session

import (
	"context"
	"time"

	"signin-service/internal/auth"
)

// Session is the server-side state behind a session cookie.
// A nil User means the session is anonymous.
type Session struct {
	SessionID string     `json:"session_id"`
	User      *auth.User `json:"user,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	TouchedAt time.Time  `json:"touched_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Authenticated reports whether an identity record is present.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) when the session does not exist or has expired.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
