package session

import (
	"context"

	"signin-service/internal/auth"
)

// unexported, collision-proof context key
type sessionContextKeyType struct{}

var sessionKey = sessionContextKeyType{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext extracts the request's session.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}

// UserFromContext returns the identity record of the request's session,
// if there is one.
func UserFromContext(ctx context.Context) (auth.User, bool) {
	s, ok := FromContext(ctx)
	if !ok || !s.Authenticated() {
		return auth.User{}, false
	}
	return *s.User, true
}
