package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"signin-service/internal/auth"
)

const DefaultTTL = 24 * time.Hour

type ManagerOptions struct {
	Secret string
	TTL    time.Duration
	Cookie CookieOptions
}

// Manager ties the session cookie to a Store. Sessions are created only
// when an identity is written, and every request that presents a live
// session pushes its expiry forward by TTL.
type Manager struct {
	store  Store
	codec  codec
	ttl    time.Duration
	cookie CookieOptions
	log    *zap.Logger
	now    func() time.Time
}

func NewManager(store Store, opts ManagerOptions, log *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session: store is required")
	}
	if opts.Secret == "" {
		return nil, errors.New("session: secret is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}

	cookie := opts.Cookie.normalize()

	return &Manager{
		store:  store,
		codec:  newCodec(opts.Secret, cookie.Name, opts.TTL),
		ttl:    opts.TTL,
		cookie: cookie,
		log:    log,
		now:    time.Now,
	}, nil
}

// Middleware loads the request's session and makes it available through
// FromContext / Current. Store errors abort the chain via c.Error.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := m.load(c)
		if err != nil {
			_ = c.Error(fmt.Errorf("session: load: %w", err))
			c.Abort()
			return
		}
		m.attach(c, sess)
		c.Next()
	}
}

func (m *Manager) load(c *gin.Context) (*Session, error) {
	cookie, err := c.Request.Cookie(m.cookie.Name)
	if err != nil || cookie.Value == "" {
		return &Session{}, nil
	}

	sessionID, err := m.codec.decode(cookie.Value)
	if err != nil {
		m.log.Debug("ignoring session cookie", zap.Error(err))
		return &Session{}, nil
	}

	ctx := c.Request.Context()
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	if sess == nil || !now.Before(sess.ExpiresAt) {
		return &Session{}, nil
	}

	sess.TouchedAt = now
	sess.ExpiresAt = now.Add(m.ttl)
	if err := m.store.Update(ctx, *sess); err != nil {
		return nil, err
	}
	if err := m.setCookie(c, sess); err != nil {
		return nil, err
	}

	return sess, nil
}

func (m *Manager) attach(c *gin.Context, s *Session) {
	c.Request = c.Request.WithContext(NewContext(c.Request.Context(), s))
}

// Current returns the request's session, or an anonymous one when the
// middleware did not run.
func Current(c *gin.Context) *Session {
	if s, ok := FromContext(c.Request.Context()); ok {
		return s
	}
	return &Session{}
}

// SetUser stores user as the session's identity record. The session is
// always re-issued under a fresh id and any previous one is discarded.
func (m *Manager) SetUser(c *gin.Context, user auth.User) error {
	sessionID, err := GenerateID()
	if err != nil {
		return err
	}

	now := m.now()
	sess := &Session{
		SessionID: sessionID,
		User:      &user,
		CreatedAt: now,
		TouchedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	ctx := c.Request.Context()
	if err := m.store.Create(ctx, *sess); err != nil {
		return fmt.Errorf("session: create: %w", err)
	}

	if prev := Current(c); prev.SessionID != "" {
		if err := m.store.Delete(ctx, prev.SessionID); err != nil {
			m.log.Warn("failed to discard previous session", zap.Error(err))
		}
	}

	if err := m.setCookie(c, sess); err != nil {
		return err
	}
	m.attach(c, sess)

	return nil
}

func (m *Manager) setCookie(c *gin.Context, s *Session) error {
	value, err := m.codec.encode(s.SessionID)
	if err != nil {
		return fmt.Errorf("session: encode cookie: %w", err)
	}
	SetCookie(c.Writer, value, s.ExpiresAt, m.cookie)
	return nil
}

// Destroy deletes the current session and clears the cookie. It is a no-op
// on the store for anonymous sessions. The cookie is cleared even when the
// store delete fails.
func (m *Manager) Destroy(c *gin.Context) error {
	var err error
	if prev := Current(c); prev.SessionID != "" {
		err = m.store.Delete(c.Request.Context(), prev.SessionID)
	}

	ClearCookie(c.Writer, m.cookie)
	m.attach(c, &Session{})

	if err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// CookieName returns the name of the cookie carrying the session id.
func (m *Manager) CookieName() string {
	return m.cookie.Name
}
