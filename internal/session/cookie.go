package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	CookieName       = "sid"
	SecureCookieName = "__Host-sid"
)

var ErrInvalidCookie = errors.New("session: invalid cookie")

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Name     string
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string // should usually be empty for __Host- cookies
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = CookieName
	}
	if o.Path == "" {
		o.Path = "/" // required for __Host-
	}
	if !o.HttpOnly {
		o.HttpOnly = true
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SetCookie issues the session cookie to the client.
func SetCookie(
	w http.ResponseWriter,
	value string,
	expiresAt time.Time,
	opts CookieOptions,
) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  expiresAt,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(
	w http.ResponseWriter,
	opts CookieOptions,
) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// codec binds cookie values to the server secret so that clients cannot
// forge or guess session ids. The cookie name is part of the MAC and
// values older than maxAge are refused.
type codec struct {
	name string
	sc   *securecookie.SecureCookie
}

func newCodec(secret, name string, maxAge time.Duration) codec {
	sc := securecookie.New([]byte(secret), nil)
	sc.MaxAge(int(maxAge.Seconds()))
	return codec{name: name, sc: sc}
}

func (c codec) encode(sessionID string) (string, error) {
	return c.sc.Encode(c.name, sessionID)
}

func (c codec) decode(value string) (string, error) {
	var sessionID string
	if err := c.sc.Decode(c.name, value, &sessionID); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	if sessionID == "" {
		return "", ErrInvalidCookie
	}
	return sessionID, nil
}
