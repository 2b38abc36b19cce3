package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"signin-service/internal/auth"
	"signin-service/internal/auth/provider"
	"signin-service/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	authReq     provider.AuthCodeRequest
	tokenReq    provider.TokenRequest
	exchanged   bool
	authErr     error
	exchangeErr error
}

func (*stubProvider) Name() string { return "stub" }

func (s *stubProvider) AuthCodeURL(_ context.Context, req provider.AuthCodeRequest) (string, error) {
	s.authReq = req
	if s.authErr != nil {
		return "", s.authErr
	}
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(req.State), nil
}

func (s *stubProvider) ExchangeCode(_ context.Context, req provider.TokenRequest) (*auth.Account, error) {
	s.exchanged = true
	s.tokenReq = req
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return &auth.Account{Subject: "1", Name: "Alice", Username: "alice@example.com", TenantID: "t"}, nil
}

var testCfg = Config{
	Scopes:      []string{"openid", "profile", "User.Read"},
	RedirectURI: "https://app.example.com/auth/callback",
}

func newRouter(t *testing.T, p provider.OAuthProvider) (*gin.Engine, *session.MemoryStore) {
	t.Helper()

	store := session.NewMemoryStore()
	sessions, err := session.NewManager(store, session.ManagerOptions{Secret: "secret", TTL: time.Hour}, nil)
	require.NoError(t, err)

	h := NewHandler(p, sessions, testCfg, zap.NewNop())

	r := gin.New()
	r.Use(sessions.Middleware())
	h.RegisterRoutes(r)
	r.GET("/api/user", h.CurrentUser)
	return r, store
}

func serve(r http.Handler, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestLoginRedirectsWithStateAndPKCE(t *testing.T) {
	p := &stubProvider{}
	r, store := newRouter(t, p)

	w := serve(r, "/login", nil)
	require.Equal(t, http.StatusFound, w.Code)

	cookies := w.Result().Cookies()
	state := cookieValue(cookies, stateCookieName)
	verifier := cookieValue(cookies, pkceCookieName)
	require.NotEmpty(t, state)
	require.NotEmpty(t, verifier)

	assert.Equal(t, state, p.authReq.State)
	assert.Equal(t, verifier, p.authReq.CodeVerifier)
	assert.Equal(t, testCfg.Scopes, p.authReq.Scopes)
	assert.Equal(t, testCfg.RedirectURI, p.authReq.RedirectURI)
	assert.Contains(t, w.Header().Get("Location"), url.QueryEscape(state))
	assert.Equal(t, 0, store.Len())
}

func TestLoginFailureIsGeneric(t *testing.T) {
	r, _ := newRouter(t, &stubProvider{authErr: errors.New("discovery: 503")})

	w := serve(r, "/login", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, loginErrorMessage, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestCallbackStoresIdentity(t *testing.T) {
	p := &stubProvider{}
	r, store := newRouter(t, p)

	login := serve(r, "/login", nil)
	flow := login.Result().Cookies()
	state := cookieValue(flow, stateCookieName)

	w := serve(r, "/auth/callback?code=xyz&state="+url.QueryEscape(state), flow)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, WelcomePath, w.Header().Get("Location"))

	assert.Equal(t, "xyz", p.tokenReq.Code)
	assert.Equal(t, cookieValue(flow, pkceCookieName), p.tokenReq.CodeVerifier)
	assert.Equal(t, testCfg.Scopes, p.tokenReq.Scopes)
	assert.Equal(t, testCfg.RedirectURI, p.tokenReq.RedirectURI)
	assert.Equal(t, 1, store.Len())

	// flow cookies are single use
	for _, c := range w.Result().Cookies() {
		if c.Name == stateCookieName || c.Name == pkceCookieName {
			assert.Equal(t, -1, c.MaxAge, c.Name)
		}
	}

	me := serve(r, "/api/user", w.Result().Cookies())
	require.Equal(t, http.StatusOK, me.Code)
	assert.JSONEq(t, `{"name":"Alice","username":"alice@example.com"}`, me.Body.String())
}

func TestCallbackFailures(t *testing.T) {
	cases := map[string]struct {
		query       func(state string) string
		dropPKCE    bool
		exchangeErr error
		exchanged   bool
	}{
		"provider error": {
			query: func(state string) string {
				return "error=access_denied&error_description=denied&state=" + url.QueryEscape(state)
			},
		},
		"state mismatch": {
			query: func(string) string { return "code=xyz&state=other" },
		},
		"missing state": {
			query: func(string) string { return "code=xyz" },
		},
		"missing verifier": {
			query:    func(state string) string { return "code=xyz&state=" + url.QueryEscape(state) },
			dropPKCE: true,
		},
		"exchange failure": {
			query:       func(state string) string { return "code=xyz&state=" + url.QueryEscape(state) },
			exchangeErr: errors.New("AADSTS70008: expired code"),
			exchanged:   true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := &stubProvider{exchangeErr: tc.exchangeErr}
			r, store := newRouter(t, p)

			flow := serve(r, "/login", nil).Result().Cookies()
			state := cookieValue(flow, stateCookieName)
			if tc.dropPKCE {
				var kept []*http.Cookie
				for _, c := range flow {
					if c.Name != pkceCookieName {
						kept = append(kept, c)
					}
				}
				flow = kept
			}

			w := serve(r, "/auth/callback?"+tc.query(state), flow)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, callbackErrorMessage, w.Body.String())
			assert.Equal(t, tc.exchanged, p.exchanged)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestLogoutAlwaysRedirects(t *testing.T) {
	r, _ := newRouter(t, &stubProvider{})

	w := serve(r, "/logout", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LandingPath, w.Header().Get("Location"))
}

func TestCurrentUserAnonymous(t *testing.T) {
	r, _ := newRouter(t, &stubProvider{})

	w := serve(r, "/api/user", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Not authenticated"}`, w.Body.String())
}
