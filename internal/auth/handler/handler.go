package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"signin-service/internal/auth"
	"signin-service/internal/auth/provider"
	"signin-service/internal/session"
)

const (
	LandingPath = "/"
	WelcomePath = "/welcome"

	loginErrorMessage    = "Error occurred during login"
	callbackErrorMessage = "Error occurred during authentication"
)

// Config holds the fixed parameters of the authorization request. The same
// Scopes and RedirectURI are sent on both legs of the flow.
type Config struct {
	Scopes        []string
	RedirectURI   string
	SecureCookies bool
}

type Handler struct {
	provider provider.OAuthProvider
	sessions *session.Manager
	cfg      Config
	log      *zap.Logger
}

func NewHandler(
	p provider.OAuthProvider,
	sessions *session.Manager,
	cfg Config,
	log *zap.Logger,
) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		provider: p,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/login", h.Login)
	r.GET("/auth/callback", h.Callback)
	r.GET("/logout", h.Logout)
}

// Login starts the authorization code flow. The session is not touched;
// only the short-lived state and PKCE cookies are issued.
func (h *Handler) Login(c *gin.Context) {
	state, err := newState()
	if err != nil {
		h.fail(c, "Error during login", loginErrorMessage, err)
		return
	}
	verifier := oauth2.GenerateVerifier()

	authURL, err := h.provider.AuthCodeURL(c.Request.Context(), provider.AuthCodeRequest{
		Scopes:       h.cfg.Scopes,
		RedirectURI:  h.cfg.RedirectURI,
		State:        state,
		CodeVerifier: verifier,
	})
	if err != nil {
		h.fail(c, "Error during login", loginErrorMessage, err)
		return
	}

	setStateCookie(c, state, h.cfg.SecureCookies)
	setPKCECookie(c, verifier, h.cfg.SecureCookies)

	c.Redirect(http.StatusFound, authURL)
}

// Callback completes the flow. Every failure, whatever its cause, yields
// the same generic 500 and leaves the session as it was.
func (h *Handler) Callback(c *gin.Context) {
	stateOK := validateState(c)
	codeVerifier := getPKCEVerifier(c)
	clearFlowCookies(c, h.cfg.SecureCookies)

	if errParam := c.Query("error"); errParam != "" {
		h.fail(c, "Error during token acquisition", callbackErrorMessage,
			fmt.Errorf("provider returned %s: %s", errParam, c.Query("error_description")))
		return
	}
	if !stateOK {
		h.fail(c, "Error during token acquisition", callbackErrorMessage, errors.New("state mismatch"))
		return
	}
	if codeVerifier == "" {
		h.fail(c, "Error during token acquisition", callbackErrorMessage, errors.New("missing pkce verifier"))
		return
	}

	account, err := h.provider.ExchangeCode(c.Request.Context(), provider.TokenRequest{
		Code:         c.Query("code"),
		Scopes:       h.cfg.Scopes,
		RedirectURI:  h.cfg.RedirectURI,
		CodeVerifier: codeVerifier,
	})
	if err != nil {
		h.fail(c, "Error during token acquisition", callbackErrorMessage, err)
		return
	}

	if err := h.sessions.SetUser(c, auth.UserFromAccount(*account)); err != nil {
		h.fail(c, "Error during token acquisition", callbackErrorMessage, err)
		return
	}

	h.log.Info("login succeeded",
		zap.String("provider", h.provider.Name()),
		zap.String("ip", c.ClientIP()),
	)

	c.Redirect(http.StatusFound, WelcomePath)
}

// Logout destroys the session unconditionally and returns to the landing
// page. Store failures are logged, never surfaced.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		h.log.Warn("failed to destroy session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, LandingPath)
}

func (h *Handler) fail(c *gin.Context, logMsg, publicMsg string, err error) {
	h.log.Error(logMsg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.String(http.StatusInternalServerError, publicMsg)
}
