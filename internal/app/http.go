package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"signin-service/internal/auth/handler"
	"signin-service/internal/auth/provider"
	"signin-service/internal/auth/provider/entra"
	"signin-service/internal/config"
	"signin-service/internal/middleware"
	"signin-service/internal/ratelimit"
	"signin-service/internal/session"
	"signin-service/internal/web"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Provider provider.OAuthProvider
	Sessions session.Store
	Limiter  ratelimit.Limiter
	Log      *zap.Logger
}

func setupHTTP(ctx context.Context, cfg config.Config, log *zap.Logger) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	entraProvider, err := entra.New(entra.Config{
		Issuer:       cfg.AuthorityURL(),
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		MultiTenant:  cfg.MultiTenant(),
	}, log)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	router, err := NewRouter(cfg, Deps{
		Provider: entraProvider,
		Sessions: infra.Sessions,
		Limiter:  infra.Limiter,
		Log:      log,
	})
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

// NewRouter builds the route table:
//
//	GET /              landing page
//	GET /login         start sign-in
//	GET /auth/callback finish sign-in
//	GET /welcome       signed-in page (redirects to / when anonymous)
//	GET /api/user      identity record (401 when anonymous)
//	GET /logout        end the session
func NewRouter(cfg config.Config, deps Deps) (*gin.Engine, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	cookie := session.CookieOptions{
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.IsProduction() {
		cookie.Name = session.SecureCookieName
	}

	sessions, err := session.NewManager(deps.Sessions, session.ManagerOptions{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Cookie: cookie,
	}, log)
	if err != nil {
		return nil, err
	}

	authHandler := handler.NewHandler(deps.Provider, sessions, handler.Config{
		Scopes:        cfg.Scopes,
		RedirectURI:   cfg.RedirectURI,
		SecureCookies: cfg.IsProduction(),
	}, log)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	router.Use(
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.SecureHeaders(),
		middleware.RateLimit(deps.Limiter, log),
		middleware.Errors(log),
		sessions.Middleware(),
	)

	// ----------------------------
	// Public Routes
	// ----------------------------

	router.GET(handler.LandingPath, web.Page(web.IndexPage))
	web.RegisterAssets(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler.RegisterRoutes(router)

	// ----------------------------
	// Protected Web Routes
	// ----------------------------

	router.GET(handler.WelcomePath,
		middleware.RequirePageAuth(handler.LandingPath),
		web.Page(web.WelcomePage),
	)

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.RequireAPIAuth())
	api.GET("/user", authHandler.CurrentUser)

	return router, nil
}
