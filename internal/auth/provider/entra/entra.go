package entra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"signin-service/internal/auth"
	"signin-service/internal/auth/provider"
)

const (
	providerName = "entra"

	// issuer reported by the discovery document of the multi-tenant
	// authorities (common, organizations, consumers)
	multiTenantIssuer = "https://login.microsoftonline.com/{tenantid}/v2.0"

	discoveryTimeout = 10 * time.Second
	httpTimeout      = 15 * time.Second
)

type Config struct {
	Issuer       string // e.g. https://login.microsoftonline.com/<tenant>/v2.0
	ClientID     string
	ClientSecret string

	// MultiTenant accepts ID tokens issued by any tenant.
	MultiTenant bool

	HTTPClient *http.Client
}

// Provider implements the authorization code flow against the Microsoft
// identity platform. Discovery runs lazily on first use and is retried
// after failures, so an unreachable authority surfaces as a login error
// rather than a startup failure.
type Provider struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger

	group singleflight.Group

	mu       sync.RWMutex
	metadata *metadata
}

type metadata struct {
	endpoint oauth2.Endpoint
	verifier *oidc.IDTokenVerifier
}

var _ provider.OAuthProvider = (*Provider)(nil)

func New(cfg Config, log *zap.Logger) (*Provider, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("entra oauth config missing required fields")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Provider{
		cfg:    cfg,
		client: client,
		log:    log.With(zap.String("provider", providerName)),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) discover(ctx context.Context) (*metadata, error) {
	p.mu.RLock()
	md := p.metadata
	p.mu.RUnlock()
	if md != nil {
		return md, nil
	}

	v, err, _ := p.group.Do("discovery", func() (any, error) {
		// shared by concurrent callers, so not bound to any one request
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discoveryTimeout)
		defer cancel()

		dctx = oidc.ClientContext(dctx, p.client)
		if p.cfg.MultiTenant {
			dctx = oidc.InsecureIssuerURLContext(dctx, multiTenantIssuer)
		}

		oidcProvider, err := oidc.NewProvider(dctx, p.cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to init entra oidc provider: %w", err)
		}

		endpoint := oidcProvider.Endpoint()
		endpoint.AuthStyle = oauth2.AuthStyleInParams

		md := &metadata{
			endpoint: endpoint,
			verifier: oidcProvider.Verifier(&oidc.Config{
				ClientID:        p.cfg.ClientID,
				SkipIssuerCheck: p.cfg.MultiTenant,
			}),
		}

		p.mu.Lock()
		p.metadata = md
		p.mu.Unlock()

		p.log.Info("entra oidc discovery complete", zap.String("issuer", p.cfg.Issuer))
		return md, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*metadata), nil
}

func (p *Provider) oauthConfig(md *metadata, redirectURI string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     md.endpoint,
		Scopes:       scopes,
	}
}

// AuthCodeURL builds the authorization URL, with a PKCE S256 challenge
// when a verifier is supplied.
func (p *Provider) AuthCodeURL(ctx context.Context, req provider.AuthCodeRequest) (string, error) {
	md, err := p.discover(ctx)
	if err != nil {
		return "", err
	}

	opts := []oauth2.AuthCodeOption{}
	if req.CodeVerifier != "" {
		opts = append(opts, oauth2.S256ChallengeOption(req.CodeVerifier))
	}

	return p.oauthConfig(md, req.RedirectURI, req.Scopes).AuthCodeURL(req.State, opts...), nil
}

// ExchangeCode redeems the code, verifies the returned ID token and maps
// its claims to an account.
func (p *Provider) ExchangeCode(ctx context.Context, req provider.TokenRequest) (*auth.Account, error) {
	if req.Code == "" {
		return nil, errors.New("entra: missing authorization code")
	}

	md, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}

	ctx = oidc.ClientContext(ctx, p.client)

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("scope", strings.Join(req.Scopes, " ")),
	}
	if req.CodeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(req.CodeVerifier))
	}

	token, err := p.oauthConfig(md, req.RedirectURI, req.Scopes).Exchange(ctx, req.Code, opts...)
	if err != nil {
		return nil, fmt.Errorf("entra token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, provider.ErrMissingIDToken
	}

	idToken, err := md.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("entra id_token verification failed: %w", err)
	}

	var claims struct {
		Subject           string `json:"sub"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
		TenantID          string `json:"tid"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("entra id_token claims parse failed: %w", err)
	}

	username := claims.PreferredUsername
	if username == "" {
		username = claims.Email
	}

	// no PII in logs
	p.log.Info("entra token acquired",
		zap.String("issuer", idToken.Issuer),
		zap.Bool("subject_present", claims.Subject != ""),
		zap.Bool("username_present", username != ""),
		zap.String("tenant_id", claims.TenantID),
		zap.Int64("expiry_unix", idToken.Expiry.Unix()),
	)

	return &auth.Account{
		Subject:  claims.Subject,
		TenantID: claims.TenantID,
		Name:     claims.Name,
		Username: username,
	}, nil
}
