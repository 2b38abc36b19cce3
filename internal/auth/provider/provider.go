package provider

import (
	"context"
	"errors"

	"signin-service/internal/auth"
)

var ErrMissingIDToken = errors.New("provider did not return an id_token")

// AuthCodeRequest carries the parameters of the authorization redirect.
// RedirectURI and Scopes must match the later TokenRequest exactly.
type AuthCodeRequest struct {
	Scopes       []string
	RedirectURI  string
	State        string
	CodeVerifier string // PKCE verifier; the provider derives the S256 challenge
}

// TokenRequest carries the parameters of the code exchange.
type TokenRequest struct {
	Code         string
	Scopes       []string
	RedirectURI  string
	CodeVerifier string
}

// OAuthProvider defines the contract of the external identity provider.
// Implementations return identity facts only and must not perform
// session management.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "entra").
	Name() string

	// AuthCodeURL returns the URL the browser is sent to for sign-in.
	AuthCodeURL(ctx context.Context, req AuthCodeRequest) (string, error)

	// ExchangeCode redeems the authorization code and returns the
	// signed-in account.
	ExchangeCode(ctx context.Context, req TokenRequest) (*auth.Account, error)
}
