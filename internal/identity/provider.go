// Package identity is the adapter for the external identity provider.
//
// Everything about WHO a caller is gets delegated: the provider runs the
// sign-up/sign-in UI, stores credentials, and issues access tokens. This
// package only does two things with it:
//
//  1. getCurrentIdentity — verify the access token presented on a request
//     and extract the stable subject + email (Verify, plus the middleware
//     in middleware.go)
//  2. signOut — revoke the provider session on logout
//
// TOKEN VERIFICATION:
// Access tokens are HS256 JWTs signed by the provider with the project's
// JWT secret (the service credential we're configured with). Verification
// is therefore local — no network round trip per request. The "sub" claim
// is the external identity reference; "email" rides along for the user
// bootstrap path.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Identity is a verified external identity: the provider's opaque stable
// subject plus the email it has on file. Nothing else about the caller is
// trusted from the token.
type Identity struct {
	ID    string
	Email string
}

// Config carries the provider settings from the environment.
type Config struct {
	BaseURL   string // e.g. https://auth.example.com
	JWTSecret string // HS256 secret the provider signs access tokens with

	// OAuth login flow (optional — empty ClientID disables it).
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Provider talks to the external identity service.
type Provider struct {
	baseURL string
	secret  []byte
	oauth   *oauth2.Config // nil when the login flow is disabled
	client  *http.Client
}

// NewProvider creates a Provider. The JWT secret must be present — without
// it no request can be verified, so the caller treats a missing secret as a
// startup-fatal configuration error before ever getting here.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("identity: base URL is required")
	}
	if len(cfg.JWTSecret) < 16 {
		return nil, errors.New("identity: JWT secret must be at least 16 characters")
	}

	p := &Provider{
		baseURL: cfg.BaseURL,
		secret:  []byte(cfg.JWTSecret),
		client:  &http.Client{Timeout: 10 * time.Second},
	}

	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		p.oauth = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"openid", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.BaseURL + "/auth/v1/authorize",
				TokenURL: cfg.BaseURL + "/auth/v1/token",
			},
		}
	}

	return p, nil
}

// claims is the slice of the provider's access-token payload we care about.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify parses and verifies a provider-issued access token and returns the
// identity it encodes.
//
// Checks performed by the jwt library: signature, expiry, and that the
// algorithm really is HS256 (jwt.WithValidMethods — without it an attacker
// could send an alg:none token).
func (p *Provider) Verify(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("identity: unexpected signing method: %v", token.Header["alg"])
			}
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("identity: token expired")
		}
		return nil, fmt.Errorf("identity: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("identity: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("identity: token has no subject")
	}

	return &Identity{ID: c.Subject, Email: c.Email}, nil
}

// LoginEnabled reports whether the OAuth redirect flow is configured.
func (p *Provider) LoginEnabled() bool {
	return p.oauth != nil
}

// AuthURL returns the provider authorization URL to redirect the browser
// to. The state value is verified on callback (CSRF protection).
func (p *Provider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the provider's token set. The
// access token inside is what subsequent requests present (and what Verify
// validates).
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("identity: exchanging OAuth code: %w", err)
	}
	return token, nil
}

// SignOut revokes the session behind the given access token on the
// provider side. A failed revocation is reported but the caller still
// clears its own cookie — the local session must die either way.
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("identity: building logout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity: calling provider logout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("identity: provider logout returned status %d", resp.StatusCode)
	}
	return nil
}
