package identity

import (
	"context"
	"net/http"
	"strings"
)

// SessionCookie is the HttpOnly cookie the auth callback stores the
// provider access token in. API clients may instead send the token as an
// Authorization bearer header; the header wins when both are present.
const SessionCookie = "session"

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the identity value.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth enforces a verified identity on protected routes.
//
// It resolves the caller's token (bearer header or session cookie),
// verifies it against the provider, and stores the Identity in the request
// context. Missing or invalid tokens end the chain with 401.
//
// Note this only proves WHO the caller is. Whether they have a linked
// internal account, and whether they own the target resource, is the
// service layer's authorization policy — not middleware business.
func RequireAuth(p *Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := currentIdentity(r, p)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthenticated","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the identity when a valid token is present but
// never blocks the request. Used on public routes so handlers can still
// tell who (if anyone) is calling.
func OptionalAuth(p *Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ident, err := currentIdentity(r, p); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, ident))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FromContext retrieves the verified identity stored by the middleware.
// Returns (nil, false) for anonymous requests.
func FromContext(ctx context.Context) (*Identity, bool) {
	ident, ok := ctx.Value(identityKey).(*Identity)
	return ident, ok && ident != nil
}

// TokenFromRequest returns the raw access token a request presented, or ""
// when there is none. Exposed for the logout handler, which needs the token
// itself to revoke the provider session.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func currentIdentity(r *http.Request, p *Provider) (*Identity, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, http.ErrNoCookie
	}
	return p.Verify(token)
}
