package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/ymatsui/memoboard/internal/identity"
	"github.com/ymatsui/memoboard/internal/service"
)

// AuthHandler manages the login/logout flow against the external identity
// provider and the authenticated-caller bootstrap.
//
//   - HandleLogin    → redirect the browser to the provider's authorize page
//   - HandleCallback → validate state, exchange the code, set the session cookie
//   - HandleLogout   → revoke the provider session, clear the cookie
//   - HandleMe       → find-or-create and return the caller's internal account
type AuthHandler struct {
	provider *identity.Provider
	users    *service.UserService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(provider *identity.Provider, users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		users:    users,
		logger:   logger,
	}
}

// HandleLogin redirects the user to the identity provider.
//
// HTTP: GET /auth/login
//
// The random state lands in a short-lived HttpOnly cookie; HandleCallback
// requires the provider to echo it back (CSRF protection for the flow).
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback completes the login flow.
//
// HTTP: GET /auth/callback?code=xxx&state=yyy
//
// The provider's access token goes into the HttpOnly session cookie; it is
// what every subsequent request presents and what the middleware verifies.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state missing or mismatched")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: provider returned error", slog.String("error", errParam))
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	token, err := h.provider.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("auth callback: code exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     identity.SessionCookie,
		Value:    token.AccessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleLogout signs the caller out: revokes the provider session (best
// effort) and clears the local cookie either way.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := identity.TokenFromRequest(r); token != "" {
		if err := h.provider.SignOut(r.Context(), token); err != nil {
			h.logger.Warn("logout: provider sign-out failed", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     identity.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// HandleMe returns the caller's internal account, creating it on first
// authenticated access. This is the bootstrap path: the only place (besides
// the explicit POST /api/users) where a User comes into existence.
//
// HTTP: GET /api/me  (auth required)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, errUnauthenticated())
		return
	}

	user, err := h.users.FindOrCreate(r.Context(), ident.ID, ident.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
