package handler_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ymatsui/memoboard/internal/handler"
	"github.com/ymatsui/memoboard/internal/identity"
	"github.com/ymatsui/memoboard/internal/model"
	"github.com/ymatsui/memoboard/internal/repository/sqlite"
	"github.com/ymatsui/memoboard/internal/service"
)

// The handler tests run the real service and repository layers over an
// in-memory database, with real tokens through the real auth middleware.
// Only the identity provider's network side (OAuth, logout) stays out of
// the picture — token verification is local and needs no network.

const testSecret = "handler-test-secret-0123456789"

type env struct {
	provider *identity.Provider
	users    *handler.UserHandler
	posts    *handler.PostHandler
	memos    *handler.MemoHandler
	userSvc  *service.UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	userRepo := sqlite.NewUserRepo(db)
	userSvc := service.NewUserService(userRepo, logger)
	postSvc := service.NewPostService(sqlite.NewPostRepo(db), userRepo, logger)
	memoSvc := service.NewMemoService(sqlite.NewMemoRepo(db), userRepo, logger)

	provider, err := identity.NewProvider(identity.Config{
		BaseURL:   "https://auth.test",
		JWTSecret: testSecret,
	})
	if err != nil {
		t.Fatalf("creating test provider: %v", err)
	}

	return &env{
		provider: provider,
		users:    handler.NewUserHandler(userSvc, logger),
		posts:    handler.NewPostHandler(postSvc, logger),
		memos:    handler.NewMemoHandler(memoSvc, logger),
		userSvc:  userSvc,
	}
}

// mintToken issues an access token the way the identity provider would.
func mintToken(t *testing.T, subject, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

// seedUser creates a linked account directly through the service layer.
func (e *env) seedUser(t *testing.T, externalID, email string) *model.User {
	t.Helper()
	user, err := e.userSvc.FindOrCreate(t.Context(), externalID, email)
	if err != nil {
		t.Fatalf("seeding user %s: %v", externalID, err)
	}
	return user
}

// authed wraps a handler in the auth middleware, same as the router does.
func (e *env) authed(h http.HandlerFunc) http.Handler {
	return identity.RequireAuth(e.provider)(h)
}

// request builds an httptest request; id sets the {id} path parameter and
// token rides in the Authorization header.
func request(method, target, body, id, token string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if id != "" {
		req.SetPathValue("id", id)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
