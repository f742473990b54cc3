package sqlite

import (
	"context"
	"testing"

	"github.com/ymatsui/memoboard/internal/model"
)

// newTestDB opens a fresh in-memory database for one test. ":memory:" keeps
// tests fast and isolated; the connection (and with it the database) is torn
// down in t.Cleanup.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user row and fails the test on error. Posts and
// memos carry a foreign key to users, so most tests start here.
func createTestUser(t *testing.T, repo *UserRepo, externalID, name string) *model.User {
	t.Helper()
	user := &model.User{
		ExternalID: externalID,
		Name:       name,
		Email:      externalID + "@example.com",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
