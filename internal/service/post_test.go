package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ymatsui/memoboard/internal/apperror"
)

func newTestPostService(t *testing.T) (*PostService, *mockPostRepo, *mockUserRepo) {
	t.Helper()
	posts := newMockPostRepo()
	users := newMockUserRepo()
	return NewPostService(posts, users, testLogger()), posts, users
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestPostCreate_Success(t *testing.T) {
	svc, _, users := newTestPostService(t)
	owner := seedUser(t, users, "ext-1", "Owner", "owner@example.com")

	post, err := svc.Create(context.Background(), "ext-1", PostInput{
		Title:   "First Post",
		Content: "Hello",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if post.ID == 0 {
		t.Error("expected post to have an ID")
	}
	if post.UserID != owner.ID {
		t.Errorf("UserID = %d, want owner's %d", post.UserID, owner.ID)
	}
}

// TestPostCreate_NoLinkedAccount: a verified identity with no internal
// account cannot create content, and the API contract makes that a 404.
func TestPostCreate_NoLinkedAccount(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	_, err := svc.Create(context.Background(), "ext-stranger", PostInput{
		Title:   "title",
		Content: "content",
	})
	if err == nil {
		t.Fatal("Create() should error when no account is linked")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPostCreate_EmptyTitle(t *testing.T) {
	svc, _, users := newTestPostService(t)
	seedUser(t, users, "ext-1", "Owner", "owner@example.com")

	_, err := svc.Create(context.Background(), "ext-1", PostInput{
		Title:   "   ",
		Content: "content",
	})
	if err == nil {
		t.Fatal("Create() should error on whitespace-only title")
	}
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestPostCreate_TrimsWhitespace(t *testing.T) {
	svc, _, users := newTestPostService(t)
	seedUser(t, users, "ext-1", "Owner", "owner@example.com")

	post, err := svc.Create(context.Background(), "ext-1", PostInput{
		Title:   "  spaced  ",
		Content: "  body  ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if post.Title != "spaced" {
		t.Errorf("Title = %q, want trimmed %q", post.Title, "spaced")
	}
	if post.Content != "body" {
		t.Errorf("Content = %q, want trimmed %q", post.Content, "body")
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestPostUpdate_OwnerCanUpdate(t *testing.T) {
	svc, _, users := newTestPostService(t)
	seedUser(t, users, "ext-1", "Owner", "owner@example.com")
	created, _ := svc.Create(context.Background(), "ext-1", PostInput{Title: "old", Content: "old"})

	updated, err := svc.Update(context.Background(), "ext-1", created.ID, PostInput{
		Title:   "new title",
		Content: "new content",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "new title" {
		t.Errorf("Title = %q, want %q", updated.Title, "new title")
	}
}

// TestPostUpdate_WrongOwner: a different user — fully authenticated, fully
// linked — gets ErrForbidden no matter what the payload says.
func TestPostUpdate_WrongOwner(t *testing.T) {
	svc, _, users := newTestPostService(t)
	seedUser(t, users, "ext-1", "User7", "user7@example.com")
	seedUser(t, users, "ext-2", "User9", "user9@example.com")

	created, _ := svc.Create(context.Background(), "ext-2", PostInput{Title: "mine", Content: "body"})

	_, err := svc.Update(context.Background(), "ext-1", created.ID, PostInput{
		Title:   "hijacked",
		Content: "evil",
	})
	if err == nil {
		t.Fatal("Update() should return ErrForbidden for a non-owner")
	}
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

// TestPostUpdate_NoLinkedAccount: owner-gated paths report 401, not 404,
// when the caller's identity has no internal account.
func TestPostUpdate_NoLinkedAccount(t *testing.T) {
	svc, _, users := newTestPostService(t)
	seedUser(t, users, "ext-2", "Owner", "owner@example.com")
	created, _ := svc.Create(context.Background(), "ext-2", PostInput{Title: "t", Content: "c"})

	_, err := svc.Update(context.Background(), "ext-unknown", created.ID, PostInput{
		Title:   "t",
		Content: "c",
	})
	if err == nil {
		t.Fatal("Update() should error for an unlinked identity")
	}
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestPostUpdate_NotFound(t *testing.T) {
	svc, _, users := newTestPostService(t)
	seedUser(t, users, "ext-1", "Owner", "owner@example.com")

	_, err := svc.Update(context.Background(), "ext-1", 999, PostInput{Title: "t", Content: "c"})
	if err == nil {
		t.Fatal("Update() should error on nonexistent post")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestPostDelete_OwnerCanDelete(t *testing.T) {
	svc, _, users := newTestPostService(t)
	seedUser(t, users, "ext-1", "Owner", "owner@example.com")
	created, _ := svc.Create(context.Background(), "ext-1", PostInput{Title: "bye", Content: "c"})

	deleted, err := svc.Delete(context.Background(), "ext-1", created.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != created.ID {
		t.Errorf("deleted.ID = %d, want %d", deleted.ID, created.ID)
	}

	_, err = svc.GetByID(context.Background(), created.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
}

// TestPostDelete_WrongOwner: deletion is owner-only. Knowing a valid id is
// not enough.
func TestPostDelete_WrongOwner(t *testing.T) {
	svc, posts, users := newTestPostService(t)
	seedUser(t, users, "ext-1", "Attacker", "a@example.com")
	seedUser(t, users, "ext-2", "Owner", "o@example.com")
	created, _ := svc.Create(context.Background(), "ext-2", PostInput{Title: "keep", Content: "c"})

	_, err := svc.Delete(context.Background(), "ext-1", created.ID)
	if err == nil {
		t.Fatal("Delete() should return ErrForbidden for a non-owner")
	}
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}

	// The post must still exist.
	if _, ok := posts.posts[created.ID]; !ok {
		t.Error("post was deleted despite failed authorization")
	}
}

// =========================================================================
// READ TESTS
// =========================================================================

func TestPostList_PublicAndEmpty(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	posts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("List() returned %d posts, want 0", len(posts))
	}
}

func TestPostGetByID_PublicRead(t *testing.T) {
	svc, _, users := newTestPostService(t)
	seedUser(t, users, "ext-1", "Owner", "owner@example.com")
	created, _ := svc.Create(context.Background(), "ext-1", PostInput{Title: "open", Content: "c"})

	// No caller identity at all — reads are public.
	found, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "open" {
		t.Errorf("Title = %q, want %q", found.Title, "open")
	}
}
