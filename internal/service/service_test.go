package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ymatsui/memoboard/internal/apperror"
	"github.com/ymatsui/memoboard/internal/model"
)

// =========================================================================
// MOCK REPOSITORIES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces.
// No database setup, no disk I/O, and full control over failure modes the
// service layer has to handle. Each mock stores copies, never the caller's
// pointers, so tests can't accidentally share state through the mock.

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.ExternalID == user.ExternalID {
			return errors.New("UNIQUE constraint failed: users.external_id")
		}
		if u.Email == user.Email {
			return errors.New("UNIQUE constraint failed: users.email")
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", "mock")
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByExternalID(_ context.Context, externalID string) (*model.User, error) {
	for _, u := range m.users {
		if u.ExternalID == externalID {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", externalID)
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", "mock")
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", "mock")
	}
	delete(m.users, id)
	result := *u
	return &result, nil
}

type mockPostRepo struct {
	posts  map[int64]*model.Post
	nextID int64
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[int64]*model.Post)}
}

func (m *mockPostRepo) Create(_ context.Context, post *model.Post) error {
	m.nextID++
	post.ID = m.nextID
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id int64) (*model.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", "mock")
	}
	result := *p
	return &result, nil
}

func (m *mockPostRepo) List(_ context.Context) ([]model.Post, error) {
	result := make([]model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPostRepo) Update(_ context.Context, post *model.Post) error {
	if _, ok := m.posts[post.ID]; !ok {
		return apperror.NotFound("post", "mock")
	}
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *mockPostRepo) Delete(_ context.Context, id int64) (*model.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", "mock")
	}
	delete(m.posts, id)
	result := *p
	return &result, nil
}

type mockMemoRepo struct {
	memos  map[int64]*model.Memo
	nextID int64
}

func newMockMemoRepo() *mockMemoRepo {
	return &mockMemoRepo{memos: make(map[int64]*model.Memo)}
}

func (m *mockMemoRepo) Create(_ context.Context, memo *model.Memo) error {
	m.nextID++
	memo.ID = m.nextID
	memo.CreatedAt = time.Now().UTC()
	memo.UpdatedAt = memo.CreatedAt
	stored := *memo
	m.memos[memo.ID] = &stored
	return nil
}

func (m *mockMemoRepo) GetByID(_ context.Context, id int64) (*model.Memo, error) {
	memo, ok := m.memos[id]
	if !ok {
		return nil, apperror.NotFound("memo", "mock")
	}
	result := *memo
	return &result, nil
}

func (m *mockMemoRepo) List(_ context.Context) ([]model.Memo, error) {
	result := make([]model.Memo, 0, len(m.memos))
	for _, memo := range m.memos {
		result = append(result, *memo)
	}
	return result, nil
}

func (m *mockMemoRepo) Update(_ context.Context, memo *model.Memo) error {
	if _, ok := m.memos[memo.ID]; !ok {
		return apperror.NotFound("memo", "mock")
	}
	stored := *memo
	m.memos[memo.ID] = &stored
	return nil
}

func (m *mockMemoRepo) Delete(_ context.Context, id int64) (*model.Memo, error) {
	memo, ok := m.memos[id]
	if !ok {
		return nil, apperror.NotFound("memo", "mock")
	}
	delete(m.memos, id)
	result := *memo
	return &result, nil
}

// =========================================================================
// SHARED HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// seedUser puts a user with a linked external identity into the mock repo.
func seedUser(t *testing.T, users *mockUserRepo, externalID, name, email string) *model.User {
	t.Helper()
	user := &model.User{ExternalID: externalID, Name: name, Email: email}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user %s: %v", externalID, err)
	}
	return user
}
