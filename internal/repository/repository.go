// Package repository defines the storage interfaces the service layer
// depends on. Implementations live in subpackages (sqlite); tests supply
// in-memory mocks. Repositories translate domain operations into queries —
// they never authorize. Ownership checks are strictly the service layer's
// job.
package repository

import (
	"context"

	"github.com/ymatsui/memoboard/internal/model"
)

// UserRepository manages internal account records.
//
// GetByExternalID is the unique lookup behind both the authorization policy
// and the find-or-create bootstrap; it returns apperror.ErrNotFound when no
// account is linked to the external identity yet.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) (*model.User, error)
}

// PostRepository manages blog posts. List and GetByID populate the owner's
// public fields (externalId, name) via a join.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) (*model.Post, error)
}

// MemoRepository manages memos. Implementations store items/images/urls as
// JSON-encoded text and decode them back into the structured model fields
// on every read.
type MemoRepository interface {
	Create(ctx context.Context, memo *model.Memo) error
	GetByID(ctx context.Context, id int64) (*model.Memo, error)
	List(ctx context.Context) ([]model.Memo, error)
	Update(ctx context.Context, memo *model.Memo) error
	Delete(ctx context.Context, id int64) (*model.Memo, error)
}
