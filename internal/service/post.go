package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ymatsui/memoboard/internal/model"
	"github.com/ymatsui/memoboard/internal/repository"
)

// PostService handles business logic for blog posts.
//
// MUTATION SEQUENCE (shared with MemoService):
// every mutating operation runs identity → load → authorize → validate →
// repository call. The handler already proved WHO the caller is; this layer
// decides whether that caller MAY touch the target, via authorizeOwner.
type PostService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// PostInput is the create/update body: both fields required, non-empty
// after trimming.
type PostInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (in *PostInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
}

// List returns all posts with their owners, newest first. Deliberately
// public — no identity needed.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// GetByID returns a single post with its owner. Also public.
func (s *PostService) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// Create makes a new post owned by the caller. The caller must already
// have a linked internal account — create paths never bootstrap one, and a
// missing account surfaces as NotFound per the API contract.
func (s *PostService) Create(ctx context.Context, callerExternalID string, input PostInput) (*model.Post, error) {
	user, err := resolveCaller(ctx, s.users, callerExternalID)
	if err != nil {
		return nil, err
	}

	input.trim()
	if err := checkStruct(s.validate, input); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:   input.Title,
		Content: input.Content,
		UserID:  user.ID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.Int64("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("id", post.ID),
		slog.Int64("userID", user.ID),
	)

	return post, nil
}

// Update modifies a post's title and content. Owner only.
func (s *PostService) Update(ctx context.Context, callerExternalID string, id int64, input PostInput) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := authorizeOwner(ctx, s.users, callerExternalID, post.UserID); err != nil {
		return nil, err
	}

	input.trim()
	if err := checkStruct(s.validate, input); err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Content = input.Content

	if err := s.posts.Update(ctx, post); err != nil {
		s.logger.Error("failed to update post",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating post: %w", err)
	}

	s.logger.Info("post updated", slog.Int64("id", id))
	return post, nil
}

// Delete removes a post and returns the deleted record. Owner only — the
// system this replaces let anyone who knew a valid id delete any post;
// that was an oversight, not a contract.
func (s *PostService) Delete(ctx context.Context, callerExternalID string, id int64) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := authorizeOwner(ctx, s.users, callerExternalID, post.UserID); err != nil {
		return nil, err
	}

	deleted, err := s.posts.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("post deleted", slog.Int64("id", id))
	return deleted, nil
}
