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

// MemoService handles business logic for memos.
type MemoService struct {
	memos    repository.MemoRepository
	users    repository.UserRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewMemoService creates a MemoService.
func NewMemoService(memos repository.MemoRepository, users repository.UserRepository, logger *slog.Logger) *MemoService {
	return &MemoService{
		memos:    memos,
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// MemoInput is the create/update body, already decoded from the
// stringified wire form by the handler.
type MemoInput struct {
	Title       string `validate:"required"`
	Type        string `validate:"required,oneof=checklist text"`
	Items       []model.ChecklistItem
	TextContent string
	Images      []model.MemoImage
	URLs        []model.MemoLink
}

// normalize trims the title and forces the field that doesn't match the
// declared type to its empty value, no matter what the client sent. A
// checklist memo never stores textContent; a text memo never stores items.
func (in *MemoInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	switch in.Type {
	case model.MemoTypeChecklist:
		in.TextContent = ""
	case model.MemoTypeText:
		in.Items = nil
	}
}

// List returns all memos, newest first. Public, like the post list — but
// unlike posts, reading a single memo requires ownership (GetByID below).
// That asymmetry is the existing product contract.
func (s *MemoService) List(ctx context.Context) ([]model.Memo, error) {
	memos, err := s.memos.List(ctx)
	if err != nil {
		s.logger.Error("failed to list memos", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing memos: %w", err)
	}
	return memos, nil
}

// GetByID returns a single memo to its owner. The full chain applies:
// verified identity (handler), linked account, ownership.
func (s *MemoService) GetByID(ctx context.Context, callerExternalID string, id int64) (*model.Memo, error) {
	memo, err := s.memos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := authorizeOwner(ctx, s.users, callerExternalID, memo.UserID); err != nil {
		return nil, err
	}

	return memo, nil
}

// Create makes a new memo owned by the caller.
func (s *MemoService) Create(ctx context.Context, callerExternalID string, input MemoInput) (*model.Memo, error) {
	user, err := resolveCaller(ctx, s.users, callerExternalID)
	if err != nil {
		return nil, err
	}

	input.normalize()
	if err := checkStruct(s.validate, input); err != nil {
		return nil, err
	}

	memo := &model.Memo{
		Title:       input.Title,
		Type:        input.Type,
		Items:       input.Items,
		TextContent: input.TextContent,
		Images:      input.Images,
		URLs:        input.URLs,
		UserID:      user.ID,
	}
	if err := s.memos.Create(ctx, memo); err != nil {
		s.logger.Error("failed to create memo",
			slog.Int64("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating memo: %w", err)
	}

	s.logger.Info("memo created",
		slog.Int64("id", memo.ID),
		slog.Int64("userID", user.ID),
		slog.String("type", memo.Type),
	)

	return memo, nil
}

// Update modifies a memo. Owner only.
func (s *MemoService) Update(ctx context.Context, callerExternalID string, id int64, input MemoInput) (*model.Memo, error) {
	memo, err := s.memos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := authorizeOwner(ctx, s.users, callerExternalID, memo.UserID); err != nil {
		return nil, err
	}

	input.normalize()
	if err := checkStruct(s.validate, input); err != nil {
		return nil, err
	}

	memo.Title = input.Title
	memo.Type = input.Type
	memo.Items = input.Items
	memo.TextContent = input.TextContent
	memo.Images = input.Images
	memo.URLs = input.URLs

	if err := s.memos.Update(ctx, memo); err != nil {
		s.logger.Error("failed to update memo",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating memo: %w", err)
	}

	s.logger.Info("memo updated", slog.Int64("id", id))
	return memo, nil
}

// Delete removes a memo and returns the deleted record. Owner only.
func (s *MemoService) Delete(ctx context.Context, callerExternalID string, id int64) (*model.Memo, error) {
	memo, err := s.memos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := authorizeOwner(ctx, s.users, callerExternalID, memo.UserID); err != nil {
		return nil, err
	}

	deleted, err := s.memos.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("memo deleted", slog.Int64("id", id))
	return deleted, nil
}
