package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ymatsui/memoboard/internal/apperror"
	"github.com/ymatsui/memoboard/internal/model"
	"github.com/ymatsui/memoboard/internal/repository"
)

// FallbackName is used when an email yields no usable display name.
const FallbackName = "NoName"

// UserService handles account management and the find-or-create bootstrap.
type UserService struct {
	users    repository.UserRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// CreateUserInput is the POST /api/users body. Name is optional — when
// empty it's derived from the email.
type CreateUserInput struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"required,email"`
	ExternalID string `json:"externalId" validate:"required"`
}

// UpdateUserInput is the PUT /api/users/{id} body. Both fields required.
type UpdateUserInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create is the explicit find-or-create entry point (POST /api/users).
//
// IDEMPOTENCE:
// A repeat call with the same externalId returns the existing record
// instead of failing on the UNIQUE constraint or creating a duplicate.
// This is one of exactly two paths allowed to create a User implicitly;
// FindOrCreate below is the other.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.ExternalID = strings.TrimSpace(input.ExternalID)

	if err := checkStruct(s.validate, input); err != nil {
		return nil, err
	}

	if input.Name == "" {
		input.Name = deriveName(input.Email)
	}

	return s.findOrCreate(ctx, input.ExternalID, input.Email, input.Name)
}

// FindOrCreate is the bootstrap path behind GET /api/me: resolve the
// caller's internal account, creating it on first authenticated access
// with a name derived from the email (the part before "@", or a fallback).
func (s *UserService) FindOrCreate(ctx context.Context, externalID, email string) (*model.User, error) {
	if externalID == "" {
		return nil, apperror.Unauthenticated("identity has no subject")
	}
	return s.findOrCreate(ctx, externalID, email, deriveName(email))
}

func (s *UserService) findOrCreate(ctx context.Context, externalID, email, name string) (*model.User, error) {
	existing, err := s.users.GetByExternalID(ctx, externalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("looking up user by external id: %w", err)
	}

	user := &model.User{
		ExternalID: externalID,
		Name:       name,
		Email:      email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Two racing bootstrap requests can both miss the lookup; the
		// UNIQUE constraint catches the loser. Re-read and return the row
		// the winner created — the operation stays idempotent either way.
		if existing, lookupErr := s.users.GetByExternalID(ctx, externalID); lookupErr == nil {
			return existing, nil
		}
		s.logger.Error("failed to create user",
			slog.String("externalID", externalID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.Int64("id", user.ID),
		slog.String("externalID", externalID),
	)

	return user, nil
}

// Update modifies a user's name and email.
func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*model.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	if err := checkStruct(s.validate, input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = input.Name
	user.Email = input.Email

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

// Delete removes a user. This is the admin delete path — normal flows
// never delete accounts.
func (s *UserService) Delete(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user deleted", slog.Int64("id", id))
	return user, nil
}

// deriveName picks a display name from an email: the portion before "@",
// or FallbackName when that yields nothing.
func deriveName(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return FallbackName
	}
	return local
}
