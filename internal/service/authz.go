// Package service contains the business logic layer: validation, the
// ownership-authorization policy, and orchestration between handlers and
// repositories. Services accept plain values and return domain errors —
// they know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ymatsui/memoboard/internal/apperror"
	"github.com/ymatsui/memoboard/internal/model"
	"github.com/ymatsui/memoboard/internal/repository"
)

// authorizeOwner is THE ownership check, implemented once and reused by the
// post and memo services for every owner-gated operation.
//
// Given the caller's verified external identity and the owner id stored on
// the target resource:
//
//  1. Resolve the internal User linked to the external identity. No linked
//     account → ErrUnauthenticated: the caller is a real person as far as
//     the provider is concerned, but nobody to us yet, and owner-gated
//     paths never create accounts implicitly.
//  2. Compare the resolved user's id to the resource's owner id.
//     Mismatch → ErrForbidden.
//
// Returns the resolved user on success so callers don't have to look it up
// again. Keeping this in one function is deliberate: the system this
// replaces duplicated the check per endpoint and one delete path lost it
// entirely.
func authorizeOwner(ctx context.Context, users repository.UserRepository, callerExternalID string, ownerID int64) (*model.User, error) {
	user, err := users.GetByExternalID(ctx, callerExternalID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("no account is linked to this identity")
		}
		return nil, fmt.Errorf("resolving caller: %w", err)
	}

	if user.ID != ownerID {
		return nil, apperror.Forbidden("you do not own this resource")
	}

	return user, nil
}

// resolveCaller maps an external identity to its internal user for create
// paths. Unlike authorizeOwner, a missing account here surfaces as
// NotFound — "POST with no linked user" is a 404 in the API contract, not
// a 401.
func resolveCaller(ctx context.Context, users repository.UserRepository, callerExternalID string) (*model.User, error) {
	user, err := users.GetByExternalID(ctx, callerExternalID)
	if err != nil {
		return nil, err // NotFound passes through as-is
	}
	return user, nil
}

// checkStruct runs validator tags over an input struct and converts the
// first failure into an apperror.ValidationFailed with a readable message.
func checkStruct(validate *validator.Validate, input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			return apperror.ValidationFailed(field, fmt.Sprintf("%s is required", field))
		case "oneof":
			return apperror.ValidationFailed(field,
				fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			return apperror.ValidationFailed(field, fmt.Sprintf("%s is invalid", field))
		}
	}

	return apperror.ValidationFailed("", "invalid request body")
}
