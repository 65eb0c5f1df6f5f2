package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/auth"
)

var ErrInvalidIdentity = errors.New("invalid identity claims")

// ActorFromContext builds the acting identity from the verified token claims.
func ActorFromContext(ctx context.Context) (Actor, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return Actor{}, err
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: user_id: %v", ErrInvalidIdentity, err)
	}

	role := Role(claims.Role)
	if !role.IsValid() {
		return Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidIdentity, claims.Role)
	}

	return Actor{ID: id, Role: role}, nil
}
