package service

import (
	"context"

	"rewear/internal/domain/entity"
)

// IdentityProvider issues and verifies bearer tokens for stored users.
type IdentityProvider interface {
	// RegisterIdentity mirrors a newly created user into the provider, if it keeps its own records.
	RegisterIdentity(ctx context.Context, user *entity.User, password string) error
	IssueToken(ctx context.Context, user *entity.User) (string, error)
	// VerifyToken returns the user ID the token was issued for.
	VerifyToken(ctx context.Context, token string) (string, error)
}

// IdentityRemover is implemented by providers that keep their own account records.
type IdentityRemover interface {
	DeleteIdentity(ctx context.Context, userID string) error
}
