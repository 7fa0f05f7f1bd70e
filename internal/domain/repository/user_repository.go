package repository

import (
	"context"

	"rewear/internal/domain/entity"
)

// UserFilter narrows admin user listings. Search matches name or email.
type UserFilter struct {
	Search   string
	IsActive *bool
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]*entity.User, int64, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	Recent(ctx context.Context, limit int) ([]*entity.User, error)
	AdjustItemsListed(ctx context.Context, id string, delta int) error
	// UpdateProfile and UpdateAccount write only the fields set in the patch,
	// leaving points and counters moved by concurrent swaps untouched.
	UpdateProfile(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error)
	UpdateAccount(ctx context.Context, id string, patch entity.AdminUserPatch) (*entity.User, error)
}
