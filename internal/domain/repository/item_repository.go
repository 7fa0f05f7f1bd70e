package repository

import (
	"context"

	"rewear/internal/domain/entity"
)

// ItemFilter is an exact-match filter for owner and admin listings. Nil flags are ignored.
type ItemFilter struct {
	OwnerID   string
	Available *bool
	Approved  *bool
}

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id string) error

	// Search evaluates a browse query and returns one page plus the total match count.
	Search(ctx context.Context, query entity.ItemQuery) ([]*entity.Item, int64, error)
	List(ctx context.Context, filter ItemFilter, limit, offset int) ([]*entity.Item, int64, error)
	Count(ctx context.Context, filter ItemFilter) (int64, error)
	Recent(ctx context.Context, limit int) ([]*entity.Item, error)
	Categories(ctx context.Context) ([]string, error)

	// IncrementViews adds one view and returns the item as stored afterwards.
	IncrementViews(ctx context.Context, id string) (*entity.Item, error)
	// ToggleLike flips userID in the like set and reports whether it is now liked.
	ToggleLike(ctx context.Context, id, userID string) (*entity.Item, bool, error)
	// UpdateDetails writes only the patched fields. Availability, likes and
	// swap requests stay as the swap engine left them.
	UpdateDetails(ctx context.Context, id string, patch entity.ItemPatch) (*entity.Item, error)
	// Approve sets the approval flag and returns the stored item.
	Approve(ctx context.Context, id string) (*entity.Item, error)
	// RemoveSwapRequests drops swapIDs from the listing's pending request list.
	RemoveSwapRequests(ctx context.Context, id string, swapIDs []string) error
	// DeleteByOwner removes every listing of ownerID and returns the removed IDs.
	DeleteByOwner(ctx context.Context, ownerID string) ([]string, error)
}
