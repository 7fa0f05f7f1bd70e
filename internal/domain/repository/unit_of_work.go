package repository

import (
	"context"

	"rewear/internal/domain/entity"
)

// Tx is a read-then-write view of the stores. All reads must happen before the first write.
// Writes become visible to other callers only when the enclosing transaction commits.
type Tx interface {
	GetUser(id string) (*entity.User, error)
	GetItem(id string) (*entity.Item, error)
	GetSwap(id string) (*entity.Swap, error)
	// FindPendingSwap returns nil when requesterID has no pending swap on itemID.
	FindPendingSwap(requesterID, itemID string) (*entity.Swap, error)

	// CreateSwap assigns an ID when empty and stages the insert.
	CreateSwap(swap *entity.Swap) error
	PutUser(user *entity.User) error
	PutItem(item *entity.Item) error
	PutSwap(swap *entity.Swap) error
}

// UnitOfWork runs fn atomically. Any error returned by fn discards every staged write.
type UnitOfWork interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
