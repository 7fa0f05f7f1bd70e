package repository

import (
	"context"

	"rewear/internal/domain/entity"
)

// SwapFilter selects swaps by side. ParticipantID matches either side.
type SwapFilter struct {
	RequesterID   string
	OwnerID       string
	ParticipantID string
	Status        entity.SwapStatus
}

type SwapRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Swap, error)
	// List returns matching swaps, newest first.
	List(ctx context.Context, filter SwapFilter) ([]*entity.Swap, error)
	Count(ctx context.Context, filter SwapFilter) (int64, error)
	Recent(ctx context.Context, limit int) ([]*entity.Swap, error)
	// DeleteByItem removes swaps targeting or offering itemID and returns them.
	DeleteByItem(ctx context.Context, itemID string) ([]*entity.Swap, error)
	// DeleteByUser removes swaps where userID is either participant and returns them.
	DeleteByUser(ctx context.Context, userID string) ([]*entity.Swap, error)
}
