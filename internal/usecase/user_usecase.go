package usecase

import (
	"context"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	itemRepo repository.ItemRepository
	swapRepo repository.SwapRepository
}

func NewUserUseCase(
	userRepo repository.UserRepository,
	itemRepo repository.ItemRepository,
	swapRepo repository.SwapRepository,
) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		itemRepo: itemRepo,
		swapRepo: swapRepo,
	}
}

// GetProfile returns the public view of an active user. Deactivated users read as absent.
func (uc *UserUseCase) GetProfile(ctx context.Context, id string) (*entity.PublicProfile, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.NotFound("User", nil)
	}
	return user.Public(), nil
}

func (uc *UserUseCase) GetStats(ctx context.Context, id string) (*entity.UserStats, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	totalItems, err := uc.itemRepo.Count(ctx, repository.ItemFilter{OwnerID: id})
	if err != nil {
		return nil, err
	}
	completed, err := uc.swapRepo.Count(ctx, repository.SwapFilter{ParticipantID: id, Status: entity.SwapCompleted})
	if err != nil {
		return nil, err
	}
	pending, err := uc.swapRepo.Count(ctx, repository.SwapFilter{ParticipantID: id, Status: entity.SwapPending})
	if err != nil {
		return nil, err
	}

	return &entity.UserStats{
		ItemsListed:    user.ItemsListed,
		SwapsCompleted: user.SwapsCompleted,
		Rating:         user.Rating,
		JoinDate:       user.CreatedAt,
		TotalItems:     totalItems,
		CompletedSwaps: completed,
		PendingSwaps:   pending,
	}, nil
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, patch entity.UserPatch) (*entity.User, error) {
	if patch.IsEmpty() {
		return nil, errors.Validation("No fields to update")
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, errors.Validation("Invalid input data", errors.FieldError{Field: "name", Message: "name cannot be empty"})
	}

	return uc.userRepo.UpdateProfile(ctx, userID, patch)
}
