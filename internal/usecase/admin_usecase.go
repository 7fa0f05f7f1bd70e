package usecase

import (
	"context"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/internal/domain/service"
	"rewear/pkg/errors"
	"rewear/pkg/logger"
)

const recentActivityLimit = 5

type AdminUseCase struct {
	userRepo    repository.UserRepository
	itemRepo    repository.ItemRepository
	swapRepo    repository.SwapRepository
	itemUseCase *ItemUseCase
	identity    service.IdentityProvider
}

func NewAdminUseCase(
	userRepo repository.UserRepository,
	itemRepo repository.ItemRepository,
	swapRepo repository.SwapRepository,
	itemUseCase *ItemUseCase,
	identity service.IdentityProvider,
) *AdminUseCase {
	return &AdminUseCase{
		userRepo:    userRepo,
		itemRepo:    itemRepo,
		swapRepo:    swapRepo,
		itemUseCase: itemUseCase,
		identity:    identity,
	}
}

type UserCounts struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type ItemCounts struct {
	Total           int64 `json:"total"`
	Available       int64 `json:"available"`
	PendingApproval int64 `json:"pending_approval"`
}

type SwapCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Accepted  int64 `json:"accepted"`
	Completed int64 `json:"completed"`
}

type RecentActivity struct {
	Users []*entity.User `json:"users"`
	Items []*entity.Item `json:"items"`
	Swaps []*entity.Swap `json:"swaps"`
}

type PlatformStats struct {
	Users  UserCounts     `json:"users"`
	Items  ItemCounts     `json:"items"`
	Swaps  SwapCounts     `json:"swaps"`
	Recent RecentActivity `json:"recent"`
}

func (uc *AdminUseCase) ListUsers(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]*entity.User, int64, error) {
	return uc.userRepo.List(ctx, filter, limit, offset)
}

func (uc *AdminUseCase) UpdateUser(ctx context.Context, adminID, id string, patch entity.AdminUserPatch) (*entity.User, error) {
	if patch.IsEmpty() {
		return nil, errors.Validation("No fields to update")
	}
	if patch.Points != nil && *patch.Points < 0 {
		return nil, errors.Validation("Invalid input data", errors.FieldError{Field: "points", Message: "points must be at least 0"})
	}
	if id == adminID && (patch.IsActive != nil && !*patch.IsActive || patch.IsAdmin != nil && !*patch.IsAdmin) {
		return nil, errors.Forbidden("Admins cannot deactivate or demote themselves", nil)
	}

	user, err := uc.userRepo.UpdateAccount(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{"admin_id": adminID, "user_id": id}).Info("user updated by admin")
	return user, nil
}

// ToggleBan flips the user's active flag.
func (uc *AdminUseCase) ToggleBan(ctx context.Context, adminID, id string) (*entity.User, error) {
	if id == adminID {
		return nil, errors.Forbidden("Admins cannot ban themselves", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	active := !user.IsActive
	return uc.UpdateUser(ctx, adminID, id, entity.AdminUserPatch{IsActive: &active})
}

// ToggleAdmin flips the user's admin role.
func (uc *AdminUseCase) ToggleAdmin(ctx context.Context, adminID, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	admin := !user.IsAdmin()
	return uc.UpdateUser(ctx, adminID, id, entity.AdminUserPatch{IsAdmin: &admin})
}

// DeleteUser removes the account together with its listings and every swap it took part in.
func (uc *AdminUseCase) DeleteUser(ctx context.Context, adminID, id string) error {
	if id == adminID {
		return errors.Forbidden("Admins cannot delete themselves", nil)
	}
	if _, err := uc.userRepo.GetByID(ctx, id); err != nil {
		return err
	}

	swaps, err := uc.swapRepo.DeleteByUser(ctx, id)
	if err != nil {
		return err
	}
	itemIDs, err := uc.itemRepo.DeleteByOwner(ctx, id)
	if err != nil {
		return err
	}
	gone := make(map[string]bool, len(itemIDs))
	for _, itemID := range itemIDs {
		gone[itemID] = true
		removed, err := uc.swapRepo.DeleteByItem(ctx, itemID)
		if err != nil {
			return err
		}
		swaps = append(swaps, removed...)
	}
	pruneSwapRequests(ctx, uc.itemRepo, swaps, gone)
	if err := uc.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	if remover, ok := uc.identity.(service.IdentityRemover); ok {
		if err := remover.DeleteIdentity(ctx, id); err != nil {
			logger.Warn("failed to delete identity for %s: %v", id, err)
		}
	}

	logger.WithFields(map[string]interface{}{
		"admin_id":      adminID,
		"user_id":       id,
		"items_removed": len(itemIDs),
		"swaps_removed": len(swaps),
	}).Info("user deleted by admin")
	return nil
}

func (uc *AdminUseCase) ListItems(ctx context.Context, filter repository.ItemFilter, limit, offset int) ([]*entity.Item, int64, error) {
	return uc.itemRepo.List(ctx, filter, limit, offset)
}

func (uc *AdminUseCase) ApproveItem(ctx context.Context, id string) (*entity.Item, error) {
	return uc.itemRepo.Approve(ctx, id)
}

func (uc *AdminUseCase) DeleteItem(ctx context.Context, adminID, id string) error {
	return uc.itemUseCase.DeleteItem(ctx, adminID, id, true)
}

func (uc *AdminUseCase) Stats(ctx context.Context) (*PlatformStats, error) {
	var (
		stats PlatformStats
		err   error
		yes   = true
		no    = false
	)

	counts := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&stats.Users.Total, func() (int64, error) { return uc.userRepo.Count(ctx, repository.UserFilter{}) }},
		{&stats.Users.Active, func() (int64, error) { return uc.userRepo.Count(ctx, repository.UserFilter{IsActive: &yes}) }},
		{&stats.Items.Total, func() (int64, error) { return uc.itemRepo.Count(ctx, repository.ItemFilter{}) }},
		{&stats.Items.Available, func() (int64, error) { return uc.itemRepo.Count(ctx, repository.ItemFilter{Available: &yes}) }},
		{&stats.Items.PendingApproval, func() (int64, error) { return uc.itemRepo.Count(ctx, repository.ItemFilter{Approved: &no}) }},
		{&stats.Swaps.Total, func() (int64, error) { return uc.swapRepo.Count(ctx, repository.SwapFilter{}) }},
		{&stats.Swaps.Pending, func() (int64, error) {
			return uc.swapRepo.Count(ctx, repository.SwapFilter{Status: entity.SwapPending})
		}},
		{&stats.Swaps.Accepted, func() (int64, error) {
			return uc.swapRepo.Count(ctx, repository.SwapFilter{Status: entity.SwapAccepted})
		}},
		{&stats.Swaps.Completed, func() (int64, error) {
			return uc.swapRepo.Count(ctx, repository.SwapFilter{Status: entity.SwapCompleted})
		}},
	}
	for _, c := range counts {
		if *c.dst, err = c.fn(); err != nil {
			return nil, err
		}
	}
	stats.Users.Inactive = stats.Users.Total - stats.Users.Active

	if stats.Recent.Users, err = uc.userRepo.Recent(ctx, recentActivityLimit); err != nil {
		return nil, err
	}
	if stats.Recent.Items, err = uc.itemRepo.Recent(ctx, recentActivityLimit); err != nil {
		return nil, err
	}
	if stats.Recent.Swaps, err = uc.swapRepo.Recent(ctx, recentActivityLimit); err != nil {
		return nil, err
	}
	return &stats, nil
}
