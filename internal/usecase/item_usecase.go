package usecase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/internal/domain/service"
	"rewear/pkg/errors"
	"rewear/pkg/logger"
)

type ItemUseCase struct {
	itemRepo    repository.ItemRepository
	userRepo    repository.UserRepository
	swapRepo    repository.SwapRepository
	images      service.ImageStorage
	autoApprove bool
}

func NewItemUseCase(
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	swapRepo repository.SwapRepository,
	images service.ImageStorage,
	autoApprove bool,
) *ItemUseCase {
	return &ItemUseCase{
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		swapRepo:    swapRepo,
		images:      images,
		autoApprove: autoApprove,
	}
}

type CreateItemInput struct {
	Title        string
	Description  string
	Category     string
	Size         string
	Condition    string
	Tags         []string
	Images       []string
	PointsValue  int
	Brand        string
	Color        string
	Material     string
	Location     string
	Measurements *entity.Measurements
	Shipping     *entity.ShippingInfo
}

// ItemDetail is a single listing with its owner resolved.
type ItemDetail struct {
	Item  *entity.Item          `json:"item"`
	Owner *entity.PublicProfile `json:"owner,omitempty"`
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

func validateListing(category, size, condition string, points int) []errors.FieldError {
	var details []errors.FieldError
	if !entity.IsValidCategory(category) {
		details = append(details, errors.FieldError{Field: "category", Message: "category must be one of: " + strings.Join(entity.Categories, ", ")})
	}
	if !entity.IsValidSize(size) {
		details = append(details, errors.FieldError{Field: "size", Message: "size must be one of: " + strings.Join(entity.Sizes, ", ")})
	}
	if !entity.IsValidCondition(condition) {
		details = append(details, errors.FieldError{Field: "condition", Message: "condition must be one of: " + strings.Join(entity.Conditions, ", ")})
	}
	if points < entity.MinPointsValue || points > entity.MaxPointsValue {
		details = append(details, errors.FieldError{
			Field:   "points_value",
			Message: fmt.Sprintf("points_value must be between %d and %d", entity.MinPointsValue, entity.MaxPointsValue),
		})
	}
	return details
}

func (uc *ItemUseCase) CreateItem(ctx context.Context, ownerID string, input CreateItemInput) (*entity.Item, error) {
	if details := validateListing(input.Category, input.Size, input.Condition, input.PointsValue); len(details) > 0 {
		return nil, errors.Validation("Invalid input data", details...)
	}

	owner, err := uc.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	images := input.Images
	if images == nil {
		images = []string{}
	}

	now := time.Now()
	item := &entity.Item{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Category:     input.Category,
		Size:         input.Size,
		Condition:    input.Condition,
		Tags:         tags,
		Images:       images,
		PointsValue:  input.PointsValue,
		Brand:        input.Brand,
		Color:        input.Color,
		Material:     input.Material,
		Location:     input.Location,
		Measurements: input.Measurements,
		Shipping:     input.Shipping,
		OwnerID:      owner.ID,
		OwnerName:    owner.Name,
		Available:    true,
		Approved:     uc.autoApprove,
		Likes:        []string{},
		SwapRequests: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.Location == "" {
		item.Location = owner.Location
	}

	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	if err := uc.userRepo.AdjustItemsListed(ctx, ownerID, 1); err != nil {
		logger.Warn("failed to increment items listed for user %s: %v", ownerID, err)
	}

	return item, nil
}

// Browse validates and normalizes the query, then evaluates it against the listing store.
func (uc *ItemUseCase) Browse(ctx context.Context, query entity.ItemQuery) ([]*entity.Item, int64, error) {
	var details []errors.FieldError

	if query.SortBy == "" {
		query.SortBy = entity.DefaultSortBy
	}
	key, _, ok := entity.LookupSortField(query.SortBy)
	if !ok {
		details = append(details, errors.FieldError{
			Field:   "sort_by",
			Message: "sort_by must be one of: " + strings.Join(entity.SortKeys(), ", "),
		})
	}
	query.SortBy = key

	switch strings.ToLower(query.SortOrder) {
	case "":
		query.SortOrder = entity.SortDesc
	case entity.SortAsc, entity.SortDesc:
		query.SortOrder = strings.ToLower(query.SortOrder)
	default:
		details = append(details, errors.FieldError{Field: "sort_order", Message: "sort_order must be one of: asc desc"})
	}

	if query.MinPoints != nil && *query.MinPoints < 0 {
		details = append(details, errors.FieldError{Field: "min_points", Message: "min_points must be at least 0"})
	}
	if query.MaxPoints != nil && *query.MaxPoints < 0 {
		details = append(details, errors.FieldError{Field: "max_points", Message: "max_points must be at least 0"})
	}
	if query.MinPoints != nil && query.MaxPoints != nil && *query.MinPoints > *query.MaxPoints {
		details = append(details, errors.FieldError{Field: "min_points", Message: "min_points must not exceed max_points"})
	}

	if len(details) > 0 {
		return nil, 0, errors.Validation("Invalid query parameters", details...)
	}

	query.Search = strings.TrimSpace(query.Search)
	return uc.itemRepo.Search(ctx, query)
}

// ListByOwner returns a user's publicly listed items.
func (uc *ItemUseCase) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Item, int64, error) {
	if _, err := uc.userRepo.GetByID(ctx, ownerID); err != nil {
		return nil, 0, err
	}
	return uc.Browse(ctx, entity.ItemQuery{OwnerID: ownerID, Limit: limit, Offset: offset})
}

// GetItem increments the view counter unconditionally and returns the post-increment listing.
func (uc *ItemUseCase) GetItem(ctx context.Context, id string) (*ItemDetail, error) {
	item, err := uc.itemRepo.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ItemDetail{Item: item}
	owner, err := uc.userRepo.GetByID(ctx, item.OwnerID)
	switch {
	case err == nil:
		detail.Owner = owner.Public()
	case errors.Is(err, errors.CodeNotFound):
	default:
		return nil, err
	}
	return detail, nil
}

func (uc *ItemUseCase) UpdateItem(ctx context.Context, userID, id string, patch entity.ItemPatch) (*entity.Item, error) {
	if patch.IsEmpty() {
		return nil, errors.Validation("No fields to update")
	}

	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != userID {
		return nil, errors.Forbidden("You can only update your own items", nil)
	}

	// Category, size and condition are fixed after creation, so validating the
	// merged copy holds for whatever the stored document looks like now.
	patch.Apply(item)
	if details := validateListing(item.Category, item.Size, item.Condition, item.PointsValue); len(details) > 0 {
		return nil, errors.Validation("Invalid input data", details...)
	}

	return uc.itemRepo.UpdateDetails(ctx, id, patch)
}

// DeleteItem removes a listing and every swap that references it. Admins may delete any listing.
func (uc *ItemUseCase) DeleteItem(ctx context.Context, userID, id string, asAdmin bool) error {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item.OwnerID != userID && !asAdmin {
		return errors.Forbidden("You can only delete your own items", nil)
	}

	removed, err := uc.swapRepo.DeleteByItem(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.itemRepo.Delete(ctx, id); err != nil {
		return err
	}
	pruneSwapRequests(ctx, uc.itemRepo, removed, map[string]bool{id: true})

	if err := uc.userRepo.AdjustItemsListed(ctx, item.OwnerID, -1); err != nil {
		logger.Warn("failed to decrement items listed for user %s: %v", item.OwnerID, err)
	}
	uc.deleteImages(ctx, item.Images)

	logger.WithFields(map[string]interface{}{
		"item_id":       id,
		"swaps_removed": len(removed),
		"by_admin":      asAdmin,
	}).Info("item deleted")
	return nil
}

func (uc *ItemUseCase) ToggleLike(ctx context.Context, userID, id string) (*LikeResult, error) {
	item, liked, err := uc.itemRepo.ToggleLike(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikeCount: item.LikeCount()}, nil
}

func (uc *ItemUseCase) Categories(ctx context.Context) ([]string, error) {
	return uc.itemRepo.Categories(ctx)
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func (uc *ItemUseCase) UploadImage(ctx context.Context, userID string, file io.Reader, contentType string) (string, error) {
	if uc.images == nil {
		return "", errors.New("SERVICE_UNAVAILABLE", "Image storage is not configured", http.StatusServiceUnavailable, nil)
	}
	if !allowedImageTypes[contentType] {
		return "", errors.Validation("Invalid input data", errors.FieldError{Field: "image", Message: "image must be a JPEG, PNG, GIF or WebP file"})
	}

	url, err := uc.images.Upload(ctx, file, contentType, "items/"+userID)
	if err != nil {
		return "", errors.Internal("Failed to upload image", err)
	}
	return url, nil
}

// deleteImages is best effort; a failed delete leaves an orphaned object behind.
func (uc *ItemUseCase) deleteImages(ctx context.Context, urls []string) {
	if uc.images == nil {
		return
	}
	for _, url := range urls {
		if err := uc.images.Delete(ctx, url); err != nil {
			logger.Debug("image %s not deleted: %v", url, err)
		}
	}
}

// pruneSwapRequests drops removed swaps from the request list of every target
// listing that survives. Listings in gone were deleted alongside the swaps.
func pruneSwapRequests(ctx context.Context, itemRepo repository.ItemRepository, removed []*entity.Swap, gone map[string]bool) {
	byItem := map[string][]string{}
	for _, swap := range removed {
		if gone[swap.ItemID] {
			continue
		}
		byItem[swap.ItemID] = append(byItem[swap.ItemID], swap.ID)
	}
	for itemID, swapIDs := range byItem {
		if err := itemRepo.RemoveSwapRequests(ctx, itemID, swapIDs); err != nil && !errors.Is(err, errors.CodeNotFound) {
			logger.Warn("failed to prune swap requests on item %s: %v", itemID, err)
		}
	}
}
