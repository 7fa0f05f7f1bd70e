package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewear/internal/adapter/repository/memory"
	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	apperrors "rewear/pkg/errors"
)

func TestCreateItemValidatesEveryField(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", 100)

	_, err := f.items.CreateItem(context.Background(), owner.ID, CreateItemInput{
		Title:       "Mystery",
		Category:    "Hats",
		Size:        "Huge",
		Condition:   "Mint",
		PointsValue: 0,
	})
	requireCode(t, err, apperrors.CodeValidation)

	appErr, _ := apperrors.As(err)
	fields := make([]string, 0, len(appErr.Details))
	for _, d := range appErr.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"category", "size", "condition", "points_value"}, fields)
}

func TestCreateItemIncrementsItemsListed(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", 100)

	item := f.listing(t, owner, "Cardigan", 25)
	assert.Equal(t, owner.ID, item.OwnerID)
	assert.Equal(t, "owner", item.OwnerName)
	assert.True(t, item.Available)
	assert.True(t, item.Approved)
	assert.Equal(t, 1, f.reloadUser(t, owner.ID).ItemsListed)
}

func TestNewListingsAwaitApprovalByDefault(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	auth := NewAuthUseCase(store.Users(), stubIdentity{}, plainHasher{}, 100)
	items := NewItemUseCase(store.Items(), store.Users(), store.Swaps(), nil, false)
	admin := NewAdminUseCase(store.Users(), store.Items(), store.Swaps(), items, nil)

	res, err := auth.Register(ctx, RegisterInput{Name: "Owner", Email: "owner@example.com", Password: "secret123"})
	require.NoError(t, err)
	item, err := items.CreateItem(ctx, res.User.ID, CreateItemInput{
		Title: "Tee", Category: "Tops", Size: "S", Condition: "New", PointsValue: 5,
	})
	require.NoError(t, err)
	assert.False(t, item.Approved)

	found, total, err := items.Browse(ctx, entity.ItemQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, found)

	_, err = admin.ApproveItem(ctx, item.ID)
	require.NoError(t, err)

	_, total, err = items.Browse(ctx, entity.ItemQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestGetItemIncrementsViewsPerFetch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner", 100)
	item := f.listing(t, owner, "Parka", 60)

	first, err := f.items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Item.Views)
	require.NotNil(t, first.Owner)
	assert.Equal(t, "owner", first.Owner.Name)

	second, err := f.items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Item.Views)

	_, err = f.items.GetItem(ctx, "missing")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner", 100)
	item := f.listing(t, owner, "Blazer", 60)

	for i, u := range []string{"u1", "u2", "u3"} {
		res, err := f.items.ToggleLike(ctx, u, item.ID)
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.Equal(t, i+1, res.LikeCount)
	}

	res, err := f.items.ToggleLike(ctx, "u2", item.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 2, res.LikeCount)

	res, err = f.items.ToggleLike(ctx, "u2", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.LikeCount)

	stored := f.reloadItem(t, item.ID)
	assert.Equal(t, len(stored.Likes), stored.LikeCount())
}

func TestUpdateItemOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner", 100)
	other := f.user(t, "other", 100)
	item := f.listing(t, owner, "Jeans", 30)

	title := "Vintage jeans"
	_, err := f.items.UpdateItem(ctx, other.ID, item.ID, entity.ItemPatch{Title: &title})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.items.UpdateItem(ctx, owner.ID, item.ID, entity.ItemPatch{})
	requireCode(t, err, apperrors.CodeValidation)

	tooMany := 5000
	_, err = f.items.UpdateItem(ctx, owner.ID, item.ID, entity.ItemPatch{PointsValue: &tooMany})
	requireCode(t, err, apperrors.CodeValidation)
	assert.Equal(t, 30, f.reloadItem(t, item.ID).PointsValue)

	updated, err := f.items.UpdateItem(ctx, owner.ID, item.ID, entity.ItemPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Vintage jeans", updated.Title)
	assert.Equal(t, "Vintage jeans", f.reloadItem(t, item.ID).Title)
}

func TestDeleteItemCascadesSwaps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner", 100)
	requester := f.user(t, "requester", 100)
	target := f.listing(t, owner, "Sweater", 20)
	offered := f.listing(t, requester, "Polo", 20)
	unrelated := f.listing(t, owner, "Socks", 5)

	_, err := f.swaps.CreateSwap(ctx, requester.ID, CreateSwapInput{ItemID: target.ID, SwapType: entity.SwapTypePoints, PointsOffered: 5})
	require.NoError(t, err)
	_, err = f.swaps.CreateSwap(ctx, owner.ID, CreateSwapInput{ItemID: offered.ID, SwapType: entity.SwapTypePoints, PointsOffered: 5})
	require.NoError(t, err)
	_, err = f.swaps.CreateSwap(ctx, requester.ID, CreateSwapInput{ItemID: unrelated.ID, OfferedItemID: offered.ID, SwapType: entity.SwapTypeDirect})
	require.NoError(t, err)

	err = f.items.DeleteItem(ctx, owner.ID, offered.ID, false)
	requireCode(t, err, apperrors.CodeForbidden)

	require.NoError(t, f.items.DeleteItem(ctx, requester.ID, offered.ID, false))

	_, err = f.store.Items().GetByID(ctx, offered.ID)
	requireCode(t, err, apperrors.CodeNotFound)
	remaining, err := f.store.Swaps().List(ctx, repository.SwapFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, target.ID, remaining[0].ItemID)
	assert.Equal(t, 0, f.reloadUser(t, requester.ID).ItemsListed)

	assert.Empty(t, f.reloadItem(t, unrelated.ID).SwapRequests)
	assert.Equal(t, []string{remaining[0].ID}, f.reloadItem(t, target.ID).SwapRequests)
}

func TestBrowse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner", 100)
	for i := 0; i < 25; i++ {
		f.listing(t, owner, "Tee", 10+i)
	}

	page, total, err := f.items.Browse(ctx, entity.ItemQuery{Offset: 20, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page, 5)

	page, _, err = f.items.Browse(ctx, entity.ItemQuery{Offset: 30, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page)

	min, max := 20, 24
	page, total, err = f.items.Browse(ctx, entity.ItemQuery{MinPoints: &min, MaxPoints: &max, SortBy: "pointsValue", SortOrder: "ASC", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 5)
	assert.Equal(t, 20, page[0].PointsValue)
	assert.Equal(t, 24, page[4].PointsValue)

	_, _, err = f.items.Browse(ctx, entity.ItemQuery{SortBy: "passwordHash"})
	requireCode(t, err, apperrors.CodeValidation)

	_, _, err = f.items.Browse(ctx, entity.ItemQuery{SortOrder: "sideways", MinPoints: &max, MaxPoints: &min})
	requireCode(t, err, apperrors.CodeValidation)
	appErr, _ := apperrors.As(err)
	assert.Len(t, appErr.Details, 2)
}

func TestCategoriesAndOwnerListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner", 100)
	other := f.user(t, "other", 100)
	f.listing(t, owner, "Tee", 10)
	_, err := f.items.CreateItem(ctx, other.ID, CreateItemInput{
		Title: "Loafers", Category: "Shoes", Size: "L", Condition: "Fair", PointsValue: 15,
	})
	require.NoError(t, err)

	categories, err := f.items.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shoes", "Tops"}, categories)

	items, total, err := f.items.ListByOwner(ctx, other.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Loafers", items[0].Title)

	_, _, err = f.items.ListByOwner(ctx, "ghost", 10, 0)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestUploadImageWithoutStorage(t *testing.T) {
	f := newFixture(t)
	_, err := f.items.UploadImage(context.Background(), "u1", strings.NewReader("data"), "image/png")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 503, appErr.Status)
}
