package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	apperrors "rewear/pkg/errors"
)

func TestUnitOfWorkDiscardsWritesOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Users().Create(ctx, &entity.User{ID: "u1", Email: "a@b.c", Points: 100}))

	boom := errors.New("boom")
	err := store.UnitOfWork().RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.GetUser("u1")
		require.NoError(t, err)
		user.Points = 0
		require.NoError(t, tx.PutUser(user))

		staged, err := tx.GetUser("u1")
		require.NoError(t, err)
		assert.Equal(t, 0, staged.Points)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	user, err := store.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100, user.Points)
}

func TestUnitOfWorkCommits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var id string
	err := store.UnitOfWork().RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		swap := &entity.Swap{RequesterID: "u2", OwnerID: "u1", ItemID: "i1", Status: entity.SwapPending}
		if err := tx.CreateSwap(swap); err != nil {
			return err
		}
		id = swap.ID
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	err = store.UnitOfWork().RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		found, err := tx.FindPendingSwap("u2", "i1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, id, found.ID)

		none, err := tx.FindPendingSwap("u3", "i1")
		require.NoError(t, err)
		assert.Nil(t, none)
		return nil
	})
	require.NoError(t, err)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store := NewStore()
	_, err := store.Items().GetByID(context.Background(), "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	item := &entity.Item{ID: "i1", Likes: []string{"a"}}
	require.NoError(t, store.Items().Create(ctx, item))

	got, err := store.Items().GetByID(ctx, "i1")
	require.NoError(t, err)
	got.Likes[0] = "mutated"

	again, err := store.Items().GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Likes)
}

func TestSearchPaginates(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Now()
	for i := 0; i < 25; i++ {
		require.NoError(t, store.Items().Create(ctx, &entity.Item{
			Title:     "Shirt",
			Available: true,
			Approved:  true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page3, total, err := store.Items().Search(ctx, entity.ItemQuery{Offset: 20, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page3, 5)

	page4, total, err := store.Items().Search(ctx, entity.ItemQuery{Offset: 30, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Empty(t, page4)
}

func TestDeleteByItemCoversOfferedItem(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	err := store.UnitOfWork().RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		require.NoError(t, tx.CreateSwap(&entity.Swap{ItemID: "a", OfferedItemID: "b"}))
		require.NoError(t, tx.CreateSwap(&entity.Swap{ItemID: "b"}))
		require.NoError(t, tx.CreateSwap(&entity.Swap{ItemID: "c"}))
		return nil
	})
	require.NoError(t, err)

	removed, err := store.Swaps().DeleteByItem(ctx, "b")
	require.NoError(t, err)
	require.Len(t, removed, 2)
	targets := []string{removed[0].ItemID, removed[1].ItemID}
	assert.ElementsMatch(t, []string{"a", "b"}, targets)

	count, err := store.Swaps().Count(ctx, repository.SwapFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUserListFiltersBySearchAndActive(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Users().Create(ctx, &entity.User{Name: "Alice", Email: "alice@x.io", IsActive: true}))
	require.NoError(t, store.Users().Create(ctx, &entity.User{Name: "Bob", Email: "bob@x.io", IsActive: false}))

	users, total, err := store.Users().List(ctx, repository.UserFilter{Search: "ALI"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Alice", users[0].Name)

	inactive := false
	users, _, err = store.Users().List(ctx, repository.UserFilter{IsActive: &inactive}, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Bob", users[0].Name)

	err = store.Users().Create(ctx, &entity.User{Email: "ALICE@x.io"})
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
}

func TestPatchWritesLeaveOtherFieldsAlone(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Users().Create(ctx, &entity.User{ID: "u1", Email: "a@b.c", Points: 100, IsActive: true}))
	require.NoError(t, store.Items().Create(ctx, &entity.Item{ID: "i1", Title: "Coat", Available: true, Tags: []string{"wool"}}))

	// Out-of-band changes the patch writes must not revert.
	require.NoError(t, store.UnitOfWork().RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.GetUser("u1")
		require.NoError(t, err)
		item, err := tx.GetItem("i1")
		require.NoError(t, err)
		user.Points = 70
		item.Available = false
		item.SwapRequests = []string{"s1", "s2", "s3"}
		require.NoError(t, tx.PutUser(user))
		return tx.PutItem(item)
	}))

	bio := "hello"
	user, err := store.Users().UpdateProfile(ctx, "u1", entity.UserPatch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello", user.Bio)
	assert.Equal(t, 70, user.Points)

	inactive := false
	user, err = store.Users().UpdateAccount(ctx, "u1", entity.AdminUserPatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, 70, user.Points)

	tags := []string{"wool", "winter"}
	item, err := store.Items().UpdateDetails(ctx, "i1", entity.ItemPatch{Tags: &tags})
	require.NoError(t, err)
	tags[0] = "mutated"
	assert.Equal(t, []string{"wool", "winter"}, item.Tags)
	assert.False(t, item.Available)

	item, err = store.Items().Approve(ctx, "i1")
	require.NoError(t, err)
	assert.True(t, item.Approved)
	assert.False(t, item.Available)

	require.NoError(t, store.Items().RemoveSwapRequests(ctx, "i1", []string{"s2", "missing"}))
	stored, err := store.Items().GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3"}, stored.SwapRequests)
	assert.Equal(t, []string{"wool", "winter"}, stored.Tags)

	_, err = store.Users().UpdateProfile(ctx, "nope", entity.UserPatch{Bio: &bio})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	err = store.Items().RemoveSwapRequests(ctx, "nope", []string{"s1"})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
