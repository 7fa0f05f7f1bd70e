package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeKeepsCountEqualToSetSize(t *testing.T) {
	item := &Item{}
	users := []string{"a", "b", "c"}

	for _, u := range users {
		assert.True(t, item.ToggleLike(u))
	}
	assert.Equal(t, 3, item.LikeCount())

	assert.False(t, item.ToggleLike("b"))
	assert.Equal(t, 2, item.LikeCount())
	assert.False(t, item.IsLikedBy("b"))

	assert.True(t, item.ToggleLike("b"))
	assert.Equal(t, len(item.Likes), item.LikeCount())
	assert.Equal(t, 3, item.LikeCount())
}

func TestToggleLikeDoesNotAliasPreviousSlice(t *testing.T) {
	original := []string{"a", "b", "c"}
	item := &Item{Likes: original}

	item.ToggleLike("a")
	assert.Equal(t, []string{"a", "b", "c"}, original)
	assert.Equal(t, []string{"b", "c"}, item.Likes)
}

func TestItemJSONIncludesDerivedLikeCount(t *testing.T) {
	body, err := json.Marshal(Item{ID: "i1", Likes: []string{"x", "y"}})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, float64(2), decoded["like_count"])
	assert.Equal(t, "i1", decoded["id"])

	body, err = json.Marshal(Item{ID: "i2"})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"likes":[]`)
	assert.Contains(t, string(body), `"like_count":0`)
}

func TestItemPatchApply(t *testing.T) {
	title := "New title"
	points := 40
	item := &Item{Title: "Old", Description: "keep", PointsValue: 10}

	patch := ItemPatch{Title: &title, PointsValue: &points}
	require.False(t, patch.IsEmpty())
	patch.Apply(item)

	assert.Equal(t, "New title", item.Title)
	assert.Equal(t, "keep", item.Description)
	assert.Equal(t, 40, item.PointsValue)
	assert.True(t, ItemPatch{}.IsEmpty())
}

func listed(id, title string, points int, created time.Time) *Item {
	return &Item{ID: id, Title: title, PointsValue: points, Available: true, Approved: true, CreatedAt: created}
}

func TestItemQueryMatchesOnlyListedItems(t *testing.T) {
	base := time.Now()
	hidden := listed("h", "Denim jacket", 10, base)
	hidden.Approved = false
	taken := listed("t", "Denim jacket", 10, base)
	taken.Available = false

	q := ItemQuery{Search: "denim"}
	assert.False(t, q.Matches(hidden))
	assert.False(t, q.Matches(taken))
	assert.True(t, q.Matches(listed("ok", "Denim jacket", 10, base)))
}

func TestItemQuerySearchSpansAllTextFields(t *testing.T) {
	base := time.Now()
	byTitle := listed("1", "Linen shirt", 10, base)
	byDesc := listed("2", "Top", 10, base)
	byDesc.Description = "soft LINEN weave"
	byTag := listed("3", "Top", 10, base)
	byTag.Tags = []string{"summer", "linen"}
	byBrand := listed("4", "Top", 10, base)
	byBrand.Brand = "Linenhouse"
	none := listed("5", "Wool coat", 10, base)

	page, total := ItemQuery{Search: "linen"}.Apply([]*Item{byTitle, byDesc, byTag, byBrand, none})
	assert.Equal(t, int64(4), total)
	assert.Len(t, page, 4)
}

func TestItemQueryPointsRangeIsInclusive(t *testing.T) {
	base := time.Now()
	items := []*Item{listed("a", "x", 5, base), listed("b", "x", 10, base), listed("c", "x", 20, base), listed("d", "x", 21, base)}
	min, max := 10, 20

	_, total := ItemQuery{MinPoints: &min, MaxPoints: &max}.Apply(items)
	assert.Equal(t, int64(2), total)

	_, total = ItemQuery{MinPoints: &min}.Apply(items)
	assert.Equal(t, int64(3), total)
}

func TestItemQuerySortsNewestFirstByDefault(t *testing.T) {
	base := time.Now()
	items := []*Item{listed("old", "x", 1, base), listed("new", "x", 1, base.Add(time.Hour)), listed("mid", "x", 1, base.Add(time.Minute))}

	page, _ := ItemQuery{}.Apply(items)
	require.Len(t, page, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{page[0].ID, page[1].ID, page[2].ID})

	page, _ = ItemQuery{SortBy: "points_value", SortOrder: SortAsc}.Apply([]*Item{
		listed("p3", "x", 30, base), listed("p1", "x", 10, base), listed("p2", "x", 20, base),
	})
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{page[0].ID, page[1].ID, page[2].ID})
}

func TestItemQueryPaginationWindow(t *testing.T) {
	base := time.Now()
	items := make([]*Item, 0, 25)
	for i := 0; i < 25; i++ {
		items = append(items, listed(string(rune('a'+i)), "x", 1, base.Add(time.Duration(i)*time.Second)))
	}

	page, total := ItemQuery{Offset: 20, Limit: 10}.Apply(items)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page, 5)

	page, total = ItemQuery{Offset: 30, Limit: 10}.Apply(items)
	assert.Equal(t, int64(25), total)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestLookupSortFieldAcceptsAliases(t *testing.T) {
	key, field, ok := LookupSortField("dateAdded")
	require.True(t, ok)
	assert.Equal(t, "created_at", key)
	assert.Equal(t, "createdAt", field.Path)

	_, field, ok = LookupSortField("like_count")
	require.True(t, ok)
	assert.Empty(t, field.Path)
	assert.True(t, ItemQuery{SortBy: "like_count"}.NeedsInMemory())
	assert.False(t, ItemQuery{SortBy: "views"}.NeedsInMemory())

	_, _, ok = LookupSortField("password")
	assert.False(t, ok)
}

func TestUserAddRatingKeepsRunningAverage(t *testing.T) {
	u := &User{}
	u.AddRating(5)
	u.AddRating(3)
	u.AddRating(4)
	assert.Equal(t, 3, u.RatingCount)
	assert.InDelta(t, 4.0, u.Rating, 1e-9)
}

func TestAdminUserPatchTogglesRole(t *testing.T) {
	yes, no := true, false
	u := &User{Role: RoleUser, IsActive: true}

	AdminUserPatch{IsAdmin: &yes, IsActive: &no}.Apply(u)
	assert.True(t, u.IsAdmin())
	assert.False(t, u.IsActive)

	AdminUserPatch{IsAdmin: &no}.Apply(u)
	assert.Equal(t, RoleUser, u.Role)
}
