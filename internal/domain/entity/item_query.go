package entity

import (
	"sort"
	"strings"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultSortBy = "created_at"
)

// SortField maps an API sort key onto a store path and an in-memory comparison.
// An empty Path means the store cannot order by the field and sorting happens in memory.
type SortField struct {
	Path    string
	Compare func(a, b *Item) int
}

var sortFields = map[string]SortField{
	"created_at":   {Path: "createdAt", Compare: func(a, b *Item) int { return a.CreatedAt.Compare(b.CreatedAt) }},
	"updated_at":   {Path: "updatedAt", Compare: func(a, b *Item) int { return a.UpdatedAt.Compare(b.UpdatedAt) }},
	"points_value": {Path: "pointsValue", Compare: func(a, b *Item) int { return cmpInt(a.PointsValue, b.PointsValue) }},
	"views":        {Path: "views", Compare: func(a, b *Item) int { return cmpInt(a.Views, b.Views) }},
	"title":        {Path: "title", Compare: func(a, b *Item) int { return strings.Compare(a.Title, b.Title) }},
	"category":     {Path: "category", Compare: func(a, b *Item) int { return strings.Compare(a.Category, b.Category) }},
	"size":         {Path: "size", Compare: func(a, b *Item) int { return strings.Compare(a.Size, b.Size) }},
	"condition":    {Path: "condition", Compare: func(a, b *Item) int { return strings.Compare(a.Condition, b.Condition) }},
	"brand":        {Path: "brand", Compare: func(a, b *Item) int { return strings.Compare(a.Brand, b.Brand) }},
	"color":        {Path: "color", Compare: func(a, b *Item) int { return strings.Compare(a.Color, b.Color) }},
	"material":     {Path: "material", Compare: func(a, b *Item) int { return strings.Compare(a.Material, b.Material) }},
	"location":     {Path: "location", Compare: func(a, b *Item) int { return strings.Compare(a.Location, b.Location) }},
	"owner_name":   {Path: "ownerName", Compare: func(a, b *Item) int { return strings.Compare(a.OwnerName, b.OwnerName) }},
	"like_count":   {Compare: func(a, b *Item) int { return cmpInt(a.LikeCount(), b.LikeCount()) }},
}

var sortAliases = map[string]string{
	"dateAdded":   "created_at",
	"date_added":  "created_at",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"pointsValue": "points_value",
	"likeCount":   "like_count",
	"likes":       "like_count",
}

// LookupSortField resolves a sort key, accepting the legacy camelCase names.
func LookupSortField(key string) (string, SortField, bool) {
	if alias, ok := sortAliases[key]; ok {
		key = alias
	}
	f, ok := sortFields[key]
	return key, f, ok
}

// SortKeys lists every accepted canonical sort key.
func SortKeys() []string {
	keys := make([]string, 0, len(sortFields))
	for k := range sortFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ItemQuery is the browse predicate: only available and approved listings ever match.
type ItemQuery struct {
	Search    string
	Category  string
	Size      string
	Condition string
	OwnerID   string
	MinPoints *int
	MaxPoints *int
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

// Equality lists the exact-match constraints as store paths.
func (q ItemQuery) Equality() map[string]interface{} {
	eq := map[string]interface{}{
		"isAvailable": true,
		"isApproved":  true,
	}
	if q.Category != "" {
		eq["category"] = q.Category
	}
	if q.Size != "" {
		eq["size"] = q.Size
	}
	if q.Condition != "" {
		eq["condition"] = q.Condition
	}
	if q.OwnerID != "" {
		eq["ownerId"] = q.OwnerID
	}
	return eq
}

// NeedsInMemory reports whether the store alone cannot evaluate the query.
func (q ItemQuery) NeedsInMemory() bool {
	if q.Search != "" || q.MinPoints != nil || q.MaxPoints != nil {
		return true
	}
	_, f, ok := LookupSortField(q.SortBy)
	return !ok || f.Path == ""
}

func (q ItemQuery) Matches(item *Item) bool {
	if !item.IsListed() {
		return false
	}
	if q.Category != "" && item.Category != q.Category {
		return false
	}
	if q.Size != "" && item.Size != q.Size {
		return false
	}
	if q.Condition != "" && item.Condition != q.Condition {
		return false
	}
	if q.OwnerID != "" && item.OwnerID != q.OwnerID {
		return false
	}
	if q.MinPoints != nil && item.PointsValue < *q.MinPoints {
		return false
	}
	if q.MaxPoints != nil && item.PointsValue > *q.MaxPoints {
		return false
	}
	if q.Search != "" && !matchesSearch(item, q.Search) {
		return false
	}
	return true
}

// Sort orders items by the query's key and direction, breaking ties by ID.
func (q ItemQuery) Sort(items []*Item) {
	_, field, ok := LookupSortField(q.SortBy)
	if !ok {
		_, field, _ = LookupSortField(DefaultSortBy)
	}
	desc := q.SortOrder != SortAsc

	sort.SliceStable(items, func(i, j int) bool {
		c := field.Compare(items[i], items[j])
		if c == 0 {
			c = strings.Compare(items[i].ID, items[j].ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// Apply filters, sorts and windows items, returning the page and the total match count.
func (q ItemQuery) Apply(items []*Item) ([]*Item, int64) {
	matched := make([]*Item, 0, len(items))
	for _, item := range items {
		if q.Matches(item) {
			matched = append(matched, item)
		}
	}
	q.Sort(matched)

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return []*Item{}, total
	}
	end := len(matched)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total
}

// matchesSearch does a case-insensitive substring match over title, description, tags and brand.
func matchesSearch(item *Item, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle) ||
		strings.Contains(strings.ToLower(item.Brand), needle) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
