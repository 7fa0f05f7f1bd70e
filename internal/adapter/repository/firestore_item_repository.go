package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/pkg/errors"
)

type firestoreItemRepository struct {
	client *firestore.Client
}

func NewFirestoreItemRepository(client *firestore.Client) repository.ItemRepository {
	return &firestoreItemRepository{
		client: client,
	}
}

func (r *firestoreItemRepository) Create(ctx context.Context, item *entity.Item) error {
	if item.ID == "" {
		item.ID = r.client.Collection(itemsCollection).NewDoc().ID
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := r.client.Collection(itemsCollection).Doc(item.ID).Set(ctx, item)
	if err != nil {
		return errors.Internal("Failed to create item", err)
	}
	return nil
}

func (r *firestoreItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	doc, err := r.client.Collection(itemsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, readError("Item", err)
	}

	var item entity.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Internal("Failed to parse item data", err)
	}
	return &item, nil
}

func (r *firestoreItemRepository) Update(ctx context.Context, item *entity.Item) error {
	item.UpdatedAt = time.Now()

	_, err := r.client.Collection(itemsCollection).Doc(item.ID).Set(ctx, item)
	if err != nil {
		return errors.Internal("Failed to update item", err)
	}
	return nil
}

func (r *firestoreItemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(itemsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete item", err)
	}
	return nil
}

// Search pushes equality filters, ordering and the page window to Firestore when it can.
// Text search, point ranges and derived sort keys are evaluated over the equality-filtered set.
func (r *firestoreItemRepository) Search(ctx context.Context, q entity.ItemQuery) ([]*entity.Item, int64, error) {
	query := r.client.Collection(itemsCollection).Query
	for path, value := range q.Equality() {
		query = query.Where(path, "==", value)
	}

	if q.NeedsInMemory() {
		all, err := r.collect(ctx, query)
		if err != nil {
			return nil, 0, err
		}
		page, total := q.Apply(all)
		return page, total, nil
	}

	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count items", err)
	}

	_, field, _ := entity.LookupSortField(q.SortBy)
	direction := firestore.Desc
	if q.SortOrder == entity.SortAsc {
		direction = firestore.Asc
	}
	query = query.OrderBy(field.Path, direction).OrderBy(firestore.DocumentID, direction)
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	items, err := r.collect(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *firestoreItemRepository) baseQuery(filter repository.ItemFilter) firestore.Query {
	query := r.client.Collection(itemsCollection).Query
	if filter.OwnerID != "" {
		query = query.Where("ownerId", "==", filter.OwnerID)
	}
	if filter.Available != nil {
		query = query.Where("isAvailable", "==", *filter.Available)
	}
	if filter.Approved != nil {
		query = query.Where("isApproved", "==", *filter.Approved)
	}
	return query
}

func (r *firestoreItemRepository) List(ctx context.Context, filter repository.ItemFilter, limit, offset int) ([]*entity.Item, int64, error) {
	query := r.baseQuery(filter)

	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count items", err)
	}

	query = query.OrderBy("createdAt", firestore.Desc)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	items, err := r.collect(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *firestoreItemRepository) Count(ctx context.Context, filter repository.ItemFilter) (int64, error) {
	total, err := countQuery(ctx, r.baseQuery(filter))
	if err != nil {
		return 0, errors.Internal("Failed to count items", err)
	}
	return total, nil
}

func (r *firestoreItemRepository) Recent(ctx context.Context, limit int) ([]*entity.Item, error) {
	query := r.client.Collection(itemsCollection).OrderBy("createdAt", firestore.Desc).Limit(limit)
	return r.collect(ctx, query)
}

func (r *firestoreItemRepository) Categories(ctx context.Context) ([]string, error) {
	iter := r.client.Collection(itemsCollection).Select("category").Documents(ctx)
	defer iter.Stop()

	seen := make(map[string]struct{})
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate categories", err)
		}
		if category, ok := doc.Data()["category"].(string); ok && category != "" {
			seen[category] = struct{}{}
		}
	}

	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *firestoreItemRepository) IncrementViews(ctx context.Context, id string) (*entity.Item, error) {
	ref := r.client.Collection(itemsCollection).Doc(id)

	var item entity.Item
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return readError("Item", err)
		}
		if err := doc.DataTo(&item); err != nil {
			return errors.Internal("Failed to parse item data", err)
		}

		item.Views++
		return tx.Update(ref, []firestore.Update{
			{Path: "views", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return nil, asAppError("Failed to increment item views", err)
	}
	return &item, nil
}

func (r *firestoreItemRepository) ToggleLike(ctx context.Context, id, userID string) (*entity.Item, bool, error) {
	ref := r.client.Collection(itemsCollection).Doc(id)

	var (
		item  entity.Item
		liked bool
	)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return readError("Item", err)
		}
		if err := doc.DataTo(&item); err != nil {
			return errors.Internal("Failed to parse item data", err)
		}

		liked = item.ToggleLike(userID)
		var change interface{} = firestore.ArrayRemove(userID)
		if liked {
			change = firestore.ArrayUnion(userID)
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "likes", Value: change},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		return nil, false, asAppError("Failed to toggle like", err)
	}
	return &item, liked, nil
}

func (r *firestoreItemRepository) UpdateDetails(ctx context.Context, id string, patch entity.ItemPatch) (*entity.Item, error) {
	var updates []firestore.Update
	if patch.Title != nil {
		updates = append(updates, firestore.Update{Path: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		updates = append(updates, firestore.Update{Path: "description", Value: *patch.Description})
	}
	if patch.Tags != nil {
		updates = append(updates, firestore.Update{Path: "tags", Value: *patch.Tags})
	}
	if patch.PointsValue != nil {
		updates = append(updates, firestore.Update{Path: "pointsValue", Value: *patch.PointsValue})
	}
	if patch.Brand != nil {
		updates = append(updates, firestore.Update{Path: "brand", Value: *patch.Brand})
	}
	if patch.Color != nil {
		updates = append(updates, firestore.Update{Path: "color", Value: *patch.Color})
	}
	if patch.Material != nil {
		updates = append(updates, firestore.Update{Path: "material", Value: *patch.Material})
	}
	if patch.Location != nil {
		updates = append(updates, firestore.Update{Path: "location", Value: *patch.Location})
	}
	if patch.Measurements != nil {
		updates = append(updates, firestore.Update{Path: "measurements", Value: patch.Measurements})
	}
	if patch.Shipping != nil {
		updates = append(updates, firestore.Update{Path: "shippingInfo", Value: patch.Shipping})
	}
	return r.updateFields(ctx, id, updates)
}

func (r *firestoreItemRepository) Approve(ctx context.Context, id string) (*entity.Item, error) {
	return r.updateFields(ctx, id, []firestore.Update{{Path: "isApproved", Value: true}})
}

func (r *firestoreItemRepository) RemoveSwapRequests(ctx context.Context, id string, swapIDs []string) error {
	if len(swapIDs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(swapIDs))
	for _, swapID := range swapIDs {
		values = append(values, swapID)
	}
	_, err := r.client.Collection(itemsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "swapRequests", Value: firestore.ArrayRemove(values...)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return readError("Item", err)
	}
	return nil
}

// updateFields touches only the given paths and returns the document as stored afterwards.
func (r *firestoreItemRepository) updateFields(ctx context.Context, id string, updates []firestore.Update) (*entity.Item, error) {
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now()})
	if _, err := r.client.Collection(itemsCollection).Doc(id).Update(ctx, updates); err != nil {
		return nil, readError("Item", err)
	}
	return r.GetByID(ctx, id)
}

func (r *firestoreItemRepository) DeleteByOwner(ctx context.Context, ownerID string) ([]string, error) {
	refs, err := r.client.Collection(itemsCollection).Where("ownerId", "==", ownerID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list owner items", err)
	}

	ids := make([]string, 0, len(refs))
	toDelete := make([]*firestore.DocumentRef, 0, len(refs))
	for _, doc := range refs {
		ids = append(ids, doc.Ref.ID)
		toDelete = append(toDelete, doc.Ref)
	}
	if err := deleteRefs(ctx, r.client, toDelete); err != nil {
		return nil, errors.Internal("Failed to delete owner items", err)
	}
	return ids, nil
}

func (r *firestoreItemRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.Item, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	items := []*entity.Item{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate items", err)
		}

		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			return nil, errors.Internal("Failed to parse item data", err)
		}
		items = append(items, &item)
	}
	return items, nil
}
