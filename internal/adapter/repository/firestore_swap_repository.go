package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/pkg/errors"
)

type firestoreSwapRepository struct {
	client *firestore.Client
}

func NewFirestoreSwapRepository(client *firestore.Client) repository.SwapRepository {
	return &firestoreSwapRepository{
		client: client,
	}
}

func (r *firestoreSwapRepository) GetByID(ctx context.Context, id string) (*entity.Swap, error) {
	doc, err := r.client.Collection(swapsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, readError("Swap", err)
	}

	var swap entity.Swap
	if err := doc.DataTo(&swap); err != nil {
		return nil, errors.Internal("Failed to parse swap data", err)
	}
	return &swap, nil
}

func (r *firestoreSwapRepository) baseQuery(filter repository.SwapFilter) firestore.Query {
	query := r.client.Collection(swapsCollection).Query
	if filter.RequesterID != "" {
		query = query.Where("requesterId", "==", filter.RequesterID)
	}
	if filter.OwnerID != "" {
		query = query.Where("ownerId", "==", filter.OwnerID)
	}
	if filter.ParticipantID != "" {
		query = query.WhereEntity(firestore.OrFilter{
			Filters: []firestore.EntityFilter{
				firestore.PropertyFilter{Path: "requesterId", Operator: "==", Value: filter.ParticipantID},
				firestore.PropertyFilter{Path: "ownerId", Operator: "==", Value: filter.ParticipantID},
			},
		})
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	return query
}

func (r *firestoreSwapRepository) List(ctx context.Context, filter repository.SwapFilter) ([]*entity.Swap, error) {
	return r.collect(ctx, r.baseQuery(filter).OrderBy("createdAt", firestore.Desc))
}

func (r *firestoreSwapRepository) Count(ctx context.Context, filter repository.SwapFilter) (int64, error) {
	total, err := countQuery(ctx, r.baseQuery(filter))
	if err != nil {
		return 0, errors.Internal("Failed to count swaps", err)
	}
	return total, nil
}

func (r *firestoreSwapRepository) Recent(ctx context.Context, limit int) ([]*entity.Swap, error) {
	query := r.client.Collection(swapsCollection).OrderBy("createdAt", firestore.Desc).Limit(limit)
	return r.collect(ctx, query)
}

func (r *firestoreSwapRepository) DeleteByItem(ctx context.Context, itemID string) ([]*entity.Swap, error) {
	return r.deleteMatching(ctx, firestore.OrFilter{
		Filters: []firestore.EntityFilter{
			firestore.PropertyFilter{Path: "itemId", Operator: "==", Value: itemID},
			firestore.PropertyFilter{Path: "offeredItemId", Operator: "==", Value: itemID},
		},
	})
}

func (r *firestoreSwapRepository) DeleteByUser(ctx context.Context, userID string) ([]*entity.Swap, error) {
	return r.deleteMatching(ctx, firestore.OrFilter{
		Filters: []firestore.EntityFilter{
			firestore.PropertyFilter{Path: "requesterId", Operator: "==", Value: userID},
			firestore.PropertyFilter{Path: "ownerId", Operator: "==", Value: userID},
		},
	})
}

func (r *firestoreSwapRepository) deleteMatching(ctx context.Context, filter firestore.EntityFilter) ([]*entity.Swap, error) {
	docs, err := r.client.Collection(swapsCollection).WhereEntity(filter).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list swaps", err)
	}

	removed := make([]*entity.Swap, 0, len(docs))
	refs := make([]*firestore.DocumentRef, 0, len(docs))
	for _, doc := range docs {
		var swap entity.Swap
		if err := doc.DataTo(&swap); err != nil {
			return nil, errors.Internal("Failed to parse swap data", err)
		}
		removed = append(removed, &swap)
		refs = append(refs, doc.Ref)
	}
	if err := deleteRefs(ctx, r.client, refs); err != nil {
		return nil, errors.Internal("Failed to delete swaps", err)
	}
	return removed, nil
}

func (r *firestoreSwapRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.Swap, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	swaps := []*entity.Swap{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate swaps", err)
		}

		var swap entity.Swap
		if err := doc.DataTo(&swap); err != nil {
			return nil, errors.Internal("Failed to parse swap data", err)
		}
		swaps = append(swaps, &swap)
	}
	return swaps, nil
}
