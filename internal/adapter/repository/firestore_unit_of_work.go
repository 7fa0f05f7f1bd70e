package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/pkg/errors"
)

type firestoreUnitOfWork struct {
	client *firestore.Client
}

func NewFirestoreUnitOfWork(client *firestore.Client) repository.UnitOfWork {
	return &firestoreUnitOfWork{
		client: client,
	}
}

// RunInTransaction wraps a Firestore transaction. Firestore retries fn on contention,
// so fn must not have effects outside tx.
func (u *firestoreUnitOfWork) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	err := u.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{client: u.client, tx: tx})
	})
	if err != nil {
		return asAppError("Transaction failed", err)
	}
	return nil
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreTx) GetUser(id string) (*entity.User, error) {
	doc, err := t.tx.Get(t.client.Collection(usersCollection).Doc(id))
	if err != nil {
		return nil, readError("User", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

func (t *firestoreTx) GetItem(id string) (*entity.Item, error) {
	doc, err := t.tx.Get(t.client.Collection(itemsCollection).Doc(id))
	if err != nil {
		return nil, readError("Item", err)
	}

	var item entity.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Internal("Failed to parse item data", err)
	}
	return &item, nil
}

func (t *firestoreTx) GetSwap(id string) (*entity.Swap, error) {
	doc, err := t.tx.Get(t.client.Collection(swapsCollection).Doc(id))
	if err != nil {
		return nil, readError("Swap", err)
	}

	var swap entity.Swap
	if err := doc.DataTo(&swap); err != nil {
		return nil, errors.Internal("Failed to parse swap data", err)
	}
	return &swap, nil
}

func (t *firestoreTx) FindPendingSwap(requesterID, itemID string) (*entity.Swap, error) {
	query := t.client.Collection(swapsCollection).
		Where("requesterId", "==", requesterID).
		Where("itemId", "==", itemID).
		Where("status", "==", string(entity.SwapPending)).
		Limit(1)

	docs, err := t.tx.Documents(query).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query pending swaps", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var swap entity.Swap
	if err := docs[0].DataTo(&swap); err != nil {
		return nil, errors.Internal("Failed to parse swap data", err)
	}
	return &swap, nil
}

func (t *firestoreTx) CreateSwap(swap *entity.Swap) error {
	ref := t.client.Collection(swapsCollection).NewDoc()
	if swap.ID != "" {
		ref = t.client.Collection(swapsCollection).Doc(swap.ID)
	}
	swap.ID = ref.ID

	now := time.Now()
	if swap.CreatedAt.IsZero() {
		swap.CreatedAt = now
	}
	swap.UpdatedAt = now
	return t.tx.Create(ref, swap)
}

func (t *firestoreTx) PutUser(user *entity.User) error {
	user.UpdatedAt = time.Now()
	return t.tx.Set(t.client.Collection(usersCollection).Doc(user.ID), user)
}

func (t *firestoreTx) PutItem(item *entity.Item) error {
	item.UpdatedAt = time.Now()
	return t.tx.Set(t.client.Collection(itemsCollection).Doc(item.ID), item)
}

func (t *firestoreTx) PutSwap(swap *entity.Swap) error {
	return t.tx.Set(t.client.Collection(swapsCollection).Doc(swap.ID), swap)
}
