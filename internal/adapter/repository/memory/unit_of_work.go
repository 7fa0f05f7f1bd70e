package memory

import (
	"context"
	"time"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/pkg/errors"
)

type unitOfWork struct{ s *Store }

// RunInTransaction holds the store's write lock for the whole of fn, so transactions
// are serialized and no reader sees a partial commit.
func (u *unitOfWork) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	tx := &memoryTx{
		s:     u.s,
		users: make(map[string]*entity.User),
		items: make(map[string]*entity.Item),
		swaps: make(map[string]*entity.Swap),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for id, user := range tx.users {
		u.s.users[id] = user
	}
	for id, item := range tx.items {
		u.s.items[id] = item
	}
	for id, swap := range tx.swaps {
		u.s.swaps[id] = swap
	}
	return nil
}

// memoryTx stages writes; reads see staged writes first.
type memoryTx struct {
	s     *Store
	users map[string]*entity.User
	items map[string]*entity.Item
	swaps map[string]*entity.Swap
}

func (t *memoryTx) GetUser(id string) (*entity.User, error) {
	if u, ok := t.users[id]; ok {
		return cloneUser(u), nil
	}
	if u, ok := t.s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, errors.NotFound("User", nil)
}

func (t *memoryTx) GetItem(id string) (*entity.Item, error) {
	if item, ok := t.items[id]; ok {
		return cloneItem(item), nil
	}
	if item, ok := t.s.items[id]; ok {
		return cloneItem(item), nil
	}
	return nil, errors.NotFound("Item", nil)
}

func (t *memoryTx) GetSwap(id string) (*entity.Swap, error) {
	if swap, ok := t.swaps[id]; ok {
		return cloneSwap(swap), nil
	}
	if swap, ok := t.s.swaps[id]; ok {
		return cloneSwap(swap), nil
	}
	return nil, errors.NotFound("Swap", nil)
}

func (t *memoryTx) FindPendingSwap(requesterID, itemID string) (*entity.Swap, error) {
	pending := func(swap *entity.Swap) bool {
		return swap.RequesterID == requesterID && swap.ItemID == itemID && swap.Status == entity.SwapPending
	}
	for _, swap := range t.swaps {
		if pending(swap) {
			return cloneSwap(swap), nil
		}
	}
	for id, swap := range t.s.swaps {
		if _, staged := t.swaps[id]; staged {
			continue
		}
		if pending(swap) {
			return cloneSwap(swap), nil
		}
	}
	return nil, nil
}

func (t *memoryTx) CreateSwap(swap *entity.Swap) error {
	if swap.ID == "" {
		swap.ID = newID()
	}
	now := time.Now()
	if swap.CreatedAt.IsZero() {
		swap.CreatedAt = now
	}
	swap.UpdatedAt = now
	t.swaps[swap.ID] = cloneSwap(swap)
	return nil
}

func (t *memoryTx) PutUser(user *entity.User) error {
	user.UpdatedAt = time.Now()
	t.users[user.ID] = cloneUser(user)
	return nil
}

func (t *memoryTx) PutItem(item *entity.Item) error {
	item.UpdatedAt = time.Now()
	t.items[item.ID] = cloneItem(item)
	return nil
}

func (t *memoryTx) PutSwap(swap *entity.Swap) error {
	t.swaps[swap.ID] = cloneSwap(swap)
	return nil
}
