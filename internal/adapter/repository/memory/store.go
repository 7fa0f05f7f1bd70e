// Package memory keeps every collection in process memory. It backs the memory
// store driver and the use case tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/pkg/errors"
	"rewear/pkg/utils"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]*entity.User
	items map[string]*entity.Item
	swaps map[string]*entity.Swap
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*entity.User),
		items: make(map[string]*entity.Item),
		swaps: make(map[string]*entity.Swap),
	}
}

func (s *Store) Users() repository.UserRepository { return &userRepository{s} }
func (s *Store) Items() repository.ItemRepository { return &itemRepository{s} }
func (s *Store) Swaps() repository.SwapRepository { return &swapRepository{s} }
func (s *Store) UnitOfWork() repository.UnitOfWork { return &unitOfWork{s} }

func newID() string {
	return uuid.New().String()
}

// Records are copied on the way in and out so callers never share memory with the store.

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.Preferences != nil {
		p := *u.Preferences
		p.Categories = cloneStrings(p.Categories)
		p.Sizes = cloneStrings(p.Sizes)
		c.Preferences = &p
	}
	return &c
}

func cloneItem(i *entity.Item) *entity.Item {
	c := *i
	c.Tags = cloneStrings(i.Tags)
	c.Images = cloneStrings(i.Images)
	c.Likes = cloneStrings(i.Likes)
	c.SwapRequests = cloneStrings(i.SwapRequests)
	if i.Measurements != nil {
		m := *i.Measurements
		c.Measurements = &m
	}
	if i.Shipping != nil {
		sh := *i.Shipping
		c.Shipping = &sh
	}
	return &c
}

func cloneSwap(s *entity.Swap) *entity.Swap {
	c := *s
	if s.Messages != nil {
		c.Messages = append([]entity.SwapMessage(nil), s.Messages...)
	}
	if s.Rating.FromRequester != nil {
		r := *s.Rating.FromRequester
		c.Rating.FromRequester = &r
	}
	if s.Rating.FromOwner != nil {
		r := *s.Rating.FromOwner
		c.Rating.FromOwner = &r
	}
	if s.MeetingDetails != nil {
		m := *s.MeetingDetails
		c.MeetingDetails = &m
	}
	if s.Shipping != nil {
		sh := *s.Shipping
		c.Shipping = &sh
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func window[T any](all []T, limit, offset int) []T {
	start, end := utils.Window(len(all), offset, limit)
	return all[start:end]
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.ID == "" {
		user.ID = newID()
	}
	if _, exists := r.s.users[user.ID]; exists {
		return errors.Conflict("User already exists")
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return errors.Conflict("Email already registered")
		}
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return cloneUser(u), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	user.UpdatedAt = time.Now()
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return errors.NotFound("User", nil)
	}
	delete(r.s.users, id)
	return nil
}

func (r *userRepository) matching(filter repository.UserFilter) []*entity.User {
	search := strings.ToLower(filter.Search)
	var out []*entity.User
	for _, u := range r.s.users {
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]*entity.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.matching(filter)
	page := window(all, limit, offset)
	users := make([]*entity.User, 0, len(page))
	for _, u := range page {
		users = append(users, cloneUser(u))
	}
	return users, int64(len(all)), nil
}

func (r *userRepository) Count(ctx context.Context, filter repository.UserFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r *userRepository) Recent(ctx context.Context, limit int) ([]*entity.User, error) {
	users, _, err := r.List(ctx, repository.UserFilter{}, limit, 0)
	return users, err
}

func (r *userRepository) AdjustItemsListed(ctx context.Context, id string, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	u.ItemsListed += delta
	if u.ItemsListed < 0 {
		u.ItemsListed = 0
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	u := cloneUser(stored)
	patch.Apply(u)
	u.UpdatedAt = time.Now()
	r.s.users[id] = cloneUser(u)
	return cloneUser(u), nil
}

func (r *userRepository) UpdateAccount(ctx context.Context, id string, patch entity.AdminUserPatch) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	u := cloneUser(stored)
	patch.Apply(u)
	u.UpdatedAt = time.Now()
	r.s.users[id] = cloneUser(u)
	return cloneUser(u), nil
}

type itemRepository struct{ s *Store }

func (r *itemRepository) Create(ctx context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if item.ID == "" {
		item.ID = newID()
	}
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	r.s.items[item.ID] = cloneItem(item)
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	return cloneItem(item), nil
}

func (r *itemRepository) Update(ctx context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[item.ID]; !ok {
		return errors.NotFound("Item", nil)
	}
	item.UpdatedAt = time.Now()
	r.s.items[item.ID] = cloneItem(item)
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[id]; !ok {
		return errors.NotFound("Item", nil)
	}
	delete(r.s.items, id)
	return nil
}

func (r *itemRepository) Search(ctx context.Context, query entity.ItemQuery) ([]*entity.Item, int64, error) {
	r.s.mu.RLock()
	all := make([]*entity.Item, 0, len(r.s.items))
	for _, item := range r.s.items {
		all = append(all, cloneItem(item))
	}
	r.s.mu.RUnlock()

	page, total := query.Apply(all)
	return page, total, nil
}

func (r *itemRepository) matching(filter repository.ItemFilter) []*entity.Item {
	var out []*entity.Item
	for _, item := range r.s.items {
		if filter.OwnerID != "" && item.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Available != nil && item.Available != *filter.Available {
			continue
		}
		if filter.Approved != nil && item.Approved != *filter.Approved {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *itemRepository) List(ctx context.Context, filter repository.ItemFilter, limit, offset int) ([]*entity.Item, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.matching(filter)
	page := window(all, limit, offset)
	items := make([]*entity.Item, 0, len(page))
	for _, item := range page {
		items = append(items, cloneItem(item))
	}
	return items, int64(len(all)), nil
}

func (r *itemRepository) Count(ctx context.Context, filter repository.ItemFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r *itemRepository) Recent(ctx context.Context, limit int) ([]*entity.Item, error) {
	items, _, err := r.List(ctx, repository.ItemFilter{}, limit, 0)
	return items, err
}

func (r *itemRepository) Categories(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, item := range r.s.items {
		if item.Category != "" {
			seen[item.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *itemRepository) IncrementViews(ctx context.Context, id string) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	item.Views++
	return cloneItem(item), nil
}

func (r *itemRepository) ToggleLike(ctx context.Context, id, userID string) (*entity.Item, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.items[id]
	if !ok {
		return nil, false, errors.NotFound("Item", nil)
	}
	liked := item.ToggleLike(userID)
	return cloneItem(item), liked, nil
}

func (r *itemRepository) UpdateDetails(ctx context.Context, id string, patch entity.ItemPatch) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	item := cloneItem(stored)
	patch.Apply(item)
	item.UpdatedAt = time.Now()
	r.s.items[id] = cloneItem(item)
	return cloneItem(item), nil
}

func (r *itemRepository) Approve(ctx context.Context, id string) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	if !item.Approved {
		item.Approved = true
		item.UpdatedAt = time.Now()
	}
	return cloneItem(item), nil
}

func (r *itemRepository) RemoveSwapRequests(ctx context.Context, id string, swapIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.items[id]
	if !ok {
		return errors.NotFound("Item", nil)
	}
	drop := make(map[string]struct{}, len(swapIDs))
	for _, swapID := range swapIDs {
		drop[swapID] = struct{}{}
	}
	kept := make([]string, 0, len(item.SwapRequests))
	for _, swapID := range item.SwapRequests {
		if _, ok := drop[swapID]; !ok {
			kept = append(kept, swapID)
		}
	}
	item.SwapRequests = kept
	item.UpdatedAt = time.Now()
	return nil
}

func (r *itemRepository) DeleteByOwner(ctx context.Context, ownerID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []string
	for id, item := range r.s.items {
		if item.OwnerID == ownerID {
			ids = append(ids, id)
			delete(r.s.items, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type swapRepository struct{ s *Store }

func (r *swapRepository) GetByID(ctx context.Context, id string) (*entity.Swap, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	swap, ok := r.s.swaps[id]
	if !ok {
		return nil, errors.NotFound("Swap", nil)
	}
	return cloneSwap(swap), nil
}

func swapMatches(swap *entity.Swap, filter repository.SwapFilter) bool {
	if filter.RequesterID != "" && swap.RequesterID != filter.RequesterID {
		return false
	}
	if filter.OwnerID != "" && swap.OwnerID != filter.OwnerID {
		return false
	}
	if filter.ParticipantID != "" && !swap.IsParticipant(filter.ParticipantID) {
		return false
	}
	if filter.Status != "" && swap.Status != filter.Status {
		return false
	}
	return true
}

func (r *swapRepository) matching(filter repository.SwapFilter) []*entity.Swap {
	var out []*entity.Swap
	for _, swap := range r.s.swaps {
		if swapMatches(swap, filter) {
			out = append(out, swap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *swapRepository) List(ctx context.Context, filter repository.SwapFilter) ([]*entity.Swap, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.matching(filter)
	swaps := make([]*entity.Swap, 0, len(matched))
	for _, swap := range matched {
		swaps = append(swaps, cloneSwap(swap))
	}
	return swaps, nil
}

func (r *swapRepository) Count(ctx context.Context, filter repository.SwapFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r *swapRepository) Recent(ctx context.Context, limit int) ([]*entity.Swap, error) {
	swaps, err := r.List(ctx, repository.SwapFilter{})
	if err != nil {
		return nil, err
	}
	return window(swaps, limit, 0), nil
}

func (r *swapRepository) DeleteByItem(ctx context.Context, itemID string) ([]*entity.Swap, error) {
	return r.deleteWhere(func(swap *entity.Swap) bool {
		return swap.ItemID == itemID || (swap.OfferedItemID != "" && swap.OfferedItemID == itemID)
	}), nil
}

func (r *swapRepository) DeleteByUser(ctx context.Context, userID string) ([]*entity.Swap, error) {
	return r.deleteWhere(func(swap *entity.Swap) bool {
		return swap.IsParticipant(userID)
	}), nil
}

func (r *swapRepository) deleteWhere(match func(*entity.Swap) bool) []*entity.Swap {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	removed := []*entity.Swap{}
	for id, swap := range r.s.swaps {
		if match(swap) {
			removed = append(removed, swap)
			delete(r.s.swaps, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].ID < removed[j].ID })
	return removed
}
