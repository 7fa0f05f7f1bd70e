package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rewear/internal/adapter/repository/memory"
	"rewear/internal/domain/entity"
	"rewear/internal/domain/service"
	apperrors "rewear/pkg/errors"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// stubIdentity issues "token-<uid>" and verifies the same format.
type stubIdentity struct{}

func (stubIdentity) RegisterIdentity(context.Context, *entity.User, string) error { return nil }

func (stubIdentity) IssueToken(_ context.Context, user *entity.User) (string, error) {
	return "token-" + user.ID, nil
}

func (stubIdentity) VerifyToken(_ context.Context, token string) (string, error) {
	if len(token) <= len("token-") || token[:len("token-")] != "token-" {
		return "", errors.New("bad token")
	}
	return token[len("token-"):], nil
}

// removingIdentity also records account deletions.
type removingIdentity struct {
	stubIdentity
	mu      sync.Mutex
	removed []string
}

func (r *removingIdentity) DeleteIdentity(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, userID)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []service.SwapEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event service.SwapEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []service.SwapEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]service.SwapEventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type denyAfter struct{ remaining int }

func (d *denyAfter) Allow(string) bool {
	if d.remaining <= 0 {
		return false
	}
	d.remaining--
	return true
}

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	identity *removingIdentity
	auth     *AuthUseCase
	users    *UserUseCase
	items    *ItemUseCase
	swaps    *SwapUseCase
	admin    *AdminUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	identity := &removingIdentity{}

	items := NewItemUseCase(store.Items(), store.Users(), store.Swaps(), nil, true)
	f := &fixture{
		store:    store,
		notifier: notifier,
		identity: identity,
		auth:     NewAuthUseCase(store.Users(), identity, plainHasher{}, 100),
		users:    NewUserUseCase(store.Users(), store.Items(), store.Swaps()),
		items:    items,
		swaps:    NewSwapUseCase(store.UnitOfWork(), store.Swaps(), store.Items(), store.Users(), notifier, nil),
		admin:    NewAdminUseCase(store.Users(), store.Items(), store.Swaps(), items, identity),
	}
	return f
}

func (f *fixture) user(t *testing.T, name string, points int) *entity.User {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	u, err := f.store.Users().GetByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	if points != u.Points {
		u.Points = points
		require.NoError(t, f.store.Users().Update(context.Background(), u))
	}
	return u
}

func (f *fixture) listing(t *testing.T, owner *entity.User, title string, points int) *entity.Item {
	t.Helper()
	item, err := f.items.CreateItem(context.Background(), owner.ID, CreateItemInput{
		Title:       title,
		Description: "A well loved " + title,
		Category:    "Tops",
		Size:        "M",
		Condition:   "Good",
		PointsValue: points,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) reloadUser(t *testing.T, id string) *entity.User {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) reloadItem(t *testing.T, id string) *entity.Item {
	t.Helper()
	item, err := f.store.Items().GetByID(context.Background(), id)
	require.NoError(t, err)
	return item
}

func (f *fixture) reloadSwap(t *testing.T, id string) *entity.Swap {
	t.Helper()
	swap, err := f.store.Swaps().GetByID(context.Background(), id)
	require.NoError(t, err)
	return swap
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
