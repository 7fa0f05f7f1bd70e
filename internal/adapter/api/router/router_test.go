package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rewear/internal/adapter/api"
	"rewear/internal/adapter/api/handler"
	"rewear/internal/adapter/api/middleware"
	"rewear/internal/adapter/repository/memory"
	"rewear/internal/domain/entity"
	"rewear/internal/domain/service"
	"rewear/internal/infrastructure/auth"
	"rewear/internal/usecase"
	"rewear/pkg/response"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

type testServer struct {
	e     *echo.Echo
	store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()

	identity := auth.NewJWTProvider("test-secret", time.Hour)
	authUseCase := usecase.NewAuthUseCase(store.Users(), identity, auth.NewBcryptHasher(bcrypt.MinCost), 100)
	userUseCase := usecase.NewUserUseCase(store.Users(), store.Items(), store.Swaps())
	itemUseCase := usecase.NewItemUseCase(store.Items(), store.Users(), store.Swaps(), nil, true)
	swapUseCase := usecase.NewSwapUseCase(store.UnitOfWork(), store.Swaps(), store.Items(), store.Users(), service.NopNotifier(), nil)
	adminUseCase := usecase.NewAdminUseCase(store.Users(), store.Items(), store.Swaps(), itemUseCase, identity)

	handler.Setup(authUseCase, userUseCase, itemUseCase, swapUseCase, adminUseCase)
	handler.SetupFileHandler(itemUseCase)
	handler.SetupHealthHandler(nil)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	Setup(e, middleware.NewAuthMiddleware(authUseCase), middleware.NewAdminMiddleware(), middleware.NewRateLimiter(1000, time.Minute))
	return &testServer{e: e, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

type account struct {
	ID    string
	Token string
}

func (s *testServer) register(t *testing.T, name string) account {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code)

	var result struct {
		User  entity.User `json:"user"`
		Token string      `json:"token"`
	}
	decode(t, env, &result)
	return account{ID: result.User.ID, Token: result.Token}
}

func (s *testServer) createItem(t *testing.T, owner account, title string, points int) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/items", owner.Token, map[string]interface{}{
		"title":        title,
		"description":  "Gently worn and freshly washed",
		"category":     "Tops",
		"size":         "M",
		"condition":    "Good",
		"points_value": points,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)

	var item struct {
		ID string `json:"id"`
	}
	decode(t, env, &item)
	return item.ID
}

func TestPointsSwapLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	itemID := s.createItem(t, alice, "Denim jacket", 40)

	code, env := s.do(t, http.MethodPost, "/api/swaps", bob.Token, map[string]interface{}{
		"item_id":        itemID,
		"swap_type":      "points",
		"points_offered": 30,
		"message":        "Would love this",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var swap entity.Swap
	decode(t, env, &swap)
	assert.Equal(t, entity.SwapPending, swap.Status)

	code, env = s.do(t, http.MethodPost, "/api/swaps", bob.Token, map[string]interface{}{
		"item_id": itemID, "swap_type": "points", "points_offered": 10,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, _ = s.do(t, http.MethodPut, "/api/swaps/"+swap.ID+"/accept", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPut, "/api/swaps/"+swap.ID+"/accept", alice.Token, nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(t, http.MethodPut, "/api/swaps/"+swap.ID+"/reject", alice.Token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	code, env = s.do(t, http.MethodGet, "/api/auth/me", bob.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var me entity.User
	decode(t, env, &me)
	assert.Equal(t, 70, me.Points)

	code, env = s.do(t, http.MethodGet, "/api/items/"+itemID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var detail struct {
		Item struct {
			Available bool `json:"is_available"`
		} `json:"item"`
		Owner struct {
			Name string `json:"name"`
		} `json:"owner"`
	}
	decode(t, env, &detail)
	assert.False(t, detail.Item.Available)
	assert.Equal(t, "alice", detail.Owner.Name)

	code, _ = s.do(t, http.MethodPut, "/api/swaps/"+swap.ID+"/complete", bob.Token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/swaps/"+swap.ID+"/rate", bob.Token, map[string]interface{}{"rating": 5})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPost, "/api/swaps/"+swap.ID+"/rate", bob.Token, map[string]interface{}{"rating": 4})
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodGet, "/api/swaps?type=incoming", alice.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var views []struct {
		ID   string `json:"id"`
		Item struct {
			Title string `json:"title"`
		} `json:"item"`
	}
	decode(t, env, &views)
	require.Len(t, views, 1)
	assert.Equal(t, "Denim jacket", views[0].Item.Title)
}

func TestListingPagination(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	for i := 0; i < 25; i++ {
		s.createItem(t, alice, "Linen shirt", 10+i)
	}

	type page struct {
		Items      []json.RawMessage `json:"items"`
		Pagination struct {
			CurrentPage  int   `json:"current_page"`
			TotalPages   int   `json:"total_pages"`
			TotalItems   int64 `json:"total_items"`
			ItemsPerPage int   `json:"items_per_page"`
		} `json:"pagination"`
	}

	code, env := s.do(t, http.MethodGet, "/api/items?limit=10&page=3", "", nil)
	require.Equal(t, http.StatusOK, code)
	var third page
	decode(t, env, &third)
	assert.Len(t, third.Items, 5)
	assert.Equal(t, 3, third.Pagination.TotalPages)
	assert.Equal(t, int64(25), third.Pagination.TotalItems)

	code, env = s.do(t, http.MethodGet, "/api/items?limit=10&page=4", "", nil)
	require.Equal(t, http.StatusOK, code)
	var fourth page
	decode(t, env, &fourth)
	assert.Empty(t, fourth.Items)
	assert.NotNil(t, fourth.Items)
	assert.Equal(t, 4, fourth.Pagination.CurrentPage)

	code, env = s.do(t, http.MethodGet, "/api/items?sortBy=passwordHash", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = s.do(t, http.MethodGet, "/api/items?min_points=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "min_points", env.Error.Details[0].Field)
}

func TestBoundaryRejections(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	itemID := s.createItem(t, alice, "Wool scarf", 15)

	code, env := s.do(t, http.MethodPost, "/api/items", "", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, _ = s.do(t, http.MethodPost, "/api/items", "not-a-jwt", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPost, "/api/items", alice.Token, map[string]interface{}{
		"title":        "Mystery",
		"description":  "Nobody knows what this is",
		"category":     "Hats",
		"size":         "M",
		"condition":    "Good",
		"points_value": 0,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	var fields []string
	for _, d := range env.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"category", "points_value"}, fields)

	code, env = s.do(t, http.MethodPut, "/api/items/"+itemID, alice.Token, `{"title":"Cashmere scarf","owner_id":"someone-else"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	code, _ = s.do(t, http.MethodPost, "/api/swaps", alice.Token, map[string]interface{}{
		"item_id": itemID, "swap_type": "points", "points_offered": 5,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodGet, "/api/admin/stats", alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestAdminSurface(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "admin")
	alice := s.register(t, "alice")
	s.createItem(t, alice, "Rain coat", 50)

	promote := true
	adminUser, err := s.store.Users().GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
	entity.AdminUserPatch{IsAdmin: &promote}.Apply(adminUser)
	require.NoError(t, s.store.Users().Update(context.Background(), adminUser))

	code, env := s.do(t, http.MethodGet, "/api/admin/stats", admin.Token, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var stats usecase.PlatformStats
	decode(t, env, &stats)
	assert.Equal(t, int64(2), stats.Users.Total)
	assert.Equal(t, int64(1), stats.Items.Total)

	code, _ = s.do(t, http.MethodPost, "/api/admin/users/"+alice.ID+"/ban", admin.Token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/auth/me", alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodGet, "/api/admin/users?is_active=false", admin.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var users struct {
		Items []entity.User `json:"items"`
	}
	decode(t, env, &users)
	require.Len(t, users.Items, 1)
	assert.Equal(t, alice.ID, users.Items[0].ID)

	code, _ = s.do(t, http.MethodPost, "/api/admin/users/"+admin.ID+"/ban", admin.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPut, "/api/admin/users/"+alice.ID, admin.Token, `{"points":-5}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
