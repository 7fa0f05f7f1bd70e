package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewear/internal/domain/service"
)

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/items/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/:id", "200"))
	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/:id", "200"))
	assert.Equal(t, before+2, after)
}

func TestSwapEventCounter(t *testing.T) {
	before := testutil.ToFloat64(swapEvents.WithLabelValues("swap.accepted"))
	SwapEventCounter{}.Notify(context.Background(), service.SwapEvent{Type: service.SwapEventAccepted})
	assert.Equal(t, before+1, testutil.ToFloat64(swapEvents.WithLabelValues("swap.accepted")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	RateLimited("test")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "rewear_ratelimit_rejections_total"))
}
