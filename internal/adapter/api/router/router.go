package router

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/adapter/api/middleware"
)

// Setup mounts the JSON API under /api behind the per-IP throttle, plus the unthrottled
// health, metrics and websocket endpoints at the root.
func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, rateLimiter *middleware.RateLimiter) {
	api := e.Group("/api")
	if rateLimiter != nil {
		api.Use(rateLimiter.RateLimitMiddleware())
	}

	SetupAuthRouter(api, authMiddleware)
	SetupUserRouter(api, authMiddleware)
	SetupItemRouter(api, authMiddleware)
	SetupFileRouter(api, authMiddleware)
	SetupSwapRouter(api, authMiddleware)
	SetupAdminRouter(api, authMiddleware, adminMiddleware)

	SetupHealthRouter(e)
	SetupWebSocketRouter(e, authMiddleware)
}
