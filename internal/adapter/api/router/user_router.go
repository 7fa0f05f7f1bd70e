package router

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/adapter/api/handler"
	"rewear/internal/adapter/api/middleware"
)

func SetupUserRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := api.Group("/users")
	users.PUT("/me", userHandler.UpdateMe, authMiddleware.Authenticate)
	users.GET("/:id", userHandler.GetProfile)
	users.GET("/:id/stats", userHandler.GetStats)
	users.GET("/:id/items", userHandler.ListUserItems)
}
