package router

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/adapter/api/handler"
	"rewear/internal/adapter/api/middleware"
)

func SetupAdminRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := api.Group("/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/stats", adminHandler.Stats)

	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id", adminHandler.UpdateUser)
	admin.POST("/users/:id/ban", adminHandler.ToggleBan)
	admin.POST("/users/:id/make-admin", adminHandler.ToggleAdmin)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	admin.GET("/items", adminHandler.ListItems)
	admin.PUT("/items/:id/approve", adminHandler.ApproveItem)
	admin.DELETE("/items/:id", adminHandler.DeleteItem)
}
