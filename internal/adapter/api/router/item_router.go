package router

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/adapter/api/handler"
	"rewear/internal/adapter/api/middleware"
)

func SetupItemRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	itemHandler := handler.GetItemHandler()

	items := api.Group("/items")
	items.GET("", itemHandler.ListItems)
	items.GET("/categories", itemHandler.Categories)
	items.GET("/:id", itemHandler.GetItem)

	myItems := api.Group("/items")
	myItems.Use(authMiddleware.Authenticate)
	myItems.POST("", itemHandler.CreateItem)
	myItems.PUT("/:id", itemHandler.UpdateItem)
	myItems.DELETE("/:id", itemHandler.DeleteItem)
	myItems.POST("/:id/like", itemHandler.ToggleLike)
}
