package router

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/adapter/api/handler"
	"rewear/internal/adapter/api/middleware"
)

func SetupSwapRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	swapHandler := handler.GetSwapHandler()

	swaps := api.Group("/swaps")
	swaps.Use(authMiddleware.Authenticate)
	swaps.POST("", swapHandler.CreateSwap)
	swaps.GET("", swapHandler.ListSwaps)
	swaps.GET("/:id", swapHandler.GetSwap)
	swaps.PUT("/:id/accept", swapHandler.AcceptSwap)
	swaps.PUT("/:id/reject", swapHandler.RejectSwap)
	swaps.PUT("/:id/cancel", swapHandler.CancelSwap)
	swaps.PUT("/:id/complete", swapHandler.CompleteSwap)
	swaps.POST("/:id/message", swapHandler.AddMessage)
	swaps.POST("/:id/rate", swapHandler.RateSwap)
}
