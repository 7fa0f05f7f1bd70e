package router

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/adapter/api/handler"
	"rewear/internal/adapter/api/middleware"
)

func SetupFileRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	fileHandler := handler.GetFileHandler()
	if fileHandler == nil {
		return
	}

	api.POST("/items/images", fileHandler.UploadImage, authMiddleware.Authenticate)
}
