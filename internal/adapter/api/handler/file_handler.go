package handler

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/usecase"
	"rewear/pkg/errors"
	"rewear/pkg/response"
)

const maxImageSize = 5 << 20

type FileHandler struct {
	itemUseCase *usecase.ItemUseCase
}

var fileHandler *FileHandler

func NewFileHandler(itemUseCase *usecase.ItemUseCase) *FileHandler {
	return &FileHandler{
		itemUseCase: itemUseCase,
	}
}

func SetupFileHandler(itemUseCase *usecase.ItemUseCase) {
	fileHandler = NewFileHandler(itemUseCase)
}

func GetFileHandler() *FileHandler {
	return fileHandler
}

// UploadImage stores a listing photo from the multipart "image" field and returns its URL.
func (h *FileHandler) UploadImage(c echo.Context) error {
	header, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.Validation("Invalid input data", errors.FieldError{Field: "image", Message: "image is required"}))
	}

	if header.Size > maxImageSize {
		return response.Error(c, errors.Validation("Invalid input data", errors.FieldError{Field: "image", Message: "image must be at most 5MB"}))
	}

	file, err := header.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read uploaded file", err))
	}
	defer file.Close()

	url, err := h.itemUseCase.UploadImage(c.Request().Context(), currentUserID(c), file, header.Header.Get("Content-Type"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{"url": url})
}
