package handler

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"rewear/internal/usecase"
	"rewear/pkg/errors"
)

var (
	authHandler  *AuthHandler
	userHandler  *UserHandler
	itemHandler  *ItemHandler
	swapHandler  *SwapHandler
	adminHandler *AdminHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	itemUseCase *usecase.ItemUseCase,
	swapUseCase *usecase.SwapUseCase,
	adminUseCase *usecase.AdminUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase, itemUseCase)
	itemHandler = NewItemHandler(itemUseCase)
	swapHandler = NewSwapHandler(swapUseCase)
	adminHandler = NewAdminHandler(adminUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetItemHandler() *ItemHandler {
	return itemHandler
}

func GetSwapHandler() *SwapHandler {
	return swapHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

func currentUserID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

// bindStrict decodes a JSON body and rejects fields the target does not declare.
func bindStrict(c echo.Context, dst interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.BadRequest("Request body is required", nil)
		}
		return errors.BadRequest("Invalid request body: "+err.Error(), err)
	}
	return nil
}

// queryParam returns the first non-empty value among the given parameter names.
func queryParam(c echo.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
			return v
		}
	}
	return ""
}

func queryInt(c echo.Context, field string, names ...string) (*int, *errors.FieldError) {
	raw := queryParam(c, names...)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &errors.FieldError{Field: field, Message: field + " must be an integer"}
	}
	return &n, nil
}

func queryBool(c echo.Context, field string, names ...string) (*bool, *errors.FieldError) {
	raw := queryParam(c, names...)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &errors.FieldError{Field: field, Message: field + " must be true or false"}
	}
	return &b, nil
}
