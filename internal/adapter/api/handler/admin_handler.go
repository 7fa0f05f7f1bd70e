package handler

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/internal/usecase"
	"rewear/pkg/errors"
	"rewear/pkg/response"
	"rewear/pkg/utils"
)

type AdminHandler struct {
	adminUseCase *usecase.AdminUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
	}
}

type adminUpdateUserRequest struct {
	IsActive *bool `json:"is_active"`
	IsAdmin  *bool `json:"is_admin"`
	Points   *int  `json:"points" validate:"omitempty,min=0"`
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	isActive, fieldErr := queryBool(c, "is_active", "is_active", "isActive")
	if fieldErr != nil {
		return response.Error(c, errors.Validation("Invalid query parameters", *fieldErr))
	}

	users, total, err := h.adminUseCase.ListUsers(c.Request().Context(), repository.UserFilter{
		Search:   queryParam(c, "search"),
		IsActive: isActive,
	}, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, users, total, pagination.Page, pagination.PageSize)
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var req adminUpdateUserRequest
	if err := bindStrict(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.adminUseCase.UpdateUser(c.Request().Context(), currentUserID(c), c.Param("id"), entity.AdminUserPatch{
		IsActive: req.IsActive,
		IsAdmin:  req.IsAdmin,
		Points:   req.Points,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *AdminHandler) ToggleBan(c echo.Context) error {
	user, err := h.adminUseCase.ToggleBan(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *AdminHandler) ToggleAdmin(c echo.Context) error {
	user, err := h.adminUseCase.ToggleAdmin(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.adminUseCase.DeleteUser(c.Request().Context(), currentUserID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Message(c, "User deleted successfully")
}

func (h *AdminHandler) ListItems(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	var details []errors.FieldError
	available, fieldErr := queryBool(c, "is_available", "is_available", "available")
	if fieldErr != nil {
		details = append(details, *fieldErr)
	}
	approved, fieldErr := queryBool(c, "is_approved", "is_approved", "approved")
	if fieldErr != nil {
		details = append(details, *fieldErr)
	}
	if len(details) > 0 {
		return response.Error(c, errors.Validation("Invalid query parameters", details...))
	}

	items, total, err := h.adminUseCase.ListItems(c.Request().Context(), repository.ItemFilter{
		OwnerID:   queryParam(c, "owner_id"),
		Available: available,
		Approved:  approved,
	}, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *AdminHandler) ApproveItem(c echo.Context) error {
	item, err := h.adminUseCase.ApproveItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, item)
}

func (h *AdminHandler) DeleteItem(c echo.Context) error {
	if err := h.adminUseCase.DeleteItem(c.Request().Context(), currentUserID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Message(c, "Item deleted successfully")
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.adminUseCase.Stats(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, stats)
}
