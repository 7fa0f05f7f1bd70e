package handler

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/domain/entity"
	"rewear/internal/usecase"
	"rewear/pkg/response"
	"rewear/pkg/utils"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
	itemUseCase *usecase.ItemUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase, itemUseCase *usecase.ItemUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		itemUseCase: itemUseCase,
	}
}

type updateProfileRequest struct {
	Name           *string                 `json:"name" validate:"omitempty,min=2,max=50"`
	Location       *string                 `json:"location" validate:"omitempty,max=100"`
	Bio            *string                 `json:"bio" validate:"omitempty,max=500"`
	ProfilePicture *string                 `json:"profile_picture" validate:"omitempty,max=500"`
	Preferences    *entity.UserPreferences `json:"preferences"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.userUseCase.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, profile)
}

func (h *UserHandler) GetStats(c echo.Context) error {
	stats, err := h.userUseCase.GetStats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, stats)
}

func (h *UserHandler) ListUserItems(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, total, err := h.itemUseCase.ListByOwner(c.Request().Context(), c.Param("id"), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req updateProfileRequest
	if err := bindStrict(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), currentUserID(c), entity.UserPatch{
		Name:           req.Name,
		Location:       req.Location,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		Preferences:    req.Preferences,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
