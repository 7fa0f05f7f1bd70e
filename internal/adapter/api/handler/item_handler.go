package handler

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/domain/entity"
	"rewear/internal/usecase"
	"rewear/pkg/errors"
	"rewear/pkg/response"
	"rewear/pkg/utils"
)

type ItemHandler struct {
	itemUseCase *usecase.ItemUseCase
}

func NewItemHandler(itemUseCase *usecase.ItemUseCase) *ItemHandler {
	return &ItemHandler{
		itemUseCase: itemUseCase,
	}
}

type createItemRequest struct {
	Title        string               `json:"title" validate:"required,min=3,max=100"`
	Description  string               `json:"description" validate:"required,min=10,max=1000"`
	Category     string               `json:"category" validate:"required,item_category"`
	Size         string               `json:"size" validate:"required,item_size"`
	Condition    string               `json:"condition" validate:"required,item_condition"`
	Tags         []string             `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
	Images       []string             `json:"images" validate:"omitempty,max=5,dive,required"`
	PointsValue  int                  `json:"points_value" validate:"required,min=1,max=1000"`
	Brand        string               `json:"brand" validate:"omitempty,max=50"`
	Color        string               `json:"color" validate:"omitempty,max=30"`
	Material     string               `json:"material" validate:"omitempty,max=50"`
	Location     string               `json:"location" validate:"omitempty,max=100"`
	Measurements *entity.Measurements `json:"measurements"`
	ShippingInfo *entity.ShippingInfo `json:"shipping_info"`
}

type updateItemRequest struct {
	Title        *string              `json:"title" validate:"omitempty,min=3,max=100"`
	Description  *string              `json:"description" validate:"omitempty,min=10,max=1000"`
	Tags         *[]string            `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
	PointsValue  *int                 `json:"points_value" validate:"omitempty,min=1,max=1000"`
	Brand        *string              `json:"brand" validate:"omitempty,max=50"`
	Color        *string              `json:"color" validate:"omitempty,max=30"`
	Material     *string              `json:"material" validate:"omitempty,max=50"`
	Location     *string              `json:"location" validate:"omitempty,max=100"`
	Measurements *entity.Measurements `json:"measurements"`
	ShippingInfo *entity.ShippingInfo `json:"shipping_info"`
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	item, err := h.itemUseCase.CreateItem(c.Request().Context(), currentUserID(c), usecase.CreateItemInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Size:         req.Size,
		Condition:    req.Condition,
		Tags:         req.Tags,
		Images:       req.Images,
		PointsValue:  req.PointsValue,
		Brand:        req.Brand,
		Color:        req.Color,
		Material:     req.Material,
		Location:     req.Location,
		Measurements: req.Measurements,
		Shipping:     req.ShippingInfo,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, item)
}

func (h *ItemHandler) UpdateItem(c echo.Context) error {
	var req updateItemRequest
	if err := bindStrict(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	item, err := h.itemUseCase.UpdateItem(c.Request().Context(), currentUserID(c), c.Param("id"), entity.ItemPatch{
		Title:        req.Title,
		Description:  req.Description,
		Tags:         req.Tags,
		PointsValue:  req.PointsValue,
		Brand:        req.Brand,
		Color:        req.Color,
		Material:     req.Material,
		Location:     req.Location,
		Measurements: req.Measurements,
		Shipping:     req.ShippingInfo,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context) error {
	if err := h.itemUseCase.DeleteItem(c.Request().Context(), currentUserID(c), c.Param("id"), false); err != nil {
		return response.Error(c, err)
	}
	return response.Message(c, "Item deleted successfully")
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	detail, err := h.itemUseCase.GetItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, detail)
}

// ListItems accepts snake_case parameters and the older camelCase spellings.
func (h *ItemHandler) ListItems(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	query := entity.ItemQuery{
		Search:    queryParam(c, "search", "q"),
		Category:  queryParam(c, "category"),
		Size:      queryParam(c, "size"),
		Condition: queryParam(c, "condition"),
		SortBy:    queryParam(c, "sort_by", "sortBy"),
		SortOrder: queryParam(c, "sort_order", "sortOrder"),
		Offset:    pagination.Offset,
		Limit:     pagination.PageSize,
	}

	var details []errors.FieldError
	minPoints, fieldErr := queryInt(c, "min_points", "min_points", "minPoints")
	if fieldErr != nil {
		details = append(details, *fieldErr)
	}
	maxPoints, fieldErr := queryInt(c, "max_points", "max_points", "maxPoints")
	if fieldErr != nil {
		details = append(details, *fieldErr)
	}
	if len(details) > 0 {
		return response.Error(c, errors.Validation("Invalid query parameters", details...))
	}
	query.MinPoints = minPoints
	query.MaxPoints = maxPoints

	items, total, err := h.itemUseCase.Browse(c.Request().Context(), query)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *ItemHandler) ToggleLike(c echo.Context) error {
	result, err := h.itemUseCase.ToggleLike(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *ItemHandler) Categories(c echo.Context) error {
	categories, err := h.itemUseCase.Categories(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, categories)
}
