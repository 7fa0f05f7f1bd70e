package handler

import (
	"github.com/labstack/echo/v4"

	"rewear/internal/domain/entity"
	"rewear/internal/usecase"
	"rewear/pkg/response"
)

type SwapHandler struct {
	swapUseCase *usecase.SwapUseCase
}

func NewSwapHandler(swapUseCase *usecase.SwapUseCase) *SwapHandler {
	return &SwapHandler{
		swapUseCase: swapUseCase,
	}
}

type createSwapRequest struct {
	ItemID        string `json:"item_id" validate:"required"`
	SwapType      string `json:"swap_type" validate:"required,swap_type"`
	PointsOffered int    `json:"points_offered" validate:"min=0"`
	Message       string `json:"message" validate:"omitempty,max=500"`
	OfferedItemID string `json:"offered_item_id"`
}

type swapMessageRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

type rateSwapRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=500"`
}

func (h *SwapHandler) CreateSwap(c echo.Context) error {
	var req createSwapRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	swap, err := h.swapUseCase.CreateSwap(c.Request().Context(), currentUserID(c), usecase.CreateSwapInput{
		ItemID:        req.ItemID,
		OfferedItemID: req.OfferedItemID,
		SwapType:      entity.SwapType(req.SwapType),
		PointsOffered: req.PointsOffered,
		Message:       req.Message,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, swap)
}

func (h *SwapHandler) ListSwaps(c echo.Context) error {
	swaps, err := h.swapUseCase.ListSwaps(c.Request().Context(), currentUserID(c), usecase.ListSwapsInput{
		Type:   queryParam(c, "type"),
		Status: entity.SwapStatus(queryParam(c, "status")),
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, swaps)
}

func (h *SwapHandler) GetSwap(c echo.Context) error {
	swap, err := h.swapUseCase.GetSwap(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, swap)
}

func (h *SwapHandler) AcceptSwap(c echo.Context) error {
	swap, err := h.swapUseCase.AcceptSwap(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, swap)
}

func (h *SwapHandler) RejectSwap(c echo.Context) error {
	swap, err := h.swapUseCase.RejectSwap(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, swap)
}

func (h *SwapHandler) CancelSwap(c echo.Context) error {
	swap, err := h.swapUseCase.CancelSwap(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, swap)
}

func (h *SwapHandler) CompleteSwap(c echo.Context) error {
	swap, err := h.swapUseCase.CompleteSwap(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, swap)
}

func (h *SwapHandler) AddMessage(c echo.Context) error {
	var req swapMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.swapUseCase.AddMessage(c.Request().Context(), currentUserID(c), c.Param("id"), req.Message)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, msg)
}

func (h *SwapHandler) RateSwap(c echo.Context) error {
	var req rateSwapRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	swap, err := h.swapUseCase.RateSwap(c.Request().Context(), currentUserID(c), c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, swap)
}
