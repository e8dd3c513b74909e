package handler

import (
	"net/http"

	"cakeshop/internal/config"
	"cakeshop/internal/repository"
	"cakeshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	CakeID   int64 `json:"cakeId" validate:"required,gt=0"`
	Quantity int64 `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity" validate:"min=1"`
}

type cartMutationResponse struct {
	Message string               `json:"message"`
	Cart    usecase.CartResponse `json:"cart"`
}

// /cart, /cart/:cartId を登録
func (h *CartHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/cart", userGuards(cfg, userRepo)...)

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.PUT("/:cartId", h.updateItem)
	g.DELETE("/:cartId", h.deleteItem)
	g.DELETE("", h.clear)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartRequest
	if _, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, "Valid cakeId (number) and quantity (>=1) required")
	}

	out, err := h.uc.AddToCart(c.Request().Context(), userID, usecase.AddCartInput{
		CakeID:   req.CakeID,
		Quantity: req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, cartMutationResponse{
		Message: "Item added to cart successfully",
		Cart:    out,
	})
}

func (h *CartHandler) updateItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	cartID, ok := parseIDParam(c, "cartId")
	if !ok {
		return badRequest(c, "Invalid cart id")
	}

	var req UpdateCartItemRequest
	if _, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, "Quantity must be at least 1")
	}

	out, err := h.uc.UpdateCartItem(c.Request().Context(), userID, cartID, usecase.UpdateCartItemInput{
		Quantity: req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cartMutationResponse{
		Message: "Cart item updated",
		Cart:    out,
	})
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	cartID, ok := parseIDParam(c, "cartId")
	if !ok {
		return badRequest(c, "Invalid cart id")
	}

	if err := h.uc.DeleteCartItem(c.Request().Context(), userID, cartID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Item removed from cart"})
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.ClearCart(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Cart cleared"})
}
