package handler

import (
	"encoding/json"
	"net/http"

	"cakeshop/internal/config"
	"cakeshop/internal/repository"
	"cakeshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cakes と /admin/inventory
type CakeHandler struct {
	uc *usecase.CakeUsecase
}

// DI
func NewCakeHandler(uc *usecase.CakeUsecase) *CakeHandler {
	return &CakeHandler{uc: uc}
}

// 価格は数値でも文字列でも受け付ける
type createCakeRequest struct {
	Name        string      `json:"name" validate:"max=255"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Stock       int64       `json:"stock"`
	Category    string      `json:"category" validate:"max=100"`
	Images      []string    `json:"images" validate:"max=4,dive,max=500"`
}

type updateCakeRequest struct {
	Name        *string      `json:"name" validate:"omitempty,max=255"`
	Description *string      `json:"description"`
	Price       *json.Number `json:"price"`
	Stock       *int64       `json:"stock"`
	Category    *string      `json:"category" validate:"omitempty,max=100"`
	Images      []string     `json:"images" validate:"omitempty,max=4,dive,max=500"`
}

type adjustStockRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason" validate:"required,max=255"`
}

type createCakeResponse struct {
	Message string `json:"message"`
	usecase.CreateCakeOutput
}

func (h *CakeHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	//公開
	api.GET("/cakes", h.list)
	api.GET("/cakes/:id", h.detail)

	//管理者
	admin := adminGuards(cfg, userRepo)
	api.POST("/cakes", h.create, admin...)
	api.PUT("/cakes/:id", h.update, admin...)
	api.DELETE("/cakes/:id", h.delete, admin...)
	api.PUT("/admin/inventory/:cakeId", h.adjustStock, admin...)
}

func (h *CakeHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CakeHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid cake id")
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CakeHandler) create(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req createCakeRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	out, err := h.uc.Create(c.Request().Context(), adminID, usecase.CreateCakeInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.String(),
		Stock:       req.Stock,
		Category:    req.Category,
		Images:      req.Images,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, createCakeResponse{
		Message:          "Cake created successfully",
		CreateCakeOutput: out,
	})
}

func (h *CakeHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid cake id")
	}

	var req updateCakeRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	in := usecase.UpdateCakeInput{
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		Category:    req.Category,
		Images:      req.Images,
	}
	if req.Price != nil {
		p := req.Price.String()
		in.Price = &p
	}

	if err := h.uc.Update(c.Request().Context(), adminID, id, in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Cake updated successfully"})
}

func (h *CakeHandler) delete(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid cake id")
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Cake deleted successfully"})
}

func (h *CakeHandler) adjustStock(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "cakeId")
	if !ok {
		return badRequest(c, "Invalid cake id")
	}

	var req adjustStockRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	if err := h.uc.AdjustStock(c.Request().Context(), adminID, id, usecase.AdjustStockInput{
		Stock:  req.Stock,
		Reason: req.Reason,
	}); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Stock updated successfully"})
}
