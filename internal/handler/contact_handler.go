package handler

import (
	"net/http"

	"cakeshop/internal/config"
	"cakeshop/internal/domain/model"
	"cakeshop/internal/repository"
	"cakeshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ContactHandler struct {
	uc *usecase.ContactUsecase
}

func NewContactHandler(uc *usecase.ContactUsecase) *ContactHandler {
	return &ContactHandler{uc: uc}
}

type contactRequest struct {
	Name    string `json:"name" validate:"max=100"`
	Email   string `json:"email" validate:"max=255"`
	Phone   string `json:"phone" validate:"max=50"`
	Subject string `json:"subject" validate:"max=255"`
	Message string `json:"message" validate:"max=5000"`
}

type contactCreatedResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type contactListResponse struct {
	Messages []model.ContactMessage `json:"messages"`
}

// 送信は公開（limiter 付き）、閲覧・既読・削除は管理者のみ
func (h *ContactHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository, submitLimiter echo.MiddlewareFunc) {
	if submitLimiter != nil {
		api.POST("/contact", h.submit, submitLimiter)
	} else {
		api.POST("/contact", h.submit)
	}

	admin := adminGuards(cfg, userRepo)
	api.GET("/contact", h.list, admin...)
	api.PUT("/contact/:id/read", h.markRead, admin...)
	api.DELETE("/contact/:id", h.delete, admin...)
}

func (h *ContactHandler) submit(c echo.Context) error {
	var req contactRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	id, err := h.uc.Submit(c.Request().Context(), usecase.SubmitContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, contactCreatedResponse{
		Message: "Thank you! Your message has been sent.",
		ID:      id,
	})
}

func (h *ContactHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, contactListResponse{Messages: out})
}

func (h *ContactHandler) markRead(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid message id")
	}
	if err := h.uc.MarkRead(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Message marked as read"})
}

func (h *ContactHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid message id")
	}
	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Message deleted successfully"})
}
