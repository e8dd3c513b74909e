package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"cakeshop/internal/config"
	"cakeshop/internal/domain/model"
	"cakeshop/internal/repository"
	"cakeshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ダッシュボード・顧客・監査ログ（読み取りのみ）
type AdminReportHandler struct {
	uc *usecase.AdminReportUsecase
}

func NewAdminReportHandler(uc *usecase.AdminReportUsecase) *AdminReportHandler {
	return &AdminReportHandler{uc: uc}
}

type customerListResponse struct {
	Customers []usecase.CustomerOutput `json:"customers"`
}

type auditLogListResponse struct {
	Logs []usecase.AuditLogOutput `json:"logs"`
}

func (h *AdminReportHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	admin := api.Group("/admin", adminGuards(cfg, userRepo)...)

	admin.GET("/dashboard", h.dashboard)
	admin.GET("/customers", h.customers)
	admin.GET("/customers/:id", h.customer)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminReportHandler) dashboard(c echo.Context) error {
	out, err := h.uc.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminReportHandler) customers(c echo.Context) error {
	out, err := h.uc.ListCustomers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, customerListResponse{Customers: out})
}

func (h *AdminReportHandler) customer(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid customer id")
	}

	out, err := h.uc.GetCustomer(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ?actor_user_id=&action=A,B&resource_type=&resource_id=&from=&to=&limit=&offset=
func (h *AdminReportHandler) auditLogs(c echo.Context) error {
	var f repository.AuditLogFilter

	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid actor_user_id")
		}
		f.ActorUserID = &id
	}
	for _, a := range strings.Split(c.QueryParam("action"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			f.Actions = append(f.Actions, model.AuditAction(a))
		}
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid resource_id")
		}
		f.ResourceID = &id
	}
	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid from")
		}
		f.CreatedFrom = &tm
	}
	if v := c.QueryParam("to"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid to")
		}
		f.CreatedTo = &tm
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		f.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid offset")
		}
		f.Offset = o
	}

	out, err := h.uc.ListAuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, auditLogListResponse{Logs: out})
}
