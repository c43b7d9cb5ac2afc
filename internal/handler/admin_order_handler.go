package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status *int `json:"status"`
}

// gはAuthJWT/TokenVersionGuard/AdminRoleGuard済みの/admin
func (h *AdminOrderHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/orders", h.list)
	g.GET("/orders/detail", h.detail)
	g.POST("/orders/:id/ship", h.ship)
	g.PUT("/orders/:id/status", h.updateStatus)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, size, ok := pageParams(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid page")
	}

	userID, ok := queryInt64Ptr(c, "user_id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid user_id")
	}

	in := usecase.AdminListOrdersInput{
		Keyword:  c.QueryParam("keyword"),
		UserID:   userID,
		Page:     page,
		PageSize: size,
	}
	if v := c.QueryParam("status"); v != "" {
		st, ok := parseOrderStatus(v)
		if !ok {
			return fail(c, http.StatusBadRequest, "invalid status")
		}
		in.Status = &st
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	id, ok := queryInt64Ptr(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var orderID int64
	if id != nil {
		orderID = *id
	}

	out, err := h.uc.Detail(c.Request().Context(), orderID, c.QueryParam("order_no"))
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) ship(c echo.Context) error {
	orderID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	//操作した管理者IDを取得（監査ログ用）
	adminID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	if err := h.uc.Ship(c.Request().Context(), adminID, orderID); err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, nil)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Status == nil {
		return fail(c, http.StatusBadRequest, "status is required")
	}

	adminID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, model.OrderStatus(*req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}
