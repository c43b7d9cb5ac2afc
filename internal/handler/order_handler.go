package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 二重送信防止キー（任意）
const headerIdempotencyKey = "X-Idempotency-Key"

type OrderHandler struct {
	orders   *usecase.OrderUsecase
	payments *usecase.PaymentUsecase
}

func NewOrderHandler(orders *usecase.OrderUsecase, payments *usecase.PaymentUsecase) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments}
}

type PayOrderRequest struct {
	PaymentMethod paymentMethodParam `json:"payment_method"`
}

// "wechat" でも 2 でも受け付ける。中身の検証はusecase側
type paymentMethodParam string

func (p *paymentMethodParam) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = paymentMethodParam(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = paymentMethodParam(n.String())
	return nil
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/orders", h.create)
	g.POST("/orders/direct", h.createDirect)
	g.GET("/orders", h.list)
	g.GET("/orders/detail", h.detail)
	g.POST("/orders/:id/cancel", h.cancel)
	g.POST("/orders/:id/confirm", h.confirm)
	g.DELETE("/orders/:id", h.delete)
	g.POST("/orders/:id/pay", h.pay)
	g.GET("/orders/:id/payments", h.listPayments)
}

// 同じキーの再送は既存注文を200で返す
func createdStatus(out usecase.CreateOrderOutput) int {
	if out.Replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.CreateFromCartInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.IdempotencyKey = c.Request().Header.Get(headerIdempotencyKey)

	out, err := h.orders.CreateFromCart(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, createdStatus(out), out)
}

func (h *OrderHandler) createDirect(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.CreateDirectInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.IdempotencyKey = c.Request().Header.Get(headerIdempotencyKey)

	out, err := h.orders.CreateDirect(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, createdStatus(out), out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	page, size, ok := pageParams(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid page")
	}

	in := usecase.ListOrdersInput{Page: page, PageSize: size}
	if v := c.QueryParam("status"); v != "" {
		st, ok := parseOrderStatus(v)
		if !ok {
			return fail(c, http.StatusBadRequest, "invalid status")
		}
		in.Status = &st
	}

	out, err := h.orders.List(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

// ?id= か ?order_no=
func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	id, ok := queryInt64Ptr(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var orderID int64
	if id != nil {
		orderID = *id
	}

	out, err := h.orders.Detail(c.Request().Context(), userID, orderID, c.QueryParam("order_no"))
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	return h.transition(c, h.orders.Cancel)
}

func (h *OrderHandler) confirm(c echo.Context) error {
	return h.transition(c, h.orders.Confirm)
}

func (h *OrderHandler) delete(c echo.Context) error {
	return h.transition(c, h.orders.Delete)
}

// cancel/confirm/delete は同じ形
func (h *OrderHandler) transition(c echo.Context, fn func(ctx context.Context, userID, orderID int64) error) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	orderID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	if err := fn(c.Request().Context(), userID, orderID); err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, nil)
}

func (h *OrderHandler) pay(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	orderID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req PayOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.payments.Pay(c.Request().Context(), userID, orderID, string(req.PaymentMethod))
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *OrderHandler) listPayments(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	orderID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.payments.List(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func parseOrderStatus(v string) (model.OrderStatus, bool) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	st := model.OrderStatus(n)
	return st, st.Valid()
}
