package handler

import (
	"net/http"

	"storefront/internal/usecase"

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

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cart", h.list)
	g.POST("/cart/items", h.add)
	g.PATCH("/cart/items/:id", h.updateQuantity)
	g.POST("/cart/items/delete", h.delete)
	g.POST("/cart/clear", h.clear)
	g.POST("/cart/select", h.selectItems)
}

func (h *CartHandler) list(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *CartHandler) add(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.AddCartItemInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.Add(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *CartHandler) updateQuantity(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	itemID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.UpdateQuantity(c.Request().Context(), userID, itemID, req.Quantity); err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, nil)
}

// ids か product_id のどちらか
func (h *CartHandler) delete(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.DeleteCartItemsInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.Delete(c.Request().Context(), userID, req); err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, nil)
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	if err := h.uc.Clear(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, nil)
}

func (h *CartHandler) selectItems(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.SelectCartInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.Select(c.Request().Context(), userID, req); err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, nil)
}
