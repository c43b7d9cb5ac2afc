package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/inventory
type AdminInventoryHandler struct {
	uc *usecase.InventoryUsecase
}

func NewAdminInventoryHandler(uc *usecase.InventoryUsecase) *AdminInventoryHandler {
	return &AdminInventoryHandler{uc: uc}
}

func (h *AdminInventoryHandler) RegisterRoutes(g *echo.Group) {
	//logsを:product_idより先に
	g.GET("/inventory/logs", h.listLogs)
	g.GET("/inventory/:product_id", h.get)
	g.POST("/inventory/:product_id/adjust", h.adjust)
}

func (h *AdminInventoryHandler) get(c echo.Context) error {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid product_id")
	}

	out, err := h.uc.Get(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *AdminInventoryHandler) adjust(c echo.Context) error {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid product_id")
	}

	var req usecase.AdjustInventoryInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	adminID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.uc.Adjust(c.Request().Context(), adminID, productID, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *AdminInventoryHandler) listLogs(c echo.Context) error {
	page, size, ok := pageParams(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid page")
	}

	productID, ok := queryInt64Ptr(c, "product_id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid product_id")
	}

	in := usecase.ListInventoryLogsInput{
		ProductID: productID,
		OrderNo:   c.QueryParam("order_no"),
		Page:      page,
		PageSize:  size,
	}
	if v := c.QueryParam("type"); v != "" {
		n, ok := queryInt(c, "type", 0)
		if !ok {
			return fail(c, http.StatusBadRequest, "invalid log type")
		}
		t := model.InventoryLogType(n)
		in.Type = &t
	}

	out, err := h.uc.ListLogs(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}
