package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	uc *usecase.ReviewUsecase
}

func NewReviewHandler(uc *usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

func (h *ReviewHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/reviews/eligibility", h.eligibility)
	g.POST("/reviews", h.submit)
}

func (h *ReviewHandler) eligibility(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	itemID, ok := queryInt64Ptr(c, "order_item_id")
	if !ok || itemID == nil || *itemID <= 0 {
		return fail(c, http.StatusBadRequest, "invalid order_item_id")
	}

	out, err := h.uc.Eligibility(c.Request().Context(), userID, *itemID)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *ReviewHandler) submit(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.SubmitReviewInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.Submit(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusCreated, out)
}
