package handler

import (
	"net/http"
	"time"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminAuditHandler struct {
	uc *usecase.AuditUsecase
}

func NewAdminAuditHandler(uc *usecase.AuditUsecase) *AdminAuditHandler {
	return &AdminAuditHandler{uc: uc}
}

func (h *AdminAuditHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/audit-logs", h.list)
}

func (h *AdminAuditHandler) list(c echo.Context) error {
	page, size, ok := pageParams(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid page")
	}

	actor, ok := queryInt64Ptr(c, "actor_user_id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid actor_user_id")
	}
	resourceID, ok := queryInt64Ptr(c, "resource_id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid resource_id")
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid from")
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid to")
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListAuditLogsInput{
		ActorUserID:  actor,
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   resourceID,
		From:         from,
		To:           to,
		Page:         page,
		PageSize:     size,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

// RFC3339。空ならnil
func queryTime(c echo.Context, name string) (*time.Time, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	tm, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, false
	}
	return &tm, true
}
