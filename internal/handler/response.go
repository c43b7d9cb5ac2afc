package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// 全レスポンス共通の形
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeData(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: "ok", Data: data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, Response{Success: false, Message: msg})
}

// HTTPErrorはそのまま、それ以外は500（中身は出さない）
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return fail(c, he.Status, he.Message)
	}

	logger.FromContext(c.Request().Context()).Error("unhandled error", zap.Error(err))
	return fail(c, http.StatusInternalServerError, "internal error")
}

// AuthJWTが入れたuser_id
func currentUserID(c echo.Context) (int64, bool) {
	a, ok := middleware.GetAuth(c)
	if !ok {
		return 0, false
	}
	return a.UserID, true
}

func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// 空ならdef
func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// 空ならnil
func queryInt64Ptr(c echo.Context, name string) (*int64, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// page/page_size（無ければ0 → usecase側のデフォルト）
func pageParams(c echo.Context) (int, int, bool) {
	page, ok1 := queryInt(c, "page", 0)
	size, ok2 := queryInt(c, "page_size", 0)
	return page, size, ok1 && ok2
}
