package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

//AuthContextのroleがADMINかどうかを確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth, ok := GetAuth(c)
			if !ok || auth.Role == "" {
				return unauthorized(c)
			}

			//USERは拒否、ADMINだけ許可
			if !auth.IsAdmin() {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}
