package middleware

import (
	"storefront/internal/logger"
	repo "storefront/internal/repository"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JWTのtvとDBのtoken_versionが一致するか確認。無効化されたユーザーも弾く
func TokenVersionGuard(users repo.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth, ok := GetAuth(c)
			if !ok {
				return unauthorized(c)
			}

			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return unauthorized(c)
			}

			ctx := c.Request().Context()
			user, err := users.FindByID(ctx, auth.UserID)
			if err != nil {
				logger.FromContext(ctx).Warn("token version lookup failed", zap.Error(err))
				return unauthorized(c)
			}
			if user == nil || !user.IsActive {
				return unauthorized(c)
			}

			//token_versionが一致しなければ強制ログアウト扱い
			if user.TokenVersion != tv {
				return unauthorized(c)
			}

			return next(c)
		}
	}
}
