package server

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// Depsはルート登録に必要なもの一式
type Deps struct {
	JWT   config.JWTConfig
	Users repo.UserRepository

	Auth           *handler.AuthHandler
	Cart           *handler.CartHandler
	Address        *handler.AddressHandler
	Order          *handler.OrderHandler
	Review         *handler.ReviewHandler
	AdminOrder     *handler.AdminOrderHandler
	AdminInventory *handler.AdminInventoryHandler
	AdminAudit     *handler.AdminAuditHandler
}

func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	})

	api := e.Group("/api")
	d.Auth.RegisterRoutes(api)

	//ログイン必須
	user := api.Group("", middleware.AuthJWT(d.JWT), middleware.TokenVersionGuard(d.Users))
	d.Cart.RegisterRoutes(user)
	d.Address.RegisterRoutes(user)
	d.Order.RegisterRoutes(user)
	d.Review.RegisterRoutes(user)

	//管理者のみ
	admin := api.Group("/admin",
		middleware.AuthJWT(d.JWT),
		middleware.TokenVersionGuard(d.Users),
		middleware.AdminRoleGuard(),
	)
	d.AdminOrder.RegisterRoutes(admin)
	d.AdminInventory.RegisterRoutes(admin)
	d.AdminAudit.RegisterRoutes(admin)
}
