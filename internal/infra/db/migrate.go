package db

import (
	"fmt"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

// AutoMigrateで表現できないもの
var rawDDL = []string{
	//sku_idがNULLでも同じ(user, product)は1行
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_cart_items_user_product_sku
		ON cart_items (user_id, product_id, COALESCE(sku_id, 0))`,
	`CREATE INDEX IF NOT EXISTS ix_orders_status_created_at ON orders (status, created_at)`,
}

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.ProductSKU{},
		&model.Inventory{},
		&model.InventoryLog{},
		&model.CartItem{},
		&model.Address{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.ProductReview{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range rawDDL {
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate ddl: %w", err)
		}
	}
	return nil
}
