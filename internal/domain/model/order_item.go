package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。作成時に商品情報を焼き付け、以後は変更しない
type OrderItem struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64           `gorm:"not null;index" json:"order_id"`
	ProductID    int64           `gorm:"not null;index" json:"product_id"`
	SkuID        *int64          `json:"sku_id"`
	ProductName  string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductImage string          `gorm:"type:varchar(500)" json:"product_image"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	SkuAttrText  string          `gorm:"type:varchar(255)" json:"sku_attr_text"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(it.Quantity))
}
