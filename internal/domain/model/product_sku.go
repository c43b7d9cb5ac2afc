package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SKU。存在する明細ではSKUの価格・在庫が商品より優先される
type ProductSKU struct {
	ID            int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     int64            `gorm:"not null;index" json:"product_id"`
	SkuNo         string           `gorm:"type:varchar(64);not null" json:"sku_no"`
	AttrText      string           `gorm:"type:varchar(255)" json:"attr_text"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice *decimal.Decimal `gorm:"type:decimal(10,2)" json:"original_price"`
	CoverImage    string           `gorm:"type:varchar(500)" json:"cover_image"`
	//0 <= locked_stock <= stock
	Stock       int64     `gorm:"not null;default:0" json:"stock"`
	LockedStock int64     `gorm:"not null;default:0;check:chk_product_skus_locked,locked_stock >= 0 AND locked_stock <= stock" json:"locked_stock"`
	Status      int       `gorm:"not null" json:"status"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ProductSKU) TableName() string {
	return "product_skus"
}

func (s ProductSKU) IsOnSale() bool {
	return s.Status == ProductStatusOnSale
}

func (s ProductSKU) Available() int64 {
	return s.Stock - s.LockedStock
}
