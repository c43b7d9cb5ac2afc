package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductStatusOffShelf = 0
	ProductStatusOnSale   = 1
)

// 商品(SPU)。カタログ側の持ち物で、注文側は読むだけ（sales_countの加算以外）
type Product struct {
	ID            int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID    *int64           `gorm:"index" json:"category_id"`
	BrandID       *int64           `gorm:"index" json:"brand_id"`
	Name          string           `gorm:"type:varchar(255);not null" json:"name"`
	CoverImage    string           `gorm:"type:varchar(500)" json:"cover_image"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice *decimal.Decimal `gorm:"type:decimal(10,2)" json:"original_price"`
	Status        int              `gorm:"not null;index" json:"status"`
	SalesCount    int64            `gorm:"not null;default:0" json:"sales_count"`
	Rating        decimal.Decimal  `gorm:"type:decimal(2,1);not null;default:5.0" json:"rating"`
	CreatedAt     time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (p Product) IsOnSale() bool {
	return p.Status == ProductStatusOnSale
}
