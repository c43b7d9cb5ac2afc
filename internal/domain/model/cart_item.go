package model

import "time"

// カートの明細（ユーザー単位）。価格は持たず、一覧時に商品/SKUから引く
// (user_id, product_id, COALESCE(sku_id,0)) はユニーク（migrateで作る）
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	SkuID     *int64    `json:"sku_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Selected  bool      `gorm:"not null;default:true" json:"selected"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
