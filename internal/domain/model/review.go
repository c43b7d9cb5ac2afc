package model

import (
	"time"

	"gorm.io/datatypes"
)

const ReviewStatusVisible = 1

// 商品レビュー。注文明細1件につき1件まで
type ProductReview struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64          `gorm:"not null;index" json:"user_id"`
	OrderID     int64          `gorm:"not null;index" json:"order_id"`
	OrderItemID int64          `gorm:"not null;uniqueIndex" json:"order_item_id"`
	ProductID   int64          `gorm:"not null;index" json:"product_id"`
	Rating      int            `gorm:"not null" json:"rating"`
	Content     *string        `gorm:"type:text" json:"content"`
	Images      datatypes.JSON `gorm:"type:jsonb" json:"images"`
	IsAnonymous bool           `gorm:"not null;default:false" json:"is_anonymous"`
	Status      int            `gorm:"not null;default:1" json:"status"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}
