package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus int

const (
	OrderStatusAwaitingPayment  OrderStatus = 0
	OrderStatusAwaitingShipment OrderStatus = 1
	OrderStatusAwaitingReceipt  OrderStatus = 2
	OrderStatusCompleted        OrderStatus = 3
	OrderStatusCancelled        OrderStatus = 4
	OrderStatusRefunded         OrderStatus = 5
)

var orderStatusText = map[OrderStatus]string{
	OrderStatusAwaitingPayment:  "awaiting payment",
	OrderStatusAwaitingShipment: "awaiting shipment",
	OrderStatusAwaitingReceipt:  "awaiting receipt",
	OrderStatusCompleted:        "completed",
	OrderStatusCancelled:        "cancelled",
	OrderStatusRefunded:         "refunded",
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusText[s]
	return ok
}

func (s OrderStatus) Text() string {
	if t, ok := orderStatusText[s]; ok {
		return t
	}
	return "unknown"
}

// 取消/返金
func (s OrderStatus) IsReleased() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// 削除できるのは終端だけ
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s.IsReleased()
}

type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo     string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_no"`
	UserID      int64           `gorm:"not null;index;uniqueIndex:ux_orders_user_idem,priority:1" json:"user_id"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status      OrderStatus     `gorm:"not null;default:0;index" json:"status"`
	//作成時点の住所（後から住所を変えても変わらない）
	SnapAddress datatypes.JSON `gorm:"type:jsonb" json:"snap_address"`
	Remark      *string        `gorm:"type:varchar(500)" json:"remark"`
	//同じキーなら同じ注文を返す
	IdempotencyKey *string `gorm:"type:varchar(255);uniqueIndex:ux_orders_user_idem,priority:2" json:"-"`
	//locked_stockをまだ持っているか
	StockLocked  bool       `gorm:"not null;default:false" json:"-"`
	PayTime      *time.Time `json:"pay_time"`
	ShipTime     *time.Time `json:"ship_time"`
	CompleteTime *time.Time `json:"complete_time"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
