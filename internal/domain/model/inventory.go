package model

import "time"

// SKUを持たない商品の在庫
type Inventory struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"not null;uniqueIndex" json:"product_id"`
	//0 <= locked_stock <= stock
	Stock       int64     `gorm:"not null;default:0" json:"stock"`
	LockedStock int64     `gorm:"not null;default:0;check:chk_inventories_locked,locked_stock >= 0 AND locked_stock <= stock" json:"locked_stock"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (i Inventory) Available() int64 {
	return i.Stock - i.LockedStock
}

type InventoryLogType int

// 数値は固定（外部から参照される）
const (
	InventoryLogSet          InventoryLogType = 1
	InventoryLogInbound      InventoryLogType = 2
	InventoryLogOutbound     InventoryLogType = 3
	InventoryLogOrderLock    InventoryLogType = 4
	InventoryLogOrderRelease InventoryLogType = 5
	InventoryLogOrderDeduct  InventoryLogType = 6
)

var inventoryLogTypeText = map[InventoryLogType]string{
	InventoryLogSet:          "set",
	InventoryLogInbound:      "inbound",
	InventoryLogOutbound:     "outbound",
	InventoryLogOrderLock:    "order lock",
	InventoryLogOrderRelease: "order release",
	InventoryLogOrderDeduct:  "order deduct",
}

func (t InventoryLogType) Valid() bool {
	_, ok := inventoryLogTypeText[t]
	return ok
}

func (t InventoryLogType) Text() string {
	if s, ok := inventoryLogTypeText[t]; ok {
		return s
	}
	return "unknown"
}

// 在庫変動ログ。追記のみ（更新・削除しない）
type InventoryLog struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64            `gorm:"not null;index" json:"product_id"`
	SkuID       *int64           `gorm:"index" json:"sku_id"`
	Type        InventoryLogType `gorm:"not null;index" json:"type"`
	Quantity    int64            `gorm:"not null" json:"quantity"`
	BeforeStock int64            `gorm:"not null" json:"before_stock"`
	AfterStock  int64            `gorm:"not null" json:"after_stock"`
	OrderNo     *string          `gorm:"type:varchar(32);index" json:"order_no"`
	OperatorID  *int64           `json:"operator_id"`
	Reason      *string          `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt   time.Time        `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
