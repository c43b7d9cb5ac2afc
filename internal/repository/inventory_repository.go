package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 在庫の持ち場所。SkuIDがあればproduct_skus、無ければinventories
type StockTarget struct {
	ProductID int64
	SkuID     *int64
}

func (t StockTarget) IsSKU() bool {
	return t.SkuID != nil
}

type InventoryLogFilter struct {
	ProductID *int64
	Type      *model.InventoryLogType
	OrderNo   string
	Limit     int
	Offset    int
}

// 在庫の更新はすべて条件付きUPDATE（行ロックはコミットまで保持）
type InventoryRepository interface {
	FindByProductID(ctx context.Context, productID int64) (model.Inventory, error)

	//stock - locked_stock >= qty のときだけ locked_stock += qty
	//ok=falseなら在庫不足。stockはロック後の値
	LockStock(ctx context.Context, t StockTarget, qty int64) (stock int64, ok bool, err error)

	//locked_stock = GREATEST(0, locked_stock - qty)
	ReleaseStock(ctx context.Context, t StockTarget, qty int64) (stock int64, err error)

	//stock -= qty, locked_stock = GREATEST(0, locked_stock - qty)
	//結果が 0 <= locked_stock <= stock を満たさないならok=false
	DeductStock(ctx context.Context, t StockTarget, qty int64) (before int64, after int64, ok bool, err error)

	//管理者調整用。行が無ければ作ってからFOR UPDATEで返す
	LockForAdjust(ctx context.Context, productID int64) (model.Inventory, error)
	SetStock(ctx context.Context, productID int64, stock int64) error

	//ログは追記のみ
	CreateLog(ctx context.Context, log model.InventoryLog) error
	ListLogs(ctx context.Context, f InventoryLogFilter) ([]model.InventoryLog, int64, error)
}
