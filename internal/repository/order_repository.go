package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type UserOrderListFilter struct {
	UserID int64
	Status *model.OrderStatus
	Limit  int
	Offset int
}

type AdminOrderListFilter struct {
	Status  *model.OrderStatus
	Keyword string // order_no / 住所スナップショットの部分一致
	UserID  *int64
	Limit   int
	Offset  int
}

// ステータス遷移と一緒に書く列（nilは触らない）
type StatusChange struct {
	PayTime      *time.Time
	ShipTime     *time.Time
	CompleteTime *time.Time
	StockLocked  *bool
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error

	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//行ロックしてから状態を見る
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	FindByOrderNo(ctx context.Context, orderNo string) (model.Order, error)

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)

	ListByUser(ctx context.Context, f UserOrderListFilter) ([]model.Order, int64, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error)

	//未払いのまま before より前に作られた注文
	ListUnpaidBefore(ctx context.Context, before time.Time, limit int) ([]model.Order, error)

	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, change StatusChange) error
	Delete(ctx context.Context, orderID int64) error
}
