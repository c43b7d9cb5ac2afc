package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return wrap(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error; err != nil {
		return model.Order{}, notFoundOr(err)
	}
	return o, nil
}

// 状態遷移の前に注文行をロック
func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&o).Error; err != nil {
		return model.Order{}, notFoundOr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) FindByOrderNo(ctx context.Context, orderNo string) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&o).Error; err != nil {
		return model.Order{}, notFoundOr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error

	if isNotFound(err) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, wrap(err)
	}
	return o, true, nil
}

func (r *OrderGormRepository) ListByUser(ctx context.Context, f repo.UserOrderListFilter) ([]model.Order, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", f.UserID)
		if f.Status != nil {
			q = q.Where("status = ?", *f.Status)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return []model.Order{}, 0, wrap(err)
	}

	var items []model.Order
	if err := filtered().
		Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&items).Error; err != nil {
		return []model.Order{}, 0, wrap(err)
	}
	return items, total, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Order{})

		//status 絞り込み
		if f.Status != nil {
			q = q.Where("status = ?", *f.Status)
		}

		//注文番号か宛先の部分一致
		if f.Keyword != "" {
			like := "%" + f.Keyword + "%"
			q = q.Where("(order_no LIKE ? OR snap_address::text LIKE ?)", like, like)
		}

		//user_id 絞り込み
		if f.UserID != nil {
			q = q.Where("user_id = ?", *f.UserID)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return []model.Order{}, 0, wrap(err)
	}

	var items []model.Order
	if err := filtered().
		Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&items).Error; err != nil {
		return []model.Order{}, 0, wrap(err)
	}
	return items, total, nil
}

func (r *OrderGormRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, wrap(err)
	}

	out := make(map[model.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// 古い順
func (r *OrderGormRepository) ListUnpaidBefore(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	var items []model.Order
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.OrderStatusAwaitingPayment, before).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return []model.Order{}, wrap(err)
	}
	return items, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, change repo.StatusChange) error {
	values := map[string]interface{}{"status": status}
	if change.PayTime != nil {
		values["pay_time"] = *change.PayTime
	}
	if change.ShipTime != nil {
		values["ship_time"] = *change.ShipTime
	}
	if change.CompleteTime != nil {
		values["complete_time"] = *change.CompleteTime
	}
	if change.StockLocked != nil {
		values["stock_locked"] = *change.StockLocked
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(values)

	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", orderID).Delete(&model.Order{})
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
