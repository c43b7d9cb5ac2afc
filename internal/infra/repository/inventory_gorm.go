package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

type stockRow struct {
	Stock       int64
	LockedStock int64
}

// SKUならproduct_skus、無ければinventoriesの行
func (r *InventoryGormRepository) stockQuery(ctx context.Context, t repo.StockTarget) *gorm.DB {
	if t.IsSKU() {
		return r.db.WithContext(ctx).
			Model(&model.ProductSKU{}).
			Where("id = ? AND product_id = ?", *t.SkuID, t.ProductID)
	}
	return r.db.WithContext(ctx).
		Model(&model.Inventory{}).
		Where("product_id = ?", t.ProductID)
}

func (r *InventoryGormRepository) readStock(ctx context.Context, t repo.StockTarget, forUpdate bool) (stockRow, error) {
	var row stockRow
	q := r.stockQuery(ctx, t).Select("stock", "locked_stock")
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Take(&row).Error; err != nil {
		return stockRow{}, notFoundOr(err)
	}
	return row, nil
}

func (r *InventoryGormRepository) FindByProductID(ctx context.Context, productID int64) (model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&inv).Error
	if err != nil {
		return model.Inventory{}, notFoundOr(err)
	}
	return inv, nil
}

// 在庫が足りるときだけロック（判定と更新は同じUPDATE文）
func (r *InventoryGormRepository) LockStock(ctx context.Context, t repo.StockTarget, qty int64) (int64, bool, error) {
	res := r.stockQuery(ctx, t).
		Where("stock - locked_stock >= ?", qty).
		Update("locked_stock", gorm.Expr("locked_stock + ?", qty))

	if res.Error != nil {
		return 0, false, wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}

	//行ロックは取れているのでそのまま読む
	row, err := r.readStock(ctx, t, false)
	if err != nil {
		return 0, false, err
	}
	return row.Stock, true, nil
}

// ロック解除（0未満にはしない）
func (r *InventoryGormRepository) ReleaseStock(ctx context.Context, t repo.StockTarget, qty int64) (int64, error) {
	res := r.stockQuery(ctx, t).
		Update("locked_stock", gorm.Expr("GREATEST(0, locked_stock - ?)", qty))

	if res.Error != nil {
		return 0, wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		//在庫行が無い＝解除するものも無い
		return 0, nil
	}

	row, err := r.readStock(ctx, t, false)
	if err != nil {
		return 0, err
	}
	return row.Stock, nil
}

// 支払い時の確定（ロック分をstockから引く）
func (r *InventoryGormRepository) DeductStock(ctx context.Context, t repo.StockTarget, qty int64) (int64, int64, bool, error) {
	before, err := r.readStock(ctx, t, true)
	if err == repo.ErrNotFound {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}

	res := r.stockQuery(ctx, t).
		Where("stock - ? >= GREATEST(0, locked_stock - ?)", qty, qty).
		Updates(map[string]interface{}{
			"stock":        gorm.Expr("stock - ?", qty),
			"locked_stock": gorm.Expr("GREATEST(0, locked_stock - ?)", qty),
		})

	if res.Error != nil {
		return 0, 0, false, wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return before.Stock, before.Stock, false, nil
	}
	return before.Stock, before.Stock - qty, true, nil
}

// 管理者調整用。行が無ければ作る
func (r *InventoryGormRepository) LockForAdjust(ctx context.Context, productID int64) (model.Inventory, error) {
	seed := model.Inventory{ProductID: productID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "product_id"}}, DoNothing: true}).
		Create(&seed).Error; err != nil {
		return model.Inventory{}, wrap(err)
	}

	var inv model.Inventory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&inv).Error
	if err != nil {
		return model.Inventory{}, notFoundOr(err)
	}
	return inv, nil
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, stock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Inventory{}).
		Where("product_id = ? AND locked_stock <= ?", productID, stock).
		Update("stock", stock)

	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InventoryGormRepository) CreateLog(ctx context.Context, log model.InventoryLog) error {
	return wrap(r.db.WithContext(ctx).Create(&log).Error)
}

func (r *InventoryGormRepository) ListLogs(ctx context.Context, f repo.InventoryLogFilter) ([]model.InventoryLog, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.InventoryLog{})
		if f.ProductID != nil {
			q = q.Where("product_id = ?", *f.ProductID)
		}
		if f.Type != nil {
			q = q.Where("type = ?", *f.Type)
		}
		if f.OrderNo != "" {
			q = q.Where("order_no = ?", f.OrderNo)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return []model.InventoryLog{}, 0, wrap(err)
	}

	var logs []model.InventoryLog
	if err := filtered().
		Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&logs).Error; err != nil {
		return []model.InventoryLog{}, 0, wrap(err)
	}
	return logs, total, nil
}
