package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// 現在の商品/SKU/在庫をJOINして読む（NULLはCOALESCEで潰す）
const cartLineColumns = `cart_items.*,
	p.name AS product_name,
	COALESCE(p.cover_image, '') AS product_cover,
	p.price AS product_price,
	p.original_price AS product_original_price,
	p.status AS product_status,
	COALESCE(i.stock, 0) AS inv_stock,
	COALESCE(i.locked_stock, 0) AS inv_locked,
	(s.id IS NOT NULL) AS sku_found,
	COALESCE(s.attr_text, '') AS sku_attr_text,
	COALESCE(s.price, 0) AS sku_price,
	s.original_price AS sku_original_price,
	COALESCE(s.cover_image, '') AS sku_cover,
	COALESCE(s.stock, 0) AS sku_stock,
	COALESCE(s.locked_stock, 0) AS sku_locked,
	COALESCE(s.status, 0) AS sku_status`

func (r *CartGormRepository) lines(ctx context.Context, userID int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("cart_items").
		Select(cartLineColumns).
		Joins("JOIN products p ON p.id = cart_items.product_id").
		Joins("LEFT JOIN inventories i ON i.product_id = cart_items.product_id").
		Joins("LEFT JOIN product_skus s ON s.id = cart_items.sku_id AND s.product_id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID)
}

// カート明細を一覧取得（新しい順）
func (r *CartGormRepository) ListLines(ctx context.Context, userID int64, ids []int64) ([]repo.CartLine, error) {
	q := r.lines(ctx, userID)
	if len(ids) > 0 {
		q = q.Where("cart_items.id IN ?", ids)
	}

	var out []repo.CartLine
	if err := q.Order("cart_items.created_at DESC, cart_items.id DESC").Scan(&out).Error; err != nil {
		return []repo.CartLine{}, wrap(err)
	}
	return out, nil
}

func (r *CartGormRepository) FindLineByID(ctx context.Context, userID, cartItemID int64) (repo.CartLine, error) {
	var out []repo.CartLine
	if err := r.lines(ctx, userID).
		Where("cart_items.id = ?", cartItemID).
		Limit(1).
		Scan(&out).Error; err != nil {
		return repo.CartLine{}, wrap(err)
	}
	if len(out) == 0 {
		return repo.CartLine{}, repo.ErrNotFound
	}
	return out[0], nil
}

// 同じ商品+SKUの行をロックして取る
func (r *CartGormRepository) FindForUpdate(ctx context.Context, userID, productID int64, skuID *int64) (model.CartItem, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND product_id = ?", userID, productID)
	if skuID != nil {
		q = q.Where("sku_id = ?", *skuID)
	} else {
		q = q.Where("sku_id IS NULL")
	}

	var item model.CartItem
	if err := q.First(&item).Error; err != nil {
		return model.CartItem{}, notFoundOr(err)
	}
	return item, nil
}

func (r *CartGormRepository) Create(ctx context.Context, item *model.CartItem) error {
	return wrap(r.db.WithContext(ctx).Create(item).Error)
}

// 明細の数量を更新
func (r *CartGormRepository) UpdateQuantity(ctx context.Context, userID, cartItemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND user_id = ?", cartItemID, userID).
		Update("quantity", qty)

	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) DeleteByIDs(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&model.CartItem{})
	return res.RowsAffected, wrap(res.Error)
}

func (r *CartGormRepository) DeleteByProduct(ctx context.Context, userID, productID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItem{})
	return res.RowsAffected, wrap(res.Error)
}

func (r *CartGormRepository) DeleteAll(ctx context.Context, userID int64) error {
	return wrap(r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error)
}

func (r *CartGormRepository) SetSelected(ctx context.Context, userID, cartItemID int64, selected bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND user_id = ?", cartItemID, userID).
		Update("selected", selected)

	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) SetSelectedAll(ctx context.Context, userID int64, selected bool) error {
	return wrap(r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("user_id = ?", userID).
		Update("selected", selected).Error)
}
