package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

func (r *ReviewGormRepository) Create(ctx context.Context, rv *model.ProductReview) error {
	return wrap(r.db.WithContext(ctx).Create(rv).Error)
}

func (r *ReviewGormRepository) ExistsByOrderItemID(ctx context.Context, orderItemID int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&model.ProductReview{}).
		Where("order_item_id = ?", orderItemID).
		Count(&n).Error; err != nil {
		return false, wrap(err)
	}
	return n > 0, nil
}

func (r *ReviewGormRepository) ReviewedItemIDs(ctx context.Context, userID int64, orderItemIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(orderItemIDs))
	if len(orderItemIDs) == 0 {
		return out, nil
	}

	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&model.ProductReview{}).
		Where("user_id = ? AND order_item_id IN ?", userID, orderItemIDs).
		Pluck("order_item_id", &ids).Error; err != nil {
		return nil, wrap(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *ReviewGormRepository) AverageRating(ctx context.Context, productID int64) (decimal.Decimal, bool, error) {
	var row struct {
		Avg decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&model.ProductReview{}).
		Select("AVG(rating) AS avg").
		Where("product_id = ? AND status = ?", productID, model.ReviewStatusVisible).
		Scan(&row).Error; err != nil {
		return decimal.Zero, false, wrap(err)
	}
	if !row.Avg.Valid {
		return decimal.Zero, false, nil
	}
	return row.Avg.Decimal, true, nil
}
