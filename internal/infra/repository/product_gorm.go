package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return model.Product{}, notFoundOr(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindSKU(ctx context.Context, skuID int64) (model.ProductSKU, error) {
	var s model.ProductSKU
	if err := r.db.WithContext(ctx).Where("id = ?", skuID).First(&s).Error; err != nil {
		return model.ProductSKU{}, notFoundOr(err)
	}
	return s, nil
}

func (r *ProductGormRepository) IncrementSalesCount(ctx context.Context, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("sales_count", gorm.Expr("sales_count + ?", qty))

	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) UpdateRating(ctx context.Context, productID int64, rating decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("rating", rating)

	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
