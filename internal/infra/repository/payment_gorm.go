package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p *model.Payment) error {
	return wrap(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PaymentGormRepository) LatestByOrderID(ctx context.Context, orderID int64) (model.Payment, bool, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id DESC").
		First(&p).Error

	if isNotFound(err) {
		return model.Payment{}, false, nil
	}
	if err != nil {
		return model.Payment{}, false, wrap(err)
	}
	return p, true, nil
}

func (r *PaymentGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.Payment, error) {
	var list []model.Payment
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id DESC").Find(&list).Error; err != nil {
		return []model.Payment{}, wrap(err)
	}
	return list, nil
}

func (r *PaymentGormRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return wrap(r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.Payment{}).Error)
}
