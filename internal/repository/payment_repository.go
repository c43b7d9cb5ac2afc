package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	LatestByOrderID(ctx context.Context, orderID int64) (model.Payment, bool, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.Payment, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
