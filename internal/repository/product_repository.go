package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 商品・SKUの参照（カタログのCRUDはここでは持たない）
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindSKU(ctx context.Context, skuID int64) (model.ProductSKU, error)

	//受取確認で販売数を加算
	IncrementSalesCount(ctx context.Context, productID int64, qty int64) error
	//レビュー平均で評価を更新
	UpdateRating(ctx context.Context, productID int64, rating decimal.Decimal) error
}
