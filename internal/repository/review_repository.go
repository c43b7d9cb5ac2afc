package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

type ReviewRepository interface {
	Create(ctx context.Context, r *model.ProductReview) error
	ExistsByOrderItemID(ctx context.Context, orderItemID int64) (bool, error)
	//レビュー済みの明細ID
	ReviewedItemIDs(ctx context.Context, userID int64, orderItemIDs []int64) (map[int64]bool, error)
	//表示中レビューの平均（無ければok=false）
	AverageRating(ctx context.Context, productID int64) (avg decimal.Decimal, ok bool, err error)
}
