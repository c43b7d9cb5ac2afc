package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// カート明細に現在の商品/SKU/在庫をJOINした読み取りモデル
type CartLine struct {
	model.CartItem

	ProductName          string
	ProductCover         string
	ProductPrice         decimal.Decimal
	ProductOriginalPrice *decimal.Decimal
	ProductStatus        int
	InvStock             int64
	InvLocked            int64

	//sku_idが無い/SKUが消えた場合はSkuFound=false
	SkuFound         bool
	SkuAttrText      string
	SkuPrice         decimal.Decimal
	SkuOriginalPrice *decimal.Decimal
	SkuCover         string
	SkuStock         int64
	SkuLocked        int64
	SkuStatus        int
}

type CartItemRepository interface {
	//ids が空なら全件
	ListLines(ctx context.Context, userID int64, ids []int64) ([]CartLine, error)

	//同じ(product, sku)の行をFOR UPDATEで取る
	FindForUpdate(ctx context.Context, userID, productID int64, skuID *int64) (model.CartItem, error)
	FindLineByID(ctx context.Context, userID, cartItemID int64) (CartLine, error)

	Create(ctx context.Context, item *model.CartItem) error
	UpdateQuantity(ctx context.Context, userID, cartItemID int64, qty int64) error

	DeleteByIDs(ctx context.Context, userID int64, ids []int64) (int64, error)
	DeleteByProduct(ctx context.Context, userID, productID int64) (int64, error)
	DeleteAll(ctx context.Context, userID int64) error

	SetSelected(ctx context.Context, userID, cartItemID int64, selected bool) error
	SetSelectedAll(ctx context.Context, userID int64, selected bool) error
}
