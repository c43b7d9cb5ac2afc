package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type CartUsecase struct {
	tx    repo.TransactionManager
	carts repo.CartItemRepository
}

func NewCartUsecase(tx repo.TransactionManager, carts repo.CartItemRepository) *CartUsecase {
	return &CartUsecase{tx: tx, carts: carts}
}

type CartItemOutput struct {
	ID             int64            `json:"id"`
	ProductID      int64            `json:"product_id"`
	SkuID          *int64           `json:"sku_id"`
	Name           string           `json:"name"`
	CoverImage     string           `json:"cover_image"`
	Price          decimal.Decimal  `json:"price"`
	OriginalPrice  *decimal.Decimal `json:"original_price"`
	SkuAttrText    *string          `json:"sku_attr_text"`
	Quantity       int64            `json:"quantity"`
	Selected       bool             `json:"selected"`
	ProductStatus  int              `json:"product_status"`
	AvailableStock int64            `json:"available_stock"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	IsValid        bool             `json:"is_valid"`
	CreatedAt      time.Time        `json:"created_at"`
}

type CartOutput struct {
	Items         []CartItemOutput `json:"items"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	TotalQuantity int64            `json:"total_quantity"`
	ItemCount     int              `json:"item_count"`
}

type AddCartItemInput struct {
	ProductID int64  `json:"product_id"`
	SkuID     *int64 `json:"sku_id"`
	Quantity  int64  `json:"quantity"`
}

type AddCartItemOutput struct {
	Quantity int64 `json:"quantity"`
}

type DeleteCartItemsInput struct {
	IDs       []int64 `json:"ids"`
	ProductID int64   `json:"product_id"`
}

type SelectCartInput struct {
	ID        int64 `json:"id"`
	Selected  bool  `json:"selected"`
	SelectAll *bool `json:"select_all"`
}

// カート行に現在の価格/在庫を当てたもの。SKUがあればSKU優先
type pricedLine struct {
	repo.CartLine
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Cover         string
	AttrText      *string
	Available     int64
	SkuActive     bool
}

func priceLine(l repo.CartLine) pricedLine {
	p := pricedLine{CartLine: l, SkuActive: true}
	if l.SkuID == nil {
		p.Price = l.ProductPrice
		p.OriginalPrice = l.ProductOriginalPrice
		p.Cover = l.ProductCover
		p.Available = l.InvStock - l.InvLocked
		return p
	}

	attr := l.SkuAttrText
	p.AttrText = &attr
	p.Cover = l.ProductCover
	if !l.SkuFound {
		//SKUが消えている行は買えない
		p.SkuActive = false
		p.Price = l.ProductPrice
		return p
	}
	p.Price = l.SkuPrice
	p.OriginalPrice = l.SkuOriginalPrice
	if l.SkuCover != "" {
		p.Cover = l.SkuCover
	}
	p.Available = l.SkuStock - l.SkuLocked
	p.SkuActive = l.SkuStatus == model.ProductStatusOnSale
	return p
}

func (p pricedLine) productActive() bool {
	return p.ProductStatus == model.ProductStatusOnSale
}

func (p pricedLine) valid() bool {
	return p.productActive() && p.SkuActive && p.Available >= p.Quantity
}

func (p pricedLine) subtotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(p.Quantity))
}

// 一覧（合計は有効かつ選択中の行だけ）
func (u *CartUsecase) List(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, errUnauthorized
	}

	lines, err := u.carts.ListLines(ctx, userID, nil)
	if err != nil {
		return CartOutput{}, dbError(ctx, err)
	}

	out := CartOutput{Items: make([]CartItemOutput, 0, len(lines)), TotalAmount: decimal.Zero}
	for _, l := range lines {
		p := priceLine(l)
		item := CartItemOutput{
			ID:             l.ID,
			ProductID:      l.ProductID,
			SkuID:          l.SkuID,
			Name:           l.ProductName,
			CoverImage:     p.Cover,
			Price:          p.Price,
			OriginalPrice:  p.OriginalPrice,
			SkuAttrText:    p.AttrText,
			Quantity:       l.Quantity,
			Selected:       l.Selected,
			ProductStatus:  l.ProductStatus,
			AvailableStock: p.Available,
			Subtotal:       p.subtotal(),
			IsValid:        p.valid(),
			CreatedAt:      l.CreatedAt,
		}
		out.Items = append(out.Items, item)

		if item.IsValid && item.Selected {
			out.TotalAmount = out.TotalAmount.Add(item.Subtotal)
			out.TotalQuantity += item.Quantity
		}
	}
	out.TotalAmount = out.TotalAmount.Round(2)
	out.ItemCount = len(out.Items)
	return out, nil
}

// 同じ(商品, SKU)があれば数量を足す。判定から書き込みまで1トランザクション
func (u *CartUsecase) Add(ctx context.Context, userID int64, in AddCartItemInput) (AddCartItemOutput, error) {
	if userID <= 0 {
		return AddCartItemOutput{}, errUnauthorized
	}
	if in.ProductID <= 0 {
		return AddCartItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity <= 0 {
		return AddCartItemOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be greater than 0")
	}
	if in.SkuID != nil && *in.SkuID <= 0 {
		in.SkuID = nil
	}

	var out AddCartItemOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		available, err := availableFor(ctx, r, in.ProductID, in.SkuID)
		if err != nil {
			return err
		}

		existing, err := r.CartItems().FindForUpdate(ctx, userID, in.ProductID, in.SkuID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		found := err == nil

		newQty := in.Quantity
		if found {
			newQty += existing.Quantity
		}
		if newQty > available {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("insufficient stock, available: %d", available))
		}

		if found {
			if err := r.CartItems().UpdateQuantity(ctx, userID, existing.ID, newQty); err != nil {
				return err
			}
		} else {
			if err := r.CartItems().Create(ctx, &model.CartItem{
				UserID:    userID,
				ProductID: in.ProductID,
				SkuID:     in.SkuID,
				Quantity:  newQty,
				Selected:  true,
			}); err != nil {
				return err
			}
		}
		out.Quantity = newQty
		return nil
	})
	if err != nil {
		return AddCartItemOutput{}, txError(ctx, err)
	}
	return out, nil
}

// 商品/SKUの状態を確認して購入可能数を返す
func availableFor(ctx context.Context, r repo.TxRepos, productID int64, skuID *int64) (int64, error) {
	p, err := r.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return 0, err
	}
	if !p.IsOnSale() {
		return 0, NewHTTPError(http.StatusBadRequest, "product is off shelf")
	}

	if skuID != nil {
		sku, err := r.Products().FindSKU(ctx, *skuID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && sku.ProductID != productID) {
			return 0, NewHTTPError(http.StatusNotFound, "sku not found")
		}
		if err != nil {
			return 0, err
		}
		if !sku.IsOnSale() {
			return 0, NewHTTPError(http.StatusBadRequest, "sku is off shelf")
		}
		return sku.Available(), nil
	}

	inv, err := r.Inventory().FindByProductID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		//在庫行が無い商品は0扱い
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return inv.Available(), nil
}

// 数量変更（在庫を超えるなら400）
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID, cartItemID, quantity int64) error {
	if userID <= 0 {
		return errUnauthorized
	}
	if cartItemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid cart item id")
	}
	if quantity <= 0 {
		return NewHTTPError(http.StatusBadRequest, "quantity must be greater than 0")
	}

	line, err := u.carts.FindLineByID(ctx, userID, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "cart item not found")
	}
	if err != nil {
		return dbError(ctx, err)
	}

	p := priceLine(line)
	if quantity > p.Available {
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("insufficient stock, available: %d", p.Available))
	}

	if err := u.carts.UpdateQuantity(ctx, userID, cartItemID, quantity); err != nil {
		return dbError(ctx, err)
	}
	return nil
}

// id指定か商品指定で削除
func (u *CartUsecase) Delete(ctx context.Context, userID int64, in DeleteCartItemsInput) error {
	if userID <= 0 {
		return errUnauthorized
	}

	var err error
	switch {
	case len(in.IDs) > 0:
		_, err = u.carts.DeleteByIDs(ctx, userID, in.IDs)
	case in.ProductID > 0:
		_, err = u.carts.DeleteByProduct(ctx, userID, in.ProductID)
	default:
		return NewHTTPError(http.StatusBadRequest, "ids or product_id is required")
	}
	if err != nil {
		return dbError(ctx, err)
	}
	return nil
}

func (u *CartUsecase) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return errUnauthorized
	}
	if err := u.carts.DeleteAll(ctx, userID); err != nil {
		return dbError(ctx, err)
	}
	return nil
}

// select_allがあれば全件、無ければidの1件
func (u *CartUsecase) Select(ctx context.Context, userID int64, in SelectCartInput) error {
	if userID <= 0 {
		return errUnauthorized
	}

	if in.SelectAll != nil {
		if err := u.carts.SetSelectedAll(ctx, userID, *in.SelectAll); err != nil {
			return dbError(ctx, err)
		}
		return nil
	}

	if in.ID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "id or select_all is required")
	}
	err := u.carts.SetSelected(ctx, userID, in.ID, in.Selected)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "cart item not found")
	}
	if err != nil {
		return dbError(ctx, err)
	}
	return nil
}
