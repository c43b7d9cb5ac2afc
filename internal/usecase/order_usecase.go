package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logger"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// 注文番号・取引IDの払い出し
type IDGenerator interface {
	OrderNo() string
	TransactionID() string
}

type OrderUsecase struct {
	tx     repo.TransactionManager
	ids    IDGenerator
	events EventPublisher
}

func NewOrderUsecase(tx repo.TransactionManager, ids IDGenerator, events EventPublisher) *OrderUsecase {
	return &OrderUsecase{tx: tx, ids: ids, events: events}
}

type CreateFromCartInput struct {
	AddressID      int64   `json:"address_id"`
	CartIDs        []int64 `json:"cart_ids"`
	Remark         string  `json:"remark"`
	IdempotencyKey string  `json:"-"`
}

type CreateDirectInput struct {
	ProductID      int64  `json:"product_id"`
	SkuID          *int64 `json:"sku_id"`
	Quantity       int64  `json:"quantity"`
	AddressID      int64  `json:"address_id"`
	Remark         string `json:"remark"`
	IdempotencyKey string `json:"-"`
}

type CreateOrderOutput struct {
	OrderID     int64           `json:"order_id"`
	OrderNo     string          `json:"order_no"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	//同じキーで既存注文を返したとき
	Replayed bool `json:"-"`
}

type ListOrdersInput struct {
	Status   *model.OrderStatus
	Page     int
	PageSize int
}

// 作成前の明細（スナップショット＋在庫の場所）
type orderDraft struct {
	items   []model.OrderItem
	cartIDs []int64
}

func (d orderDraft) total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range d.items {
		total = total.Add(it.Subtotal())
	}
	return total.Round(2)
}

func validateOrderCommon(userID, addressID int64, remark, key string) error {
	if userID <= 0 {
		return errUnauthorized
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "address_id is required")
	}
	if len(remark) > 500 {
		return NewHTTPError(http.StatusBadRequest, "remark is too long")
	}
	if len(key) > 255 {
		return NewHTTPError(http.StatusBadRequest, "invalid idempotency key")
	}
	return nil
}

// カートから注文（cart_ids未指定ならカート全件）
func (u *OrderUsecase) CreateFromCart(ctx context.Context, userID int64, in CreateFromCartInput) (CreateOrderOutput, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	remark := strings.TrimSpace(in.Remark)
	if err := validateOrderCommon(userID, in.AddressID, remark, key); err != nil {
		return CreateOrderOutput{}, err
	}

	return u.create(ctx, userID, in.AddressID, remark, key, func(r repo.TxRepos) (orderDraft, error) {
		lines, err := r.CartItems().ListLines(ctx, userID, in.CartIDs)
		if err != nil {
			return orderDraft{}, err
		}
		if len(lines) == 0 {
			return orderDraft{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		var d orderDraft
		for _, l := range lines {
			p := priceLine(l)
			if !p.productActive() {
				return orderDraft{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("product %q is off shelf", l.ProductName))
			}
			if !p.SkuActive {
				return orderDraft{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("product %q sku is off shelf", l.ProductName))
			}
			if l.Quantity > p.Available {
				return orderDraft{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("product %q is out of stock", l.ProductName))
			}

			attr := ""
			if p.AttrText != nil {
				attr = *p.AttrText
			}
			d.items = append(d.items, model.OrderItem{
				ProductID:    l.ProductID,
				SkuID:        l.SkuID,
				ProductName:  l.ProductName,
				ProductImage: p.Cover,
				Price:        p.Price,
				Quantity:     l.Quantity,
				SkuAttrText:  attr,
			})
			d.cartIDs = append(d.cartIDs, l.ID)
		}
		return d, nil
	})
}

// 今すぐ購入（カートを通さない）
func (u *OrderUsecase) CreateDirect(ctx context.Context, userID int64, in CreateDirectInput) (CreateOrderOutput, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	remark := strings.TrimSpace(in.Remark)
	if in.ProductID <= 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity <= 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be greater than 0")
	}
	if err := validateOrderCommon(userID, in.AddressID, remark, key); err != nil {
		return CreateOrderOutput{}, err
	}
	if in.SkuID != nil && *in.SkuID <= 0 {
		in.SkuID = nil
	}

	return u.create(ctx, userID, in.AddressID, remark, key, func(r repo.TxRepos) (orderDraft, error) {
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return orderDraft{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return orderDraft{}, err
		}
		if !p.IsOnSale() {
			return orderDraft{}, NewHTTPError(http.StatusBadRequest, "product is off shelf")
		}

		item := model.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductImage: p.CoverImage,
			Price:        p.Price,
			Quantity:     in.Quantity,
		}

		var available int64
		if in.SkuID != nil {
			sku, err := r.Products().FindSKU(ctx, *in.SkuID)
			if errors.Is(err, repo.ErrNotFound) || (err == nil && sku.ProductID != p.ID) {
				return orderDraft{}, NewHTTPError(http.StatusNotFound, "sku not found")
			}
			if err != nil {
				return orderDraft{}, err
			}
			if !sku.IsOnSale() {
				return orderDraft{}, NewHTTPError(http.StatusBadRequest, "sku is off shelf")
			}
			item.SkuID = &sku.ID
			item.Price = sku.Price
			item.SkuAttrText = sku.AttrText
			if sku.CoverImage != "" {
				item.ProductImage = sku.CoverImage
			}
			available = sku.Available()
		} else {
			inv, err := r.Inventory().FindByProductID(ctx, p.ID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return orderDraft{}, err
			}
			available = inv.Available()
		}

		if in.Quantity > available {
			return orderDraft{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("insufficient stock, available: %d", available))
		}
		return orderDraft{items: []model.OrderItem{item}}, nil
	})
}

// 作成の共通部分。住所確認→明細→注文→明細保存→在庫ロック→カート削除 を1トランザクションで
func (u *OrderUsecase) create(
	ctx context.Context,
	userID, addressID int64,
	remark, key string,
	build func(r repo.TxRepos) (orderDraft, error),
) (CreateOrderOutput, error) {
	var out CreateOrderOutput
	var created model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return err
			}
			if found {
				out = CreateOrderOutput{
					OrderID:     existing.ID,
					OrderNo:     existing.OrderNo,
					TotalAmount: existing.TotalAmount,
					Replayed:    true,
				}
				return nil
			}
		}

		addr, err := r.Addresses().FindByIDForUser(ctx, addressID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "address not found")
		}
		if err != nil {
			return err
		}

		draft, err := build(r)
		if err != nil {
			return err
		}

		snap, err := json.Marshal(addr.Snapshot())
		if err != nil {
			return err
		}

		order := model.Order{
			OrderNo:     u.ids.OrderNo(),
			UserID:      userID,
			TotalAmount: draft.total(),
			Status:      model.OrderStatusAwaitingPayment,
			SnapAddress: datatypes.JSON(snap),
			StockLocked: true,
		}
		if remark != "" {
			order.Remark = &remark
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return err
		}

		if err := r.OrderItems().CreateBulk(ctx, order.ID, draft.items); err != nil {
			return err
		}

		if err := lockStockLines(ctx, r.Inventory(), stockLinesFromItems(draft.items), order.OrderNo); err != nil {
			return err
		}

		if len(draft.cartIDs) > 0 {
			if _, err := r.CartItems().DeleteByIDs(ctx, userID, draft.cartIDs); err != nil {
				return err
			}
		}

		created = order
		out = CreateOrderOutput{OrderID: order.ID, OrderNo: order.OrderNo, TotalAmount: order.TotalAmount}
		return nil
	})
	if err != nil {
		return CreateOrderOutput{}, txError(ctx, err)
	}

	if !out.Replayed {
		logger.FromContext(ctx).Info("order created",
			zap.Int64("order_id", created.ID),
			zap.String("order_no", created.OrderNo),
			zap.String("total_amount", created.TotalAmount.StringFixed(2)),
		)
		publishOrderEvent(ctx, u.events, model.OrderEventCreated, created, nil)
	}
	return out, nil
}

// 自分の注文一覧（新しい順）
func (u *OrderUsecase) List(ctx context.Context, userID int64, in ListOrdersInput) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, errUnauthorized
	}
	if in.Status != nil && !in.Status.Valid() {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	page, size, offset := normalizePage(in.Page, in.PageSize, 10, 50)

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUser(ctx, repo.UserOrderListFilter{
			UserID: userID,
			Status: in.Status,
			Limit:  size,
			Offset: offset,
		})
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		itemsByOrder, err := r.OrderItems().ListByOrderIDs(ctx, ids)
		if err != nil {
			return err
		}

		out.List = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			out.List = append(out.List, toOrderOutput(o, itemsByOrder[o.ID]))
		}
		out.Pagination = newPagination(page, size, total)
		return nil
	})
	if err != nil {
		return OrderListOutput{}, txError(ctx, err)
	}
	return out, nil
}

// idかorder_noで。他人の注文は404
func (u *OrderUsecase) Detail(ctx context.Context, userID int64, orderID int64, orderNo string) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, errUnauthorized
	}
	orderNo = strings.TrimSpace(orderNo)
	if orderID <= 0 && orderNo == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "id or order_no is required")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID, orderNo)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}

		out, err = loadOrderDetail(ctx, r, o, userID)
		return err
	})
	if err != nil {
		return OrderOutput{}, txError(ctx, err)
	}
	return out, nil
}

func findOrder(ctx context.Context, r repo.TxRepos, orderID int64, orderNo string) (model.Order, error) {
	var o model.Order
	var err error
	if orderID > 0 {
		o, err = r.Orders().FindByID(ctx, orderID)
	} else {
		o, err = r.Orders().FindByOrderNo(ctx, orderNo)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	return o, err
}

// 明細（レビュー済みフラグ付き）と最新の支払いを載せる
func loadOrderDetail(ctx context.Context, r repo.TxRepos, o model.Order, reviewerID int64) (OrderOutput, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, err
	}
	out := toOrderOutput(o, items)

	itemIDs := make([]int64, 0, len(items))
	for _, it := range items {
		itemIDs = append(itemIDs, it.ID)
	}
	reviewed, err := r.Reviews().ReviewedItemIDs(ctx, reviewerID, itemIDs)
	if err != nil {
		return OrderOutput{}, err
	}
	for i := range out.Items {
		v := reviewed[out.Items[i].ID]
		out.Items[i].IsReviewed = &v
	}

	p, found, err := r.Payments().LatestByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, err
	}
	if found {
		po := toPaymentOutput(p)
		out.Payment = &po
	}
	return out, nil
}

// 本人の注文を行ロックして取る
func lockOwnOrder(ctx context.Context, r repo.TxRepos, userID, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, err
	}
	if o.UserID != userID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	return o, nil
}

// 未払い(0)のときだけ取消。ロックを戻す
func (u *OrderUsecase) Cancel(ctx context.Context, userID, orderID int64) error {
	if userID <= 0 {
		return errUnauthorized
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var updated model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOwnOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusAwaitingPayment {
			return NewHTTPError(http.StatusBadRequest, "only orders awaiting payment can be cancelled")
		}
		updated, err = cancelLocked(ctx, r, o, model.OrderStatusCancelled, reasonOrderRelease)
		return err
	})
	if err != nil {
		return txError(ctx, err)
	}

	from := model.OrderStatusAwaitingPayment
	publishOrderEvent(ctx, u.events, model.OrderEventCancelled, updated, &from)
	return nil
}

// 行ロック済みの注文をstatusにして、ロック中ならlocked_stockを戻す
func cancelLocked(ctx context.Context, r repo.TxRepos, o model.Order, status model.OrderStatus, reason string) (model.Order, error) {
	change := repo.StatusChange{}
	if o.StockLocked {
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return model.Order{}, err
		}
		if err := releaseStockLines(ctx, r.Inventory(), stockLinesFromItems(items), o.OrderNo, reason); err != nil {
			return model.Order{}, err
		}
		unlocked := false
		change.StockLocked = &unlocked
		o.StockLocked = false
	}

	if err := r.Orders().UpdateStatus(ctx, o.ID, status, change); err != nil {
		return model.Order{}, err
	}
	o.Status = status
	return o, nil
}

// 受取確認 2→3。販売数を加算
func (u *OrderUsecase) Confirm(ctx context.Context, userID, orderID int64) error {
	if userID <= 0 {
		return errUnauthorized
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var updated model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOwnOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusAwaitingReceipt {
			return NewHTTPError(http.StatusBadRequest, "only orders awaiting receipt can be confirmed")
		}

		now := time.Now()
		if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusCompleted, repo.StatusChange{CompleteTime: &now}); err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := r.Products().IncrementSalesCount(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		o.Status = model.OrderStatusCompleted
		o.CompleteTime = &now
		updated = o
		return nil
	})
	if err != nil {
		return txError(ctx, err)
	}

	from := model.OrderStatusAwaitingReceipt
	publishOrderEvent(ctx, u.events, model.OrderEventCompleted, updated, &from)
	return nil
}

// 終端(3/4/5)の注文だけ削除。明細→支払い→注文の順
func (u *OrderUsecase) Delete(ctx context.Context, userID, orderID int64) error {
	if userID <= 0 {
		return errUnauthorized
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOwnOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
		}
		if !o.Status.IsTerminal() {
			return NewHTTPError(http.StatusBadRequest, "only completed, cancelled or refunded orders can be deleted")
		}

		if err := r.OrderItems().DeleteByOrderID(ctx, o.ID); err != nil {
			return err
		}
		if err := r.Payments().DeleteByOrderID(ctx, o.ID); err != nil {
			return err
		}
		return r.Orders().Delete(ctx, o.ID)
	})
	return txError(ctx, err)
}

// 支払期限切れの自動取消（worker用）。もう0でなければ何もしない
func (u *OrderUsecase) ExpireUnpaid(ctx context.Context, orderID int64) (bool, error) {
	var updated model.Order
	expired := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusAwaitingPayment {
			return nil
		}
		updated, err = cancelLocked(ctx, r, o, model.OrderStatusCancelled, reasonUnpaidExpire)
		if err != nil {
			return err
		}
		expired = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if expired {
		from := model.OrderStatusAwaitingPayment
		publishOrderEvent(ctx, u.events, model.OrderEventCancelled, updated, &from)
	}
	return expired, nil
}

// 期限切れ候補（worker用）
func (u *OrderUsecase) ListExpired(ctx context.Context, timeout time.Duration, limit int) ([]int64, error) {
	var ids []int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListUnpaidBefore(ctx, time.Now().Add(-timeout), limit)
		if err != nil {
			return err
		}
		ids = make([]int64, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		return nil
	})
	return ids, err
}
