package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logger"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	events EventPublisher
}

func NewAdminOrderUsecase(tx repo.TransactionManager, events EventPublisher) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, events: events}
}

type AdminListOrdersInput struct {
	Status   *model.OrderStatus
	Keyword  string
	UserID   *int64
	Page     int
	PageSize int
}

type AdminOrderListItem struct {
	OrderOutput
	ItemCount int64 `json:"item_count"`
}

type AdminOrderListOutput struct {
	List         []AdminOrderListItem        `json:"list"`
	Pagination   Pagination                  `json:"pagination"`
	StatusCounts map[model.OrderStatus]int64 `json:"status_counts"`
}

type AdminUpdateOrderStatusOutput struct {
	Status     model.OrderStatus `json:"status"`
	StatusText string            `json:"status_text"`
}

// 注文一覧（全ユーザー）。status別件数も返す
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminListOrdersInput) (AdminOrderListOutput, error) {
	if in.Status != nil && !in.Status.Valid() {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	keyword := strings.TrimSpace(in.Keyword)
	if len(keyword) > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "keyword is too long")
	}
	page, size, offset := normalizePage(in.Page, in.PageSize, 20, 100)

	var out AdminOrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, repo.AdminOrderListFilter{
			Status:  in.Status,
			Keyword: keyword,
			UserID:  in.UserID,
			Limit:   size,
			Offset:  offset,
		})
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		counts, err := r.OrderItems().CountByOrderIDs(ctx, ids)
		if err != nil {
			return err
		}

		out.List = make([]AdminOrderListItem, 0, len(orders))
		for _, o := range orders {
			out.List = append(out.List, AdminOrderListItem{
				OrderOutput: toOrderOutput(o, nil),
				ItemCount:   counts[o.ID],
			})
		}
		out.Pagination = newPagination(page, size, total)

		out.StatusCounts, err = r.Orders().CountByStatus(ctx)
		return err
	})
	if err != nil {
		return AdminOrderListOutput{}, txError(ctx, err)
	}
	return out, nil
}

// 所有者チェックなしの詳細
func (u *AdminOrderUsecase) Detail(ctx context.Context, orderID int64, orderNo string) (OrderOutput, error) {
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
		//レビュー済みは注文者基準
		out, err = loadOrderDetail(ctx, r, o, o.UserID)
		return err
	})
	if err != nil {
		return OrderOutput{}, txError(ctx, err)
	}
	return out, nil
}

func lockOrderForAdmin(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
	if isRepoNotFound(err) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	return o, err
}

// 発送 1→2
func (u *AdminOrderUsecase) Ship(ctx context.Context, adminID, orderID int64) error {
	if adminID <= 0 {
		return errUnauthorized
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var shipped model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOrderForAdmin(ctx, r, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusAwaitingShipment {
			return NewHTTPError(http.StatusBadRequest, "only orders awaiting shipment can be shipped")
		}

		now := time.Now()
		if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusAwaitingReceipt, repo.StatusChange{ShipTime: &now}); err != nil {
			return err
		}

		if err := r.AuditLogs().Create(ctx, statusAudit(adminID, model.AuditActionShipOrder, o.ID, o.Status, model.OrderStatusAwaitingReceipt)); err != nil {
			return err
		}

		o.Status = model.OrderStatusAwaitingReceipt
		o.ShipTime = &now
		shipped = o
		return nil
	})
	if err != nil {
		return txError(ctx, err)
	}

	from := model.OrderStatusAwaitingShipment
	publishOrderEvent(ctx, u.events, model.OrderEventShipped, shipped, &from)
	return nil
}

// 強制変更。4/5に入るときだけロックを戻す（stock_lockedで二重解除しない）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, adminID, orderID int64, status model.OrderStatus) (AdminUpdateOrderStatusOutput, error) {
	if adminID <= 0 {
		return AdminUpdateOrderStatusOutput{}, errUnauthorized
	}
	if orderID <= 0 {
		return AdminUpdateOrderStatusOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	if !status.Valid() {
		return AdminUpdateOrderStatusOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order status")
	}

	var updated model.Order
	var from model.OrderStatus
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOrderForAdmin(ctx, r, orderID)
		if err != nil {
			return err
		}
		from = o.Status

		if status.IsReleased() && !o.Status.IsReleased() {
			updated, err = cancelLocked(ctx, r, o, status, reasonAdminRelease)
			if err != nil {
				return err
			}
		} else {
			if err := r.Orders().UpdateStatus(ctx, o.ID, status, repo.StatusChange{}); err != nil {
				return err
			}
			o.Status = status
			updated = o
		}

		return r.AuditLogs().Create(ctx, statusAudit(adminID, model.AuditActionUpdateOrderStatus, o.ID, from, status))
	})
	if err != nil {
		return AdminUpdateOrderStatusOutput{}, txError(ctx, err)
	}

	logger.FromContext(ctx).Info("order status changed by admin",
		zap.Int64("order_id", orderID),
		zap.Int("from", int(from)),
		zap.Int("to", int(status)),
	)
	if from != status {
		publishOrderEvent(ctx, u.events, model.OrderEventStatusChanged, updated, &from)
	}
	return AdminUpdateOrderStatusOutput{Status: status, StatusText: status.Text()}, nil
}

func statusAudit(adminID int64, action model.AuditAction, orderID int64, before, after model.OrderStatus) model.AuditLog {
	b, _ := json.Marshal(map[string]interface{}{"status": before, "status_text": before.Text()})
	a, _ := json.Marshal(map[string]interface{}{"status": after, "status_text": after.Text()})
	return model.AuditLog{
		ActorUserID:  adminID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   string(b),
		AfterJSON:    string(a),
		CreatedAt:    time.Now(),
	}
}
