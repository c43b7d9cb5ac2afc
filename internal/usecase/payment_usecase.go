package usecase

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logger"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentUsecase struct {
	tx     repo.TransactionManager
	ids    IDGenerator
	events EventPublisher
}

func NewPaymentUsecase(tx repo.TransactionManager, ids IDGenerator, events EventPublisher) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, ids: ids, events: events}
}

type PayOrderOutput struct {
	TransactionID     string              `json:"transaction_id"`
	PaymentMethod     model.PaymentMethod `json:"payment_method"`
	PaymentMethodText string              `json:"payment_method_text"`
	Amount            decimal.Decimal     `json:"amount"`
	Status            int                 `json:"status"`
	StatusText        string              `json:"status_text"`
}

// 模擬決済。支払い記録→注文1へ→ロック分を確定で引く、まで1トランザクション
func (u *PaymentUsecase) Pay(ctx context.Context, userID, orderID int64, method string) (PayOrderOutput, error) {
	if userID <= 0 {
		return PayOrderOutput{}, errUnauthorized
	}
	if orderID <= 0 {
		return PayOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	pm, ok := model.ParsePaymentMethod(method)
	if !ok {
		return PayOrderOutput{}, NewHTTPError(http.StatusBadRequest, "unsupported payment method")
	}

	var out PayOrderOutput
	var paid model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOwnOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusAwaitingPayment {
			return NewHTTPError(http.StatusBadRequest, "order status does not allow payment")
		}

		now := time.Now()
		p := model.Payment{
			OrderID:       o.ID,
			TransactionID: u.ids.TransactionID(),
			PaymentMethod: pm,
			Amount:        o.TotalAmount,
			Status:        model.PaymentStatusPaid,
			PayTime:       &now,
		}
		if err := r.Payments().Create(ctx, &p); err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		lines := stockLinesFromItems(items)

		//管理者が0に戻した注文はロックが外れているので取り直す
		if !o.StockLocked {
			if err := lockStockLines(ctx, r.Inventory(), lines, o.OrderNo); err != nil {
				return err
			}
		}
		if err := deductStockLines(ctx, r.Inventory(), lines, o.OrderNo); err != nil {
			return err
		}

		unlocked := false
		if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusAwaitingShipment, repo.StatusChange{
			PayTime:     &now,
			StockLocked: &unlocked,
		}); err != nil {
			return err
		}

		o.Status = model.OrderStatusAwaitingShipment
		o.PayTime = &now
		paid = o
		out = PayOrderOutput{
			TransactionID:     p.TransactionID,
			PaymentMethod:     pm,
			PaymentMethodText: pm.Text(),
			Amount:            p.Amount,
			Status:            model.PaymentStatusPaid,
			StatusText:        "paid",
		}
		return nil
	})
	if err != nil {
		return PayOrderOutput{}, txError(ctx, err)
	}

	logger.FromContext(ctx).Info("order paid",
		zap.Int64("order_id", paid.ID),
		zap.String("transaction_id", out.TransactionID),
	)
	from := model.OrderStatusAwaitingPayment
	publishOrderEvent(ctx, u.events, model.OrderEventPaid, paid, &from)
	return out, nil
}

// 自分の注文の支払い記録（新しい順）
func (u *PaymentUsecase) List(ctx context.Context, userID, orderID int64) ([]PaymentOutput, error) {
	if userID <= 0 {
		return nil, errUnauthorized
	}
	if orderID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var out []PaymentOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOrder(ctx, r, orderID, "")
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}

		list, err := r.Payments().ListByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		out = make([]PaymentOutput, 0, len(list))
		for _, p := range list {
			out = append(out, toPaymentOutput(p))
		}
		return nil
	})
	if err != nil {
		return nil, txError(ctx, err)
	}
	return out, nil
}
