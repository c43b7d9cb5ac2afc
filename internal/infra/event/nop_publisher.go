package event

import (
	"context"

	"storefront/internal/domain/model"

	"go.uber.org/zap"
)

// Redis未設定のとき用。debugログだけ出して捨てる
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, ev model.OrderEvent) error {
	zap.L().Debug("order event dropped",
		zap.String("type", string(ev.Type)),
		zap.Int64("order_id", ev.OrderID),
	)
	return nil
}

func (NopPublisher) Close() error { return nil }
