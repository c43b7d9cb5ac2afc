package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

// 注文イベントの送り先（Redis Pub/Subなど）
type EventPublisher interface {
	Publish(ctx context.Context, ev model.OrderEvent) error
}

// commit後に呼ぶ。失敗してもログだけ
func publishOrderEvent(ctx context.Context, pub EventPublisher, typ model.OrderEventType, o model.Order, from *model.OrderStatus) {
	if pub == nil {
		return
	}
	ev := model.OrderEvent{
		Type:       typ,
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		FromStatus: from,
		ToStatus:   o.Status,
		OccurredAt: time.Now(),
	}
	if err := pub.Publish(ctx, ev); err != nil {
		logger.FromContext(ctx).Warn("publish order event failed",
			zap.String("type", string(typ)),
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}
}
