package model

import "time"

type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventCancelled     OrderEventType = "order.cancelled"
	OrderEventPaid          OrderEventType = "order.paid"
	OrderEventShipped       OrderEventType = "order.shipped"
	OrderEventCompleted     OrderEventType = "order.completed"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
)

// commit後に外へ流す通知。届かなくても注文側は巻き戻さない
type OrderEvent struct {
	Type       OrderEventType `json:"type"`
	OrderID    int64          `json:"order_id"`
	OrderNo    string         `json:"order_no"`
	UserID     int64          `json:"user_id"`
	FromStatus *OrderStatus   `json:"from_status,omitempty"`
	ToStatus   OrderStatus    `json:"to_status"`
	OccurredAt time.Time      `json:"occurred_at"`
}
