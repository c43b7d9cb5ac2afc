package usecase

import (
	"encoding/json"
	"time"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

type OrderItemOutput struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	SkuID        *int64          `json:"sku_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	SkuAttrText  string          `json:"sku_attr_text"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	//詳細のときだけ
	IsReviewed *bool `json:"is_reviewed,omitempty"`
}

type PaymentOutput struct {
	ID                int64               `json:"id"`
	TransactionID     string              `json:"transaction_id"`
	PaymentMethod     model.PaymentMethod `json:"payment_method"`
	PaymentMethodText string              `json:"payment_method_text"`
	Amount            decimal.Decimal     `json:"amount"`
	Status            int                 `json:"status"`
	PayTime           *time.Time          `json:"pay_time"`
}

type OrderOutput struct {
	ID           int64                  `json:"id"`
	OrderNo      string                 `json:"order_no"`
	UserID       int64                  `json:"user_id"`
	TotalAmount  decimal.Decimal        `json:"total_amount"`
	Status       model.OrderStatus      `json:"status"`
	StatusText   string                 `json:"status_text"`
	SnapAddress  *model.AddressSnapshot `json:"snap_address"`
	Remark       *string                `json:"remark"`
	PayTime      *time.Time             `json:"pay_time"`
	ShipTime     *time.Time             `json:"ship_time"`
	CompleteTime *time.Time             `json:"complete_time"`
	CreatedAt    time.Time              `json:"created_at"`
	Items        []OrderItemOutput      `json:"items"`
	ItemsCount   int                    `json:"items_count"`
	Payment      *PaymentOutput         `json:"payment,omitempty"`
}

type OrderListOutput struct {
	List       []OrderOutput `json:"list"`
	Pagination Pagination    `json:"pagination"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	out := OrderOutput{
		ID:           o.ID,
		OrderNo:      o.OrderNo,
		UserID:       o.UserID,
		TotalAmount:  o.TotalAmount,
		Status:       o.Status,
		StatusText:   o.Status.Text(),
		SnapAddress:  decodeSnapshot(o.SnapAddress),
		Remark:       o.Remark,
		PayTime:      o.PayTime,
		ShipTime:     o.ShipTime,
		CompleteTime: o.CompleteTime,
		CreatedAt:    o.CreatedAt,
		Items:        make([]OrderItemOutput, 0, len(items)),
	}
	for _, it := range items {
		out.Items = append(out.Items, toOrderItemOutput(it))
	}
	out.ItemsCount = len(out.Items)
	return out
}

func toOrderItemOutput(it model.OrderItem) OrderItemOutput {
	return OrderItemOutput{
		ID:           it.ID,
		ProductID:    it.ProductID,
		SkuID:        it.SkuID,
		ProductName:  it.ProductName,
		ProductImage: it.ProductImage,
		Price:        it.Price,
		Quantity:     it.Quantity,
		SkuAttrText:  it.SkuAttrText,
		Subtotal:     it.Subtotal(),
	}
}

func toPaymentOutput(p model.Payment) PaymentOutput {
	return PaymentOutput{
		ID:                p.ID,
		TransactionID:     p.TransactionID,
		PaymentMethod:     p.PaymentMethod,
		PaymentMethodText: p.PaymentMethod.Text(),
		Amount:            p.Amount,
		Status:            p.Status,
		PayTime:           p.PayTime,
	}
}

// 壊れたJSONはnull扱い
func decodeSnapshot(raw []byte) *model.AddressSnapshot {
	if len(raw) == 0 {
		return nil
	}
	var s model.AddressSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}
