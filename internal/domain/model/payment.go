package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod int

const (
	PaymentMethodAlipay  PaymentMethod = 1
	PaymentMethodWechat  PaymentMethod = 2
	PaymentMethodBalance PaymentMethod = 3
)

var paymentMethodText = map[PaymentMethod]string{
	PaymentMethodAlipay:  "Alipay",
	PaymentMethodWechat:  "WeChat Pay",
	PaymentMethodBalance: "Balance",
}

func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethodText[m]
	return ok
}

func (m PaymentMethod) Text() string {
	if t, ok := paymentMethodText[m]; ok {
		return t
	}
	return "unknown"
}

var paymentMethodTokens = map[string]PaymentMethod{
	"alipay":  PaymentMethodAlipay,
	"wechat":  PaymentMethodWechat,
	"balance": PaymentMethodBalance,
}

// "alipay" などのトークンか "1" などの数値。空ならalipay
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PaymentMethodAlipay, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		m := PaymentMethod(n)
		return m, m.Valid()
	}
	m, ok := paymentMethodTokens[s]
	return m, ok
}

const PaymentStatusPaid = 1

// 支払い記録（模擬決済なので常に成功）
type Payment struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64           `gorm:"not null;index" json:"order_id"`
	TransactionID string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"transaction_id"`
	PaymentMethod PaymentMethod   `gorm:"not null" json:"payment_method"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        int             `gorm:"not null;default:1" json:"status"`
	PayTime       *time.Time      `json:"pay_time"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
