package worker

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// OrderUsecaseの一部
type OrderExpirer interface {
	ListExpired(ctx context.Context, timeout time.Duration, limit int) ([]int64, error)
	ExpireUnpaid(ctx context.Context, orderID int64) (bool, error)
}

type OrderExpiryConfig struct {
	Timeout  time.Duration
	Interval time.Duration
	Batch    int
}

// 未払いのまま timeout を過ぎた注文を取消して在庫を戻す
type OrderExpiry struct {
	orders OrderExpirer
	cfg    OrderExpiryConfig

	running *atomic.Bool
	scans   *atomic.Int64
	expired *atomic.Int64
	failed  *atomic.Int64
}

func NewOrderExpiry(orders OrderExpirer, cfg OrderExpiryConfig) *OrderExpiry {
	return &OrderExpiry{
		orders:  orders,
		cfg:     cfg,
		running: atomic.NewBool(false),
		scans:   atomic.NewInt64(0),
		expired: atomic.NewInt64(0),
		failed:  atomic.NewInt64(0),
	}
}

type OrderExpiryStats struct {
	Scans   int64 `json:"scans"`
	Expired int64 `json:"expired"`
	Failed  int64 `json:"failed"`
}

func (w *OrderExpiry) Stats() OrderExpiryStats {
	return OrderExpiryStats{
		Scans:   w.scans.Load(),
		Expired: w.expired.Load(),
		Failed:  w.failed.Load(),
	}
}

// Runはctxがキャンセルされるまでブロックする。二重起動は無視
func (w *OrderExpiry) Run(ctx context.Context) {
	if w.cfg.Timeout <= 0 || w.cfg.Interval <= 0 {
		zap.L().Info("order expiry disabled")
		return
	}
	if !w.running.CAS(false, true) {
		return
	}
	defer w.running.Store(false)

	zap.L().Info("order expiry started",
		zap.Duration("timeout", w.cfg.Timeout),
		zap.Duration("interval", w.cfg.Interval),
	)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("order expiry stopped", zap.Any("stats", w.Stats()))
			return
		case <-ticker.C:
			w.ScanOnce(ctx)
		}
	}
}

// 1回分のスキャン。取消した件数を返す
func (w *OrderExpiry) ScanOnce(ctx context.Context) int {
	w.scans.Inc()

	batch := w.cfg.Batch
	if batch <= 0 {
		batch = 100
	}

	ids, err := w.orders.ListExpired(ctx, w.cfg.Timeout, batch)
	if err != nil {
		zap.L().Error("list expired orders failed", zap.Error(err))
		return 0
	}
	if len(ids) == 0 {
		return 0
	}

	n := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		//支払いと競合した注文はfalseで返る
		ok, err := w.orders.ExpireUnpaid(ctx, id)
		if err != nil {
			w.failed.Inc()
			zap.L().Warn("expire order failed", zap.Int64("order_id", id), zap.Error(err))
			continue
		}
		if ok {
			n++
			w.expired.Inc()
		}
	}

	zap.L().Info("expired unpaid orders", zap.Int("found", len(ids)), zap.Int("expired", n))
	return n
}
