package usecase

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

const (
	reasonOrderLock    = "order lock"
	reasonOrderRelease = "order cancel release"
	reasonUnpaidExpire = "unpaid timeout release"
	reasonAdminRelease = "admin status release"
	reasonPayDeduct    = "payment deduct"
)

// 在庫を動かす1行分（注文明細から作る）
type stockLine struct {
	ProductID int64
	SkuID     *int64
	Name      string
	Quantity  int64
}

func (l stockLine) target() repo.StockTarget {
	return repo.StockTarget{ProductID: l.ProductID, SkuID: l.SkuID}
}

func stockLinesFromItems(items []model.OrderItem) []stockLine {
	lines := make([]stockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, stockLine{
			ProductID: it.ProductID,
			SkuID:     it.SkuID,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
		})
	}
	return lines
}

// ロック順を固定する（SKU行→商品行、id昇順）。複数明細の注文同士でデッドロックしないように
func sortStockLines(lines []stockLine) []stockLine {
	out := append([]stockLine(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.SkuID != nil) != (b.SkuID != nil) {
			return a.SkuID != nil
		}
		if a.SkuID != nil && *a.SkuID != *b.SkuID {
			return *a.SkuID < *b.SkuID
		}
		return a.ProductID < b.ProductID
	})
	return out
}

// locked_stockを積んでtype=4を記録。足りなければ明細名入りの400
func lockStockLines(ctx context.Context, inv repo.InventoryRepository, lines []stockLine, orderNo string) error {
	for _, l := range sortStockLines(lines) {
		stock, ok, err := inv.LockStock(ctx, l.target(), l.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("insufficient stock: %s", l.Name))
		}
		//stock自体は変わらないので before=after
		if err := inv.CreateLog(ctx, newOrderLog(l, model.InventoryLogOrderLock, stock, stock, orderNo, reasonOrderLock)); err != nil {
			return err
		}
	}
	return nil
}

// locked_stockを戻してtype=5を記録（0未満にはならない）
func releaseStockLines(ctx context.Context, inv repo.InventoryRepository, lines []stockLine, orderNo, reason string) error {
	for _, l := range sortStockLines(lines) {
		stock, err := inv.ReleaseStock(ctx, l.target(), l.Quantity)
		if err != nil {
			return err
		}
		if err := inv.CreateLog(ctx, newOrderLog(l, model.InventoryLogOrderRelease, stock, stock, orderNo, reason)); err != nil {
			return err
		}
	}
	return nil
}

// ロック分をstockから確定で引く。type=6で実際のbefore/afterを残す
func deductStockLines(ctx context.Context, inv repo.InventoryRepository, lines []stockLine, orderNo string) error {
	for _, l := range sortStockLines(lines) {
		before, after, ok, err := inv.DeductStock(ctx, l.target(), l.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, fmt.Sprintf("insufficient stock: %s", l.Name))
		}
		if err := inv.CreateLog(ctx, newOrderLog(l, model.InventoryLogOrderDeduct, before, after, orderNo, reasonPayDeduct)); err != nil {
			return err
		}
	}
	return nil
}

func newOrderLog(l stockLine, typ model.InventoryLogType, before, after int64, orderNo, reason string) model.InventoryLog {
	no := orderNo
	r := reason
	return model.InventoryLog{
		ProductID:   l.ProductID,
		SkuID:       l.SkuID,
		Type:        typ,
		Quantity:    l.Quantity,
		BeforeStock: before,
		AfterStock:  after,
		OrderNo:     &no,
		Reason:      &r,
	}
}
