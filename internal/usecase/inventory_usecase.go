package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logger"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

type AdjustMode string

const (
	AdjustSet    AdjustMode = "set"
	AdjustAdd    AdjustMode = "add"
	AdjustReduce AdjustMode = "reduce"
)

var adjustLogType = map[AdjustMode]model.InventoryLogType{
	AdjustSet:    model.InventoryLogSet,
	AdjustAdd:    model.InventoryLogInbound,
	AdjustReduce: model.InventoryLogOutbound,
}

type InventoryUsecase struct {
	tx repo.TransactionManager
}

func NewInventoryUsecase(tx repo.TransactionManager) *InventoryUsecase {
	return &InventoryUsecase{tx: tx}
}

type InventoryOutput struct {
	ProductID      int64      `json:"product_id"`
	ProductName    string     `json:"product_name"`
	Stock          int64      `json:"stock"`
	LockedStock    int64      `json:"locked_stock"`
	AvailableStock int64      `json:"available_stock"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

type AdjustInventoryInput struct {
	Type     AdjustMode `json:"type"`
	Quantity *int64     `json:"quantity"`
	Reason   string     `json:"reason"`
}

type AdjustInventoryOutput struct {
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	BeforeStock    int64  `json:"before_stock"`
	AfterStock     int64  `json:"after_stock"`
	Change         int64  `json:"change"`
	LockedStock    int64  `json:"locked_stock"`
	AvailableStock int64  `json:"available_stock"`
}

type ListInventoryLogsInput struct {
	ProductID *int64
	Type      *model.InventoryLogType
	OrderNo   string
	Page      int
	PageSize  int
}

type InventoryLogOutput struct {
	model.InventoryLog
	TypeText string `json:"type_text"`
}

type InventoryLogListOutput struct {
	List       []InventoryLogOutput `json:"list"`
	Pagination Pagination           `json:"pagination"`
}

func findProduct(ctx context.Context, r repo.TxRepos, productID int64) (model.Product, error) {
	p, err := r.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	return p, err
}

// 商品単位の在庫（行が無ければ0）
func (u *InventoryUsecase) Get(ctx context.Context, productID int64) (InventoryOutput, error) {
	if productID <= 0 {
		return InventoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var out InventoryOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := findProduct(ctx, r, productID)
		if err != nil {
			return err
		}
		out = InventoryOutput{ProductID: p.ID, ProductName: p.Name}

		inv, err := r.Inventory().FindByProductID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out.Stock = inv.Stock
		out.LockedStock = inv.LockedStock
		out.AvailableStock = inv.Available()
		out.UpdatedAt = &inv.UpdatedAt
		return nil
	})
	if err != nil {
		return InventoryOutput{}, txError(ctx, err)
	}
	return out, nil
}

// 管理者の直接調整。set/add/reduce → ログtype 1/2/3
func (u *InventoryUsecase) Adjust(ctx context.Context, adminID, productID int64, in AdjustInventoryInput) (AdjustInventoryOutput, error) {
	if adminID <= 0 {
		return AdjustInventoryOutput{}, errUnauthorized
	}
	if productID <= 0 {
		return AdjustInventoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Type == "" {
		in.Type = AdjustSet
	}
	logType, ok := adjustLogType[in.Type]
	if !ok {
		return AdjustInventoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid adjust type")
	}
	if in.Quantity == nil {
		return AdjustInventoryOutput{}, NewHTTPError(http.StatusBadRequest, "quantity is required")
	}
	qty := *in.Quantity
	reason := strings.TrimSpace(in.Reason)
	if len(reason) > 255 {
		return AdjustInventoryOutput{}, NewHTTPError(http.StatusBadRequest, "reason is too long")
	}

	var out AdjustInventoryOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := findProduct(ctx, r, productID)
		if err != nil {
			return err
		}

		inv, err := r.Inventory().LockForAdjust(ctx, productID)
		if err != nil {
			return err
		}

		newStock, err := nextStock(in.Type, qty, inv)
		if err != nil {
			return err
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			return err
		}

		log := model.InventoryLog{
			ProductID:   productID,
			Type:        logType,
			Quantity:    newStock - inv.Stock,
			BeforeStock: inv.Stock,
			AfterStock:  newStock,
			OperatorID:  &adminID,
		}
		if reason != "" {
			log.Reason = &reason
		}
		if err := r.Inventory().CreateLog(ctx, log); err != nil {
			return err
		}

		out = AdjustInventoryOutput{
			ProductID:      productID,
			ProductName:    p.Name,
			BeforeStock:    inv.Stock,
			AfterStock:     newStock,
			Change:         newStock - inv.Stock,
			LockedStock:    inv.LockedStock,
			AvailableStock: newStock - inv.LockedStock,
		}

		before, _ := json.Marshal(map[string]int64{"stock": inv.Stock, "locked_stock": inv.LockedStock})
		after, _ := json.Marshal(map[string]interface{}{"stock": newStock, "locked_stock": inv.LockedStock, "type": in.Type})
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceInventory,
			ResourceID:   productID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		return AdjustInventoryOutput{}, txError(ctx, err)
	}

	logger.FromContext(ctx).Info("inventory adjusted",
		zap.Int64("product_id", productID),
		zap.String("type", string(in.Type)),
		zap.Int64("before", out.BeforeStock),
		zap.Int64("after", out.AfterStock),
	)
	return out, nil
}

// 0 <= locked_stock <= stock を崩す調整は400
func nextStock(mode AdjustMode, qty int64, inv model.Inventory) (int64, error) {
	switch mode {
	case AdjustSet:
		if qty < 0 {
			return 0, NewHTTPError(http.StatusBadRequest, "stock must not be negative")
		}
		if qty < inv.LockedStock {
			return 0, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("stock must not be less than locked stock (%d)", inv.LockedStock))
		}
		return qty, nil
	case AdjustAdd:
		if qty <= 0 {
			return 0, NewHTTPError(http.StatusBadRequest, "quantity must be greater than 0")
		}
		if qty > math.MaxInt64-inv.Stock {
			return 0, NewHTTPError(http.StatusBadRequest, "quantity is too large")
		}
		return inv.Stock + qty, nil
	case AdjustReduce:
		if qty <= 0 {
			return 0, NewHTTPError(http.StatusBadRequest, "quantity must be greater than 0")
		}
		if qty > inv.Available() {
			return 0, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("insufficient available stock (%d)", inv.Available()))
		}
		return inv.Stock - qty, nil
	}
	return 0, NewHTTPError(http.StatusBadRequest, "invalid adjust type")
}

// 在庫ログ（新しい順）
func (u *InventoryUsecase) ListLogs(ctx context.Context, in ListInventoryLogsInput) (InventoryLogListOutput, error) {
	if in.Type != nil && !in.Type.Valid() {
		return InventoryLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid log type")
	}
	page, size, offset := normalizePage(in.Page, in.PageSize, 20, 100)

	var out InventoryLogListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		logs, total, err := r.Inventory().ListLogs(ctx, repo.InventoryLogFilter{
			ProductID: in.ProductID,
			Type:      in.Type,
			OrderNo:   strings.TrimSpace(in.OrderNo),
			Limit:     size,
			Offset:    offset,
		})
		if err != nil {
			return err
		}
		out.List = make([]InventoryLogOutput, 0, len(logs))
		for _, l := range logs {
			out.List = append(out.List, InventoryLogOutput{InventoryLog: l, TypeText: l.Type.Text()})
		}
		out.Pagination = newPagination(page, size, total)
		return nil
	})
	if err != nil {
		return InventoryLogListOutput{}, txError(ctx, err)
	}
	return out, nil
}
