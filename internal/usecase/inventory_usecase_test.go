package usecase_test

import (
	"context"
	"math"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func qty(v int64) *int64 { return &v }

func adjustFixture() *fixture {
	f := newFixture()
	f.repos.products.On("FindByID", mock.Anything, int64(1)).Return(onSaleProduct(1), nil)
	f.repos.inventory.On("LockForAdjust", mock.Anything, int64(1)).Return(model.Inventory{ProductID: 1, Stock: 10, LockedStock: 4}, nil)
	return f
}

func TestInventoryUsecase_Adjust_Add(t *testing.T) {
	f := adjustFixture()
	r := f.repos
	r.inventory.On("SetStock", mock.Anything, int64(1), int64(15)).Return(nil).Once()
	r.inventory.On("CreateLog", mock.Anything, mock.MatchedBy(func(l model.InventoryLog) bool {
		return l.Type == model.InventoryLogInbound && l.Quantity == 5 &&
			l.BeforeStock == 10 && l.AfterStock == 15 &&
			l.OperatorID != nil && *l.OperatorID == adminID &&
			l.Reason != nil && *l.Reason == "restock"
	})).Return(nil).Once()
	r.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock && l.ResourceType == model.AuditResourceInventory
	})).Return(nil).Once()

	out, err := usecase.NewInventoryUsecase(f.tx).Adjust(context.Background(), adminID, 1, usecase.AdjustInventoryInput{
		Type: usecase.AdjustAdd, Quantity: qty(5), Reason: "restock",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Change)
	assert.Equal(t, int64(11), out.AvailableStock)
	r.inventory.AssertExpectations(t)
	r.audits.AssertExpectations(t)
}

func TestInventoryUsecase_Adjust_SetLogsSignedChange(t *testing.T) {
	f := adjustFixture()
	r := f.repos
	r.inventory.On("SetStock", mock.Anything, int64(1), int64(4)).Return(nil).Once()
	r.inventory.On("CreateLog", mock.Anything, mock.MatchedBy(func(l model.InventoryLog) bool {
		return l.Type == model.InventoryLogSet && l.Quantity == -6 && l.Reason == nil
	})).Return(nil).Once()
	r.audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := usecase.NewInventoryUsecase(f.tx).Adjust(context.Background(), adminID, 1, usecase.AdjustInventoryInput{
		Type: usecase.AdjustSet, Quantity: qty(4),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.AvailableStock)
	r.inventory.AssertExpectations(t)
}

func TestInventoryUsecase_Adjust_KeepsLockedWithinStock(t *testing.T) {
	cases := []struct {
		name string
		in   usecase.AdjustInventoryInput
		want string
	}{
		{"set below locked", usecase.AdjustInventoryInput{Type: usecase.AdjustSet, Quantity: qty(3)}, "locked stock (4)"},
		{"set negative", usecase.AdjustInventoryInput{Type: usecase.AdjustSet, Quantity: qty(-1)}, "negative"},
		{"reduce over available", usecase.AdjustInventoryInput{Type: usecase.AdjustReduce, Quantity: qty(7)}, "available stock (6)"},
		{"add zero", usecase.AdjustInventoryInput{Type: usecase.AdjustAdd, Quantity: qty(0)}, "greater than 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := adjustFixture()
			_, err := usecase.NewInventoryUsecase(f.tx).Adjust(context.Background(), adminID, 1, tc.in)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, statusOf(err))
			assert.Contains(t, err.Error(), tc.want)
			f.repos.inventory.AssertNotCalled(t, "SetStock", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInventoryUsecase_Adjust_InputErrors(t *testing.T) {
	f := newFixture()
	uc := usecase.NewInventoryUsecase(f.tx)

	_, err := uc.Adjust(context.Background(), adminID, 1, usecase.AdjustInventoryInput{Type: "move", Quantity: qty(1)})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = uc.Adjust(context.Background(), adminID, 1, usecase.AdjustInventoryInput{Type: usecase.AdjustAdd})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

// stock + quantity がint64を超える入庫は400で、在庫は触らない
func TestInventoryUsecase_Adjust_AddOverflow(t *testing.T) {
	f := adjustFixture()

	_, err := usecase.NewInventoryUsecase(f.tx).Adjust(context.Background(), adminID, 1, usecase.AdjustInventoryInput{
		Type: usecase.AdjustAdd, Quantity: qty(math.MaxInt64 - 9),
	})
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "quantity is too large", he.Message)
	f.repos.inventory.AssertNotCalled(t, "SetStock", mock.Anything, mock.Anything, mock.Anything)
	f.repos.inventory.AssertNotCalled(t, "CreateLog", mock.Anything, mock.Anything)
}

func TestInventoryUsecase_Adjust_ProductNotFound(t *testing.T) {
	f := newFixture()
	f.repos.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{}, repo.ErrNotFound)

	_, err := usecase.NewInventoryUsecase(f.tx).Adjust(context.Background(), adminID, 1, usecase.AdjustInventoryInput{Type: usecase.AdjustAdd, Quantity: qty(1)})
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestInventoryUsecase_Get_NoInventoryRow(t *testing.T) {
	f := newFixture()
	f.repos.products.On("FindByID", mock.Anything, int64(1)).Return(onSaleProduct(1), nil)
	f.repos.inventory.On("FindByProductID", mock.Anything, int64(1)).Return(model.Inventory{}, repo.ErrNotFound)

	out, err := usecase.NewInventoryUsecase(f.tx).Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "A", out.ProductName)
	assert.Zero(t, out.Stock)
	assert.Nil(t, out.UpdatedAt)
}

func TestInventoryUsecase_ListLogs(t *testing.T) {
	f := newFixture()
	typ := model.InventoryLogOrderDeduct
	f.repos.inventory.On("ListLogs", mock.Anything, repo.InventoryLogFilter{Type: &typ, OrderNo: "N1", Limit: 20}).
		Return([]model.InventoryLog{{ID: 1, Type: typ, Quantity: 2}}, int64(1), nil)

	uc := usecase.NewInventoryUsecase(f.tx)
	out, err := uc.ListLogs(context.Background(), usecase.ListInventoryLogsInput{Type: &typ, OrderNo: "N1"})
	require.NoError(t, err)
	require.Len(t, out.List, 1)
	assert.Equal(t, "order deduct", out.List[0].TypeText)

	bad := model.InventoryLogType(42)
	_, err = uc.ListLogs(context.Background(), usecase.ListInventoryLogsInput{Type: &bad})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}
