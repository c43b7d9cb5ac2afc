package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const adminID = int64(99)

func newAdminOrderUC(f *fixture) *usecase.AdminOrderUsecase {
	return usecase.NewAdminOrderUsecase(f.tx, f.events)
}

func TestAdminOrderUsecase_Ship(t *testing.T) {
	f := newFixture()
	r := f.repos
	r.orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(lockedOrder(model.OrderStatusAwaitingShipment, false), nil)
	r.orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusAwaitingReceipt, mock.MatchedBy(func(c repo.StatusChange) bool {
		return c.ShipTime != nil
	})).Return(nil).Once()
	r.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionShipOrder && l.ActorUserID == adminID && l.ResourceID == orderID
	})).Return(nil).Once()
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, newAdminOrderUC(f).Ship(context.Background(), adminID, orderID))
	r.audits.AssertExpectations(t)
}

func TestAdminOrderUsecase_Ship_WrongStatus(t *testing.T) {
	f := newFixture()
	f.repos.orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(lockedOrder(model.OrderStatusAwaitingPayment, true), nil)

	err := newAdminOrderUC(f).Ship(context.Background(), adminID, orderID)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestAdminOrderUsecase_UpdateStatus_CancelReleasesLock(t *testing.T) {
	f := newFixture()
	r := f.repos
	r.orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(lockedOrder(model.OrderStatusAwaitingPayment, true), nil)
	r.orderItems.On("ListByOrderID", mock.Anything, orderID).Return(testOrderItems(), nil)
	r.inventory.On("ReleaseStock", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil).Twice()
	r.inventory.On("CreateLog", mock.Anything, mock.MatchedBy(func(l model.InventoryLog) bool {
		return l.Type == model.InventoryLogOrderRelease && *l.Reason == "admin status release"
	})).Return(nil).Twice()
	unlocked := false
	r.orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusCancelled, repo.StatusChange{StockLocked: &unlocked}).Return(nil).Once()
	r.audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	out, err := newAdminOrderUC(f).UpdateStatus(context.Background(), adminID, orderID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.StatusText)
	r.inventory.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_PaidOrderRefundDoesNotTouchStock(t *testing.T) {
	f := newFixture()
	r := f.repos
	//支払い済みはstock_locked=false
	r.orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(lockedOrder(model.OrderStatusAwaitingShipment, false), nil)
	r.orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusRefunded, repo.StatusChange{}).Return(nil).Once()
	r.audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := newAdminOrderUC(f).UpdateStatus(context.Background(), adminID, orderID, model.OrderStatusRefunded)
	require.NoError(t, err)
	r.inventory.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_TerminalToTerminalIsIdempotent(t *testing.T) {
	for _, to := range []model.OrderStatus{model.OrderStatusCancelled, model.OrderStatusRefunded} {
		f := newFixture()
		r := f.repos
		//ロックが残っている扱いでも4→4/5では戻さない
		r.orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(lockedOrder(model.OrderStatusCancelled, true), nil)
		r.orders.On("UpdateStatus", mock.Anything, orderID, to, repo.StatusChange{}).Return(nil).Once()
		r.audits.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := newAdminOrderUC(f).UpdateStatus(context.Background(), adminID, orderID, to)
		require.NoError(t, err)
		r.inventory.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything, mock.Anything)
		if to == model.OrderStatusCancelled {
			f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		}
	}
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	f := newFixture()
	_, err := newAdminOrderUC(f).UpdateStatus(context.Background(), adminID, orderID, model.OrderStatus(9))
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestAdminOrderUsecase_List_CountsAndStatus(t *testing.T) {
	f := newFixture()
	r := f.repos
	r.orders.On("ListAdmin", mock.Anything, repo.AdminOrderListFilter{Keyword: "N1", Limit: 20, Offset: 0}).
		Return([]model.Order{lockedOrder(model.OrderStatusAwaitingPayment, true)}, int64(1), nil)
	r.orderItems.On("CountByOrderIDs", mock.Anything, []int64{orderID}).Return(map[int64]int64{orderID: 2}, nil)
	r.orders.On("CountByStatus", mock.Anything).Return(map[model.OrderStatus]int64{model.OrderStatusAwaitingPayment: 1}, nil)

	out, err := newAdminOrderUC(f).List(context.Background(), usecase.AdminListOrdersInput{Keyword: " N1 "})
	require.NoError(t, err)
	require.Len(t, out.List, 1)
	assert.Equal(t, int64(2), out.List[0].ItemCount)
	assert.Equal(t, int64(1), out.StatusCounts[model.OrderStatusAwaitingPayment])
}
