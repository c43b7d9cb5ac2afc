package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCartUC(f *fixture) *usecase.CartUsecase {
	return usecase.NewCartUsecase(f.tx, f.repos.cartItems)
}

func TestCartUsecase_List_TotalsOnlyValidSelected(t *testing.T) {
	f := newFixture()
	lines := testCartLines()

	offShelf := lines[0]
	offShelf.ID = 13
	offShelf.ProductID = 3
	offShelf.ProductStatus = model.ProductStatusOffShelf

	unselected := lines[0]
	unselected.ID = 14
	unselected.ProductID = 4
	unselected.Selected = false

	lines = append(lines, offShelf, unselected)
	f.repos.cartItems.On("ListLines", mock.Anything, userID, []int64(nil)).Return(lines, nil)

	out, err := newCartUC(f).List(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, out.Items, 4)
	assert.Equal(t, 4, out.ItemCount)
	assert.True(t, decimal.NewFromInt(25).Equal(out.TotalAmount), "total=%s", out.TotalAmount)
	assert.Equal(t, int64(3), out.TotalQuantity)

	//SKU行はSKUの価格
	assert.True(t, decimal.NewFromInt(5).Equal(out.Items[1].Price))
	require.NotNil(t, out.Items[1].SkuAttrText)
	assert.Equal(t, "red", *out.Items[1].SkuAttrText)
	assert.Equal(t, int64(3), out.Items[1].AvailableStock)

	assert.False(t, out.Items[2].IsValid)
	assert.True(t, out.Items[3].IsValid)
}

func TestCartUsecase_List_MissingSkuIsInvalid(t *testing.T) {
	f := newFixture()
	lines := testCartLines()[1:]
	lines[0].SkuFound = false
	f.repos.cartItems.On("ListLines", mock.Anything, userID, []int64(nil)).Return(lines, nil)

	out, err := newCartUC(f).List(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, out.Items[0].IsValid)
	assert.True(t, out.TotalAmount.IsZero())
}

func onSaleProduct(id int64) model.Product {
	return model.Product{ID: id, Name: "A", Price: decimal.NewFromInt(10), Status: model.ProductStatusOnSale}
}

func TestCartUsecase_Add_MergesExistingLine(t *testing.T) {
	f := newFixture()
	r := f.repos
	r.products.On("FindByID", mock.Anything, int64(1)).Return(onSaleProduct(1), nil)
	r.inventory.On("FindByProductID", mock.Anything, int64(1)).Return(model.Inventory{ProductID: 1, Stock: 10, LockedStock: 3}, nil)
	r.cartItems.On("FindForUpdate", mock.Anything, userID, int64(1), (*int64)(nil)).Return(model.CartItem{ID: 11, Quantity: 4}, nil)
	r.cartItems.On("UpdateQuantity", mock.Anything, userID, int64(11), int64(7)).Return(nil).Once()

	out, err := newCartUC(f).Add(context.Background(), userID, usecase.AddCartItemInput{ProductID: 1, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.Quantity)
	r.cartItems.AssertExpectations(t)
}

func TestCartUsecase_Add_MergedQuantityOverStock(t *testing.T) {
	f := newFixture()
	r := f.repos
	r.products.On("FindByID", mock.Anything, int64(1)).Return(onSaleProduct(1), nil)
	r.inventory.On("FindByProductID", mock.Anything, int64(1)).Return(model.Inventory{ProductID: 1, Stock: 10, LockedStock: 3}, nil)
	r.cartItems.On("FindForUpdate", mock.Anything, userID, int64(1), (*int64)(nil)).Return(model.CartItem{ID: 11, Quantity: 4}, nil)

	_, err := newCartUC(f).Add(context.Background(), userID, usecase.AddCartItemInput{ProductID: 1, Quantity: 4})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Contains(t, err.Error(), "available: 7")
	r.cartItems.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_Add_NewSkuLine(t *testing.T) {
	f := newFixture()
	r := f.repos
	r.products.On("FindByID", mock.Anything, int64(2)).Return(onSaleProduct(2), nil)
	r.products.On("FindSKU", mock.Anything, int64(7)).Return(model.ProductSKU{ID: 7, ProductID: 2, Stock: 3, Status: model.ProductStatusOnSale}, nil)
	r.cartItems.On("FindForUpdate", mock.Anything, userID, int64(2), int64p(7)).Return(model.CartItem{}, repo.ErrNotFound)
	r.cartItems.On("Create", mock.Anything, mock.MatchedBy(func(it *model.CartItem) bool {
		return it.SkuID != nil && *it.SkuID == 7 && it.Quantity == 2 && it.Selected
	})).Return(nil).Once()

	_, err := newCartUC(f).Add(context.Background(), userID, usecase.AddCartItemInput{ProductID: 2, SkuID: int64p(7), Quantity: 2})
	require.NoError(t, err)
	r.cartItems.AssertExpectations(t)
}

func TestCartUsecase_Add_Rejections(t *testing.T) {
	t.Run("sku of other product", func(t *testing.T) {
		f := newFixture()
		f.repos.products.On("FindByID", mock.Anything, int64(2)).Return(onSaleProduct(2), nil)
		f.repos.products.On("FindSKU", mock.Anything, int64(7)).Return(model.ProductSKU{ID: 7, ProductID: 3}, nil)

		_, err := newCartUC(f).Add(context.Background(), userID, usecase.AddCartItemInput{ProductID: 2, SkuID: int64p(7), Quantity: 1})
		assert.Equal(t, http.StatusNotFound, statusOf(err))
	})

	t.Run("off shelf", func(t *testing.T) {
		f := newFixture()
		p := onSaleProduct(1)
		p.Status = model.ProductStatusOffShelf
		f.repos.products.On("FindByID", mock.Anything, int64(1)).Return(p, nil)

		_, err := newCartUC(f).Add(context.Background(), userID, usecase.AddCartItemInput{ProductID: 1, Quantity: 1})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})

	t.Run("concurrent insert", func(t *testing.T) {
		f := newFixture()
		r := f.repos
		r.products.On("FindByID", mock.Anything, int64(1)).Return(onSaleProduct(1), nil)
		r.inventory.On("FindByProductID", mock.Anything, int64(1)).Return(model.Inventory{Stock: 5}, nil)
		r.cartItems.On("FindForUpdate", mock.Anything, userID, int64(1), (*int64)(nil)).Return(model.CartItem{}, repo.ErrNotFound)
		r.cartItems.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicate)

		_, err := newCartUC(f).Add(context.Background(), userID, usecase.AddCartItemInput{ProductID: 1, Quantity: 1})
		assert.Equal(t, http.StatusConflict, statusOf(err))
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := newCartUC(newFixture()).Add(context.Background(), userID, usecase.AddCartItemInput{ProductID: 1})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})
}

func TestCartUsecase_UpdateQuantity(t *testing.T) {
	f := newFixture()
	line := testCartLines()[0]
	f.repos.cartItems.On("FindLineByID", mock.Anything, userID, int64(11)).Return(line, nil)
	f.repos.cartItems.On("UpdateQuantity", mock.Anything, userID, int64(11), int64(10)).Return(nil).Once()

	uc := newCartUC(f)
	require.NoError(t, uc.UpdateQuantity(context.Background(), userID, 11, 10))

	err := uc.UpdateQuantity(context.Background(), userID, 11, 11)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestCartUsecase_DeleteAndSelect(t *testing.T) {
	f := newFixture()
	r := f.repos
	uc := newCartUC(f)
	ctx := context.Background()

	assert.Equal(t, http.StatusBadRequest, statusOf(uc.Delete(ctx, userID, usecase.DeleteCartItemsInput{})))

	r.cartItems.On("DeleteByProduct", mock.Anything, userID, int64(2)).Return(int64(1), nil).Once()
	require.NoError(t, uc.Delete(ctx, userID, usecase.DeleteCartItemsInput{ProductID: 2}))

	all := false
	r.cartItems.On("SetSelectedAll", mock.Anything, userID, false).Return(nil).Once()
	require.NoError(t, uc.Select(ctx, userID, usecase.SelectCartInput{SelectAll: &all}))

	r.cartItems.On("SetSelected", mock.Anything, userID, int64(404), true).Return(repo.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, statusOf(uc.Select(ctx, userID, usecase.SelectCartInput{ID: 404, Selected: true})))

	r.cartItems.AssertExpectations(t)
}
