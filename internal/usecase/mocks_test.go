package usecase_test

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos
// =====================

// WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos *TxReposMock
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	payments   *PaymentRepoMock
	cartItems  *CartItemRepoMock
	inventory  *InventoryRepoMock
	products   *ProductRepoMock
	addresses  *AddressRepoMock
	reviews    *ReviewRepoMock
	audits     *AuditRepoMock
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) Payments() repo.PaymentRepository     { return r.payments }
func (r *TxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *TxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) Addresses() repo.AddressRepository    { return r.addresses }
func (r *TxReposMock) Reviews() repo.ReviewRepository       { return r.reviews }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.audits }

type fixture struct {
	tx     *TxManagerMock
	repos  *TxReposMock
	ids    *IDGenMock
	events *EventsMock
}

func newFixture() *fixture {
	repos := &TxReposMock{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		payments:   new(PaymentRepoMock),
		cartItems:  new(CartItemRepoMock),
		inventory:  new(InventoryRepoMock),
		products:   new(ProductRepoMock),
		addresses:  new(AddressRepoMock),
		reviews:    new(ReviewRepoMock),
		audits:     new(AuditRepoMock),
	}
	tx := &TxManagerMock{Repos: repos}
	tx.On("WithinTx", mock.Anything).Return()
	return &fixture{tx: tx, repos: repos, ids: new(IDGenMock), events: new(EventsMock)}
}

// =====================
// IDGenerator / EventPublisher
// =====================

type IDGenMock struct{ mock.Mock }

func (m *IDGenMock) OrderNo() string       { return m.Called().String(0) }
func (m *IDGenMock) TransactionID() string { return m.Called().String(0) }

type EventsMock struct{ mock.Mock }

func (m *EventsMock) Publish(ctx context.Context, ev model.OrderEvent) error {
	return m.Called(ctx, ev).Error(0)
}

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByOrderNo(ctx context.Context, orderNo string) (model.Order, error) {
	args := m.Called(ctx, orderNo)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListByUser(ctx context.Context, f repo.UserOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[model.OrderStatus]int64)
	return counts, args.Error(1)
}

func (m *OrderRepoMock) ListUnpaidBefore(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	args := m.Called(ctx, before, limit)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, change repo.StatusChange) error {
	return m.Called(ctx, orderID, status, change).Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	return m.Called(ctx, orderID).Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *OrderItemRepoMock) FindByID(ctx context.Context, itemID int64) (model.OrderItem, error) {
	args := m.Called(ctx, itemID)
	it, _ := args.Get(0).(model.OrderItem)
	return it, args.Error(1)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	items, _ := args.Get(0).(map[int64][]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) CountByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64]int64, error) {
	args := m.Called(ctx, orderIDs)
	counts, _ := args.Get(0).(map[int64]int64)
	return counts, args.Error(1)
}

func (m *OrderItemRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return m.Called(ctx, orderID).Error(0)
}

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) Create(ctx context.Context, p *model.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PaymentRepoMock) LatestByOrderID(ctx context.Context, orderID int64) (model.Payment, bool, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Bool(1), args.Error(2)
}

func (m *PaymentRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.Payment, error) {
	args := m.Called(ctx, orderID)
	list, _ := args.Get(0).([]model.Payment)
	return list, args.Error(1)
}

func (m *PaymentRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return m.Called(ctx, orderID).Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListLines(ctx context.Context, userID int64, ids []int64) ([]repo.CartLine, error) {
	args := m.Called(ctx, userID, ids)
	lines, _ := args.Get(0).([]repo.CartLine)
	return lines, args.Error(1)
}

func (m *CartItemRepoMock) FindForUpdate(ctx context.Context, userID, productID int64, skuID *int64) (model.CartItem, error) {
	args := m.Called(ctx, userID, productID, skuID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) FindLineByID(ctx context.Context, userID, cartItemID int64) (repo.CartLine, error) {
	args := m.Called(ctx, userID, cartItemID)
	l, _ := args.Get(0).(repo.CartLine)
	return l, args.Error(1)
}

func (m *CartItemRepoMock) Create(ctx context.Context, item *model.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, userID, cartItemID int64, qty int64) error {
	return m.Called(ctx, userID, cartItemID, qty).Error(0)
}

func (m *CartItemRepoMock) DeleteByIDs(ctx context.Context, userID int64, ids []int64) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartItemRepoMock) DeleteByProduct(ctx context.Context, userID, productID int64) (int64, error) {
	args := m.Called(ctx, userID, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartItemRepoMock) DeleteAll(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *CartItemRepoMock) SetSelected(ctx context.Context, userID, cartItemID int64, selected bool) error {
	return m.Called(ctx, userID, cartItemID, selected).Error(0)
}

func (m *CartItemRepoMock) SetSelectedAll(ctx context.Context, userID int64, selected bool) error {
	return m.Called(ctx, userID, selected).Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) FindByProductID(ctx context.Context, productID int64) (model.Inventory, error) {
	args := m.Called(ctx, productID)
	inv, _ := args.Get(0).(model.Inventory)
	return inv, args.Error(1)
}

func (m *InventoryRepoMock) LockStock(ctx context.Context, t repo.StockTarget, qty int64) (int64, bool, error) {
	args := m.Called(ctx, t, qty)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *InventoryRepoMock) ReleaseStock(ctx context.Context, t repo.StockTarget, qty int64) (int64, error) {
	args := m.Called(ctx, t, qty)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InventoryRepoMock) DeductStock(ctx context.Context, t repo.StockTarget, qty int64) (int64, int64, bool, error) {
	args := m.Called(ctx, t, qty)
	return args.Get(0).(int64), args.Get(1).(int64), args.Bool(2), args.Error(3)
}

func (m *InventoryRepoMock) LockForAdjust(ctx context.Context, productID int64) (model.Inventory, error) {
	args := m.Called(ctx, productID)
	inv, _ := args.Get(0).(model.Inventory)
	return inv, args.Error(1)
}

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, stock int64) error {
	return m.Called(ctx, productID, stock).Error(0)
}

func (m *InventoryRepoMock) CreateLog(ctx context.Context, log model.InventoryLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *InventoryRepoMock) ListLogs(ctx context.Context, f repo.InventoryLogFilter) ([]model.InventoryLog, int64, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.InventoryLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindSKU(ctx context.Context, skuID int64) (model.ProductSKU, error) {
	args := m.Called(ctx, skuID)
	s, _ := args.Get(0).(model.ProductSKU)
	return s, args.Error(1)
}

func (m *ProductRepoMock) IncrementSalesCount(ctx context.Context, productID int64, qty int64) error {
	return m.Called(ctx, productID, qty).Error(0)
}

func (m *ProductRepoMock) UpdateRating(ctx context.Context, productID int64, rating decimal.Decimal) error {
	return m.Called(ctx, productID, rating).Error(0)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address *model.Address) error {
	return m.Called(ctx, address).Error(0)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Address)
	return list, args.Error(1)
}

func (m *AddressRepoMock) FindByIDForUser(ctx context.Context, addressID, userID int64) (model.Address, error) {
	args := m.Called(ctx, addressID, userID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, address model.Address) error {
	return m.Called(ctx, address).Error(0)
}

func (m *AddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	return m.Called(ctx, addressID).Error(0)
}

func (m *AddressRepoMock) ClearDefault(ctx context.Context, userID int64, exceptID int64) error {
	return m.Called(ctx, userID, exceptID).Error(0)
}

func (m *AddressRepoMock) MarkDefault(ctx context.Context, addressID int64) error {
	return m.Called(ctx, addressID).Error(0)
}

func (m *AddressRepoMock) PromoteOldest(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type ReviewRepoMock struct{ mock.Mock }

func (m *ReviewRepoMock) Create(ctx context.Context, r *model.ProductReview) error {
	return m.Called(ctx, r).Error(0)
}

func (m *ReviewRepoMock) ExistsByOrderItemID(ctx context.Context, orderItemID int64) (bool, error) {
	args := m.Called(ctx, orderItemID)
	return args.Bool(0), args.Error(1)
}

func (m *ReviewRepoMock) ReviewedItemIDs(ctx context.Context, userID int64, orderItemIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, orderItemIDs)
	ids, _ := args.Get(0).(map[int64]bool)
	return ids, args.Error(1)
}

func (m *ReviewRepoMock) AverageRating(ctx context.Context, productID int64) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

// =====================
// helpers
// =====================

func int64p(v int64) *int64 { return &v }

func statusOf(err error) int {
	if he, ok := usecase.AsHTTPError(err); ok {
		return he.Status
	}
	return 0
}
