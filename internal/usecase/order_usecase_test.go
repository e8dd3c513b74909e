package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"
	"cakeshop/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type CakeRepoMock struct{ mock.Mock }

func (m *CakeRepoMock) List(ctx context.Context) ([]model.Cake, error) {
	panic("not used in OrderUsecase tests")
}

func (m *CakeRepoMock) FindByID(ctx context.Context, id int64) (model.Cake, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Cake)
	return c, args.Error(1)
}

func (m *CakeRepoMock) Create(ctx context.Context, cake *model.Cake) error {
	panic("not used in OrderUsecase tests")
}

func (m *CakeRepoMock) Update(ctx context.Context, cake model.Cake) error {
	panic("not used in OrderUsecase tests")
}

func (m *CakeRepoMock) ReplaceImages(ctx context.Context, cakeID int64, urls []string) error {
	panic("not used in OrderUsecase tests")
}

func (m *CakeRepoMock) Delete(ctx context.Context, id int64) error {
	panic("not used in OrderUsecase tests")
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartEntry, error) {
	args := m.Called(ctx, userID)
	entries, _ := args.Get(0).([]model.CartEntry)
	return entries, args.Error(1)
}

func (m *CartRepoMock) FindByUserAndCake(ctx context.Context, userID int64, cakeID int64) (model.CartEntry, error) {
	panic("not used in OrderUsecase tests")
}

func (m *CartRepoMock) FindByIDForUser(ctx context.Context, cartID int64, userID int64) (model.CartEntry, error) {
	panic("not used in OrderUsecase tests")
}

func (m *CartRepoMock) UpsertByUserAndCake(ctx context.Context, userID int64, cakeID int64, addQty int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *CartRepoMock) UpdateQuantity(ctx context.Context, cartID int64, qty int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *CartRepoMock) DeleteByIDForUser(ctx context.Context, cartID int64, userID int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *CartRepoMock) DeleteByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type placeOrderMocks struct {
	tx        *TxManagerMock
	cakes     *CakeRepoMock
	carts     *CartRepoMock
	orders    *OrderRepoMock
	items     *OrderItemRepoMock
	inventory *InventoryRepoMock
}

func newPlaceOrderUsecase() (*usecase.OrderUsecase, placeOrderMocks) {
	m := placeOrderMocks{
		cakes:     new(CakeRepoMock),
		carts:     new(CartRepoMock),
		orders:    new(OrderRepoMock),
		items:     new(OrderItemRepoMock),
		inventory: new(InventoryRepoMock),
	}
	m.tx = &TxManagerMock{Repos: &TxReposMock{
		cakes:      m.cakes,
		carts:      m.carts,
		orders:     m.orders,
		orderItems: m.items,
		inventory:  m.inventory,
	}}
	return usecase.NewOrderUsecase(m.tx, m.orders, m.items), m
}

// 読んだ時は在庫3、減らす直前に他の注文が2つ持っていった
func expectLostDecrement(m placeOrderMocks) {
	cake := &model.Cake{ID: 7, Name: "Tart", Price: decimal.RequireFromString("4.99"), Stock: 3}
	m.tx.On("WithinTx", mock.Anything).Once()
	m.carts.On("ListByUserID", mock.Anything, int64(1)).
		Return([]model.CartEntry{{UserID: 1, CakeID: 7, Quantity: 3, Cake: cake}}, nil).Once()
	m.orders.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).Return(nil).Once()
	m.items.On("CreateBulk", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	m.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(7), int64(3)).Return(false, nil).Once()
}

func TestPlaceOrder_LostDecrement_ReportsCurrentStock(t *testing.T) {
	uc, m := newPlaceOrderUsecase()
	expectLostDecrement(m)
	m.cakes.On("FindByID", mock.Anything, int64(7)).Return(model.Cake{ID: 7, Name: "Tart", Stock: 1}, nil).Once()

	_, err := uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{Address: "1-2-3 Shibuya"})

	he := assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInsufficientStock)
	assert.Equal(t, "Not enough stock for Tart. Only 1 available.", he.Message)
	assert.Equal(t, usecase.StockDetails{CakeID: 7, Name: "Tart", Available: 1, Requested: 3}, he.Details)
	m.carts.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
	m.inventory.AssertNotCalled(t, "CreateAdjustment", mock.Anything, mock.Anything)
}

func TestPlaceOrder_LostDecrement_CakeDeleted(t *testing.T) {
	uc, m := newPlaceOrderUsecase()
	expectLostDecrement(m)
	m.cakes.On("FindByID", mock.Anything, int64(7)).Return(model.Cake{}, repo.ErrNotFound).Once()

	_, err := uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{Address: "1-2-3 Shibuya"})

	he := assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInsufficientStock)
	assert.Equal(t, "Not enough stock for Tart. Only 0 available.", he.Message)
}

func TestPlaceOrder_LostDecrement_ReloadErrorIsHidden(t *testing.T) {
	uc, m := newPlaceOrderUsecase()
	expectLostDecrement(m)
	dbErr := errors.New("connection reset")
	m.cakes.On("FindByID", mock.Anything, int64(7)).Return(model.Cake{}, dbErr).Once()

	_, err := uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{Address: "1-2-3 Shibuya"})

	assertHTTPError(t, err, http.StatusInternalServerError, usecase.CodeInternal)
	assert.ErrorIs(t, err, dbErr)
}
