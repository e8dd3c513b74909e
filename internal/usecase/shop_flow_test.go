package usecase_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"cakeshop/internal/domain/model"
	infraRepo "cakeshop/internal/infra/repository"
	repo "cakeshop/internal/repository"
	"cakeshop/internal/testutil"
	"cakeshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type shop struct {
	db         *gorm.DB
	cakes      *usecase.CakeUsecase
	carts      *usecase.CartUsecase
	orders     *usecase.OrderUsecase
	adminOrder *usecase.AdminOrderUsecase
	reports    *usecase.AdminReportUsecase
	contact    *usecase.ContactUsecase
}

// 実DB（インメモリSQLite）で usecase を組み立てる
func newShop(t *testing.T) shop {
	t.Helper()

	gdb := testutil.NewDB(t)
	txm := infraRepo.NewTxManagerGorm(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	itemRepo := infraRepo.NewOrderItemGormRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)

	return shop{
		db:         gdb,
		cakes:      usecase.NewCakeUsecase(txm, infraRepo.NewCakeGormRepository(gdb)),
		carts:      usecase.NewCartUsecase(txm, infraRepo.NewCartGormRepository(gdb)),
		orders:     usecase.NewOrderUsecase(txm, orderRepo, itemRepo),
		adminOrder: usecase.NewAdminOrderUsecase(txm, orderRepo, itemRepo, auditRepo),
		reports:    usecase.NewAdminReportUsecase(infraRepo.NewReportGormRepository(gdb), orderRepo, auditRepo),
		contact: usecase.NewContactUsecase(infraRepo.NewContactGormRepository(gdb)),
	}
}

// =====================
// Cart
// =====================

func TestAddToCart_MergesAndChecksStock(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	cake := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 5, "short.jpg")

	cart, err := s.carts.AddToCart(ctx, user.ID, usecase.AddCartInput{CakeID: cake.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "25.00", cart.Total)
	assert.Equal(t, []string{"short.jpg"}, cart.Items[0].Images)

	cart, err = s.carts.AddToCart(ctx, user.ID, usecase.AddCartInput{CakeID: cake.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(5), cart.Items[0].Quantity)
	assert.Equal(t, "62.50", cart.Total)

	// 合計が在庫を超えるので変更しない
	_, err = s.carts.AddToCart(ctx, user.ID, usecase.AddCartInput{CakeID: cake.ID, Quantity: 1})
	he := assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInsufficientStock)
	details, ok := he.Details.(usecase.StockDetails)
	require.True(t, ok)
	assert.Equal(t, usecase.StockDetails{CakeID: cake.ID, Name: "Shortcake", Available: 5, InCart: 5, Requested: 6}, details)
	assert.Equal(t, map[int64]int64{cake.ID: 5}, testutil.CartQuantities(t, s.db, user.ID))
}

func TestAddToCart_Errors(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	soldOut := testutil.CreateCake(t, s.db, "Sold out", "3.00", 0)

	_, err := s.carts.AddToCart(ctx, user.ID, usecase.AddCartInput{CakeID: soldOut.ID, Quantity: 1})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeOutOfStock)

	_, err = s.carts.AddToCart(ctx, user.ID, usecase.AddCartInput{CakeID: 999, Quantity: 1})
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)

	_, err = s.carts.AddToCart(ctx, user.ID, usecase.AddCartInput{CakeID: soldOut.ID, Quantity: 0})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)

	assert.Empty(t, testutil.CartQuantities(t, s.db, user.ID))
}

func TestUpdateAndDeleteCartItem_Ownership(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	bob := testutil.CreateUser(t, s.db, "bob", model.RoleCustomer)
	cake := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 4)
	entry := testutil.AddCartEntry(t, s.db, alice.ID, cake.ID, 1)

	_, err := s.carts.UpdateCartItem(ctx, bob.ID, entry.ID, usecase.UpdateCartItemInput{Quantity: 2})
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)
	assertHTTPError(t, s.carts.DeleteCartItem(ctx, bob.ID, entry.ID), http.StatusNotFound, usecase.CodeNotFound)

	_, err = s.carts.UpdateCartItem(ctx, alice.ID, entry.ID, usecase.UpdateCartItemInput{Quantity: 5})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInsufficientStock)

	cart, err := s.carts.UpdateCartItem(ctx, alice.ID, entry.ID, usecase.UpdateCartItemInput{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, "50.00", cart.Total)

	require.NoError(t, s.carts.DeleteCartItem(ctx, alice.ID, entry.ID))
	require.NoError(t, s.carts.ClearCart(ctx, alice.ID))

	cart, err = s.carts.GetCart(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.Total)
}

// =====================
// Checkout
// =====================

func TestPlaceOrder_ConvertsCart(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	a := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 5)
	b := testutil.CreateCake(t, s.db, "Tart", "4.99", 3)
	testutil.AddCartEntry(t, s.db, user.ID, a.ID, 2)
	testutil.AddCartEntry(t, s.db, user.ID, b.ID, 3)

	out, err := s.orders.PlaceOrder(ctx, user.ID, usecase.PlaceOrderInput{Address: "  1-2-3 Shibuya  "})
	require.NoError(t, err)
	assert.Equal(t, "39.97", out.TotalAmount)
	assert.Equal(t, model.OrderStatusPending, out.Status)
	assert.Equal(t, "COD", out.PaymentMethod)
	assert.Equal(t, "1-2-3 Shibuya", out.Address)
	assert.Equal(t, 2, out.ItemCount)

	assert.Equal(t, int64(3), testutil.StockOf(t, s.db, a.ID))
	assert.Equal(t, int64(0), testutil.StockOf(t, s.db, b.ID))
	assert.Empty(t, testutil.CartQuantities(t, s.db, user.ID))
	assert.Equal(t, int64(2), testutil.CountRows(t, s.db, &model.InventoryAdjustment{}))

	detail, err := s.orders.GetMyOrderDetail(ctx, user.ID, out.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.Order.ItemCount)
	require.Len(t, detail.Items, 2)

	// 価格を変えても注文の金額は変わらない
	newPrice := "99.00"
	admin := testutil.CreateUser(t, s.db, "root", model.RoleAdmin)
	require.NoError(t, s.cakes.Update(ctx, admin.ID, a.ID, usecase.UpdateCakeInput{Price: &newPrice}))

	detail, err = s.orders.GetMyOrderDetail(ctx, user.ID, out.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "39.97", detail.Order.TotalAmount)
	for _, it := range detail.Items {
		if it.CakeID == a.ID {
			assert.Equal(t, "12.50", it.PriceAtPurchase)
			assert.Equal(t, "25.00", it.Subtotal)
		}
	}
}

func TestPlaceOrder_InsufficientStock_ChangesNothing(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	a := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 5)
	b := testutil.CreateCake(t, s.db, "Tart", "4.99", 1)
	testutil.AddCartEntry(t, s.db, user.ID, a.ID, 2)
	testutil.AddCartEntry(t, s.db, user.ID, b.ID, 2)

	_, err := s.orders.PlaceOrder(ctx, user.ID, usecase.PlaceOrderInput{Address: "1-2-3 Shibuya"})

	he := assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInsufficientStock)
	assert.Equal(t, "Not enough stock for Tart. Only 1 available.", he.Message)
	assert.Equal(t, int64(5), testutil.StockOf(t, s.db, a.ID))
	assert.Equal(t, int64(1), testutil.StockOf(t, s.db, b.ID))
	assert.Equal(t, int64(0), testutil.CountRows(t, s.db, &model.Order{}))
	assert.Equal(t, int64(0), testutil.CountRows(t, s.db, &model.OrderItem{}))
	assert.Equal(t, map[int64]int64{a.ID: 2, b.ID: 2}, testutil.CartQuantities(t, s.db, user.ID))
}

func TestPlaceOrder_Validation(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)

	_, err := s.orders.PlaceOrder(ctx, user.ID, usecase.PlaceOrderInput{Address: " abc "})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInvalidAddress)

	_, err = s.orders.PlaceOrder(ctx, user.ID, usecase.PlaceOrderInput{Address: "1-2-3 Shibuya"})
	he := assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeEmptyCart)
	assert.Equal(t, "Cart is empty", he.Message)
}

// 最後の1個を2人が同時に買っても片方だけ成功する
func TestPlaceOrder_ConcurrentLastUnit(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	cake := testutil.CreateCake(t, s.db, "Last one", "10.00", 1)
	alice := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	bob := testutil.CreateUser(t, s.db, "bob", model.RoleCustomer)
	testutil.AddCartEntry(t, s.db, alice.ID, cake.ID, 1)
	testutil.AddCartEntry(t, s.db, bob.ID, cake.ID, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, uid := range []int64{alice.ID, bob.ID} {
		wg.Add(1)
		go func(i int, uid int64) {
			defer wg.Done()
			_, errs[i] = s.orders.PlaceOrder(ctx, uid, usecase.PlaceOrderInput{Address: "1-2-3 Shibuya"})
		}(i, uid)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(0), testutil.StockOf(t, s.db, cake.ID))
	assert.Equal(t, int64(1), testutil.CountRows(t, s.db, &model.Order{}))
}

// =====================
// Orders
// =====================

func placeOrder(t *testing.T, s shop, userID int64, lines map[int64]int64) int64 {
	t.Helper()
	for cakeID, qty := range lines {
		testutil.AddCartEntry(t, s.db, userID, cakeID, qty)
	}
	out, err := s.orders.PlaceOrder(context.Background(), userID, usecase.PlaceOrderInput{Address: "1-2-3 Shibuya"})
	require.NoError(t, err)
	return out.OrderID
}

func TestOrders_AreScopedToOwner(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	bob := testutil.CreateUser(t, s.db, "bob", model.RoleCustomer)
	cake := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 10)
	orderID := placeOrder(t, s, alice.ID, map[int64]int64{cake.ID: 1})

	_, err := s.orders.GetMyOrderDetail(ctx, bob.ID, orderID)
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)
	assertHTTPError(t, s.orders.CancelOrder(ctx, bob.ID, orderID), http.StatusNotFound, usecase.CodeNotFound)
	_, err = s.orders.Reorder(ctx, bob.ID, orderID)
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)

	mine, err := s.orders.ListMyOrders(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := s.orders.ListMyOrders(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestCancelOrder_RestocksOnce(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	cake := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 5)
	orderID := placeOrder(t, s, user.ID, map[int64]int64{cake.ID: 2})
	require.Equal(t, int64(3), testutil.StockOf(t, s.db, cake.ID))

	require.NoError(t, s.orders.CancelOrder(ctx, user.ID, orderID))
	assert.Equal(t, int64(5), testutil.StockOf(t, s.db, cake.ID))

	err := s.orders.CancelOrder(ctx, user.ID, orderID)
	he := assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInvalidTransition)
	assert.Equal(t, "Cannot cancel order with status: cancelled", he.Message)
	assert.Equal(t, int64(5), testutil.StockOf(t, s.db, cake.ID))
}

func TestCancelOrder_NotCancellableAfterProcessing(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, "root", model.RoleAdmin)
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	cake := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 5)
	orderID := placeOrder(t, s, user.ID, map[int64]int64{cake.ID: 1})

	_, err := s.adminOrder.UpdateStatus(ctx, admin.ID, orderID, usecase.AdminUpdateOrderStatusInput{Status: "processing"})
	require.NoError(t, err)

	err = s.orders.CancelOrder(ctx, user.ID, orderID)
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInvalidTransition)
	assert.Equal(t, int64(4), testutil.StockOf(t, s.db, cake.ID))
}

func TestAdminCancel_RestocksAndAudits(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, "root", model.RoleAdmin)
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	cake := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 5)
	orderID := placeOrder(t, s, user.ID, map[int64]int64{cake.ID: 3})

	_, err := s.adminOrder.UpdateStatus(ctx, admin.ID, orderID, usecase.AdminUpdateOrderStatusInput{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), testutil.StockOf(t, s.db, cake.ID))

	_, err = s.adminOrder.UpdateStatus(ctx, admin.ID, orderID, usecase.AdminUpdateOrderStatusInput{Status: "pending"})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInvalidTransition)

	rt := model.AuditResourceOrder
	logs, err := s.reports.ListAuditLogs(ctx, repo.AuditLogFilter{ResourceType: &rt, ResourceID: &orderID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, `{"status":"cancelled"}`, logs[0].AfterJSON)
	assert.Equal(t, "root", logs[0].ActorUsername)

	detail, err := s.adminOrder.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, detail.Order.Status)
	assert.Equal(t, "alice", detail.Customer.Username)
	assert.Len(t, detail.Items, 1)
	require.Len(t, detail.History, 1)
	assert.Equal(t, model.OrderStatusPending, detail.History[0].From)
	assert.Equal(t, model.OrderStatusCancelled, detail.History[0].To)
	assert.Equal(t, "root", detail.History[0].ChangedBy)
}

// =====================
// Reorder
// =====================

func TestReorder_SkipsUnavailable(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, "root", model.RoleAdmin)
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	a := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 10)
	b := testutil.CreateCake(t, s.db, "Tart", "4.99", 10)
	orderID := placeOrder(t, s, user.ID, map[int64]int64{a.ID: 2, b.ID: 3})

	// Tart は在庫1まで減らす
	require.NoError(t, s.cakes.AdjustStock(ctx, admin.ID, b.ID, usecase.AdjustStockInput{Stock: 1, Reason: "damaged"}))

	out, err := s.orders.Reorder(ctx, user.ID, orderID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.AddedItems)
	assert.Equal(t, []usecase.UnavailableItem{{Name: "Tart", Requested: 3, Available: 1}}, out.UnavailableItems)
	assert.Equal(t, map[int64]int64{a.ID: 2}, testutil.CartQuantities(t, s.db, user.ID))

	// 在庫に収まる明細はカートの分に足し込む
	out, err = s.orders.Reorder(ctx, user.ID, orderID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.AddedItems)
	assert.Equal(t, map[int64]int64{a.ID: 4}, testutil.CartQuantities(t, s.db, user.ID))
}

func TestReorder_ComparesOrderedQuantityWithStock(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, "root", model.RoleAdmin)
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	tart := testutil.CreateCake(t, s.db, "Tart", "4.99", 10)
	orderID := placeOrder(t, s, user.ID, map[int64]int64{tart.ID: 3})

	require.NoError(t, s.cakes.AdjustStock(ctx, admin.ID, tart.ID, usecase.AdjustStockInput{Stock: 3, Reason: "recount"}))
	_, err := s.carts.AddToCart(ctx, user.ID, usecase.AddCartInput{CakeID: tart.ID, Quantity: 1})
	require.NoError(t, err)

	// 在庫3 >= 注文数3 なので追加される
	out, err := s.orders.Reorder(ctx, user.ID, orderID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.AddedItems)
	assert.Empty(t, out.UnavailableItems)
	assert.Equal(t, map[int64]int64{tart.ID: 4}, testutil.CartQuantities(t, s.db, user.ID))

	// 在庫2 < 3 なら今の在庫をそのまま返す
	require.NoError(t, s.cakes.AdjustStock(ctx, admin.ID, tart.ID, usecase.AdjustStockInput{Stock: 2, Reason: "recount"}))
	out, err = s.orders.Reorder(ctx, user.ID, orderID)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, []usecase.UnavailableItem{{Name: "Tart", Requested: 3, Available: 2}}, out.UnavailableItems)
	assert.Equal(t, map[int64]int64{tart.ID: 4}, testutil.CartQuantities(t, s.db, user.ID))
}

func TestReorder_NothingAvailable(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, "root", model.RoleAdmin)
	user := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	a := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 2)
	orderID := placeOrder(t, s, user.ID, map[int64]int64{a.ID: 2})
	require.NoError(t, s.cakes.AdjustStock(ctx, admin.ID, a.ID, usecase.AdjustStockInput{Stock: 0, Reason: "sold at counter"}))

	out, err := s.orders.Reorder(ctx, user.ID, orderID)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, 0, out.AddedItems)
	require.Len(t, out.UnavailableItems, 1)
	assert.Equal(t, int64(0), out.UnavailableItems[0].Available)
}

// =====================
// Cakes
// =====================

func TestCakeLifecycle(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, "root", model.RoleAdmin)

	_, err := s.cakes.Create(ctx, admin.ID, usecase.CreateCakeInput{Name: "  ", Price: "1"})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	_, err = s.cakes.Create(ctx, admin.ID, usecase.CreateCakeInput{Name: "X", Price: "-1"})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	_, err = s.cakes.Create(ctx, admin.ID, usecase.CreateCakeInput{Name: "X", Price: "1", Images: []string{"1", "2", "3", "4", "5"}})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)

	created, err := s.cakes.Create(ctx, admin.ID, usecase.CreateCakeInput{
		Name:     "Mont Blanc",
		Price:    "8.555",
		Stock:    4,
		Category: "chestnut",
		Images:   []string{"mb1.jpg", "mb2.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created.UploadedImages)

	got, err := s.cakes.Get(ctx, created.CakeID)
	require.NoError(t, err)
	assert.Equal(t, "8.56", got.Price)
	assert.Equal(t, []string{"mb1.jpg", "mb2.jpg"}, got.Images)

	require.NoError(t, s.cakes.Update(ctx, admin.ID, created.CakeID, usecase.UpdateCakeInput{Images: []string{"new.jpg"}}))
	got, err = s.cakes.Get(ctx, created.CakeID)
	require.NoError(t, err)
	assert.Equal(t, []string{"new.jpg"}, got.Images)
	assert.Equal(t, "Mont Blanc", got.Name)

	list, err := s.cakes.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.cakes.Delete(ctx, admin.ID, created.CakeID))
	_, err = s.cakes.Get(ctx, created.CakeID)
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)
	assertHTTPError(t, s.cakes.Delete(ctx, admin.ID, created.CakeID), http.StatusNotFound, usecase.CodeNotFound)

	// CREATE / UPDATE / DELETE
	assert.Equal(t, int64(3), testutil.CountRows(t, s.db, &model.AuditLog{}))
}

func TestAdjustStock_RequiresReason(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, "root", model.RoleAdmin)
	cake := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 5)

	err := s.cakes.AdjustStock(ctx, admin.ID, cake.ID, usecase.AdjustStockInput{Stock: 3, Reason: " "})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	err = s.cakes.AdjustStock(ctx, admin.ID, cake.ID, usecase.AdjustStockInput{Stock: -1, Reason: "x"})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	err = s.cakes.AdjustStock(ctx, admin.ID, 999, usecase.AdjustStockInput{Stock: 1, Reason: "x"})
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)

	require.NoError(t, s.cakes.AdjustStock(ctx, admin.ID, cake.ID, usecase.AdjustStockInput{Stock: 9, Reason: "restock"}))
	assert.Equal(t, int64(9), testutil.StockOf(t, s.db, cake.ID))

	var adj model.InventoryAdjustment
	require.NoError(t, s.db.Last(&adj).Error)
	assert.Equal(t, int64(4), adj.Delta)
	assert.Equal(t, "restock", adj.Reason)
}

// =====================
// Reports / Contact
// =====================

func TestDashboardAndCustomers(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, "root", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice", model.RoleCustomer)
	cake := testutil.CreateCake(t, s.db, "Shortcake", "12.50", 10)

	done := placeOrder(t, s, alice.ID, map[int64]int64{cake.ID: 2})
	placeOrder(t, s, alice.ID, map[int64]int64{cake.ID: 1})
	_, err := s.adminOrder.UpdateStatus(ctx, admin.ID, done, usecase.AdminUpdateOrderStatusInput{Status: "completed"})
	require.NoError(t, err)

	d, err := s.reports.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.DashboardStatsOutput{
		TotalOrders:     2,
		TotalCustomers:  1,
		TotalProducts:   1,
		PendingOrders:   1,
		CompletedOrders: 1,
		TotalRevenue:    "25.00",
	}, d.Stats)
	require.Len(t, d.RecentOrders, 2)
	assert.Equal(t, "alice", d.RecentOrders[0].CustomerName)

	c, err := s.reports.GetCustomer(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.Customer.TotalOrders)
	assert.Equal(t, "25.00", c.Customer.TotalSpent)
	assert.Len(t, c.Orders, 2)

	_, err = s.reports.GetCustomer(ctx, admin.ID)
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)
}

func TestContactMessages(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()

	_, err := s.contact.Submit(ctx, usecase.SubmitContactInput{Name: "A", Email: "a@example.com", Subject: "Hi"})
	he := assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	assert.Equal(t, "Please fill all required fields", he.Message)

	_, err = s.contact.Submit(ctx, usecase.SubmitContactInput{Name: "A", Email: "not-an-email", Subject: "Hi", Message: "Hello"})
	he = assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	assert.Equal(t, "Invalid email format", he.Message)

	id, err := s.contact.Submit(ctx, usecase.SubmitContactInput{Name: "A", Email: "a@example.com", Subject: "Hi", Message: "Hello"})
	require.NoError(t, err)

	require.NoError(t, s.contact.MarkRead(ctx, id))
	msgs, err := s.contact.List(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, model.ContactStatusRead, msgs[0].Status)

	require.NoError(t, s.contact.Delete(ctx, id))
	assertHTTPError(t, s.contact.Delete(ctx, id), http.StatusNotFound, usecase.CodeNotFound)
	assertHTTPError(t, s.contact.MarkRead(ctx, id), http.StatusNotFound, usecase.CodeNotFound)
}
