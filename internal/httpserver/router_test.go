package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"retail-backend/internal/domain"
	orderrepo "retail-backend/internal/repository/order"
	ordersvc "retail-backend/internal/service/order"
	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubCartService struct {
	line    *domain.CartLine
	view    *domain.CartView
	saved   []domain.CartLine
	err     error
	lastQty int
}

func (s *stubCartService) AddItem(_ context.Context, _ domain.Actor, _ int64, quantity int) (*domain.CartLine, error) {
	s.lastQty = quantity
	return s.line, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, _ domain.Actor, _ int64, quantity int) (*domain.CartLine, error) {
	s.lastQty = quantity
	return s.line, s.err
}

func (s *stubCartService) Remove(_ context.Context, _ domain.Actor, _ int64) error {
	return s.err
}

func (s *stubCartService) Clear(_ context.Context, _ domain.Actor) error {
	return s.err
}

func (s *stubCartService) SaveForLater(_ context.Context, _ domain.Actor, _ int64) (*domain.CartLine, error) {
	return s.line, s.err
}

func (s *stubCartService) RestoreToCart(_ context.Context, _ domain.Actor, _ int64) (*domain.CartLine, error) {
	return s.line, s.err
}

func (s *stubCartService) GetActive(_ context.Context, _ domain.Actor) (*domain.CartView, error) {
	return s.view, s.err
}

func (s *stubCartService) GetSaved(_ context.Context, _ domain.Actor) ([]domain.CartLine, error) {
	return s.saved, s.err
}

type stubOrderService struct {
	order      *domain.Order
	orders     []domain.Order
	stats      *domain.OrderStats
	err        error
	lastActor  domain.Actor
	lastStatus string
}

func (s *stubOrderService) Create(_ context.Context, actor domain.Actor, _ ordersvc.CreateInput) (*domain.Order, error) {
	s.lastActor = actor
	return s.order, s.err
}

func (s *stubOrderService) Get(_ context.Context, actor domain.Actor, _ int64) (*domain.Order, error) {
	s.lastActor = actor
	return s.order, s.err
}

func (s *stubOrderService) List(_ context.Context, actor domain.Actor, _ orderrepo.ListFilter) ([]domain.Order, error) {
	s.lastActor = actor
	return s.orders, s.err
}

func (s *stubOrderService) UpdateStatus(_ context.Context, actor domain.Actor, _ int64, status string) (*domain.Order, error) {
	s.lastActor = actor
	s.lastStatus = status
	return s.order, s.err
}

func (s *stubOrderService) Cancel(_ context.Context, actor domain.Actor, _ int64) (*domain.Order, error) {
	s.lastActor = actor
	return s.order, s.err
}

func (s *stubOrderService) Stats(_ context.Context, actor domain.Actor) (*domain.OrderStats, error) {
	s.lastActor = actor
	return s.stats, s.err
}

type stubInventoryService struct {
	record    *domain.InventoryRecord
	records   []domain.InventoryRecord
	movements []domain.StockMovement
	stats     *domain.InventoryStats
	err       error
	lastQty   int
	lastWH    int64
}

func (s *stubInventoryService) AddStock(_ context.Context, _ domain.Actor, _, warehouseID int64, quantity int, _ string) (*domain.InventoryRecord, error) {
	s.lastWH = warehouseID
	s.lastQty = quantity
	return s.record, s.err
}

func (s *stubInventoryService) AdjustStock(_ context.Context, _ domain.Actor, _, warehouseID int64, delta int, _ string) (*domain.InventoryRecord, error) {
	s.lastWH = warehouseID
	s.lastQty = delta
	return s.record, s.err
}

func (s *stubInventoryService) SetThreshold(_ context.Context, _ domain.Actor, _, warehouseID int64, threshold int) (*domain.InventoryRecord, error) {
	s.lastWH = warehouseID
	s.lastQty = threshold
	return s.record, s.err
}

func (s *stubInventoryService) GetByProduct(_ context.Context, _ int64) ([]domain.InventoryRecord, error) {
	return s.records, s.err
}

func (s *stubInventoryService) GetByWarehouse(_ context.Context, _ int64, _ bool) ([]domain.InventoryRecord, error) {
	return s.records, s.err
}

func (s *stubInventoryService) GetLowStock(_ context.Context, _ int64) ([]domain.InventoryRecord, error) {
	return s.records, s.err
}

func (s *stubInventoryService) GetMovements(_ context.Context, _ int64, _ int) ([]domain.StockMovement, error) {
	return s.movements, s.err
}

func (s *stubInventoryService) GetStats(_ context.Context, _ domain.Actor) (*domain.InventoryStats, error) {
	return s.stats, s.err
}

func testRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return buildRouter(logDiscard(), nil, deps, []string{"*"})
}

func do(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var (
	customerHeaders = map[string]string{"X-User-ID": "7", "X-User-Role": "CUSTOMER"}
	adminHeaders    = map[string]string{"X-User-ID": "1", "X-User-Role": "ADMIN"}
)

func TestActorMiddleware_RejectsMissingIdentity(t *testing.T) {
	router := testRouter(Deps{CartSvc: &stubCartService{}, OrderSvc: &stubOrderService{}, InventorySvc: &stubInventoryService{}})

	rec := do(router, http.MethodGet, "/cart", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestActorMiddleware_ResolvesActor(t *testing.T) {
	orderSvc := &stubOrderService{orders: []domain.Order{}}
	router := testRouter(Deps{CartSvc: &stubCartService{}, OrderSvc: orderSvc, InventorySvc: &stubInventoryService{}})

	rec := do(router, http.MethodGet, "/orders", "", adminHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if orderSvc.lastActor.UserID != 1 || !orderSvc.lastActor.Privileged() {
		t.Fatalf("unexpected actor %+v", orderSvc.lastActor)
	}
}

func TestAddCartItem_Created(t *testing.T) {
	cartSvc := &stubCartService{line: &domain.CartLine{ID: 11, ProductID: 3, Quantity: 2}}
	router := testRouter(Deps{CartSvc: cartSvc, OrderSvc: &stubOrderService{}, InventorySvc: &stubInventoryService{}})

	rec := do(router, http.MethodPost, "/cart/add", `{"product_id":3,"quantity":2}`, customerHeaders)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if cartSvc.lastQty != 2 {
		t.Fatalf("expected quantity 2, got %d", cartSvc.lastQty)
	}
}

func TestUpdateCartItem_ForbiddenMapsTo403(t *testing.T) {
	cartSvc := &stubCartService{err: domain.ErrForbidden}
	router := testRouter(Deps{CartSvc: cartSvc, OrderSvc: &stubOrderService{}, InventorySvc: &stubInventoryService{}})

	rec := do(router, http.MethodPut, "/cart/11", `{"quantity":3}`, customerHeaders)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateOrder_EmptyCartMapsTo400(t *testing.T) {
	orderSvc := &stubOrderService{err: domain.ErrEmptyCart}
	router := testRouter(Deps{CartSvc: &stubCartService{}, OrderSvc: orderSvc, InventorySvc: &stubInventoryService{}})

	rec := do(router, http.MethodPost, "/orders", `{"delivery_address":"1 Main St"}`, customerHeaders)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"kind":"empty_cart"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUpdateOrderStatus_InvalidStatusMapsTo400(t *testing.T) {
	orderSvc := &stubOrderService{err: domain.ErrInvalidStatus}
	router := testRouter(Deps{CartSvc: &stubCartService{}, OrderSvc: orderSvc, InventorySvc: &stubInventoryService{}})

	rec := do(router, http.MethodPost, "/orders/42/status", `{"status":"REFUNDED"}`, adminHeaders)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"kind":"invalid_status"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCancelOrder_TerminalMapsTo400(t *testing.T) {
	orderSvc := &stubOrderService{err: domain.ErrInvalidState}
	router := testRouter(Deps{CartSvc: &stubCartService{}, OrderSvc: orderSvc, InventorySvc: &stubInventoryService{}})

	rec := do(router, http.MethodPost, "/orders/42/cancel", "", customerHeaders)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAdjustStock_PassesSignedQuantity(t *testing.T) {
	invSvc := &stubInventoryService{record: &domain.InventoryRecord{ID: 5, QuantityOnHand: 0}}
	router := testRouter(Deps{CartSvc: &stubCartService{}, OrderSvc: &stubOrderService{}, InventorySvc: invSvc})

	rec := do(router, http.MethodPost, "/inventory/product/1/adjust-stock", `{"warehouse_id":2,"quantity":-8}`, adminHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if invSvc.lastQty != -8 || invSvc.lastWH != 2 {
		t.Fatalf("unexpected call qty=%d wh=%d", invSvc.lastQty, invSvc.lastWH)
	}
}

func TestAddStock_RequiresWarehouse(t *testing.T) {
	router := testRouter(Deps{CartSvc: &stubCartService{}, OrderSvc: &stubOrderService{}, InventorySvc: &stubInventoryService{}})

	rec := do(router, http.MethodPost, "/inventory/product/1/add-stock", `{"quantity":10}`, adminHeaders)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestListOrders_RejectsBadStatusFilter(t *testing.T) {
	router := testRouter(Deps{CartSvc: &stubCartService{}, OrderSvc: &stubOrderService{}, InventorySvc: &stubInventoryService{}})

	rec := do(router, http.MethodGet, "/orders?status=BOGUS", "", customerHeaders)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	router := testRouter(Deps{CartSvc: &stubCartService{}, OrderSvc: &stubOrderService{}, InventorySvc: &stubInventoryService{}})

	rec := do(router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
