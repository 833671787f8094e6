package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/mobilia/backend/internal/application/inventory"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/mobilia/backend/internal/interfaces/http/dto"
	"github.com/mobilia/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	os.Exit(m.Run())
}

// MockOrderUseCases implements OrderUseCases for testing
type MockOrderUseCases struct {
	mock.Mock
}

func (m *MockOrderUseCases) CreateOrder(ctx context.Context, cc identity.CapabilityContext, input apptrade.CreateOrderInput) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, cc, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCases) CreateQuickSale(ctx context.Context, cc identity.CapabilityContext, input apptrade.QuickSaleInput) (*apptrade.QuickSaleResult, error) {
	args := m.Called(ctx, cc, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.QuickSaleResult), args.Error(1)
}

func (m *MockOrderUseCases) GetOrder(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, cc, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCases) ListOrders(ctx context.Context, cc identity.CapabilityContext, filter shared.Filter) ([]apptrade.OrderResponse, int64, error) {
	args := m.Called(ctx, cc, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]apptrade.OrderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderUseCases) UpdateDraftItems(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, input apptrade.UpdateDraftItemsInput) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, cc, orderID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCases) Transition(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, target trade.OrderStatus) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, cc, orderID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCases) DeleteOrder(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) error {
	args := m.Called(ctx, cc, orderID)
	return args.Error(0)
}

func (m *MockOrderUseCases) RequestInvoice(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, category trade.InvoiceCategory) (*apptrade.InvoiceResult, error) {
	args := m.Called(ctx, cc, orderID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.InvoiceResult), args.Error(1)
}

func (m *MockOrderUseCases) ApplyPayment(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, input apptrade.ApplyPaymentInput) (*apptrade.PaymentResult, error) {
	args := m.Called(ctx, cc, orderID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.PaymentResult), args.Error(1)
}

func (m *MockOrderUseCases) DeletePayment(ctx context.Context, cc identity.CapabilityContext, orderID, paymentID uuid.UUID) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, cc, orderID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

func (m *MockOrderUseCases) ListPayments(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) ([]apptrade.PaymentResponse, error) {
	args := m.Called(ctx, cc, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]apptrade.PaymentResponse), args.Error(1)
}

func (m *MockOrderUseCases) ReconcileOrder(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) (*apptrade.ReconcileResult, error) {
	args := m.Called(ctx, cc, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.ReconcileResult), args.Error(1)
}

// MockPurchaseOrderUseCases implements PurchaseOrderUseCases for testing
type MockPurchaseOrderUseCases struct {
	mock.Mock
}

func (m *MockPurchaseOrderUseCases) CreatePurchaseOrder(ctx context.Context, cc identity.CapabilityContext, input apptrade.CreatePurchaseOrderInput) (*apptrade.PurchaseOrderResponse, error) {
	args := m.Called(ctx, cc, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.PurchaseOrderResponse), args.Error(1)
}

func (m *MockPurchaseOrderUseCases) GetPurchaseOrder(ctx context.Context, cc identity.CapabilityContext, id uuid.UUID) (*apptrade.PurchaseOrderResponse, error) {
	args := m.Called(ctx, cc, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.PurchaseOrderResponse), args.Error(1)
}

func (m *MockPurchaseOrderUseCases) ListPurchaseOrders(ctx context.Context, cc identity.CapabilityContext, filter shared.Filter) ([]apptrade.PurchaseOrderResponse, int64, error) {
	args := m.Called(ctx, cc, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]apptrade.PurchaseOrderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockPurchaseOrderUseCases) UpdateStatus(ctx context.Context, cc identity.CapabilityContext, id uuid.UUID, target trade.PurchaseOrderStatus) (*apptrade.PurchaseOrderResponse, error) {
	args := m.Called(ctx, cc, id, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.PurchaseOrderResponse), args.Error(1)
}

func (m *MockPurchaseOrderUseCases) ReceiveGoods(ctx context.Context, cc identity.CapabilityContext, id uuid.UUID, input apptrade.ReceiveGoodsInput) (*apptrade.ReceiveResult, error) {
	args := m.Called(ctx, cc, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.ReceiveResult), args.Error(1)
}

// MockStockUseCases implements StockUseCases for testing
type MockStockUseCases struct {
	mock.Mock
}

func (m *MockStockUseCases) Adjust(ctx context.Context, cc identity.CapabilityContext, input appinv.AdjustStockInput) (*appinv.AdjustResult, error) {
	args := m.Called(ctx, cc, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.AdjustResult), args.Error(1)
}

func (m *MockStockUseCases) Transfer(ctx context.Context, cc identity.CapabilityContext, input appinv.TransferStockInput) (*appinv.TransferResult, error) {
	args := m.Called(ctx, cc, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.TransferResult), args.Error(1)
}

func (m *MockStockUseCases) Reserve(ctx context.Context, cc identity.CapabilityContext, input appinv.ReservationInput) (*appinv.MovementResponse, error) {
	args := m.Called(ctx, cc, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.MovementResponse), args.Error(1)
}

func (m *MockStockUseCases) Unreserve(ctx context.Context, cc identity.CapabilityContext, input appinv.ReservationInput) (*appinv.MovementResponse, error) {
	args := m.Called(ctx, cc, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.MovementResponse), args.Error(1)
}

func (m *MockStockUseCases) GetStockAlerts(ctx context.Context, workspaceID uuid.UUID) (inventory.StockAlerts, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).(inventory.StockAlerts), args.Error(1)
}

func (m *MockStockUseCases) ListLevels(ctx context.Context, workspaceID uuid.UUID, filter inventory.LevelFilter) ([]appinv.StockLevelResponse, error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinv.StockLevelResponse), args.Error(1)
}

func (m *MockStockUseCases) ListMovements(ctx context.Context, workspaceID uuid.UUID, filter inventory.MovementFilter) ([]appinv.MovementResponse, int64, error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appinv.MovementResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockStockUseCases) RebuildLevels(ctx context.Context, cc identity.CapabilityContext) ([]appinv.StockLevelResponse, error) {
	args := m.Called(ctx, cc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinv.StockLevelResponse), args.Error(1)
}

// ==================== helpers ====================

func testCapability() identity.CapabilityContext {
	return identity.CapabilityContext{
		Role:        identity.RoleManager,
		ActorID:     uuid.New(),
		WorkspaceID: uuid.New(),
	}
}

// newTestEngine mounts registrar under /api/v1 with cc already resolved
func newTestEngine(cc identity.CapabilityContext, registrar interface{ RegisterRoutes(*gin.RouterGroup) }) *gin.Engine {
	engine := gin.New()
	api := engine.Group("/api/v1", func(c *gin.Context) {
		c.Set("request_id", "test-request")
		middleware.SetCapabilityContext(c, cc)
		c.Next()
	})
	registrar.RegisterRoutes(api)
	return engine
}

func performRequest(t *testing.T, engine *gin.Engine, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
