package trade

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, workspaceID, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) CountForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, workspaceID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) ApplyPaymentDelta(ctx context.Context, workspaceID, id uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, workspaceID, id, delta)
	return args.Error(0)
}

func (m *MockOrderRepository) SetPaymentTotals(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of trade.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *trade.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*trade.Payment, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) ([]trade.Payment, error) {
	args := m.Called(ctx, workspaceID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, workspaceID, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) SumByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, workspaceID, orderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, workspaceID, orderID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPurchaseOrderRepository is a mock implementation of trade.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, workspaceID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, workspaceID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, po *trade.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status trade.PurchaseOrderStatus, receivedDate *time.Time) error {
	args := m.Called(ctx, workspaceID, id, status, receivedDate)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) IncrementReceived(ctx context.Context, poID, itemID uuid.UUID, quantity decimal.Decimal) error {
	args := m.Called(ctx, poID, itemID, quantity)
	return args.Error(0)
}

// MockStockLedger is a mock implementation of inventory.StockLedger
type MockStockLedger struct {
	mock.Mock
}

func (m *MockStockLedger) Append(ctx context.Context, movements ...*inventory.StockMovement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockStockLedger) FindLevel(ctx context.Context, workspaceID, productID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	args := m.Called(ctx, workspaceID, productID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockLevel), args.Error(1)
}

func (m *MockStockLedger) FindLevelForUpdate(ctx context.Context, workspaceID, productID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	args := m.Called(ctx, workspaceID, productID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockLevel), args.Error(1)
}

func (m *MockStockLedger) ListLevels(ctx context.Context, workspaceID uuid.UUID, filter inventory.LevelFilter) ([]inventory.StockLevel, error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockLevel), args.Error(1)
}

func (m *MockStockLedger) ListMovements(ctx context.Context, workspaceID uuid.UUID, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]inventory.StockMovement), args.Get(1).(int64), args.Error(2)
}

func (m *MockStockLedger) AllMovements(ctx context.Context, workspaceID uuid.UUID) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockLedger) ReplaceLevels(ctx context.Context, workspaceID uuid.UUID, levels []inventory.StockLevel) error {
	args := m.Called(ctx, workspaceID, levels)
	return args.Error(0)
}

// MockNumberingService is a mock implementation of NumberingService
type MockNumberingService struct {
	mock.Mock
}

func (m *MockNumberingService) Next(ctx context.Context, workspaceID uuid.UUID, kind SequenceKind, year int) (string, error) {
	args := m.Called(ctx, workspaceID, kind, year)
	return args.String(0), args.Error(1)
}

// MockInvoiceGenerator is a mock implementation of InvoiceGenerator
type MockInvoiceGenerator struct {
	mock.Mock
}

func (m *MockInvoiceGenerator) GenerateInvoice(ctx context.Context, order *trade.Order, category trade.InvoiceCategory) (uuid.UUID, error) {
	args := m.Called(ctx, order, category)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockInvoiceGenerator) HasInvoice(ctx context.Context, workspaceID, orderID uuid.UUID, category trade.InvoiceCategory) (bool, error) {
	args := m.Called(ctx, workspaceID, orderID, category)
	return args.Bool(0), args.Error(1)
}

// MockLocationResolver is a mock implementation of DefaultLocationResolver
type MockLocationResolver struct {
	mock.Mock
}

func (m *MockLocationResolver) DefaultLocation(ctx context.Context, workspaceID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockStockDebitor is a mock implementation of StockDebitor
type MockStockDebitor struct {
	mock.Mock
}

func (m *MockStockDebitor) DebitOrder(ctx context.Context, workspaceID, orderID uuid.UUID, lines []inventory.StockLine, locationID, actorID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, orderID, lines, locationID, actorID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// memoryIdempotency is a minimal shared.IdempotencyStore
type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{keys: make(map[string]struct{})}
}

func (s *memoryIdempotency) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = struct{}{}
	return true, nil
}

func (s *memoryIdempotency) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok, nil
}

func (s *memoryIdempotency) Close() error { return nil }

// countingLocker records which keys were locked
type countingLocker struct {
	mu      sync.Mutex
	locked  []string
	release int
	err     error
}

func (l *countingLocker) Lock(_ context.Context, key string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.release++
		l.mu.Unlock()
	}, nil
}

// recordingMetrics captures post-action failures
type recordingMetrics struct {
	NopMetrics
	failures    []string
	transitions []string
	received    decimal.Decimal
}

func (r *recordingMetrics) RecordPostActionFailure(_ context.Context, action string) {
	r.failures = append(r.failures, action)
}

func (r *recordingMetrics) RecordTransition(_ context.Context, from, to string, _ bool) {
	r.transitions = append(r.transitions, from+"->"+to)
}

func (r *recordingMetrics) RecordGoodsReceived(_ context.Context, units decimal.Decimal) {
	r.received = r.received.Add(units)
}
