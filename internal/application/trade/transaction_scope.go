package trade

import (
	"context"

	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to trade repositories.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to one transaction
type TransactionalRepositories interface {
	Orders() trade.OrderRepository
	Payments() trade.PaymentRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	StockLedger() inventory.StockLedger
}

// NoOpTransactionScope runs the function against plain repositories.
// Used in tests.
type NoOpTransactionScope struct {
	orders         trade.OrderRepository
	payments       trade.PaymentRepository
	purchaseOrders trade.PurchaseOrderRepository
	ledger         inventory.StockLedger
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	orders trade.OrderRepository,
	payments trade.PaymentRepository,
	purchaseOrders trade.PurchaseOrderRepository,
	ledger inventory.StockLedger,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orders:         orders,
		payments:       payments,
		purchaseOrders: purchaseOrders,
		ledger:         ledger,
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Orders() trade.OrderRepository { return s.orders }

func (s *NoOpTransactionScope) Payments() trade.PaymentRepository { return s.payments }

func (s *NoOpTransactionScope) PurchaseOrders() trade.PurchaseOrderRepository {
	return s.purchaseOrders
}

func (s *NoOpTransactionScope) StockLedger() inventory.StockLedger { return s.ledger }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
