package inventory

import (
	"context"

	"github.com/mobilia/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the stock ledger.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to one transaction
type TransactionalRepositories interface {
	StockLedger() inventory.StockLedger
}

// NoOpTransactionScope runs the function against plain repositories.
// Used in tests.
type NoOpTransactionScope struct {
	ledger inventory.StockLedger
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(ledger inventory.StockLedger) *NoOpTransactionScope {
	return &NoOpTransactionScope{ledger: ledger}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockLedger returns the stock ledger
func (s *NoOpTransactionScope) StockLedger() inventory.StockLedger {
	return s.ledger
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
