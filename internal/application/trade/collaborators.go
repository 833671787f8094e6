package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SequenceKind selects a numbering sequence
type SequenceKind string

const (
	SequenceOrder         SequenceKind = "order"
	SequencePurchaseOrder SequenceKind = "purchase_order"
	SequenceInvoice       SequenceKind = "invoice"
)

// NumberingService hands out document numbers, collision-free per workspace, kind and year
type NumberingService interface {
	Next(ctx context.Context, workspaceID uuid.UUID, kind SequenceKind, year int) (string, error)
}

// InvoiceGenerator creates invoices from orders. Numbering and line copying
// are its own concern.
type InvoiceGenerator interface {
	GenerateInvoice(ctx context.Context, order *trade.Order, category trade.InvoiceCategory) (uuid.UUID, error)
	HasInvoice(ctx context.Context, workspaceID, orderID uuid.UUID, category trade.InvoiceCategory) (bool, error)
}

// DefaultLocationResolver returns the stock location used when none is given
type DefaultLocationResolver interface {
	DefaultLocation(ctx context.Context, workspaceID uuid.UUID) (uuid.UUID, error)
}

// StockDebitor removes order lines from stock as one batch
type StockDebitor interface {
	DebitOrder(ctx context.Context, workspaceID, orderID uuid.UUID, lines []inventory.StockLine, locationID, actorID uuid.UUID) error
}

// RecordLocker serializes writers on one record. The returned function releases the lock.
type RecordLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// FulfillmentMetrics records business counters
type FulfillmentMetrics interface {
	RecordPayment(ctx context.Context, paymentType trade.PaymentType, amount decimal.Decimal)
	RecordPostActionFailure(ctx context.Context, action string)
	RecordGoodsReceived(ctx context.Context, units decimal.Decimal)
	RecordTransition(ctx context.Context, from, to string, automatic bool)
}

// NopMetrics discards every measurement
type NopMetrics struct{}

func (NopMetrics) RecordPayment(context.Context, trade.PaymentType, decimal.Decimal) {}
func (NopMetrics) RecordPostActionFailure(context.Context, string) {}
func (NopMetrics) RecordGoodsReceived(context.Context, decimal.Decimal) {}
func (NopMetrics) RecordTransition(context.Context, string, string, bool) {}

// Post-action names reported in results and metrics
const (
	ActionStockDebit    = "stock_debit"
	ActionStatusAdvance = "status_advance"
	ActionInvoice       = "invoice_generation"
)
