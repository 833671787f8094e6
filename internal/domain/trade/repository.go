package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByIDForWorkspace finds an order with its items
	FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate finds an order and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, workspaceID, id uuid.UUID) (*Order, error)

	// FindAllForWorkspace lists orders; Filters may carry "status", "type" and "customer_id"
	FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]Order, error)

	// CountForWorkspace counts orders matching the filter
	CountForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates an order and replaces its items
	Save(ctx context.Context, order *Order) error

	// UpdateStatus persists the status and status_changed_at columns only
	UpdateStatus(ctx context.Context, order *Order) error

	// ApplyPaymentDelta adds delta to amount_paid and recomputes remaining_amount
	// in a single UPDATE. delta may be negative when a payment is removed.
	ApplyPaymentDelta(ctx context.Context, workspaceID, id uuid.UUID, delta decimal.Decimal) error

	// SetPaymentTotals overwrites amount_paid and remaining_amount
	SetPaymentTotals(ctx context.Context, order *Order) error

	// Delete removes the order and its items
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
}

// PaymentRepository defines the interface for the payment ledger
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*Payment, error)
	FindByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) ([]Payment, error)
	CountByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) (int64, error)
	SumByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) (decimal.Decimal, error)
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	// DeleteByOrder removes every payment of an order and returns how many were removed
	DeleteByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) (int64, error)
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, workspaceID, id uuid.UUID) (*PurchaseOrder, error)
	FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)
	CountForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, po *PurchaseOrder) error

	// UpdateStatus persists status and received_date
	UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status PurchaseOrderStatus, receivedDate *time.Time) error

	// IncrementReceived adds quantity to a line's quantity_received, guarded so
	// the result never exceeds quantity_ordered. Returns
	// shared.ErrReceiptExceedsRemaining when the guard rejects the update.
	IncrementReceived(ctx context.Context, poID, itemID uuid.UUID, quantity decimal.Decimal) error
}
