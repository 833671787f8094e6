package trade

import (
	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypePaymentApplied     = "PaymentApplied"
	EventTypePaymentDeleted     = "PaymentDeleted"
	EventTypeOrderDeleted       = "OrderDeleted"
)

// OrderCreatedEvent is raised when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	OrderType   OrderType `json:"order_type"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID, order.WorkspaceID),
		OrderID:         order.ID,
		OrderNumber:     order.Number,
		OrderType:       order.Type,
	}
}

// OrderStatusChangedEvent is raised on every status change.
// Automatic is true when the change was driven by a payment.
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
	Automatic   bool        `json:"automatic"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(order *Order, from, to OrderStatus, automatic bool) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, order.ID, order.WorkspaceID),
		OrderID:         order.ID,
		OrderNumber:     order.Number,
		From:            from,
		To:              to,
		Automatic:       automatic,
	}
}

// PaymentAppliedEvent is raised when a payment is recorded against an order
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID       `json:"order_id"`
	PaymentID       uuid.UUID       `json:"payment_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentType     PaymentType     `json:"payment_type"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(order *Order, payment *Payment) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeOrder, order.ID, order.WorkspaceID),
		OrderID:         order.ID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		PaymentType:     payment.Type,
		AmountPaid:      order.AmountPaid,
		RemainingAmount: order.RemainingAmount,
	}
}

// PaymentDeletedEvent is raised when a payment is removed from the ledger
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID       `json:"order_id"`
	PaymentID       uuid.UUID       `json:"payment_id"`
	Amount          decimal.Decimal `json:"amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(order *Order, payment *Payment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeleted, AggregateTypeOrder, order.ID, order.WorkspaceID),
		OrderID:         order.ID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		AmountPaid:      order.AmountPaid,
		RemainingAmount: order.RemainingAmount,
	}
}

// OrderDeletedEvent is raised after an order and its payments are removed
type OrderDeletedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID   `json:"order_id"`
	OrderNumber     string      `json:"order_number"`
	Status          OrderStatus `json:"status"`
	DeletedPayments int64       `json:"deleted_payments"`
}

// NewOrderDeletedEvent creates a new OrderDeletedEvent
func NewOrderDeletedEvent(order *Order, deletedPayments int64) *OrderDeletedEvent {
	return &OrderDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDeleted, AggregateTypeOrder, order.ID, order.WorkspaceID),
		OrderID:         order.ID,
		OrderNumber:     order.Number,
		Status:          order.Status,
		DeletedPayments: deletedPayments,
	}
}
