package trade

import (
	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderReceived      = "PurchaseOrderReceived"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
)

// PurchaseOrderCreatedEvent is raised when a purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	Number          string    `json:"number"`
	SupplierID      uuid.UUID `json:"supplier_id"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(po *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, po.ID, po.WorkspaceID),
		PurchaseOrderID: po.ID,
		Number:          po.Number,
		SupplierID:      po.SupplierID,
	}
}

// ReceivedLineInfo describes one accepted receipt line in an event payload
type ReceivedLineInfo struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// PurchaseOrderReceivedEvent is raised on every accepted goods receipt
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderID uuid.UUID           `json:"purchase_order_id"`
	Number          string              `json:"number"`
	Status          PurchaseOrderStatus `json:"status"`
	Lines           []ReceivedLineInfo  `json:"lines"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(po *PurchaseOrder, received []ReceivedLine) *PurchaseOrderReceivedEvent {
	lines := make([]ReceivedLineInfo, 0, len(received))
	for _, r := range received {
		lines = append(lines, ReceivedLineInfo{ItemID: r.ItemID, ProductID: r.ProductID, Quantity: r.Quantity})
	}
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, po.ID, po.WorkspaceID),
		PurchaseOrderID: po.ID,
		Number:          po.Number,
		Status:          po.Status,
		Lines:           lines,
	}
}

// PurchaseOrderStatusChangedEvent is raised when the PO status changes
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderID uuid.UUID           `json:"purchase_order_id"`
	Number          string              `json:"number"`
	From            PurchaseOrderStatus `json:"from"`
	To              PurchaseOrderStatus `json:"to"`
}

// NewPurchaseOrderStatusChangedEvent creates a new PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(po *PurchaseOrder, from, to PurchaseOrderStatus) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, po.ID, po.WorkspaceID),
		PurchaseOrderID: po.ID,
		Number:          po.Number,
		From:            from,
		To:              to,
	}
}
