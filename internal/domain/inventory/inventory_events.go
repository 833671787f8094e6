package inventory

import (
	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeStockLevel = "StockLevel"

// EventTypeStockMoved is published for every recorded movement
const EventTypeStockMoved = "StockMoved"

// StockMovedEvent is raised when a movement is appended to the ledger
type StockMovedEvent struct {
	shared.BaseDomainEvent
	MovementID      uuid.UUID       `json:"movement_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	LocationID      uuid.UUID       `json:"location_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	MovementType    MovementType    `json:"movement_type"`
	OrderID         *uuid.UUID      `json:"order_id,omitempty"`
	PurchaseOrderID *uuid.UUID      `json:"purchase_order_id,omitempty"`
}

// NewStockMovedEvent creates a new StockMovedEvent
func NewStockMovedEvent(m *StockMovement) *StockMovedEvent {
	return &StockMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMoved, AggregateTypeStockLevel, m.ProductID, m.WorkspaceID),
		MovementID:      m.ID,
		ProductID:       m.ProductID,
		LocationID:      m.LocationID,
		Quantity:        m.Quantity,
		MovementType:    m.MovementType,
		OrderID:         m.OrderID,
		PurchaseOrderID: m.PurchaseOrderID,
	}
}
