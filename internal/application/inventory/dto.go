package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// AdjustStockInput sets the counted on-hand quantity of a product at a location
type AdjustStockInput struct {
	ProductID   uuid.UUID
	LocationID  uuid.UUID
	NewQuantity decimal.Decimal
	Notes       string
}

// TransferStockInput moves stock between two locations
type TransferStockInput struct {
	ProductID      uuid.UUID
	FromLocationID uuid.UUID
	ToLocationID   uuid.UUID
	Quantity       decimal.Decimal
	Notes          string
}

// ReservationInput earmarks or releases stock
type ReservationInput struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Quantity   decimal.Decimal
	OrderID    *uuid.UUID
	Notes      string
}

// StockLevelResponse represents a stock level in API responses
type StockLevelResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	LocationID       uuid.UUID       `json:"location_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	Available        decimal.Decimal `json:"available"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	LocationID      uuid.UUID       `json:"location_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	MovementType    string          `json:"movement_type"`
	OrderID         *uuid.UUID      `json:"order_id,omitempty"`
	PurchaseOrderID *uuid.UUID      `json:"purchase_order_id,omitempty"`
	ActorID         *uuid.UUID      `json:"actor_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AdjustResult is returned by Adjust. Movement is nil when nothing changed.
type AdjustResult struct {
	Movement *MovementResponse  `json:"movement,omitempty"`
	Level    StockLevelResponse `json:"level"`
}

// TransferResult is returned by Transfer
type TransferResult struct {
	Out MovementResponse `json:"out"`
	In  MovementResponse `json:"in"`
}

// ToStockLevelResponse converts a domain level to a response. Available is
// floored at zero since a negative availability is never shown.
func ToStockLevelResponse(level *inventory.StockLevel) StockLevelResponse {
	available := level.Available()
	if available.IsNegative() {
		available = decimal.Zero
	}
	return StockLevelResponse{
		ProductID:        level.ProductID,
		LocationID:       level.LocationID,
		Quantity:         level.Quantity,
		ReservedQuantity: level.ReservedQuantity,
		Available:        available,
		UpdatedAt:        level.UpdatedAt,
	}
}

// ToStockLevelResponses converts a slice of levels
func ToStockLevelResponses(levels []inventory.StockLevel) []StockLevelResponse {
	out := make([]StockLevelResponse, len(levels))
	for i := range levels {
		out[i] = ToStockLevelResponse(&levels[i])
	}
	return out
}

// ToMovementResponse converts a domain movement to a response
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		LocationID:      m.LocationID,
		Quantity:        m.Quantity,
		MovementType:    string(m.MovementType),
		OrderID:         m.OrderID,
		PurchaseOrderID: m.PurchaseOrderID,
		ActorID:         m.ActorID,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out
}
