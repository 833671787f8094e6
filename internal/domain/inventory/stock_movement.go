package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType represents the type of a stock movement
type MovementType string

const (
	MovementTypeIn            MovementType = "in"
	MovementTypeOut           MovementType = "out"
	MovementTypeAdjustment    MovementType = "adjustment"
	MovementTypeReservation   MovementType = "reservation"
	MovementTypeUnreservation MovementType = "unreservation"
	MovementTypeTransferIn    MovementType = "transfer_in"
	MovementTypeTransferOut   MovementType = "transfer_out"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid checks if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment, MovementTypeReservation,
		MovementTypeUnreservation, MovementTypeTransferIn, MovementTypeTransferOut:
		return true
	}
	return false
}

// AffectsReserved reports whether the movement changes reserved_quantity
// instead of on-hand quantity
func (t MovementType) AffectsReserved() bool {
	return t == MovementTypeReservation || t == MovementTypeUnreservation
}

// acceptsSign checks the sign convention of each movement type
func (t MovementType) acceptsSign(q decimal.Decimal) bool {
	switch t {
	case MovementTypeIn, MovementTypeTransferIn, MovementTypeReservation:
		return q.IsPositive()
	case MovementTypeOut, MovementTypeTransferOut, MovementTypeUnreservation:
		return q.IsNegative()
	case MovementTypeAdjustment:
		return !q.IsZero()
	}
	return false
}

// StockMovement is an append-only signed change against a (product, location) pair
type StockMovement struct {
	ID              uuid.UUID
	WorkspaceID     uuid.UUID
	ProductID       uuid.UUID
	LocationID      uuid.UUID
	Quantity        decimal.Decimal
	MovementType    MovementType
	OrderID         *uuid.UUID
	PurchaseOrderID *uuid.UUID
	ActorID         *uuid.UUID
	Notes           string
	CreatedAt       time.Time
}

// NewStockMovement creates a movement carrying a signed quantity
func NewStockMovement(workspaceID, productID, locationID uuid.UUID, movementType MovementType, quantity decimal.Decimal) (*StockMovement, error) {
	if workspaceID == uuid.Nil || productID == uuid.Nil || locationID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Workspace, product and location are required")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown movement type %q", movementType))
	}
	if !movementType.acceptsSign(quantity) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Quantity %s has the wrong sign for a %s movement", quantity, movementType))
	}

	return &StockMovement{
		ID:           uuid.New(),
		WorkspaceID:  workspaceID,
		ProductID:    productID,
		LocationID:   locationID,
		Quantity:     quantity,
		MovementType: movementType,
		CreatedAt:    time.Now(),
	}, nil
}

// WithOrder links the movement to an order
func (m *StockMovement) WithOrder(orderID uuid.UUID) *StockMovement {
	m.OrderID = &orderID
	return m
}

// WithPurchaseOrder links the movement to a purchase order
func (m *StockMovement) WithPurchaseOrder(poID uuid.UUID) *StockMovement {
	m.PurchaseOrderID = &poID
	return m
}

// WithActor records who caused the movement
func (m *StockMovement) WithActor(actorID uuid.UUID) *StockMovement {
	if actorID != uuid.Nil {
		m.ActorID = &actorID
	}
	return m
}

// WithNotes sets the free-text reason
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = strings.TrimSpace(notes)
	return m
}

// QuantityDelta returns the change applied to on-hand quantity
func (m *StockMovement) QuantityDelta() decimal.Decimal {
	if m.MovementType.AffectsReserved() {
		return decimal.Zero
	}
	return m.Quantity
}

// ReservedDelta returns the change applied to reserved quantity
func (m *StockMovement) ReservedDelta() decimal.Decimal {
	if m.MovementType.AffectsReserved() {
		return m.Quantity
	}
	return decimal.Zero
}

// StockLine is a product quantity to move in a batch
type StockLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}
