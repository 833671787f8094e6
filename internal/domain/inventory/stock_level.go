package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LevelKey identifies a stock level
type LevelKey struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
}

// StockLevel caches the running sum of movements for a (product, location) pair
type StockLevel struct {
	ID               uuid.UUID
	WorkspaceID      uuid.UUID
	ProductID        uuid.UUID
	LocationID       uuid.UUID
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	UpdatedAt        time.Time
}

// NewStockLevel returns an empty level for the pair
func NewStockLevel(workspaceID, productID, locationID uuid.UUID) *StockLevel {
	return &StockLevel{
		ID:               uuid.New(),
		WorkspaceID:      workspaceID,
		ProductID:        productID,
		LocationID:       locationID,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
		UpdatedAt:        time.Now(),
	}
}

// Key returns the level key
func (l *StockLevel) Key() LevelKey {
	return LevelKey{ProductID: l.ProductID, LocationID: l.LocationID}
}

// Available returns quantity minus reserved. The raw value may be negative.
func (l *StockLevel) Available() decimal.Decimal {
	return l.Quantity.Sub(l.ReservedQuantity)
}

// Apply adds a movement to the cached counters
func (l *StockLevel) Apply(m *StockMovement) {
	l.Quantity = l.Quantity.Add(m.QuantityDelta())
	l.ReservedQuantity = l.ReservedQuantity.Add(m.ReservedDelta())
	l.UpdatedAt = m.CreatedAt
}

// ReplayMovements rebuilds levels from the movement ledger. Levels are
// returned sorted by product then location.
func ReplayMovements(workspaceID uuid.UUID, movements []StockMovement) []StockLevel {
	byKey := make(map[LevelKey]*StockLevel)
	for idx := range movements {
		m := &movements[idx]
		key := LevelKey{ProductID: m.ProductID, LocationID: m.LocationID}
		level, ok := byKey[key]
		if !ok {
			level = NewStockLevel(workspaceID, m.ProductID, m.LocationID)
			byKey[key] = level
		}
		level.Apply(m)
	}

	levels := make([]StockLevel, 0, len(byKey))
	for _, level := range byKey {
		levels = append(levels, *level)
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].ProductID != levels[j].ProductID {
			return levels[i].ProductID.String() < levels[j].ProductID.String()
		}
		return levels[i].LocationID.String() < levels[j].LocationID.String()
	})
	return levels
}
