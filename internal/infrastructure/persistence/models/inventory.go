package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockLocationModel is the persistence model for a stock location.
type StockLocationModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(100);not null"`
	IsDefault   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLocationModel) TableName() string {
	return "stock_locations"
}

// ToDomain converts the persistence model to a domain StockLocation.
func (m *StockLocationModel) ToDomain() *inventory.StockLocation {
	return &inventory.StockLocation{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		Name:        m.Name,
		IsDefault:   m.IsDefault,
		CreatedAt:   m.CreatedAt,
	}
}

// StockMovementModel is the persistence model for an append-only ledger row.
type StockMovementModel struct {
	ID              uuid.UUID              `gorm:"type:uuid;primaryKey"`
	WorkspaceID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	LocationID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	Quantity        decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	MovementType    inventory.MovementType `gorm:"type:varchar(20);not null"`
	OrderID         *uuid.UUID             `gorm:"type:uuid;index"`
	PurchaseOrderID *uuid.UUID             `gorm:"type:uuid;index"`
	ActorID         *uuid.UUID             `gorm:"type:uuid"`
	Notes           string                 `gorm:"type:varchar(500)"`
	CreatedAt       time.Time              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:              m.ID,
		WorkspaceID:     m.WorkspaceID,
		ProductID:       m.ProductID,
		LocationID:      m.LocationID,
		Quantity:        m.Quantity,
		MovementType:    m.MovementType,
		OrderID:         m.OrderID,
		PurchaseOrderID: m.PurchaseOrderID,
		ActorID:         m.ActorID,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain StockMovement.
func StockMovementModelFromDomain(mv *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:              mv.ID,
		WorkspaceID:     mv.WorkspaceID,
		ProductID:       mv.ProductID,
		LocationID:      mv.LocationID,
		Quantity:        mv.Quantity,
		MovementType:    mv.MovementType,
		OrderID:         mv.OrderID,
		PurchaseOrderID: mv.PurchaseOrderID,
		ActorID:         mv.ActorID,
		Notes:           mv.Notes,
		CreatedAt:       mv.CreatedAt,
	}
}

// StockLevelModel caches the running totals of a (product, location) pair.
type StockLevelModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WorkspaceID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_pair,priority:1"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_pair,priority:2"`
	LocationID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_pair,priority:3"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLevelModel) TableName() string {
	return "stock_levels"
}

// ToDomain converts the persistence model to a domain StockLevel.
func (m *StockLevelModel) ToDomain() *inventory.StockLevel {
	return &inventory.StockLevel{
		ID:               m.ID,
		WorkspaceID:      m.WorkspaceID,
		ProductID:        m.ProductID,
		LocationID:       m.LocationID,
		Quantity:         m.Quantity,
		ReservedQuantity: m.ReservedQuantity,
		UpdatedAt:        m.UpdatedAt,
	}
}

// StockLevelModelFromDomain creates a persistence model from a domain StockLevel.
func StockLevelModelFromDomain(l *inventory.StockLevel) *StockLevelModel {
	return &StockLevelModel{
		ID:               l.ID,
		WorkspaceID:      l.WorkspaceID,
		ProductID:        l.ProductID,
		LocationID:       l.LocationID,
		Quantity:         l.Quantity,
		ReservedQuantity: l.ReservedQuantity,
		UpdatedAt:        l.UpdatedAt,
	}
}
