package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
)

// LevelFilter narrows a stock level listing
type LevelFilter struct {
	ProductID  *uuid.UUID
	LocationID *uuid.UUID
}

// MovementFilter narrows a movement listing
type MovementFilter struct {
	shared.Filter
	ProductID       *uuid.UUID
	LocationID      *uuid.UUID
	OrderID         *uuid.UUID
	PurchaseOrderID *uuid.UUID
	MovementType    MovementType
}

// StockLedger persists movements and keeps stock levels in step with them
type StockLedger interface {
	// Append inserts the movements and applies them to their levels.
	// All movements succeed or none do.
	Append(ctx context.Context, movements ...*StockMovement) error

	// FindLevel returns the level for the pair, or an empty level when none exists
	FindLevel(ctx context.Context, workspaceID, productID, locationID uuid.UUID) (*StockLevel, error)

	// FindLevelForUpdate is FindLevel with a row lock held until the transaction ends
	FindLevelForUpdate(ctx context.Context, workspaceID, productID, locationID uuid.UUID) (*StockLevel, error)

	ListLevels(ctx context.Context, workspaceID uuid.UUID, filter LevelFilter) ([]StockLevel, error)
	ListMovements(ctx context.Context, workspaceID uuid.UUID, filter MovementFilter) ([]StockMovement, int64, error)

	// AllMovements returns every movement of the workspace in insertion order
	AllMovements(ctx context.Context, workspaceID uuid.UUID) ([]StockMovement, error)

	// ReplaceLevels discards the cached levels of the workspace and writes the given ones
	ReplaceLevels(ctx context.Context, workspaceID uuid.UUID, levels []StockLevel) error
}

// LocationRepository reads stock locations
type LocationRepository interface {
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*StockLocation, error)
	// FindDefault returns shared.ErrNotFound when no default location is configured
	FindDefault(ctx context.Context, workspaceID uuid.UUID) (*StockLocation, error)
}
