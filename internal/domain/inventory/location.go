package inventory

import (
	"time"

	"github.com/google/uuid"
)

// StockLocation is a place where stock is held (showroom, warehouse)
type StockLocation struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
	IsDefault   bool
	CreatedAt   time.Time
}
