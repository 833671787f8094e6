package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockLedger implements inventory.StockLedger using GORM.
// Movements are insert-only; stock_levels is a cache kept in step by Append.
type GormStockLedger struct {
	db *gorm.DB
}

// NewGormStockLedger creates a new GormStockLedger
func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

var levelConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "workspace_id"}, {Name: "product_id"}, {Name: "location_id"}},
	DoUpdates: clause.Assignments(map[string]interface{}{
		"quantity":          gorm.Expr("stock_levels.quantity + excluded.quantity"),
		"reserved_quantity": gorm.Expr("stock_levels.reserved_quantity + excluded.reserved_quantity"),
		"updated_at":        gorm.Expr("excluded.updated_at"),
	}),
}

// Append inserts the movements and folds each into its level with an upsert
func (r *GormStockLedger) Append(ctx context.Context, movements ...*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range movements {
			if err := tx.Create(models.StockMovementModelFromDomain(m)).Error; err != nil {
				return err
			}

			level := &models.StockLevelModel{
				ID:               uuid.New(),
				WorkspaceID:      m.WorkspaceID,
				ProductID:        m.ProductID,
				LocationID:       m.LocationID,
				Quantity:         m.QuantityDelta(),
				ReservedQuantity: m.ReservedDelta(),
				UpdatedAt:        m.CreatedAt,
			}
			if err := tx.Clauses(levelConflict).Create(level).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormStockLedger) findLevel(query *gorm.DB, workspaceID, productID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	var model models.StockLevelModel
	err := query.Where("workspace_id = ? AND product_id = ? AND location_id = ?", workspaceID, productID, locationID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inventory.NewStockLevel(workspaceID, productID, locationID), nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLevel returns the level for the pair, empty when no movement touched it yet
func (r *GormStockLedger) FindLevel(ctx context.Context, workspaceID, productID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	return r.findLevel(r.db.WithContext(ctx), workspaceID, productID, locationID)
}

// FindLevelForUpdate is FindLevel holding a row lock
func (r *GormStockLedger) FindLevelForUpdate(ctx context.Context, workspaceID, productID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	return r.findLevel(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		workspaceID, productID, locationID)
}

// ListLevels lists cached levels
func (r *GormStockLedger) ListLevels(ctx context.Context, workspaceID uuid.UUID, filter inventory.LevelFilter) ([]inventory.StockLevel, error) {
	query := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}

	var levelModels []models.StockLevelModel
	if err := query.Order("product_id ASC, location_id ASC").Find(&levelModels).Error; err != nil {
		return nil, err
	}
	levels := make([]inventory.StockLevel, len(levelModels))
	for i, model := range levelModels {
		levels[i] = *model.ToDomain()
	}
	return levels, nil
}

// ListMovements returns one page of movements and the total matching count
func (r *GormStockLedger) ListMovements(ctx context.Context, workspaceID uuid.UUID, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).
		Where("workspace_id = ?", workspaceID)
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.PurchaseOrderID != nil {
		query = query.Where("purchase_order_id = ?", *filter.PurchaseOrderID)
	}
	if filter.MovementType != "" {
		query = query.Where("movement_type = ?", filter.MovementType)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movementModels []models.StockMovementModel
	if err := applyPagination(query, filter.Filter, MovementSortFields, "created_at").
		Find(&movementModels).Error; err != nil {
		return nil, 0, err
	}
	return movementsToDomain(movementModels), total, nil
}

// AllMovements returns every movement of the workspace, oldest first
func (r *GormStockLedger) AllMovements(ctx context.Context, workspaceID uuid.UUID) ([]inventory.StockMovement, error) {
	var movementModels []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&movementModels).Error; err != nil {
		return nil, err
	}
	return movementsToDomain(movementModels), nil
}

// ReplaceLevels drops the cached levels of the workspace and writes the given ones
func (r *GormStockLedger) ReplaceLevels(ctx context.Context, workspaceID uuid.UUID, levels []inventory.StockLevel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", workspaceID).
			Delete(&models.StockLevelModel{}).Error; err != nil {
			return err
		}
		if len(levels) == 0 {
			return nil
		}
		levelModels := make([]*models.StockLevelModel, len(levels))
		for i := range levels {
			levelModels[i] = models.StockLevelModelFromDomain(&levels[i])
		}
		return tx.CreateInBatches(levelModels, 200).Error
	})
}

func movementsToDomain(movementModels []models.StockMovementModel) []inventory.StockMovement {
	movements := make([]inventory.StockMovement, len(movementModels))
	for i, model := range movementModels {
		movements[i] = *model.ToDomain()
	}
	return movements
}

// Ensure GormStockLedger implements inventory.StockLedger
var _ inventory.StockLedger = (*GormStockLedger)(nil)
