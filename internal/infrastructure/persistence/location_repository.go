package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLocationRepository implements inventory.LocationRepository using GORM.
// It also resolves the default location for receipts and order debits.
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a location within a workspace
func (r *GormLocationRepository) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*inventory.StockLocation, error) {
	var model models.StockLocationModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDefault returns the workspace's default location
func (r *GormLocationRepository) FindDefault(ctx context.Context, workspaceID uuid.UUID) (*inventory.StockLocation, error) {
	var model models.StockLocationModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND is_default = ?", workspaceID, true).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "No default stock location is configured")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// DefaultLocation returns the id of the default location
func (r *GormLocationRepository) DefaultLocation(ctx context.Context, workspaceID uuid.UUID) (uuid.UUID, error) {
	location, err := r.FindDefault(ctx, workspaceID)
	if err != nil {
		return uuid.Nil, err
	}
	return location.ID, nil
}

// Create adds a location. When it is the default, any previous default is cleared.
func (r *GormLocationRepository) Create(ctx context.Context, location *inventory.StockLocation) error {
	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	if location.CreatedAt.IsZero() {
		location.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if location.IsDefault {
			if err := tx.Model(&models.StockLocationModel{}).
				Where("workspace_id = ? AND is_default = ?", location.WorkspaceID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.StockLocationModel{
			ID:          location.ID,
			WorkspaceID: location.WorkspaceID,
			Name:        location.Name,
			IsDefault:   location.IsDefault,
			CreatedAt:   location.CreatedAt,
		}).Error
	})
}

// Ensure GormLocationRepository implements inventory.LocationRepository
var _ inventory.LocationRepository = (*GormLocationRepository)(nil)
