package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/mobilia/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements trade.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func preloadPurchaseOrderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormPurchaseOrderRepository) findOne(query *gorm.DB) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := query.Preload("Items", preloadPurchaseOrderItems).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds a purchase order with its lines
func (r *GormPurchaseOrderRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return r.findOne(r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id))
}

// FindByIDForUpdate finds a purchase order and locks its row
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, workspaceID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return r.findOne(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("workspace_id = ? AND id = ?", workspaceID, id))
}

// FindAllForWorkspace lists purchase orders; Filters may carry "status" and "supplier_id"
func (r *GormPurchaseOrderRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	var poModels []models.PurchaseOrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("workspace_id = ?", workspaceID), filter)
	query = applyPagination(query, filter, PurchaseOrderSortFields, "created_at")

	if err := query.Preload("Items", preloadPurchaseOrderItems).Find(&poModels).Error; err != nil {
		return nil, err
	}
	pos := make([]trade.PurchaseOrder, len(poModels))
	for i, model := range poModels {
		pos[i] = *model.ToDomain()
	}
	return pos, nil
}

// CountForWorkspace counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) CountForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("workspace_id = ?", workspaceID), filter).
		Count(&count).Error
	return count, err
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR supplier_name LIKE ?", like, like)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		}
	}
	return query
}

// Save creates or updates a purchase order and replaces its lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseOrderModelFromDomain(po)
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}

		if err := tx.Where("purchase_order_id = ?", po.ID).
			Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
			return err
		}
		if len(po.Items) == 0 {
			return nil
		}

		items := make([]*models.PurchaseOrderItemModel, len(po.Items))
		for i := range po.Items {
			po.Items[i].PurchaseOrderID = po.ID
			items[i] = models.PurchaseOrderItemModelFromDomain(&po.Items[i])
		}
		return tx.Create(&items).Error
	})
}

// UpdateStatus persists status and received_date
func (r *GormPurchaseOrderRepository) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status trade.PurchaseOrderStatus, receivedDate *time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Updates(map[string]interface{}{
			"status":        status,
			"received_date": receivedDate,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IncrementReceived adds quantity to a line. The WHERE clause carries the
// ordered-quantity bound so two concurrent receipts cannot overshoot it.
func (r *GormPurchaseOrderRepository) IncrementReceived(ctx context.Context, poID, itemID uuid.UUID, quantity decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.PurchaseOrderItemModel{}).
		Where("id = ? AND purchase_order_id = ?", itemID, poID).
		Where("quantity_received + ? <= quantity_ordered", quantity).
		Update("quantity_received", gorm.Expr("quantity_received + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrReceiptExceedsRemaining
	}
	return nil
}

// Ensure GormPurchaseOrderRepository implements trade.PurchaseOrderRepository
var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
