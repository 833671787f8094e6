package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/shared/valueobject"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/mobilia/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) findOne(query *gorm.DB) (*trade.Order, error) {
	var model models.OrderModel
	err := query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds an order with its items
func (r *GormOrderRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*trade.Order, error) {
	return r.findOne(r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id))
}

// FindByIDForUpdate finds an order and holds a row lock until the surrounding transaction ends
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, workspaceID, id uuid.UUID) (*trade.Order, error) {
	return r.findOne(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("workspace_id = ? AND id = ?", workspaceID, id))
}

// FindAllForWorkspace lists orders matching the filter
func (r *GormOrderRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("workspace_id = ?", workspaceID), filter)
	query = applyPagination(query, filter, OrderSortFields, "created_at")

	if err := query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]trade.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// CountForWorkspace counts orders matching the filter
func (r *GormOrderRepository) CountForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("workspace_id = ?", workspaceID), filter).
		Count(&count).Error
	return count, err
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("number LIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}
	return query
}

// Save creates or updates an order and replaces its items
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.OrderModelFromDomain(order)
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", order.ID).
			Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}

		items := make([]*models.OrderItemModel, len(order.Items))
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			items[i] = models.OrderItemModelFromDomain(&order.Items[i])
		}
		return tx.Create(&items).Error
	})
}

// UpdateStatus persists the status columns only
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, order *trade.Order) error {
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("workspace_id = ? AND id = ?", order.WorkspaceID, order.ID).
		Updates(map[string]interface{}{
			"status":            order.Status,
			"status_changed_at": order.StatusChangedAt,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ApplyPaymentDelta shifts amount_paid by delta and derives remaining_amount in
// the same statement. Both right-hand sides read the pre-update row. A positive
// delta only applies while the cumulative total stays within total_ttc + 0.01.
func (r *GormOrderRepository) ApplyPaymentDelta(ctx context.Context, workspaceID, id uuid.UUID, delta decimal.Decimal) error {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("workspace_id = ? AND id = ?", workspaceID, id)
	if delta.IsPositive() {
		query = query.Where("amount_paid + ? <= total_ttc + ?", delta, valueobject.PaymentEpsilon)
	}
	result := query.Updates(map[string]interface{}{
		"amount_paid": gorm.Expr("amount_paid + ?", delta),
		"remaining_amount": gorm.Expr(
			"CASE WHEN total_ttc - (amount_paid + ?) < 0 THEN 0 ELSE total_ttc - (amount_paid + ?) END",
			delta, delta),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if !delta.IsPositive() {
		return shared.ErrNotFound
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.NewDomainError(shared.CodePaymentExceedsBalance,
		"Payment would take the amount paid above the order total")
}

// SetPaymentTotals overwrites the derived payment columns
func (r *GormOrderRepository) SetPaymentTotals(ctx context.Context, order *trade.Order) error {
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("workspace_id = ? AND id = ?", order.WorkspaceID, order.ID).
		Updates(map[string]interface{}{
			"amount_paid":      order.AmountPaid,
			"remaining_amount": order.RemainingAmount,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("workspace_id = ? AND id = ?", workspaceID, id).Delete(&models.OrderModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure GormOrderRepository implements trade.OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
