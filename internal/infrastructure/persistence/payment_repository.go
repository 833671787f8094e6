package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/mobilia/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements trade.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment row
func (r *GormPaymentRepository) Create(ctx context.Context, payment *trade.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// FindByID finds a payment within a workspace
func (r *GormPaymentRepository) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*trade.Payment, error) {
	var model models.PaymentModel
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

// FindByOrder lists an order's payments, oldest first
func (r *GormPaymentRepository) FindByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) ([]trade.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND order_id = ?", workspaceID, orderID).
		Order("payment_date ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]trade.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// CountByOrder counts an order's payments
func (r *GormPaymentRepository) CountByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("workspace_id = ? AND order_id = ?", workspaceID, orderID).
		Count(&count).Error
	return count, err
}

// SumByOrder totals an order's payments
func (r *GormPaymentRepository) SumByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("workspace_id = ? AND order_id = ?", workspaceID, orderID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// Delete removes one payment
func (r *GormPaymentRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Delete(&models.PaymentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByOrder removes every payment of an order
func (r *GormPaymentRepository) DeleteByOrder(ctx context.Context, workspaceID, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("workspace_id = ? AND order_id = ?", workspaceID, orderID).
		Delete(&models.PaymentModel{})
	return result.RowsAffected, result.Error
}

// Ensure GormPaymentRepository implements trade.PaymentRepository
var _ trade.PaymentRepository = (*GormPaymentRepository)(nil)
