package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/mobilia/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInvoiceGenerator writes an invoice header numbered FAC-YYYY-NNNN and a
// copy of the order lines. Rendering is left to downstream consumers.
type GormInvoiceGenerator struct {
	db        *gorm.DB
	numbering apptrade.NumberingService
}

// NewGormInvoiceGenerator creates a new GormInvoiceGenerator
func NewGormInvoiceGenerator(db *gorm.DB, numbering apptrade.NumberingService) *GormInvoiceGenerator {
	return &GormInvoiceGenerator{db: db, numbering: numbering}
}

// GenerateInvoice persists an invoice for the order and returns its id
func (g *GormInvoiceGenerator) GenerateInvoice(ctx context.Context, order *trade.Order, category trade.InvoiceCategory) (uuid.UUID, error) {
	now := time.Now()
	number, err := g.numbering.Next(ctx, order.WorkspaceID, apptrade.SequenceInvoice, now.Year())
	if err != nil {
		return uuid.Nil, fmt.Errorf("allocate invoice number: %w", err)
	}

	invoice := &models.InvoiceModel{
		ID:          uuid.New(),
		WorkspaceID: order.WorkspaceID,
		OrderID:     order.ID,
		Number:      number,
		Category:    category,
		SubtotalHT:  order.SubtotalHT,
		TotalTVA:    order.TotalTVA,
		TotalTTC:    order.TotalTTC,
		IssuedAt:    now,
	}

	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		due, err := g.amountDue(tx, order, category)
		if err != nil {
			return err
		}
		invoice.AmountDue = due

		if err := tx.Omit("Items").Create(invoice).Error; err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}
		lines := make([]*models.InvoiceItemModel, len(order.Items))
		for i, item := range order.Items {
			lines[i] = &models.InvoiceItemModel{
				ID:          uuid.New(),
				InvoiceID:   invoice.ID,
				ProductID:   item.ProductID,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPriceHT: item.UnitPriceHT,
				TaxRate:     item.TaxRate,
				TotalHT:     item.TotalHT,
				Position:    item.Position,
			}
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("persist invoice %s: %w", number, err)
	}
	return invoice.ID, nil
}

// amountDue is the paid amount for a deposit invoice and, for a balance
// invoice, what earlier deposit invoices left uncovered.
func (g *GormInvoiceGenerator) amountDue(tx *gorm.DB, order *trade.Order, category trade.InvoiceCategory) (decimal.Decimal, error) {
	switch category {
	case trade.InvoiceCategoryDeposit:
		return order.AmountPaid, nil
	case trade.InvoiceCategoryBalance:
		var row struct {
			Total decimal.Decimal
		}
		if err := tx.Model(&models.InvoiceModel{}).
			Select("COALESCE(SUM(amount_due), 0) AS total").
			Where("workspace_id = ? AND order_id = ? AND category = ?",
				order.WorkspaceID, order.ID, trade.InvoiceCategoryDeposit).
			Scan(&row).Error; err != nil {
			return decimal.Zero, err
		}
		due := order.TotalTTC.Sub(row.Total)
		if due.IsNegative() {
			return decimal.Zero, nil
		}
		return due, nil
	default:
		return order.TotalTTC, nil
	}
}

// HasInvoice reports whether an invoice of the category exists for the order
func (g *GormInvoiceGenerator) HasInvoice(ctx context.Context, workspaceID, orderID uuid.UUID, category trade.InvoiceCategory) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("workspace_id = ? AND order_id = ? AND category = ?", workspaceID, orderID, category).
		Count(&count).Error
	return count > 0, err
}

var _ apptrade.InvoiceGenerator = (*GormInvoiceGenerator)(nil)
