package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// InvoiceModel is an invoice header generated from an order.
type InvoiceModel struct {
	ID          uuid.UUID             `gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID             `gorm:"type:uuid;not null;index"`
	OrderID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Number      string                `gorm:"type:varchar(50);not null"`
	Category    trade.InvoiceCategory `gorm:"type:varchar(20);not null"`
	SubtotalHT  decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	TotalTVA    decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	TotalTTC    decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	AmountDue   decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Items       []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;references:ID"`
	IssuedAt    time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is an order line copied onto an invoice.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid"`
	Description string          `gorm:"type:varchar(500)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPriceHT decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TotalHT     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Position    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// NumberSequenceModel holds the last number handed out per workspace, kind and year.
type NumberSequenceModel struct {
	WorkspaceID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind        string    `gorm:"type:varchar(30);primaryKey"`
	Year        int       `gorm:"primaryKey;autoIncrement:false"`
	LastValue   int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}
