package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	WorkspaceAggregateModel
	Number           string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_workspace_number,priority:2"`
	Type             trade.OrderType     `gorm:"type:varchar(20);not null;default:'standard'"`
	Status           trade.OrderStatus   `gorm:"type:varchar(20);not null;default:'brouillon';index"`
	CustomerID       *uuid.UUID          `gorm:"type:uuid;index"`
	SourceQuoteID    *uuid.UUID          `gorm:"type:uuid"`
	Items            []OrderItemModel    `gorm:"foreignKey:OrderID;references:ID"`
	SubtotalHT       decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TotalTVA         decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TotalTTC         decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountGlobal   decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountType     trade.DiscountType  `gorm:"type:varchar(10);not null;default:'amount'"`
	AmountPaid       decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	RemainingAmount  decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	RequiresDelivery bool                `gorm:"not null;default:false"`
	DeliveryType     string              `gorm:"type:varchar(50)"`
	Notes            string              `gorm:"type:text"`
	StatusChangedAt  *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *trade.Order {
	order := &trade.Order{
		WorkspaceAggregateRoot: m.WorkspaceAggregateRoot(),
		Number:                 m.Number,
		Type:                   m.Type,
		Status:                 m.Status,
		CustomerID:             m.CustomerID,
		SourceQuoteID:          m.SourceQuoteID,
		SubtotalHT:             m.SubtotalHT,
		TotalTVA:               m.TotalTVA,
		TotalTTC:               m.TotalTTC,
		DiscountGlobal:         m.DiscountGlobal,
		DiscountType:           m.DiscountType,
		AmountPaid:             m.AmountPaid,
		RemainingAmount:        m.RemainingAmount,
		RequiresDelivery:       m.RequiresDelivery,
		DeliveryType:           m.DeliveryType,
		Notes:                  m.Notes,
		StatusChangedAt:        m.StatusChangedAt,
		Items:                  make([]trade.OrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		order.Items[i] = *item.ToDomain()
	}
	return order
}

// OrderModelFromDomain creates a persistence model from a domain Order. Items
// are converted separately so Save can replace them explicitly.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{
		Number:           o.Number,
		Type:             o.Type,
		Status:           o.Status,
		CustomerID:       o.CustomerID,
		SourceQuoteID:    o.SourceQuoteID,
		SubtotalHT:       o.SubtotalHT,
		TotalTVA:         o.TotalTVA,
		TotalTTC:         o.TotalTTC,
		DiscountGlobal:   o.DiscountGlobal,
		DiscountType:     o.DiscountType,
		AmountPaid:       o.AmountPaid,
		RemainingAmount:  o.RemainingAmount,
		RequiresDelivery: o.RequiresDelivery,
		DeliveryType:     o.DeliveryType,
		Notes:            o.Notes,
		StatusChangedAt:  o.StatusChangedAt,
	}
	m.FromDomainWorkspaceAggregateRoot(o.WorkspaceAggregateRoot)
	return m
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	Description string          `gorm:"type:varchar(500)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPriceHT decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CostPriceHT decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TotalHT     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Position    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() *trade.OrderItem {
	return &trade.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPriceHT: m.UnitPriceHT,
		CostPriceHT: m.CostPriceHT,
		TaxRate:     m.TaxRate,
		TotalHT:     m.TotalHT,
		Position:    m.Position,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain OrderItem.
func OrderItemModelFromDomain(i *trade.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ID:          i.ID,
		OrderID:     i.OrderID,
		ProductID:   i.ProductID,
		Description: i.Description,
		Quantity:    i.Quantity,
		UnitPriceHT: i.UnitPriceHT,
		CostPriceHT: i.CostPriceHT,
		TaxRate:     i.TaxRate,
		TotalHT:     i.TotalHT,
		Position:    i.Position,
	}
}

// PaymentModel is the persistence model for a payment ledger row.
type PaymentModel struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID           `gorm:"type:uuid;not null;index"`
	OrderID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Type        trade.PaymentType   `gorm:"column:payment_type;type:varchar(20);not null"`
	Method      trade.PaymentMethod `gorm:"column:payment_method;type:varchar(20);not null"`
	PaymentDate time.Time           `gorm:"not null"`
	Receiver    string              `gorm:"type:varchar(200)"`
	Notes       string              `gorm:"type:text"`
	CreatedBy   *uuid.UUID          `gorm:"type:uuid"`
	CreatedAt   time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *trade.Payment {
	return &trade.Payment{
		ID:          m.ID,
		OrderID:     m.OrderID,
		WorkspaceID: m.WorkspaceID,
		Amount:      m.Amount,
		Type:        m.Type,
		Method:      m.Method,
		PaymentDate: m.PaymentDate,
		Receiver:    m.Receiver,
		Notes:       m.Notes,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment.
func PaymentModelFromDomain(p *trade.Payment) *PaymentModel {
	return &PaymentModel{
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		OrderID:     p.OrderID,
		Amount:      p.Amount,
		Type:        p.Type,
		Method:      p.Method,
		PaymentDate: p.PaymentDate,
		Receiver:    p.Receiver,
		Notes:       p.Notes,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	WorkspaceAggregateModel
	Number       string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_workspace_number,priority:2"`
	SupplierID   uuid.UUID                 `gorm:"type:uuid;not null;index"`
	SupplierName string                    `gorm:"type:varchar(200);not null"`
	Status       trade.PurchaseOrderStatus `gorm:"type:varchar(30);not null;default:'brouillon';index"`
	Items        []PurchaseOrderItemModel  `gorm:"foreignKey:PurchaseOrderID;references:ID"`
	ExpectedDate *time.Time
	ReceivedDate *time.Time
	SubtotalHT   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalTVA     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalTTC     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Notes        string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	po := &trade.PurchaseOrder{
		WorkspaceAggregateRoot: m.WorkspaceAggregateRoot(),
		Number:                 m.Number,
		SupplierID:             m.SupplierID,
		SupplierName:           m.SupplierName,
		Status:                 m.Status,
		ExpectedDate:           m.ExpectedDate,
		ReceivedDate:           m.ReceivedDate,
		SubtotalHT:             m.SubtotalHT,
		TotalTVA:               m.TotalTVA,
		TotalTTC:               m.TotalTTC,
		Notes:                  m.Notes,
		Items:                  make([]trade.PurchaseOrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		po.Items[i] = *item.ToDomain()
	}
	return po
}

// PurchaseOrderModelFromDomain creates a persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(po *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		Number:       po.Number,
		SupplierID:   po.SupplierID,
		SupplierName: po.SupplierName,
		Status:       po.Status,
		ExpectedDate: po.ExpectedDate,
		ReceivedDate: po.ReceivedDate,
		SubtotalHT:   po.SubtotalHT,
		TotalTVA:     po.TotalTVA,
		TotalTTC:     po.TotalTTC,
		Notes:        po.Notes,
	}
	m.FromDomainWorkspaceAggregateRoot(po.WorkspaceAggregateRoot)
	return m
}

// PurchaseOrderItemModel is the persistence model for a purchase order line.
type PurchaseOrderItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description      string          `gorm:"type:varchar(500)"`
	QuantityOrdered  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCostHT       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TotalHT          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Position         int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem.
func (m *PurchaseOrderItemModel) ToDomain() *trade.PurchaseOrderItem {
	return &trade.PurchaseOrderItem{
		ID:               m.ID,
		PurchaseOrderID:  m.PurchaseOrderID,
		ProductID:        m.ProductID,
		Description:      m.Description,
		QuantityOrdered:  m.QuantityOrdered,
		QuantityReceived: m.QuantityReceived,
		UnitCostHT:       m.UnitCostHT,
		TaxRate:          m.TaxRate,
		TotalHT:          m.TotalHT,
		Position:         m.Position,
	}
}

// PurchaseOrderItemModelFromDomain creates a persistence model from a domain PurchaseOrderItem.
func PurchaseOrderItemModelFromDomain(i *trade.PurchaseOrderItem) *PurchaseOrderItemModel {
	return &PurchaseOrderItemModel{
		ID:               i.ID,
		PurchaseOrderID:  i.PurchaseOrderID,
		ProductID:        i.ProductID,
		Description:      i.Description,
		QuantityOrdered:  i.QuantityOrdered,
		QuantityReceived: i.QuantityReceived,
		UnitCostHT:       i.UnitCostHT,
		TaxRate:          i.TaxRate,
		TotalHT:          i.TotalHT,
		Position:         i.Position,
	}
}
