package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Order inputs ====================

// OrderItemInput is a line of a create or update request
type OrderItemInput struct {
	ProductID   *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPriceHT decimal.Decimal
	CostPriceHT decimal.Decimal
	TaxRate     decimal.Decimal
}

// CreateOrderInput creates a standard order, optionally already confirmed
type CreateOrderInput struct {
	CustomerID       *uuid.UUID
	SourceQuoteID    *uuid.UUID
	Items            []OrderItemInput
	DiscountGlobal   decimal.Decimal
	DiscountType     trade.DiscountType
	RequiresDelivery bool
	DeliveryType     string
	Notes            string
	Confirm          bool
}

// UpdateDraftItemsInput replaces the lines and discount of a draft
type UpdateDraftItemsInput struct {
	Items          []OrderItemInput
	DiscountGlobal *decimal.Decimal
	DiscountType   trade.DiscountType
}

// QuickSaleInput creates a counter sale paid in full
type QuickSaleInput struct {
	CustomerID     *uuid.UUID
	Items          []OrderItemInput
	DiscountGlobal decimal.Decimal
	DiscountType   trade.DiscountType
	Method         trade.PaymentMethod
	Receiver       string
	Notes          string
	LocationID     *uuid.UUID
}

// ApplyPaymentInput records a payment. IdempotencyKey, when set, rejects
// replays of the same submission.
type ApplyPaymentInput struct {
	Amount         decimal.Decimal
	Type           trade.PaymentType
	Method         trade.PaymentMethod
	PaymentDate    time.Time
	Receiver       string
	Notes          string
	IdempotencyKey string
}

func toDomainItems(items []OrderItemInput) []trade.OrderItemInput {
	out := make([]trade.OrderItemInput, len(items))
	for i, item := range items {
		out[i] = trade.OrderItemInput{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPriceHT: item.UnitPriceHT,
			CostPriceHT: item.CostPriceHT,
			TaxRate:     item.TaxRate,
		}
	}
	return out
}

// ==================== Order responses ====================

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPriceHT decimal.Decimal `json:"unit_price_ht"`
	CostPriceHT decimal.Decimal `json:"cost_price_ht"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TotalHT     decimal.Decimal `json:"total_ht"`
	Position    int             `json:"position"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	Number             string              `json:"number"`
	Type               string              `json:"type"`
	Status             string              `json:"status"`
	AllowedTransitions []string            `json:"allowed_transitions"`
	CustomerID         *uuid.UUID          `json:"customer_id,omitempty"`
	SourceQuoteID      *uuid.UUID          `json:"source_quote_id,omitempty"`
	Items              []OrderItemResponse `json:"items"`
	SubtotalHT         decimal.Decimal     `json:"subtotal_ht"`
	DiscountGlobal     decimal.Decimal     `json:"discount_global"`
	DiscountType       string              `json:"discount_type"`
	TotalTVA           decimal.Decimal     `json:"total_tva"`
	TotalTTC           decimal.Decimal     `json:"total_ttc"`
	AmountPaid         decimal.Decimal     `json:"amount_paid"`
	RemainingAmount    decimal.Decimal     `json:"remaining_amount"`
	RequiresDelivery   bool                `json:"requires_delivery"`
	DeliveryType       string              `json:"delivery_type,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	CreatedBy          *uuid.UUID          `json:"created_by,omitempty"`
	StatusChangedAt    *time.Time          `json:"status_changed_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPriceHT: item.UnitPriceHT,
			CostPriceHT: item.CostPriceHT,
			TaxRate:     item.TaxRate,
			TotalHT:     item.TotalHT,
			Position:    item.Position,
		}
	}
	allowed := o.Status.AllowedTransitions()
	transitions := make([]string, len(allowed))
	for i, s := range allowed {
		transitions[i] = string(s)
	}

	return OrderResponse{
		ID:                 o.ID,
		Number:             o.Number,
		Type:               string(o.Type),
		Status:             string(o.Status),
		AllowedTransitions: transitions,
		CustomerID:         o.CustomerID,
		SourceQuoteID:      o.SourceQuoteID,
		Items:              items,
		SubtotalHT:         o.SubtotalHT,
		DiscountGlobal:     o.DiscountGlobal,
		DiscountType:       string(o.DiscountType),
		TotalTVA:           o.TotalTVA,
		TotalTTC:           o.TotalTTC,
		AmountPaid:         o.AmountPaid,
		RemainingAmount:    o.RemainingAmount,
		RequiresDelivery:   o.RequiresDelivery,
		DeliveryType:       o.DeliveryType,
		Notes:              o.Notes,
		CreatedBy:          o.CreatedBy,
		StatusChangedAt:    o.StatusChangedAt,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Method      string          `json:"method"`
	PaymentDate time.Time       `json:"payment_date"`
	Receiver    string          `json:"receiver,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain payment to a response
func ToPaymentResponse(p *trade.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		OrderID:     p.OrderID,
		Amount:      p.Amount,
		Type:        string(p.Type),
		Method:      string(p.Method),
		PaymentDate: p.PaymentDate,
		Receiver:    p.Receiver,
		Notes:       p.Notes,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}

// PostActionResponse reports a secondary step that ran after the primary write
type PostActionResponse struct {
	Action    string `json:"action"`
	Attempted bool   `json:"attempted"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// ToPostActionResponse converts a shared.PostAction
func ToPostActionResponse(p shared.PostAction) PostActionResponse {
	return PostActionResponse{
		Action:    p.Action,
		Attempted: p.Attempted,
		Succeeded: p.Succeeded(),
		Error:     p.ErrorMessage(),
	}
}

// PaymentResult is returned by ApplyPayment. The payment is recorded even
// when a post-action failed.
type PaymentResult struct {
	Order         OrderResponse     `json:"order"`
	Payment       PaymentResponse   `json:"payment"`
	FirstPayment  bool              `json:"first_payment"`
	StockDebit    shared.PostAction `json:"-"`
	StatusAdvance shared.PostAction `json:"-"`
}

// QuickSaleResult is returned by CreateQuickSale
type QuickSaleResult struct {
	Order      OrderResponse     `json:"order"`
	Payment    PaymentResponse   `json:"payment"`
	InvoiceID  *uuid.UUID        `json:"invoice_id,omitempty"`
	StockDebit shared.PostAction `json:"-"`
	Invoice    shared.PostAction `json:"-"`
}

// InvoiceResult is returned by RequestInvoice
type InvoiceResult struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	OrderID   uuid.UUID `json:"order_id"`
	Category  string    `json:"category"`
}

// ReconcileResult is returned by ReconcileOrder
type ReconcileResult struct {
	Order              OrderResponse   `json:"order"`
	PreviousAmountPaid decimal.Decimal `json:"previous_amount_paid"`
	Corrected          bool            `json:"corrected"`
}

// ==================== Purchase order ====================

// PurchaseOrderItemInput is a line of a create request
type PurchaseOrderItemInput struct {
	ProductID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitCostHT  decimal.Decimal
	TaxRate     decimal.Decimal
}

// CreatePurchaseOrderInput creates a draft purchase order
type CreatePurchaseOrderInput struct {
	SupplierID   uuid.UUID
	SupplierName string
	Items        []PurchaseOrderItemInput
	ExpectedDate *time.Time
	Notes        string
}

// ReceiveGoodsInput is a goods receipt. LocationID defaults to the workspace default location.
type ReceiveGoodsInput struct {
	LocationID uuid.UUID
	Lines      []trade.ReceiptLine
	Notes      string
}

// PurchaseOrderItemResponse represents a PO line in API responses
type PurchaseOrderItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	Description       string          `json:"description,omitempty"`
	QuantityOrdered   decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitCostHT        decimal.Decimal `json:"unit_cost_ht"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TotalHT           decimal.Decimal `json:"total_ht"`
	Position          int             `json:"position"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID              uuid.UUID                   `json:"id"`
	Number          string                      `json:"number"`
	SupplierID      uuid.UUID                   `json:"supplier_id"`
	SupplierName    string                      `json:"supplier_name,omitempty"`
	Status          string                      `json:"status"`
	Items           []PurchaseOrderItemResponse `json:"items"`
	ExpectedDate    *time.Time                  `json:"expected_date,omitempty"`
	ReceivedDate    *time.Time                  `json:"received_date,omitempty"`
	SubtotalHT      decimal.Decimal             `json:"subtotal_ht"`
	TotalTVA        decimal.Decimal             `json:"total_tva"`
	TotalTTC        decimal.Decimal             `json:"total_ttc"`
	ReceiveProgress decimal.Decimal             `json:"receive_progress"`
	Notes           string                      `json:"notes,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// ToPurchaseOrderResponse converts a domain purchase order to a response
func ToPurchaseOrderResponse(po *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(po.Items))
	for i := range po.Items {
		item := &po.Items[i]
		items[i] = PurchaseOrderItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			Description:       item.Description,
			QuantityOrdered:   item.QuantityOrdered,
			QuantityReceived:  item.QuantityReceived,
			RemainingQuantity: item.RemainingQuantity(),
			UnitCostHT:        item.UnitCostHT,
			TaxRate:           item.TaxRate,
			TotalHT:           item.TotalHT,
			Position:          item.Position,
		}
	}
	return PurchaseOrderResponse{
		ID:              po.ID,
		Number:          po.Number,
		SupplierID:      po.SupplierID,
		SupplierName:    po.SupplierName,
		Status:          string(po.Status),
		Items:           items,
		ExpectedDate:    po.ExpectedDate,
		ReceivedDate:    po.ReceivedDate,
		SubtotalHT:      po.SubtotalHT,
		TotalTVA:        po.TotalTVA,
		TotalTTC:        po.TotalTTC,
		ReceiveProgress: po.ReceiveProgress(),
		Notes:           po.Notes,
		CreatedAt:       po.CreatedAt,
		UpdatedAt:       po.UpdatedAt,
	}
}

// ToPurchaseOrderResponses converts a slice of purchase orders
func ToPurchaseOrderResponses(pos []trade.PurchaseOrder) []PurchaseOrderResponse {
	out := make([]PurchaseOrderResponse, len(pos))
	for i := range pos {
		out[i] = ToPurchaseOrderResponse(&pos[i])
	}
	return out
}

// ReceivedLineResponse is one accepted receipt line
type ReceivedLineResponse struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ReceiveResult is returned by ReceiveGoods
type ReceiveResult struct {
	PurchaseOrder PurchaseOrderResponse  `json:"purchase_order"`
	Received      []ReceivedLineResponse `json:"received"`
	LocationID    uuid.UUID              `json:"location_id"`
}
