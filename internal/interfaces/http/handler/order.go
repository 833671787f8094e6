package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/mobilia/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader lets clients retry a payment submission safely
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler handles order and payment endpoints
type OrderHandler struct {
	BaseHandler
	orders OrderUseCases
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderUseCases) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// RegisterRoutes mounts the order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.POST("", h.Create)
	orders.POST("/quick-sale", h.CreateQuickSale)
	orders.GET("", h.List)
	orders.GET("/:id", h.Get)
	orders.PUT("/:id/items", h.UpdateItems)
	orders.POST("/:id/transition", h.Transition)
	orders.DELETE("/:id", h.Delete)
	orders.POST("/:id/invoices", h.RequestInvoice)
	orders.POST("/:id/payments", h.ApplyPayment)
	orders.GET("/:id/payments", h.ListPayments)
	orders.DELETE("/:id/payments/:payment_id", h.DeletePayment)
	orders.POST("/:id/reconcile", h.Reconcile)
}

// OrderItemRequest is one order line. ProductID is empty for free-text lines.
type OrderItemRequest struct {
	ProductID   *string         `json:"product_id" binding:"omitempty,uuid"`
	Description string          `json:"description" binding:"max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0"`
	UnitPriceHT decimal.Decimal `json:"unit_price_ht" binding:"gte=0"`
	CostPriceHT decimal.Decimal `json:"cost_price_ht" binding:"gte=0"`
	TaxRate     decimal.Decimal `json:"tax_rate" binding:"gte=0,lte=100"`
}

// CreateOrderRequest creates a standard order
type CreateOrderRequest struct {
	CustomerID       *string            `json:"customer_id" binding:"omitempty,uuid"`
	SourceQuoteID    *string            `json:"source_quote_id" binding:"omitempty,uuid"`
	Items            []OrderItemRequest `json:"items" binding:"dive"`
	DiscountGlobal   decimal.Decimal    `json:"discount_global" binding:"gte=0"`
	DiscountType     string             `json:"discount_type" binding:"omitempty,oneof=percent amount"`
	RequiresDelivery bool               `json:"requires_delivery"`
	DeliveryType     string             `json:"delivery_type" binding:"max=50"`
	Notes            string             `json:"notes" binding:"max=2000"`
	Confirm          bool               `json:"confirm"`
}

// QuickSaleRequest records a counter sale paid in full
type QuickSaleRequest struct {
	CustomerID     *string            `json:"customer_id" binding:"omitempty,uuid"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	DiscountGlobal decimal.Decimal    `json:"discount_global" binding:"gte=0"`
	DiscountType   string             `json:"discount_type" binding:"omitempty,oneof=percent amount"`
	Method         string             `json:"method" binding:"required,oneof=cash card transfer check other"`
	Receiver       string             `json:"receiver" binding:"max=200"`
	Notes          string             `json:"notes" binding:"max=2000"`
	LocationID     *string            `json:"location_id" binding:"omitempty,uuid"`
}

// UpdateItemsRequest replaces the lines of a draft
type UpdateItemsRequest struct {
	Items          []OrderItemRequest `json:"items" binding:"dive"`
	DiscountGlobal *decimal.Decimal   `json:"discount_global" binding:"omitempty,gte=0"`
	DiscountType   string             `json:"discount_type" binding:"omitempty,oneof=percent amount"`
}

// TransitionRequest moves an order to another status
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// InvoiceRequest asks for an invoice of the given category
type InvoiceRequest struct {
	Category string `json:"category" binding:"required,oneof=deposit balance standard quick_sale"`
}

// ApplyPaymentRequest records a payment. Amount checks are left to the
// ledger so an over- or non-positive amount reports PAYMENT_EXCEEDS_BALANCE.
type ApplyPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type" binding:"required,oneof=deposit partial balance full"`
	Method         string          `json:"method" binding:"required,oneof=cash card transfer check other"`
	PaymentDate    *time.Time      `json:"payment_date"`
	Receiver       string          `json:"receiver" binding:"max=200"`
	Notes          string          `json:"notes" binding:"max=2000"`
	IdempotencyKey string          `json:"idempotency_key" binding:"max=128"`
}

// PaymentResultResponse is the body answered to a recorded payment
type PaymentResultResponse struct {
	apptrade.PaymentResult
	PostActions []apptrade.PostActionResponse `json:"post_actions"`
}

// QuickSaleResultResponse is the body answered to a quick sale
type QuickSaleResultResponse struct {
	apptrade.QuickSaleResult
	PostActions []apptrade.PostActionResponse `json:"post_actions"`
}

func toItemInputs(items []OrderItemRequest) ([]apptrade.OrderItemInput, error) {
	out := make([]apptrade.OrderItemInput, len(items))
	for i, item := range items {
		productID, err := parseOptionalUUID(item.ProductID)
		if err != nil {
			return nil, err
		}
		out[i] = apptrade.OrderItemInput{
			ProductID:   productID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPriceHT: item.UnitPriceHT,
			CostPriceHT: item.CostPriceHT,
			TaxRate:     item.TaxRate,
		}
	}
	return out, nil
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	items, err := toItemInputs(req.Items)
	if err != nil {
		h.InvalidInput(c, "Invalid product ID format")
		return
	}
	customerID, _ := parseOptionalUUID(req.CustomerID)
	quoteID, _ := parseOptionalUUID(req.SourceQuoteID)

	order, err := h.orders.CreateOrder(c.Request.Context(), cc, apptrade.CreateOrderInput{
		CustomerID:       customerID,
		SourceQuoteID:    quoteID,
		Items:            items,
		DiscountGlobal:   req.DiscountGlobal,
		DiscountType:     trade.DiscountType(req.DiscountType),
		RequiresDelivery: req.RequiresDelivery,
		DeliveryType:     req.DeliveryType,
		Notes:            req.Notes,
		Confirm:          req.Confirm,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// CreateQuickSale handles POST /orders/quick-sale
func (h *OrderHandler) CreateQuickSale(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	var req QuickSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	items, err := toItemInputs(req.Items)
	if err != nil {
		h.InvalidInput(c, "Invalid product ID format")
		return
	}
	customerID, _ := parseOptionalUUID(req.CustomerID)
	locationID, _ := parseOptionalUUID(req.LocationID)

	result, err := h.orders.CreateQuickSale(c.Request.Context(), cc, apptrade.QuickSaleInput{
		CustomerID:     customerID,
		Items:          items,
		DiscountGlobal: req.DiscountGlobal,
		DiscountType:   trade.DiscountType(req.DiscountType),
		Method:         trade.PaymentMethod(req.Method),
		Receiver:       req.Receiver,
		Notes:          req.Notes,
		LocationID:     locationID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, QuickSaleResultResponse{
		QuickSaleResult: *result,
		PostActions: []apptrade.PostActionResponse{
			apptrade.ToPostActionResponse(result.StockDebit),
			apptrade.ToPostActionResponse(result.Invoice),
		},
	})
}

// OrderListQuery adds order filters to the common list parameters
type OrderListQuery struct {
	dto.ListRequest
	Status     string `form:"status"`
	Type       string `form:"type" binding:"omitempty,oneof=standard quick_sale"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	query := OrderListQuery{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	filter := listFilter(query.ListRequest)
	if query.Status != "" {
		if !trade.OrderStatus(query.Status).IsValid() {
			h.InvalidInput(c, "Unknown order status: "+query.Status)
			return
		}
		filter.Filters["status"] = query.Status
	}
	if query.Type != "" {
		filter.Filters["type"] = query.Type
	}
	if query.CustomerID != "" {
		filter.Filters["customer_id"] = query.CustomerID
	}

	orders, total, err := h.orders.ListOrders(c.Request.Context(), cc, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), cc, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateItems handles PUT /orders/:id/items
func (h *OrderHandler) UpdateItems(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}
	var req UpdateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	items, err := toItemInputs(req.Items)
	if err != nil {
		h.InvalidInput(c, "Invalid product ID format")
		return
	}
	order, err := h.orders.UpdateDraftItems(c.Request.Context(), cc, orderID, apptrade.UpdateDraftItemsInput{
		Items:          items,
		DiscountGlobal: req.DiscountGlobal,
		DiscountType:   trade.DiscountType(req.DiscountType),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Transition handles POST /orders/:id/transition
func (h *OrderHandler) Transition(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	target := trade.OrderStatus(req.Status)
	if !target.IsValid() {
		h.InvalidInput(c, "Unknown order status: "+req.Status)
		return
	}

	order, err := h.orders.Transition(c.Request.Context(), cc, orderID, target)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete handles DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), cc, orderID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RequestInvoice handles POST /orders/:id/invoices
func (h *OrderHandler) RequestInvoice(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	result, err := h.orders.RequestInvoice(c.Request.Context(), cc, orderID, trade.InvoiceCategory(req.Category))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ApplyPayment handles POST /orders/:id/payments. The idempotency key may
// come from the Idempotency-Key header or the body; the header wins.
func (h *OrderHandler) ApplyPayment(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}
	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	input := apptrade.ApplyPaymentInput{
		Amount:         req.Amount,
		Type:           trade.PaymentType(req.Type),
		Method:         trade.PaymentMethod(req.Method),
		Receiver:       req.Receiver,
		Notes:          req.Notes,
		IdempotencyKey: req.IdempotencyKey,
	}
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		input.IdempotencyKey = key
	}
	if req.PaymentDate != nil {
		input.PaymentDate = *req.PaymentDate
	}

	result, err := h.orders.ApplyPayment(c.Request.Context(), cc, orderID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, PaymentResultResponse{
		PaymentResult: *result,
		PostActions: []apptrade.PostActionResponse{
			apptrade.ToPostActionResponse(result.StockDebit),
			apptrade.ToPostActionResponse(result.StatusAdvance),
		},
	})
}

// ListPayments handles GET /orders/:id/payments
func (h *OrderHandler) ListPayments(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}
	payments, err := h.orders.ListPayments(c.Request.Context(), cc, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// DeletePayment handles DELETE /orders/:id/payments/:payment_id
func (h *OrderHandler) DeletePayment(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "payment_id", "payment")
	if !ok {
		return
	}
	order, err := h.orders.DeletePayment(c.Request.Context(), cc, orderID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Reconcile handles POST /orders/:id/reconcile
func (h *OrderHandler) Reconcile(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id", "order")
	if !ok {
		return
	}
	result, err := h.orders.ReconcileOrder(c.Request.Context(), cc, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
