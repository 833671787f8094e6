package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/mobilia/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// PurchaseOrderHandler handles supplier order and goods receipt endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	purchaseOrders PurchaseOrderUseCases
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(purchaseOrders PurchaseOrderUseCases) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{purchaseOrders: purchaseOrders}
}

// RegisterRoutes mounts the purchase order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pos := rg.Group("/purchase-orders")
	pos.POST("", h.Create)
	pos.GET("", h.List)
	pos.GET("/:id", h.Get)
	pos.POST("/:id/status", h.UpdateStatus)
	pos.POST("/:id/receive", h.Receive)
}

// PurchaseOrderItemRequest is one line of a purchase order
type PurchaseOrderItemRequest struct {
	ProductID   string          `json:"product_id" binding:"required,uuid"`
	Description string          `json:"description" binding:"max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0"`
	UnitCostHT  decimal.Decimal `json:"unit_cost_ht" binding:"gte=0"`
	TaxRate     decimal.Decimal `json:"tax_rate" binding:"gte=0,lte=100"`
}

// CreatePurchaseOrderRequest creates a draft purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID   string                     `json:"supplier_id" binding:"required,uuid"`
	SupplierName string                     `json:"supplier_name" binding:"required,min=1,max=200"`
	Items        []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ExpectedDate *time.Time                 `json:"expected_date"`
	Notes        string                     `json:"notes" binding:"max=2000"`
}

// UpdatePurchaseOrderStatusRequest applies a manual status change
type UpdatePurchaseOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=envoye confirme annule"`
}

// ReceiptLineRequest is the quantity received for one purchase order line
type ReceiptLineRequest struct {
	ItemID   string          `json:"item_id" binding:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ReceiveGoodsRequest records a goods receipt. Zero-quantity lines are
// ignored; a receipt where every line is zero is rejected.
type ReceiveGoodsRequest struct {
	LocationID *string              `json:"location_id" binding:"omitempty,uuid"`
	Lines      []ReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
	Notes      string               `json:"notes" binding:"max=2000"`
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	items := make([]apptrade.PurchaseOrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = apptrade.PurchaseOrderItemInput{
			ProductID:   uuid.MustParse(item.ProductID),
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitCostHT:  item.UnitCostHT,
			TaxRate:     item.TaxRate,
		}
	}

	po, err := h.purchaseOrders.CreatePurchaseOrder(c.Request.Context(), cc, apptrade.CreatePurchaseOrderInput{
		SupplierID:   uuid.MustParse(req.SupplierID),
		SupplierName: req.SupplierName,
		Items:        items,
		ExpectedDate: req.ExpectedDate,
		Notes:        req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, po)
}

// PurchaseOrderListQuery adds purchase order filters to the common list parameters
type PurchaseOrderListQuery struct {
	dto.ListRequest
	Status     string `form:"status"`
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	query := PurchaseOrderListQuery{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	filter := listFilter(query.ListRequest)
	if query.Status != "" {
		if !trade.PurchaseOrderStatus(query.Status).IsValid() {
			h.InvalidInput(c, "Unknown purchase order status: "+query.Status)
			return
		}
		filter.Filters["status"] = query.Status
	}
	if query.SupplierID != "" {
		filter.Filters["supplier_id"] = query.SupplierID
	}

	pos, total, err := h.purchaseOrders.ListPurchaseOrders(c.Request.Context(), cc, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, pos, total, filter.Page, filter.PageSize)
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	po, err := h.purchaseOrders.GetPurchaseOrder(c.Request.Context(), cc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// UpdateStatus handles POST /purchase-orders/:id/status
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	var req UpdatePurchaseOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	po, err := h.purchaseOrders.UpdateStatus(c.Request.Context(), cc, id, trade.PurchaseOrderStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// Receive handles POST /purchase-orders/:id/receive
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	var req ReceiveGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	input := apptrade.ReceiveGoodsInput{
		Lines: make([]trade.ReceiptLine, len(req.Lines)),
		Notes: req.Notes,
	}
	for i, line := range req.Lines {
		input.Lines[i] = trade.ReceiptLine{
			ItemID:   uuid.MustParse(line.ItemID),
			Quantity: line.Quantity,
		}
	}
	if locationID, _ := parseOptionalUUID(req.LocationID); locationID != nil {
		input.LocationID = *locationID
	}

	result, err := h.purchaseOrders.ReceiveGoods(c.Request.Context(), cc, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
