package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/mobilia/backend/internal/application/inventory"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// StockHandler handles inventory endpoints
type StockHandler struct {
	BaseHandler
	stock StockUseCases
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stock StockUseCases) *StockHandler {
	return &StockHandler{stock: stock}
}

// RegisterRoutes mounts the stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	stock.POST("/adjust", h.Adjust)
	stock.POST("/transfer", h.Transfer)
	stock.POST("/reserve", h.Reserve)
	stock.POST("/unreserve", h.Unreserve)
	stock.GET("/levels", h.ListLevels)
	stock.GET("/movements", h.ListMovements)
	stock.GET("/alerts", h.Alerts)
	stock.POST("/rebuild", h.Rebuild)
}

// AdjustStockRequest sets the counted quantity of a product at a location
type AdjustStockRequest struct {
	ProductID   string          `json:"product_id" binding:"required,uuid"`
	LocationID  string          `json:"location_id" binding:"required,uuid"`
	NewQuantity decimal.Decimal `json:"new_quantity" binding:"gte=0"`
	Notes       string          `json:"notes" binding:"max=2000"`
}

// TransferStockRequest moves stock between locations
type TransferStockRequest struct {
	ProductID      string          `json:"product_id" binding:"required,uuid"`
	FromLocationID string          `json:"from_location_id" binding:"required,uuid"`
	ToLocationID   string          `json:"to_location_id" binding:"required,uuid,nefield=FromLocationID"`
	Quantity       decimal.Decimal `json:"quantity" binding:"gt=0"`
	Notes          string          `json:"notes" binding:"max=2000"`
}

// ReservationRequest earmarks or releases stock
type ReservationRequest struct {
	ProductID  string          `json:"product_id" binding:"required,uuid"`
	LocationID string          `json:"location_id" binding:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity" binding:"gt=0"`
	OrderID    *string         `json:"order_id" binding:"omitempty,uuid"`
	Notes      string          `json:"notes" binding:"max=2000"`
}

// Adjust handles POST /stock/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	result, err := h.stock.Adjust(c.Request.Context(), cc, appinv.AdjustStockInput{
		ProductID:   uuid.MustParse(req.ProductID),
		LocationID:  uuid.MustParse(req.LocationID),
		NewQuantity: req.NewQuantity,
		Notes:       req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Transfer handles POST /stock/transfer
func (h *StockHandler) Transfer(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	var req TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	result, err := h.stock.Transfer(c.Request.Context(), cc, appinv.TransferStockInput{
		ProductID:      uuid.MustParse(req.ProductID),
		FromLocationID: uuid.MustParse(req.FromLocationID),
		ToLocationID:   uuid.MustParse(req.ToLocationID),
		Quantity:       req.Quantity,
		Notes:          req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *StockHandler) bindReservation(c *gin.Context) (appinv.ReservationInput, bool) {
	var req ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return appinv.ReservationInput{}, false
	}
	orderID, _ := parseOptionalUUID(req.OrderID)
	return appinv.ReservationInput{
		ProductID:  uuid.MustParse(req.ProductID),
		LocationID: uuid.MustParse(req.LocationID),
		Quantity:   req.Quantity,
		OrderID:    orderID,
		Notes:      req.Notes,
	}, true
}

// Reserve handles POST /stock/reserve
func (h *StockHandler) Reserve(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	input, ok := h.bindReservation(c)
	if !ok {
		return
	}
	movement, err := h.stock.Reserve(c.Request.Context(), cc, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}

// Unreserve handles POST /stock/unreserve
func (h *StockHandler) Unreserve(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	input, ok := h.bindReservation(c)
	if !ok {
		return
	}
	movement, err := h.stock.Unreserve(c.Request.Context(), cc, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}

// LevelQuery narrows a level listing
type LevelQuery struct {
	ProductID  string `form:"product_id" binding:"omitempty,uuid"`
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
}

// ListLevels handles GET /stock/levels
func (h *StockHandler) ListLevels(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	var query LevelQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	levels, err := h.stock.ListLevels(c.Request.Context(), cc.WorkspaceID, inventory.LevelFilter{
		ProductID:  optionalQueryUUID(query.ProductID),
		LocationID: optionalQueryUUID(query.LocationID),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}

// MovementQuery narrows a movement listing
type MovementQuery struct {
	dto.ListRequest
	ProductID       string `form:"product_id" binding:"omitempty,uuid"`
	LocationID      string `form:"location_id" binding:"omitempty,uuid"`
	OrderID         string `form:"order_id" binding:"omitempty,uuid"`
	PurchaseOrderID string `form:"purchase_order_id" binding:"omitempty,uuid"`
	MovementType    string `form:"movement_type" binding:"omitempty,oneof=in out adjustment reservation unreservation transfer_in transfer_out"`
}

// ListMovements handles GET /stock/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	query := MovementQuery{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	filter := inventory.MovementFilter{
		Filter:          listFilter(query.ListRequest),
		ProductID:       optionalQueryUUID(query.ProductID),
		LocationID:      optionalQueryUUID(query.LocationID),
		OrderID:         optionalQueryUUID(query.OrderID),
		PurchaseOrderID: optionalQueryUUID(query.PurchaseOrderID),
		MovementType:    inventory.MovementType(query.MovementType),
	}
	movements, total, err := h.stock.ListMovements(c.Request.Context(), cc.WorkspaceID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// Alerts handles GET /stock/alerts
func (h *StockHandler) Alerts(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	alerts, err := h.stock.GetStockAlerts(c.Request.Context(), cc.WorkspaceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alerts)
}

// Rebuild handles POST /stock/rebuild
func (h *StockHandler) Rebuild(c *gin.Context) {
	cc, ok := h.capability(c)
	if !ok {
		return
	}
	levels, err := h.stock.RebuildLevels(c.Request.Context(), cc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}

// optionalQueryUUID parses an already validated query value
func optionalQueryUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}
