package handler

import (
	"context"

	"github.com/google/uuid"
	appinv "github.com/mobilia/backend/internal/application/inventory"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
)

// OrderUseCases is the order surface used by OrderHandler
type OrderUseCases interface {
	CreateOrder(ctx context.Context, cc identity.CapabilityContext, input apptrade.CreateOrderInput) (*apptrade.OrderResponse, error)
	CreateQuickSale(ctx context.Context, cc identity.CapabilityContext, input apptrade.QuickSaleInput) (*apptrade.QuickSaleResult, error)
	GetOrder(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) (*apptrade.OrderResponse, error)
	ListOrders(ctx context.Context, cc identity.CapabilityContext, filter shared.Filter) ([]apptrade.OrderResponse, int64, error)
	UpdateDraftItems(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, input apptrade.UpdateDraftItemsInput) (*apptrade.OrderResponse, error)
	Transition(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, target trade.OrderStatus) (*apptrade.OrderResponse, error)
	DeleteOrder(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) error
	RequestInvoice(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, category trade.InvoiceCategory) (*apptrade.InvoiceResult, error)
	ApplyPayment(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, input apptrade.ApplyPaymentInput) (*apptrade.PaymentResult, error)
	DeletePayment(ctx context.Context, cc identity.CapabilityContext, orderID, paymentID uuid.UUID) (*apptrade.OrderResponse, error)
	ListPayments(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) ([]apptrade.PaymentResponse, error)
	ReconcileOrder(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) (*apptrade.ReconcileResult, error)
}

// PurchaseOrderUseCases is the purchasing surface used by PurchaseOrderHandler
type PurchaseOrderUseCases interface {
	CreatePurchaseOrder(ctx context.Context, cc identity.CapabilityContext, input apptrade.CreatePurchaseOrderInput) (*apptrade.PurchaseOrderResponse, error)
	GetPurchaseOrder(ctx context.Context, cc identity.CapabilityContext, id uuid.UUID) (*apptrade.PurchaseOrderResponse, error)
	ListPurchaseOrders(ctx context.Context, cc identity.CapabilityContext, filter shared.Filter) ([]apptrade.PurchaseOrderResponse, int64, error)
	UpdateStatus(ctx context.Context, cc identity.CapabilityContext, id uuid.UUID, target trade.PurchaseOrderStatus) (*apptrade.PurchaseOrderResponse, error)
	ReceiveGoods(ctx context.Context, cc identity.CapabilityContext, id uuid.UUID, input apptrade.ReceiveGoodsInput) (*apptrade.ReceiveResult, error)
}

// StockUseCases is the inventory surface used by StockHandler
type StockUseCases interface {
	Adjust(ctx context.Context, cc identity.CapabilityContext, input appinv.AdjustStockInput) (*appinv.AdjustResult, error)
	Transfer(ctx context.Context, cc identity.CapabilityContext, input appinv.TransferStockInput) (*appinv.TransferResult, error)
	Reserve(ctx context.Context, cc identity.CapabilityContext, input appinv.ReservationInput) (*appinv.MovementResponse, error)
	Unreserve(ctx context.Context, cc identity.CapabilityContext, input appinv.ReservationInput) (*appinv.MovementResponse, error)
	GetStockAlerts(ctx context.Context, workspaceID uuid.UUID) (inventory.StockAlerts, error)
	ListLevels(ctx context.Context, workspaceID uuid.UUID, filter inventory.LevelFilter) ([]appinv.StockLevelResponse, error)
	ListMovements(ctx context.Context, workspaceID uuid.UUID, filter inventory.MovementFilter) ([]appinv.MovementResponse, int64, error)
	RebuildLevels(ctx context.Context, cc identity.CapabilityContext) ([]appinv.StockLevelResponse, error)
}

var (
	_ OrderUseCases         = (*apptrade.OrderService)(nil)
	_ PurchaseOrderUseCases = (*apptrade.PurchaseOrderService)(nil)
	_ StockUseCases         = (*appinv.InventoryService)(nil)
)
