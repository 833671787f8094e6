package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseOrderService handles supplier orders and goods receipts
type PurchaseOrderService struct {
	scope          TransactionScope
	purchaseOrders trade.PurchaseOrderRepository
	numbering      NumberingService
	locations      DefaultLocationResolver
	locker         RecordLocker
	metrics        FulfillmentMetrics
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	scope TransactionScope,
	purchaseOrders trade.PurchaseOrderRepository,
	numbering NumberingService,
	locations DefaultLocationResolver,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		scope:          scope,
		purchaseOrders: purchaseOrders,
		numbering:      numbering,
		locations:      locations,
		metrics:        NopMetrics{},
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRecordLocker serializes receipts per purchase order
func (s *PurchaseOrderService) SetRecordLocker(locker RecordLocker) {
	s.locker = locker
}

// SetMetrics sets the business metrics recorder
func (s *PurchaseOrderService) SetMetrics(metrics FulfillmentMetrics) {
	if metrics != nil {
		s.metrics = metrics
	}
}

func (s *PurchaseOrderService) lock(ctx context.Context, poID uuid.UUID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	return s.locker.Lock(ctx, "purchase_order:"+poID.String())
}

func (s *PurchaseOrderService) publishEvents(ctx context.Context, po *trade.PurchaseOrder) {
	events := po.GetDomainEvents()
	po.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish purchase order events",
			zap.String("purchase_order_id", po.ID.String()),
			zap.Error(err))
	}
}

// CreatePurchaseOrder creates a draft purchase order
func (s *PurchaseOrderService) CreatePurchaseOrder(ctx context.Context, cc identity.CapabilityContext, input CreatePurchaseOrderInput) (*PurchaseOrderResponse, error) {
	if err := cc.Require(identity.CapSuppliersManage); err != nil {
		return nil, err
	}

	number, err := s.numbering.Next(ctx, cc.WorkspaceID, SequencePurchaseOrder, time.Now().Year())
	if err != nil {
		return nil, fmt.Errorf("allocate purchase order number: %w", err)
	}
	po, err := trade.NewPurchaseOrder(cc.WorkspaceID, cc.ActorID, number, input.SupplierID, input.SupplierName)
	if err != nil {
		return nil, err
	}
	items := make([]trade.PurchaseOrderItemInput, len(input.Items))
	for i, item := range input.Items {
		items[i] = trade.PurchaseOrderItemInput{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitCostHT:  item.UnitCostHT,
			TaxRate:     item.TaxRate,
		}
	}
	if err := po.ReplaceItems(items); err != nil {
		return nil, err
	}
	po.ExpectedDate = input.ExpectedDate
	po.Notes = input.Notes

	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.PurchaseOrders().Save(ctx, po)
	}); err != nil {
		s.logger.Error("Failed to create purchase order", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Purchase order created",
		zap.String("purchase_order_id", po.ID.String()),
		zap.String("number", po.Number),
		zap.Int("lines", len(po.Items)))
	s.publishEvents(ctx, po)
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// GetPurchaseOrder returns a purchase order of the caller's workspace
func (s *PurchaseOrderService) GetPurchaseOrder(ctx context.Context, cc identity.CapabilityContext, id uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.purchaseOrders.FindByIDForWorkspace(ctx, cc.WorkspaceID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// ListPurchaseOrders returns a page of purchase orders and the total count
func (s *PurchaseOrderService) ListPurchaseOrders(ctx context.Context, cc identity.CapabilityContext, filter shared.Filter) ([]PurchaseOrderResponse, int64, error) {
	pos, err := s.purchaseOrders.FindAllForWorkspace(ctx, cc.WorkspaceID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.purchaseOrders.CountForWorkspace(ctx, cc.WorkspaceID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToPurchaseOrderResponses(pos), total, nil
}

// UpdateStatus applies a manual status change (envoye, confirme or annule)
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, cc identity.CapabilityContext, id uuid.UUID, target trade.PurchaseOrderStatus) (*PurchaseOrderResponse, error) {
	if err := cc.Require(identity.CapSuppliersManage); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var po *trade.PurchaseOrder
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, cc.WorkspaceID, id)
		if err != nil {
			return err
		}
		if err := po.UpdateStatus(target); err != nil {
			return err
		}
		return repos.PurchaseOrders().UpdateStatus(ctx, cc.WorkspaceID, id, po.Status, po.ReceivedDate)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order status changed",
		zap.String("purchase_order_id", id.String()),
		zap.String("status", string(po.Status)))
	s.publishEvents(ctx, po)
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// ReceiveGoods records a goods receipt. Line increments, the matching in
// movements and the derived status are written in one transaction.
func (s *PurchaseOrderService) ReceiveGoods(ctx context.Context, cc identity.CapabilityContext, id uuid.UUID, input ReceiveGoodsInput) (*ReceiveResult, error) {
	if err := cc.Require(identity.CapSuppliersManage); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	locationID := input.LocationID
	if locationID == uuid.Nil {
		locationID, err = s.locations.DefaultLocation(ctx, cc.WorkspaceID)
		if err != nil {
			return nil, err
		}
	}

	var (
		po       *trade.PurchaseOrder
		received []trade.ReceivedLine
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, cc.WorkspaceID, id)
		if err != nil {
			return err
		}
		received, err = po.Receive(input.Lines)
		if err != nil {
			return err
		}

		movements := make([]*inventory.StockMovement, 0, len(received))
		for _, line := range received {
			if err := repos.PurchaseOrders().IncrementReceived(ctx, po.ID, line.ItemID, line.Quantity); err != nil {
				return err
			}
			m, err := inventory.NewStockMovement(cc.WorkspaceID, line.ProductID, locationID, inventory.MovementTypeIn, line.Quantity)
			if err != nil {
				return err
			}
			movements = append(movements, m.WithPurchaseOrder(po.ID).WithActor(cc.ActorID).WithNotes(input.Notes))
		}
		if err := repos.StockLedger().Append(ctx, movements...); err != nil {
			return err
		}
		return repos.PurchaseOrders().UpdateStatus(ctx, cc.WorkspaceID, po.ID, po.Status, po.ReceivedDate)
	})
	if err != nil {
		return nil, err
	}

	units := decimal.Zero
	lines := make([]ReceivedLineResponse, len(received))
	for i, line := range received {
		units = units.Add(line.Quantity)
		lines[i] = ReceivedLineResponse{ItemID: line.ItemID, ProductID: line.ProductID, Quantity: line.Quantity}
	}
	s.metrics.RecordGoodsReceived(ctx, units)
	s.logger.Info("Goods received",
		zap.String("purchase_order_id", po.ID.String()),
		zap.String("number", po.Number),
		zap.String("status", string(po.Status)),
		zap.String("units", units.String()),
		zap.String("location_id", locationID.String()))
	s.publishEvents(ctx, po)

	return &ReceiveResult{
		PurchaseOrder: ToPurchaseOrderResponse(po),
		Received:      lines,
		LocationID:    locationID,
	}, nil
}
