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

// OrderService runs the order state machine and the payment ledger
type OrderService struct {
	scope          TransactionScope
	orders         trade.OrderRepository
	payments       trade.PaymentRepository
	numbering      NumberingService
	invoices       InvoiceGenerator
	locations      DefaultLocationResolver
	stock          StockDebitor
	locker         RecordLocker
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        FulfillmentMetrics
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	scope TransactionScope,
	orders trade.OrderRepository,
	payments trade.PaymentRepository,
	numbering NumberingService,
	invoices InvoiceGenerator,
	locations DefaultLocationResolver,
	stock StockDebitor,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		scope:          scope,
		orders:         orders,
		payments:       payments,
		numbering:      numbering,
		invoices:       invoices,
		locations:      locations,
		stock:          stock,
		idempotencyTTL: shared.DefaultSubmissionTTL,
		metrics:        NopMetrics{},
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRecordLocker serializes payment writers per order
func (s *OrderService) SetRecordLocker(locker RecordLocker) {
	s.locker = locker
}

// SetIdempotencyStore enables replay protection for payment submissions
func (s *OrderService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetMetrics sets the business metrics recorder
func (s *OrderService) SetMetrics(metrics FulfillmentMetrics) {
	if metrics != nil {
		s.metrics = metrics
	}
}

func (s *OrderService) lock(ctx context.Context, orderID uuid.UUID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	return s.locker.Lock(ctx, "order:"+orderID.String())
}

func (s *OrderService) publishEvents(ctx context.Context, order *trade.Order) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}

func (s *OrderService) buildOrder(ctx context.Context, cc identity.CapabilityContext, orderType trade.OrderType, items []OrderItemInput, discount decimal.Decimal, discountType trade.DiscountType) (*trade.Order, error) {
	number, err := s.numbering.Next(ctx, cc.WorkspaceID, SequenceOrder, time.Now().Year())
	if err != nil {
		return nil, fmt.Errorf("allocate order number: %w", err)
	}
	order, err := trade.NewOrder(cc.WorkspaceID, cc.ActorID, number, orderType)
	if err != nil {
		return nil, err
	}
	if err := order.ReplaceItems(toDomainItems(items)); err != nil {
		return nil, err
	}
	if err := order.SetDiscount(discount, discountType); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrder creates a standard order in brouillon, or confirme when requested
func (s *OrderService) CreateOrder(ctx context.Context, cc identity.CapabilityContext, input CreateOrderInput) (*OrderResponse, error) {
	if err := cc.Require(identity.CapOrdersManage); err != nil {
		return nil, err
	}

	order, err := s.buildOrder(ctx, cc, trade.OrderTypeStandard, input.Items, input.DiscountGlobal, input.DiscountType)
	if err != nil {
		return nil, err
	}
	order.CustomerID = input.CustomerID
	order.SourceQuoteID = input.SourceQuoteID
	order.RequiresDelivery = input.RequiresDelivery
	order.DeliveryType = input.DeliveryType
	order.Notes = input.Notes
	if input.Confirm {
		if len(order.Items) == 0 {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Cannot confirm an order without items")
		}
		if err := order.TransitionTo(trade.OrderStatusConfirmed); err != nil {
			return nil, err
		}
	}

	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Orders().Save(ctx, order)
	}); err != nil {
		s.logger.Error("Failed to create order", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("number", order.Number),
		zap.String("status", string(order.Status)))
	s.publishEvents(ctx, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// CreateQuickSale records a counter sale: the order is created in termine with
// a full payment in one transaction. Stock debit and invoice generation follow
// as best-effort post-actions.
func (s *OrderService) CreateQuickSale(ctx context.Context, cc identity.CapabilityContext, input QuickSaleInput) (*QuickSaleResult, error) {
	if err := cc.Require(identity.CapOrdersManage); err != nil {
		return nil, err
	}
	if err := cc.Require(identity.CapPaymentsRecord); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "A quick sale needs at least one item")
	}

	order, err := s.buildOrder(ctx, cc, trade.OrderTypeQuickSale, input.Items, input.DiscountGlobal, input.DiscountType)
	if err != nil {
		return nil, err
	}
	if !order.TotalTTC.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "A quick sale must have a positive total")
	}
	order.CustomerID = input.CustomerID
	order.Notes = input.Notes
	if err := order.CompleteQuickSale(); err != nil {
		return nil, err
	}

	var payment *trade.Payment
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		p, err := order.RegisterPayment(trade.PaymentInput{
			Amount:   order.RemainingAmount,
			Type:     trade.PaymentTypeFull,
			Method:   input.Method,
			Receiver: input.Receiver,
		}, cc.ActorID)
		if err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, p); err != nil {
			return err
		}
		payment = p
		return repos.Orders().ApplyPaymentDelta(ctx, order.WorkspaceID, order.ID, p.Amount)
	})
	if err != nil {
		s.logger.Error("Failed to record quick sale", zap.Error(err))
		return nil, err
	}
	s.metrics.RecordPayment(ctx, payment.Type, payment.Amount)

	result := &QuickSaleResult{Payment: ToPaymentResponse(payment)}
	result.StockDebit = s.debitStock(ctx, order, input.LocationID, cc.ActorID)

	invoiceID, invoiceErr := s.invoices.GenerateInvoice(ctx, order, trade.InvoiceCategoryQuickSale)
	result.Invoice = shared.AttemptedAction(ActionInvoice, invoiceErr)
	if invoiceErr != nil {
		s.metrics.RecordPostActionFailure(ctx, ActionInvoice)
		s.logger.Warn("Quick sale invoice generation failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(invoiceErr))
	} else {
		result.InvoiceID = &invoiceID
	}

	s.publishEvents(ctx, order)
	result.Order = ToOrderResponse(order)
	return result, nil
}

// GetOrder returns an order of the caller's workspace
func (s *OrderService) GetOrder(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByIDForWorkspace(ctx, cc.WorkspaceID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListOrders returns a page of orders and the total count
func (s *OrderService) ListOrders(ctx context.Context, cc identity.CapabilityContext, filter shared.Filter) ([]OrderResponse, int64, error) {
	orders, err := s.orders.FindAllForWorkspace(ctx, cc.WorkspaceID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.CountForWorkspace(ctx, cc.WorkspaceID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// UpdateDraftItems replaces the lines of a draft order
func (s *OrderService) UpdateDraftItems(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, input UpdateDraftItemsInput) (*OrderResponse, error) {
	if err := cc.Require(identity.CapOrdersManage); err != nil {
		return nil, err
	}

	var order *trade.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, cc.WorkspaceID, orderID)
		if err != nil {
			return err
		}
		if err := order.ReplaceItems(toDomainItems(input.Items)); err != nil {
			return err
		}
		if input.DiscountGlobal != nil {
			if err := order.SetDiscount(*input.DiscountGlobal, input.DiscountType); err != nil {
				return err
			}
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	resp := ToOrderResponse(order)
	return &resp, nil
}

// Transition moves an order along the adjacency list. It has no ledger side effects.
func (s *OrderService) Transition(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, target trade.OrderStatus) (*OrderResponse, error) {
	if err := cc.Require(identity.CapOrdersTransition); err != nil {
		return nil, err
	}

	var order *trade.Order
	var from trade.OrderStatus
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, cc.WorkspaceID, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if err := order.TransitionTo(target); err != nil {
			return err
		}
		return repos.Orders().UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)))
	s.metrics.RecordTransition(ctx, string(from), string(target), false)
	s.publishEvents(ctx, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// DeleteOrder removes an order and its payments. Stock movements already
// recorded for the order are kept.
func (s *OrderService) DeleteOrder(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) error {
	if err := cc.Require(identity.CapOrdersDelete); err != nil {
		return err
	}
	unlock, err := s.lock(ctx, orderID)
	if err != nil {
		return err
	}
	defer unlock()

	var order *trade.Order
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, cc.WorkspaceID, orderID)
		if err != nil {
			return err
		}
		if err := order.CanDelete(); err != nil {
			return err
		}
		removed, err := repos.Payments().DeleteByOrder(ctx, cc.WorkspaceID, orderID)
		if err != nil {
			return err
		}
		if err := repos.Orders().Delete(ctx, cc.WorkspaceID, orderID); err != nil {
			return err
		}
		order.MarkDeleted(removed)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Order deleted",
		zap.String("order_id", orderID.String()),
		zap.String("number", order.Number),
		zap.String("actor_id", cc.ActorID.String()))
	s.publishEvents(ctx, order)
	return nil
}

// RequestInvoice asks the invoice generator for an invoice of the given
// category after checking the category guard. The order is not modified.
func (s *OrderService) RequestInvoice(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, category trade.InvoiceCategory) (*InvoiceResult, error) {
	if err := cc.Require(identity.CapOrdersManage); err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown invoice category %q", category))
	}

	order, err := s.orders.FindByIDForWorkspace(ctx, cc.WorkspaceID, orderID)
	if err != nil {
		return nil, err
	}
	exists, err := s.invoices.HasInvoice(ctx, cc.WorkspaceID, orderID, category)
	if err != nil {
		return nil, fmt.Errorf("check existing invoices: %w", err)
	}
	if err := order.CheckInvoicePrecondition(category, exists); err != nil {
		return nil, err
	}

	invoiceID, err := s.invoices.GenerateInvoice(ctx, order, category)
	if err != nil {
		s.logger.Error("Invoice generation failed",
			zap.String("order_id", orderID.String()),
			zap.String("category", string(category)),
			zap.Error(err))
		return nil, err
	}
	return &InvoiceResult{InvoiceID: invoiceID, OrderID: orderID, Category: string(category)}, nil
}

// debitStock runs the first-payment stock debit. Failures are logged and
// reported, never returned.
func (s *OrderService) debitStock(ctx context.Context, order *trade.Order, locationID *uuid.UUID, actorID uuid.UUID) shared.PostAction {
	lines := stockLines(order)
	if len(lines) == 0 || s.stock == nil {
		return shared.SkippedAction(ActionStockDebit)
	}

	err := func() error {
		var location uuid.UUID
		if locationID != nil && *locationID != uuid.Nil {
			location = *locationID
		} else {
			resolved, err := s.locations.DefaultLocation(ctx, order.WorkspaceID)
			if err != nil {
				return fmt.Errorf("resolve default location: %w", err)
			}
			location = resolved
		}
		return s.stock.DebitOrder(ctx, order.WorkspaceID, order.ID, lines, location, actorID)
	}()

	if err != nil {
		s.metrics.RecordPostActionFailure(ctx, ActionStockDebit)
		s.logger.Warn("Stock debit after payment failed",
			zap.String("order_id", order.ID.String()),
			zap.String("number", order.Number),
			zap.Error(err))
	}
	return shared.AttemptedAction(ActionStockDebit, err)
}

// stockLines merges order lines per product
func stockLines(order *trade.Order) []inventory.StockLine {
	index := make(map[uuid.UUID]int)
	lines := make([]inventory.StockLine, 0)
	for _, item := range order.StockLines() {
		productID := *item.ProductID
		if i, ok := index[productID]; ok {
			lines[i].Quantity = lines[i].Quantity.Add(item.Quantity)
			continue
		}
		index[productID] = len(lines)
		lines = append(lines, inventory.StockLine{ProductID: productID, Quantity: item.Quantity})
	}
	return lines
}
