package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryService handles stock ledger operations
type InventoryService struct {
	scope          TransactionScope
	ledger         inventory.StockLedger
	locations      inventory.LocationRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	scope TransactionScope,
	ledger inventory.StockLedger,
	locations inventory.LocationRepository,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		scope:     scope,
		ledger:    ledger,
		locations: locations,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *InventoryService) publishMovements(ctx context.Context, movements []*inventory.StockMovement) {
	if s.eventPublisher == nil || len(movements) == 0 {
		return
	}
	events := make([]shared.DomainEvent, 0, len(movements))
	for _, m := range movements {
		events = append(events, inventory.NewStockMovedEvent(m))
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish stock events", zap.Error(err))
	}
}

// Debit records one out movement per line for an order. The batch is
// all-or-nothing. Negative availability is logged but not refused.
func (s *InventoryService) Debit(ctx context.Context, workspaceID, orderID uuid.UUID, lines []inventory.StockLine, locationID, actorID uuid.UUID) ([]MovementResponse, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Nothing to debit")
	}

	movements := make([]*inventory.StockMovement, 0, len(lines))
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Debit quantity for product %s must be positive", line.ProductID))
		}
		m, err := inventory.NewStockMovement(workspaceID, line.ProductID, locationID, inventory.MovementTypeOut, line.Quantity.Neg())
		if err != nil {
			return nil, err
		}
		movements = append(movements, m.WithOrder(orderID).WithActor(actorID))
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, m := range movements {
			level, err := repos.StockLedger().FindLevelForUpdate(ctx, workspaceID, m.ProductID, locationID)
			if err != nil {
				return err
			}
			if level.Available().Add(m.Quantity).IsNegative() {
				s.logger.Warn("Stock debit leaves negative availability",
					zap.String("order_id", orderID.String()),
					zap.String("product_id", m.ProductID.String()),
					zap.String("available", level.Available().String()),
					zap.String("quantity", m.Quantity.Neg().String()))
			}
		}
		return repos.StockLedger().Append(ctx, movements...)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock debited for order",
		zap.String("order_id", orderID.String()),
		zap.String("location_id", locationID.String()),
		zap.Int("lines", len(movements)))
	s.publishMovements(ctx, movements)
	return movementResponses(movements), nil
}

// DebitOrder is Debit for callers that only need the outcome
func (s *InventoryService) DebitOrder(ctx context.Context, workspaceID, orderID uuid.UUID, lines []inventory.StockLine, locationID, actorID uuid.UUID) error {
	_, err := s.Debit(ctx, workspaceID, orderID, lines, locationID, actorID)
	return err
}

// Adjust records the difference between a counted quantity and the current
// one as a single adjustment movement
func (s *InventoryService) Adjust(ctx context.Context, cc identity.CapabilityContext, input AdjustStockInput) (*AdjustResult, error) {
	if err := cc.Require(identity.CapStockManage); err != nil {
		return nil, err
	}
	if input.ProductID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID is required")
	}
	if input.NewQuantity.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "New quantity cannot be negative")
	}
	if _, err := s.locations.FindByID(ctx, cc.WorkspaceID, input.LocationID); err != nil {
		return nil, err
	}

	result := &AdjustResult{}
	var recorded []*inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		level, err := repos.StockLedger().FindLevelForUpdate(ctx, cc.WorkspaceID, input.ProductID, input.LocationID)
		if err != nil {
			return err
		}
		delta := input.NewQuantity.Sub(level.Quantity)
		if delta.IsZero() {
			result.Level = ToStockLevelResponse(level)
			return nil
		}

		m, err := inventory.NewStockMovement(cc.WorkspaceID, input.ProductID, input.LocationID, inventory.MovementTypeAdjustment, delta)
		if err != nil {
			return err
		}
		m.WithActor(cc.ActorID).WithNotes(input.Notes)
		if err := repos.StockLedger().Append(ctx, m); err != nil {
			return err
		}
		level.Apply(m)
		resp := ToMovementResponse(m)
		result.Movement = &resp
		result.Level = ToStockLevelResponse(level)
		recorded = append(recorded, m)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishMovements(ctx, recorded)
	return result, nil
}

// Transfer moves quantity from one location to another as a paired
// transfer_out/transfer_in written atomically
func (s *InventoryService) Transfer(ctx context.Context, cc identity.CapabilityContext, input TransferStockInput) (*TransferResult, error) {
	if err := cc.Require(identity.CapStockManage); err != nil {
		return nil, err
	}
	if !input.Quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Transfer quantity must be positive")
	}
	if input.FromLocationID == input.ToLocationID {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Source and destination must differ")
	}
	for _, locationID := range []uuid.UUID{input.FromLocationID, input.ToLocationID} {
		if _, err := s.locations.FindByID(ctx, cc.WorkspaceID, locationID); err != nil {
			return nil, err
		}
	}

	out, err := inventory.NewStockMovement(cc.WorkspaceID, input.ProductID, input.FromLocationID, inventory.MovementTypeTransferOut, input.Quantity.Neg())
	if err != nil {
		return nil, err
	}
	in, err := inventory.NewStockMovement(cc.WorkspaceID, input.ProductID, input.ToLocationID, inventory.MovementTypeTransferIn, input.Quantity)
	if err != nil {
		return nil, err
	}
	out.WithActor(cc.ActorID).WithNotes(input.Notes)
	in.WithActor(cc.ActorID).WithNotes(input.Notes)

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := repos.StockLedger().FindLevelForUpdate(ctx, cc.WorkspaceID, input.ProductID, input.FromLocationID)
		if err != nil {
			return err
		}
		if input.Quantity.GreaterThan(source.Quantity) {
			return shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("Only %s in stock at the source location, cannot transfer %s", source.Quantity, input.Quantity))
		}
		return repos.StockLedger().Append(ctx, out, in)
	})
	if err != nil {
		return nil, err
	}

	s.publishMovements(ctx, []*inventory.StockMovement{out, in})
	return &TransferResult{Out: ToMovementResponse(out), In: ToMovementResponse(in)}, nil
}

// Reserve earmarks available stock
func (s *InventoryService) Reserve(ctx context.Context, cc identity.CapabilityContext, input ReservationInput) (*MovementResponse, error) {
	return s.reservation(ctx, cc, input, inventory.MovementTypeReservation)
}

// Unreserve releases previously reserved stock
func (s *InventoryService) Unreserve(ctx context.Context, cc identity.CapabilityContext, input ReservationInput) (*MovementResponse, error) {
	return s.reservation(ctx, cc, input, inventory.MovementTypeUnreservation)
}

func (s *InventoryService) reservation(ctx context.Context, cc identity.CapabilityContext, input ReservationInput, movementType inventory.MovementType) (*MovementResponse, error) {
	if err := cc.Require(identity.CapStockManage); err != nil {
		return nil, err
	}
	if !input.Quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}

	signed := input.Quantity
	if movementType == inventory.MovementTypeUnreservation {
		signed = signed.Neg()
	}
	m, err := inventory.NewStockMovement(cc.WorkspaceID, input.ProductID, input.LocationID, movementType, signed)
	if err != nil {
		return nil, err
	}
	m.WithActor(cc.ActorID).WithNotes(input.Notes)
	if input.OrderID != nil {
		m.WithOrder(*input.OrderID)
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		level, err := repos.StockLedger().FindLevelForUpdate(ctx, cc.WorkspaceID, input.ProductID, input.LocationID)
		if err != nil {
			return err
		}
		if movementType == inventory.MovementTypeReservation && input.Quantity.GreaterThan(level.Available()) {
			return shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("Only %s available, cannot reserve %s", decimal.Max(level.Available(), decimal.Zero), input.Quantity))
		}
		if movementType == inventory.MovementTypeUnreservation && input.Quantity.GreaterThan(level.ReservedQuantity) {
			return shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Only %s reserved, cannot release %s", level.ReservedQuantity, input.Quantity))
		}
		return repos.StockLedger().Append(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.publishMovements(ctx, []*inventory.StockMovement{m})
	resp := ToMovementResponse(m)
	return &resp, nil
}

// GetStockAlerts classifies products by total availability across locations
func (s *InventoryService) GetStockAlerts(ctx context.Context, workspaceID uuid.UUID) (inventory.StockAlerts, error) {
	levels, err := s.ledger.ListLevels(ctx, workspaceID, inventory.LevelFilter{})
	if err != nil {
		return inventory.StockAlerts{}, err
	}
	return inventory.ClassifyAlerts(levels), nil
}

// ListLevels returns cached stock levels
func (s *InventoryService) ListLevels(ctx context.Context, workspaceID uuid.UUID, filter inventory.LevelFilter) ([]StockLevelResponse, error) {
	levels, err := s.ledger.ListLevels(ctx, workspaceID, filter)
	if err != nil {
		return nil, err
	}
	return ToStockLevelResponses(levels), nil
}

// ListMovements returns a page of ledger rows and the total count
func (s *InventoryService) ListMovements(ctx context.Context, workspaceID uuid.UUID, filter inventory.MovementFilter) ([]MovementResponse, int64, error) {
	movements, total, err := s.ledger.ListMovements(ctx, workspaceID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToMovementResponses(movements), total, nil
}

// RebuildLevels replays every movement of the workspace and rewrites the level cache
func (s *InventoryService) RebuildLevels(ctx context.Context, cc identity.CapabilityContext) ([]StockLevelResponse, error) {
	if err := cc.Require(identity.CapStockManage); err != nil {
		return nil, err
	}

	var levels []inventory.StockLevel
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements, err := repos.StockLedger().AllMovements(ctx, cc.WorkspaceID)
		if err != nil {
			return err
		}
		levels = inventory.ReplayMovements(cc.WorkspaceID, movements)
		return repos.StockLedger().ReplaceLevels(ctx, cc.WorkspaceID, levels)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock levels rebuilt from movements",
		zap.String("workspace_id", cc.WorkspaceID.String()),
		zap.Int("levels", len(levels)))
	return ToStockLevelResponses(levels), nil
}

func movementResponses(movements []*inventory.StockMovement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = ToMovementResponse(m)
	}
	return out
}
