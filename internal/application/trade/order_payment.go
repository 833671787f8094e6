package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
	"go.uber.org/zap"
)

func paymentKey(workspaceID, orderID uuid.UUID, key string) string {
	return fmt.Sprintf("payment:%s:%s:%s", workspaceID, orderID, key)
}

// ApplyPayment records a payment against an order.
//
// The payment insert and the amount_paid increment share one transaction with
// the order row locked. After commit, the first payment debits stock and the
// status may advance; both are post-actions whose failure is reported in the
// result but never undoes the payment.
func (s *OrderService) ApplyPayment(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID, input ApplyPaymentInput) (*PaymentResult, error) {
	if err := cc.Require(identity.CapPaymentsRecord); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var idemKey string
	if input.IdempotencyKey != "" && s.idempotency != nil {
		idemKey = paymentKey(cc.WorkspaceID, orderID, input.IdempotencyKey)
		seen, err := s.idempotency.IsProcessed(ctx, idemKey)
		if err != nil {
			s.logger.Warn("Idempotency lookup failed, continuing", zap.Error(err))
		} else if seen {
			return nil, shared.ErrDuplicateSubmission
		}
	}

	var (
		order        *trade.Order
		payment      *trade.Payment
		firstPayment bool
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, cc.WorkspaceID, orderID)
		if err != nil {
			return err
		}
		count, err := repos.Payments().CountByOrder(ctx, cc.WorkspaceID, orderID)
		if err != nil {
			return err
		}
		firstPayment = count == 0

		payment, err = order.RegisterPayment(trade.PaymentInput{
			Amount:      input.Amount,
			Type:        input.Type,
			Method:      input.Method,
			PaymentDate: input.PaymentDate,
			Receiver:    input.Receiver,
			Notes:       input.Notes,
		}, cc.ActorID)
		if err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}
		return repos.Orders().ApplyPaymentDelta(ctx, cc.WorkspaceID, orderID, payment.Amount)
	})
	if err != nil {
		return nil, err
	}

	if idemKey != "" {
		if _, err := s.idempotency.MarkProcessed(ctx, idemKey, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to mark payment submission as processed",
				zap.String("order_id", orderID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("Payment applied",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("amount_paid", order.AmountPaid.StringFixed(2)),
		zap.Bool("first_payment", firstPayment))
	s.metrics.RecordPayment(ctx, payment.Type, payment.Amount)

	result := &PaymentResult{
		Payment:       ToPaymentResponse(payment),
		FirstPayment:  firstPayment,
		StockDebit:    shared.SkippedAction(ActionStockDebit),
		StatusAdvance: shared.SkippedAction(ActionStatusAdvance),
	}
	if firstPayment {
		result.StockDebit = s.debitStock(ctx, order, nil, cc.ActorID)
	}
	s.publishEvents(ctx, order)

	result.StatusAdvance = s.advanceStatus(ctx, order, firstPayment)
	s.publishEvents(ctx, order)
	result.Order = ToOrderResponse(order)
	return result, nil
}

// advanceStatus applies the automatic status change decided by the order.
// A failed write restores the in-memory status and is reported as a failed post-action.
func (s *OrderService) advanceStatus(ctx context.Context, order *trade.Order, firstPayment bool) shared.PostAction {
	next, changed := order.StatusAfterPayment(firstPayment)
	if !changed {
		return shared.SkippedAction(ActionStatusAdvance)
	}

	from, changedAt := order.Status, order.StatusChangedAt
	err := order.AdvanceAfterPayment(next)
	if err == nil {
		err = s.orders.UpdateStatus(ctx, order)
		if err != nil {
			order.Status, order.StatusChangedAt = from, changedAt
			order.ClearDomainEvents()
		}
	}
	if err != nil {
		s.metrics.RecordPostActionFailure(ctx, ActionStatusAdvance)
		s.logger.Warn("Automatic status change after payment failed",
			zap.String("order_id", order.ID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(next)),
			zap.Error(err))
		return shared.AttemptedAction(ActionStatusAdvance, err)
	}

	s.metrics.RecordTransition(ctx, string(from), string(next), true)
	return shared.AttemptedAction(ActionStatusAdvance, nil)
}

// DeletePayment removes a payment and reverses the derived totals atomically.
// The order status is not rolled back.
func (s *OrderService) DeletePayment(ctx context.Context, cc identity.CapabilityContext, orderID, paymentID uuid.UUID) (*OrderResponse, error) {
	if err := cc.Require(identity.CapPaymentsDelete); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var order *trade.Order
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, cc.WorkspaceID, orderID)
		if err != nil {
			return err
		}
		payment, err := repos.Payments().FindByID(ctx, cc.WorkspaceID, paymentID)
		if err != nil {
			return err
		}
		if payment.OrderID != orderID {
			return shared.NewDomainError(shared.CodeNotFound, "Payment not found on this order")
		}
		if err := repos.Payments().Delete(ctx, cc.WorkspaceID, paymentID); err != nil {
			return err
		}
		if err := repos.Orders().ApplyPaymentDelta(ctx, cc.WorkspaceID, orderID, payment.Amount.Neg()); err != nil {
			return err
		}
		return order.ReversePayment(payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment deleted",
		zap.String("order_id", orderID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("actor_id", cc.ActorID.String()))
	s.publishEvents(ctx, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListPayments returns the payment ledger of an order
func (s *OrderService) ListPayments(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.orders.FindByIDForWorkspace(ctx, cc.WorkspaceID, orderID); err != nil {
		return nil, err
	}
	payments, err := s.payments.FindByOrder(ctx, cc.WorkspaceID, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, nil
}

// ReconcileOrder recomputes amount_paid from the payment ledger and rewrites
// the derived columns. Restricted to roles that may delete payments.
func (s *OrderService) ReconcileOrder(ctx context.Context, cc identity.CapabilityContext, orderID uuid.UUID) (*ReconcileResult, error) {
	if err := cc.Require(identity.CapPaymentsDelete); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := &ReconcileResult{}
	var order *trade.Order
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, cc.WorkspaceID, orderID)
		if err != nil {
			return err
		}
		sum, err := repos.Payments().SumByOrder(ctx, cc.WorkspaceID, orderID)
		if err != nil {
			return err
		}
		result.PreviousAmountPaid = order.AmountPaid
		previousRemaining := order.RemainingAmount
		order.SetPaidAmount(sum)
		result.Corrected = !result.PreviousAmountPaid.Equal(order.AmountPaid) || !previousRemaining.Equal(order.RemainingAmount)
		if !result.Corrected {
			return nil
		}
		return repos.Orders().SetPaymentTotals(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if result.Corrected {
		s.logger.Warn("Order payment totals corrected from ledger",
			zap.String("order_id", orderID.String()),
			zap.String("previous", result.PreviousAmountPaid.StringFixed(2)),
			zap.String("ledger", order.AmountPaid.StringFixed(2)))
	}
	result.Order = ToOrderResponse(order)
	return result, nil
}
