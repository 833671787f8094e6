package telemetry

import (
	"context"
	"errors"

	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FulfillmentMetrics records order and receiving counters
type FulfillmentMetrics struct {
	payments         metric.Int64Counter
	paymentAmount    metric.Float64Counter
	postActionFailed metric.Int64Counter
	unitsReceived    metric.Float64Counter
	transitions      metric.Int64Counter
}

// NewFulfillmentMetrics creates the instruments on meter
func NewFulfillmentMetrics(meter metric.Meter) (*FulfillmentMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewFulfillmentMetrics: meter cannot be nil")
	}

	m := &FulfillmentMetrics{}
	var err error
	if m.payments, err = meter.Int64Counter("fulfillment.payments",
		metric.WithDescription("Payments recorded against orders"),
		metric.WithUnit("{payment}")); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = meter.Float64Counter("fulfillment.payment.amount",
		metric.WithDescription("Sum of recorded payment amounts"),
		metric.WithUnit("EUR")); err != nil {
		return nil, err
	}
	if m.postActionFailed, err = meter.Int64Counter("fulfillment.post_action.failures",
		metric.WithDescription("Side effects that failed after a committed payment"),
		metric.WithUnit("{failure}")); err != nil {
		return nil, err
	}
	if m.unitsReceived, err = meter.Float64Counter("fulfillment.goods_received.units",
		metric.WithDescription("Units received against purchase orders"),
		metric.WithUnit("{unit}")); err != nil {
		return nil, err
	}
	if m.transitions, err = meter.Int64Counter("fulfillment.order.transitions",
		metric.WithDescription("Order status changes"),
		metric.WithUnit("{transition}")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *FulfillmentMetrics) RecordPayment(ctx context.Context, paymentType trade.PaymentType, amount decimal.Decimal) {
	attrs := metric.WithAttributes(attribute.String("payment_type", string(paymentType)))
	m.payments.Add(ctx, 1, attrs)
	m.paymentAmount.Add(ctx, amount.InexactFloat64(), attrs)
}

func (m *FulfillmentMetrics) RecordPostActionFailure(ctx context.Context, action string) {
	m.postActionFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

func (m *FulfillmentMetrics) RecordGoodsReceived(ctx context.Context, units decimal.Decimal) {
	m.unitsReceived.Add(ctx, units.InexactFloat64())
}

func (m *FulfillmentMetrics) RecordTransition(ctx context.Context, from, to string, automatic bool) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
		attribute.Bool("automatic", automatic),
	))
}

var _ apptrade.FulfillmentMetrics = (*FulfillmentMetrics)(nil)
