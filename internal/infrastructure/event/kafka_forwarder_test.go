package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaForwarder_WritesEnvelope(t *testing.T) {
	writer := &fakeWriter{}
	forwarder := NewKafkaForwarder(writer, zap.NewNop())

	order := &trade.Order{Number: "CMD-2026-0042", Type: trade.OrderTypeStandard}
	order.ID = uuid.New()
	order.WorkspaceID = uuid.New()
	event := trade.NewOrderCreatedEvent(order)

	require.NoError(t, forwarder.Handle(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, order.ID.String(), string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, trade.EventTypeOrderCreated, string(msg.Headers[0].Value))

	envelope, err := UnmarshalEnvelope(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID(), envelope.ID)
	assert.Equal(t, order.WorkspaceID, envelope.WorkspaceID)
	assert.Equal(t, trade.AggregateTypeOrder, envelope.AggregateType)
	assert.Contains(t, string(envelope.Payload), `"order_number":"CMD-2026-0042"`)
}

func TestKafkaForwarder_CancelledRequestStillForwards(t *testing.T) {
	writer := &fakeWriter{}
	forwarder := NewKafkaForwarder(writer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, forwarder.Handle(ctx, newTestEvent("PaymentApplied", uuid.New())))
	assert.Len(t, writer.messages, 1)
}

func TestKafkaForwarder_WriteError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("leader not available")}
	forwarder := NewKafkaForwarder(writer, nil)

	err := forwarder.Handle(context.Background(), newTestEvent("PaymentApplied", uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PaymentApplied")

	require.NoError(t, forwarder.Close())
	assert.True(t, writer.closed)
	assert.Nil(t, forwarder.EventTypes())
}

func TestUnmarshalEnvelope_RejectsUntyped(t *testing.T) {
	_, err := UnmarshalEnvelope([]byte(`{"id":"` + uuid.NewString() + `"}`))
	assert.Error(t, err)

	_, err = UnmarshalEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestNewEnvelope_KeepsDecimalPrecision(t *testing.T) {
	order := &trade.Order{Number: "CMD-2026-0043", AmountPaid: decimal.RequireFromString("99.95")}
	order.ID = uuid.New()
	payment := &trade.Payment{ID: uuid.New(), Amount: decimal.RequireFromString("99.95"), Type: trade.PaymentTypeDeposit}

	envelope, err := NewEnvelope(trade.NewPaymentAppliedEvent(order, payment))
	require.NoError(t, err)
	assert.Contains(t, string(envelope.Payload), `"amount":"99.95"`)

	data, err := envelope.Marshal()
	require.NoError(t, err)
	decoded, err := UnmarshalEnvelope(data)
	require.NoError(t, err)
	assert.True(t, envelope.OccurredAt.Equal(decoded.OccurredAt))
	assert.JSONEq(t, string(envelope.Payload), string(decoded.Payload))
}
