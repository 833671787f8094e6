package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func TestIdempotentHandler_DeliversOnce(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := newRecordingHandler("OrderCreated")
	handler := NewIdempotentHandler(inner, store, time.Hour, zap.NewNop())

	event := newTestEvent("OrderCreated", uuid.New())
	key := "event:" + event.EventID().String()
	store.On("MarkProcessed", mock.Anything, key, time.Hour).Return(true, nil).Once()
	store.On("MarkProcessed", mock.Anything, key, time.Hour).Return(false, nil).Once()

	ctx := context.Background()
	require.NoError(t, handler.Handle(ctx, event))
	require.NoError(t, handler.Handle(ctx, event))

	assert.Equal(t, 1, inner.count())
	assert.Equal(t, DeliveryStats{Delivered: 1, Duplicates: 1}, handler.Stats())
	assert.Equal(t, []string{"OrderCreated"}, handler.EventTypes())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_StoreFailureStillDelivers(t *testing.T) {
	store := new(MockIdempotencyStore)
	store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	inner := newRecordingHandler()
	handler := NewIdempotentHandler(inner, store, shared.DefaultSubmissionTTL, nil)

	require.NoError(t, handler.Handle(context.Background(), newTestEvent("PaymentApplied", uuid.New())))
	assert.Equal(t, 1, inner.count())
}

func TestIdempotentHandler_ZeroTTLSkipsTheStore(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := newRecordingHandler()
	inner.err = errors.New("kafka unavailable")
	handler := NewIdempotentHandler(inner, store, 0, nil)

	err := handler.Handle(context.Background(), newTestEvent("PaymentApplied", uuid.New()))
	assert.Error(t, err)
	assert.Equal(t, int64(1), handler.Stats().Failed)
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}
