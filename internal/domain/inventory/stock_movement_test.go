package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockMovement_SignConvention(t *testing.T) {
	ws, product, location := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		movementType MovementType
		quantity     int64
		valid        bool
	}{
		{MovementTypeIn, 5, true},
		{MovementTypeIn, -5, false},
		{MovementTypeOut, -2, true},
		{MovementTypeOut, 2, false},
		{MovementTypeAdjustment, -1, true},
		{MovementTypeAdjustment, 3, true},
		{MovementTypeAdjustment, 0, false},
		{MovementTypeReservation, 1, true},
		{MovementTypeUnreservation, -1, true},
		{MovementTypeUnreservation, 1, false},
		{MovementTypeTransferIn, 4, true},
		{MovementTypeTransferOut, -4, true},
		{MovementTypeTransferOut, 4, false},
		{MovementType("lost"), 1, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.movementType), func(t *testing.T) {
			m, err := NewStockMovement(ws, product, location, tt.movementType, decimal.NewFromInt(tt.quantity))
			if tt.valid {
				require.NoError(t, err)
				assert.True(t, m.Quantity.Equal(decimal.NewFromInt(tt.quantity)))
			} else {
				assert.True(t, shared.HasCode(err, shared.CodeInvalidInput))
			}
		})
	}
}

func TestStockMovement_Deltas(t *testing.T) {
	ws, product, location := uuid.New(), uuid.New(), uuid.New()
	orderID := uuid.New()

	out, err := NewStockMovement(ws, product, location, MovementTypeOut, decimal.NewFromInt(-2))
	require.NoError(t, err)
	out.WithOrder(orderID).WithActor(uuid.New()).WithNotes("  first payment  ")
	assert.Equal(t, orderID, *out.OrderID)
	assert.Equal(t, "first payment", out.Notes)
	assert.True(t, out.QuantityDelta().Equal(decimal.NewFromInt(-2)))
	assert.True(t, out.ReservedDelta().IsZero())

	reserve, err := NewStockMovement(ws, product, location, MovementTypeReservation, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, reserve.QuantityDelta().IsZero())
	assert.True(t, reserve.ReservedDelta().Equal(decimal.NewFromInt(1)))

	noActor := reserve.WithActor(uuid.Nil)
	assert.Nil(t, noActor.ActorID)
}

func TestReplayMovements(t *testing.T) {
	ws, product := uuid.New(), uuid.New()
	showroom, depot := uuid.New(), uuid.New()

	build := func(location uuid.UUID, mt MovementType, q int64) StockMovement {
		m, err := NewStockMovement(ws, product, location, mt, decimal.NewFromInt(q))
		require.NoError(t, err)
		return *m
	}

	movements := []StockMovement{
		build(depot, MovementTypeIn, 10),
		build(depot, MovementTypeTransferOut, -4),
		build(showroom, MovementTypeTransferIn, 4),
		build(showroom, MovementTypeReservation, 1),
		build(showroom, MovementTypeOut, -1),
		build(showroom, MovementTypeUnreservation, -1),
		build(depot, MovementTypeAdjustment, -1),
	}

	levels := ReplayMovements(ws, movements)
	require.Len(t, levels, 2)

	byLocation := map[uuid.UUID]StockLevel{}
	for _, l := range levels {
		byLocation[l.LocationID] = l
	}
	assert.True(t, byLocation[depot].Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, byLocation[showroom].Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, byLocation[showroom].ReservedQuantity.IsZero())

	again := ReplayMovements(ws, movements)
	for idx := range levels {
		assert.True(t, levels[idx].Quantity.Equal(again[idx].Quantity))
		assert.Equal(t, levels[idx].Key(), again[idx].Key())
	}
}
