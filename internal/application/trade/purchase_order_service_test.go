package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type purchaseFixture struct {
	service   *PurchaseOrderService
	pos       *MockPurchaseOrderRepository
	ledger    *MockStockLedger
	numbering *MockNumberingService
	locations *MockLocationResolver
	metrics   *recordingMetrics
	location  uuid.UUID
	cc        identity.CapabilityContext
}

func newPurchaseFixture(role identity.Role) *purchaseFixture {
	f := &purchaseFixture{
		pos:       new(MockPurchaseOrderRepository),
		ledger:    new(MockStockLedger),
		numbering: new(MockNumberingService),
		locations: new(MockLocationResolver),
		metrics:   &recordingMetrics{},
		location:  uuid.New(),
		cc:        identity.CapabilityContext{Role: role, ActorID: uuid.New(), WorkspaceID: uuid.New()},
	}
	f.locations.On("DefaultLocation", mock.Anything, f.cc.WorkspaceID).Return(f.location, nil).Maybe()

	scope := NewNoOpTransactionScope(nil, nil, f.pos, f.ledger)
	f.service = NewPurchaseOrderService(scope, f.pos, f.numbering, f.locations, nil)
	f.service.SetMetrics(f.metrics)
	return f
}

// sentPurchaseOrder returns a PO in envoye with one line of 10 units
func (f *purchaseFixture) sentPurchaseOrder(t *testing.T) *trade.PurchaseOrder {
	t.Helper()
	po, err := trade.NewPurchaseOrder(f.cc.WorkspaceID, f.cc.ActorID, "BC-2026-0001", uuid.New(), "Meubles Dupont")
	require.NoError(t, err)
	require.NoError(t, po.ReplaceItems([]trade.PurchaseOrderItemInput{
		{ProductID: uuid.New(), Quantity: dec("10"), UnitCostHT: dec("40"), TaxRate: dec("20")},
	}))
	require.NoError(t, po.UpdateStatus(trade.PurchaseOrderStatusSent))
	po.ClearDomainEvents()
	return po
}

func TestCreatePurchaseOrder(t *testing.T) {
	f := newPurchaseFixture(identity.RoleManager)
	f.numbering.On("Next", mock.Anything, f.cc.WorkspaceID, SequencePurchaseOrder, mock.AnythingOfType("int")).Return("BC-2026-0007", nil)
	f.pos.On("Save", mock.Anything, mock.AnythingOfType("*trade.PurchaseOrder")).Return(nil)

	resp, err := f.service.CreatePurchaseOrder(context.Background(), f.cc, CreatePurchaseOrderInput{
		SupplierID:   uuid.New(),
		SupplierName: "Meubles Dupont",
		Items: []PurchaseOrderItemInput{
			{ProductID: uuid.New(), Quantity: dec("10"), UnitCostHT: dec("40"), TaxRate: dec("20")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "BC-2026-0007", resp.Number)
	assert.Equal(t, string(trade.PurchaseOrderStatusDraft), resp.Status)
	assert.True(t, resp.TotalTTC.Equal(dec("480")))
}

func TestCreatePurchaseOrder_SellerDenied(t *testing.T) {
	f := newPurchaseFixture(identity.RoleSeller)

	_, err := f.service.CreatePurchaseOrder(context.Background(), f.cc, CreatePurchaseOrderInput{})

	assert.ErrorIs(t, err, shared.ErrPrivilegeDenied)
}

func TestReceiveGoods_PartialThenFull(t *testing.T) {
	f := newPurchaseFixture(identity.RoleOwner)
	po := f.sentPurchaseOrder(t)
	itemID := po.Items[0].ID
	productID := po.Items[0].ProductID

	f.pos.On("FindByIDForUpdate", mock.Anything, f.cc.WorkspaceID, po.ID).Return(po, nil)
	f.pos.On("IncrementReceived", mock.Anything, po.ID, itemID, mock.Anything).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.pos.On("UpdateStatus", mock.Anything, f.cc.WorkspaceID, po.ID, mock.Anything, mock.Anything).Return(nil)

	first, err := f.service.ReceiveGoods(context.Background(), f.cc, po.ID, ReceiveGoodsInput{
		Lines: []trade.ReceiptLine{{ItemID: itemID, Quantity: dec("4")}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(trade.PurchaseOrderStatusPartialReceived), first.PurchaseOrder.Status)
	assert.Equal(t, f.location, first.LocationID)
	assert.Nil(t, first.PurchaseOrder.ReceivedDate)

	second, err := f.service.ReceiveGoods(context.Background(), f.cc, po.ID, ReceiveGoodsInput{
		Lines: []trade.ReceiptLine{{ItemID: itemID, Quantity: dec("6")}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(trade.PurchaseOrderStatusReceived), second.PurchaseOrder.Status)
	assert.NotNil(t, second.PurchaseOrder.ReceivedDate)
	assert.True(t, second.PurchaseOrder.Items[0].QuantityReceived.Equal(dec("10")))
	assert.True(t, f.metrics.received.Equal(dec("10")))

	movements := f.ledger.Calls[1].Arguments.Get(1).([]*inventory.StockMovement)
	require.Len(t, movements, 1)
	assert.Equal(t, inventory.MovementTypeIn, movements[0].MovementType)
	assert.Equal(t, productID, movements[0].ProductID)
	assert.Equal(t, f.location, movements[0].LocationID)
	assert.True(t, movements[0].Quantity.Equal(dec("6")))
	require.NotNil(t, movements[0].PurchaseOrderID)
	assert.Equal(t, po.ID, *movements[0].PurchaseOrderID)

	f.pos.AssertCalled(t, "UpdateStatus", mock.Anything, f.cc.WorkspaceID, po.ID, trade.PurchaseOrderStatusReceived, mock.Anything)
}

func TestReceiveGoods_Rejections(t *testing.T) {
	t.Run("over the remaining quantity", func(t *testing.T) {
		f := newPurchaseFixture(identity.RoleManager)
		po := f.sentPurchaseOrder(t)
		f.pos.On("FindByIDForUpdate", mock.Anything, f.cc.WorkspaceID, po.ID).Return(po, nil)

		_, err := f.service.ReceiveGoods(context.Background(), f.cc, po.ID, ReceiveGoodsInput{
			Lines: []trade.ReceiptLine{{ItemID: po.Items[0].ID, Quantity: dec("11")}},
		})

		assert.True(t, shared.HasCode(err, shared.CodeReceiptExceedsRemaining))
		f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("nothing to receive", func(t *testing.T) {
		f := newPurchaseFixture(identity.RoleManager)
		po := f.sentPurchaseOrder(t)
		f.pos.On("FindByIDForUpdate", mock.Anything, f.cc.WorkspaceID, po.ID).Return(po, nil)

		_, err := f.service.ReceiveGoods(context.Background(), f.cc, po.ID, ReceiveGoodsInput{
			Lines: []trade.ReceiptLine{{ItemID: po.Items[0].ID, Quantity: dec("0")}},
		})

		assert.ErrorIs(t, err, shared.ErrNoQuantityProvided)
	})

	t.Run("guarded increment loses a race", func(t *testing.T) {
		f := newPurchaseFixture(identity.RoleManager)
		po := f.sentPurchaseOrder(t)
		f.pos.On("FindByIDForUpdate", mock.Anything, f.cc.WorkspaceID, po.ID).Return(po, nil)
		f.pos.On("IncrementReceived", mock.Anything, po.ID, po.Items[0].ID, mock.Anything).Return(shared.ErrReceiptExceedsRemaining)

		_, err := f.service.ReceiveGoods(context.Background(), f.cc, po.ID, ReceiveGoodsInput{
			Lines: []trade.ReceiptLine{{ItemID: po.Items[0].ID, Quantity: dec("3")}},
		})

		assert.ErrorIs(t, err, shared.ErrReceiptExceedsRemaining)
		f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("draft cannot receive", func(t *testing.T) {
		f := newPurchaseFixture(identity.RoleManager)
		po, err := trade.NewPurchaseOrder(f.cc.WorkspaceID, f.cc.ActorID, "BC-2026-0002", uuid.New(), "")
		require.NoError(t, err)
		f.pos.On("FindByIDForUpdate", mock.Anything, f.cc.WorkspaceID, po.ID).Return(po, nil)

		_, err = f.service.ReceiveGoods(context.Background(), f.cc, po.ID, ReceiveGoodsInput{
			LocationID: uuid.New(),
			Lines:      []trade.ReceiptLine{{ItemID: uuid.New(), Quantity: dec("1")}},
		})

		assert.True(t, shared.HasCode(err, shared.CodeInvalidState))
	})
}

func TestPurchaseOrderUpdateStatus(t *testing.T) {
	t.Run("confirm a sent order", func(t *testing.T) {
		f := newPurchaseFixture(identity.RoleManager)
		po := f.sentPurchaseOrder(t)
		f.pos.On("FindByIDForUpdate", mock.Anything, f.cc.WorkspaceID, po.ID).Return(po, nil)
		f.pos.On("UpdateStatus", mock.Anything, f.cc.WorkspaceID, po.ID, trade.PurchaseOrderStatusConfirmed, mock.Anything).Return(nil)

		resp, err := f.service.UpdateStatus(context.Background(), f.cc, po.ID, trade.PurchaseOrderStatusConfirmed)

		require.NoError(t, err)
		assert.Equal(t, string(trade.PurchaseOrderStatusConfirmed), resp.Status)
	})

	t.Run("received status is derived only", func(t *testing.T) {
		f := newPurchaseFixture(identity.RoleManager)
		po := f.sentPurchaseOrder(t)
		f.pos.On("FindByIDForUpdate", mock.Anything, f.cc.WorkspaceID, po.ID).Return(po, nil)

		_, err := f.service.UpdateStatus(context.Background(), f.cc, po.ID, trade.PurchaseOrderStatusReceived)

		assert.True(t, shared.HasCode(err, shared.CodeInvalidTransition))
	})
}
