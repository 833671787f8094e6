//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appinv "github.com/mobilia/backend/internal/application/inventory"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/infrastructure/event"
	"github.com/mobilia/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// eventRecorder keeps every published event type
type eventRecorder struct {
	mu    sync.Mutex
	types []string
}

func (r *eventRecorder) EventTypes() []string { return nil }

func (r *eventRecorder) Handle(_ context.Context, e shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.EventType())
	return nil
}

func (r *eventRecorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.types {
		if t == eventType {
			n++
		}
	}
	return n
}

// workspace is a freshly provisioned tenant with an owner, a default
// location and the fulfillment services wired on the shared database
type workspace struct {
	db        *gorm.DB
	owner     identity.CapabilityContext
	location  uuid.UUID
	orders    *apptrade.OrderService
	purchases *apptrade.PurchaseOrderService
	stock     *appinv.InventoryService
	events    *eventRecorder
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	ctx := context.Background()
	db := openDB(t)
	log := zap.NewNop()

	ws := &workspace{
		db: db,
		owner: identity.CapabilityContext{
			Role:        identity.RoleOwner,
			ActorID:     uuid.New(),
			WorkspaceID: uuid.New(),
		},
		events: &eventRecorder{},
	}

	roles := persistence.NewGormRoleProvider(db)
	require.NoError(t, roles.SetRole(ctx, ws.owner.WorkspaceID, ws.owner.ActorID, identity.RoleOwner))

	locations := persistence.NewGormLocationRepository(db)
	showroom := &inventory.StockLocation{
		ID:          uuid.New(),
		WorkspaceID: ws.owner.WorkspaceID,
		Name:        "Showroom",
		IsDefault:   true,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, locations.Create(ctx, showroom))
	ws.location = showroom.ID

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(ws.events)

	scope := persistence.NewGormTransactionScope(db)
	numbering := persistence.NewGormNumberingService(db)

	ws.stock = appinv.NewInventoryService(scope.Inventory(), persistence.NewGormStockLedger(db), locations, log)
	ws.stock.SetEventPublisher(bus)

	ws.orders = apptrade.NewOrderService(scope,
		persistence.NewGormOrderRepository(db),
		persistence.NewGormPaymentRepository(db),
		numbering,
		persistence.NewGormInvoiceGenerator(db, numbering),
		locations,
		ws.stock,
		log,
	)
	ws.orders.SetEventPublisher(bus)

	ws.purchases = apptrade.NewPurchaseOrderService(scope, persistence.NewGormPurchaseOrderRepository(db), numbering, locations, log)
	ws.purchases.SetEventPublisher(bus)
	return ws
}

// as returns a capability context for another member role in the same workspace
func (ws *workspace) as(t *testing.T, role identity.Role) identity.CapabilityContext {
	t.Helper()
	cc := identity.CapabilityContext{Role: role, ActorID: uuid.New(), WorkspaceID: ws.owner.WorkspaceID}
	require.NoError(t, persistence.NewGormRoleProvider(ws.db).SetRole(context.Background(), cc.WorkspaceID, cc.ActorID, role))
	return cc
}

func (ws *workspace) level(t *testing.T, productID uuid.UUID) appinv.StockLevelResponse {
	t.Helper()
	levels, err := ws.stock.ListLevels(context.Background(), ws.owner.WorkspaceID, inventory.LevelFilter{
		ProductID:  &productID,
		LocationID: &ws.location,
	})
	require.NoError(t, err)
	require.Len(t, levels, 1)
	return levels[0]
}
