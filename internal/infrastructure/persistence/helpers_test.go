package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/mobilia/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens an in-memory database holding every table. A single
// connection keeps the in-memory schema visible to transactions.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.PaymentModel{},
		&models.PurchaseOrderModel{},
		&models.PurchaseOrderItemModel{},
		&models.StockLocationModel{},
		&models.StockMovementModel{},
		&models.StockLevelModel{},
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.NumberSequenceModel{},
		&models.WorkspaceMemberModel{},
	))
	return db
}

// newMockGormDB wraps sqlmock in the postgres dialect to assert SQL shape
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestOrder builds a draft order worth 240.00 TTC: two chairs at 100 HT with 20% VAT
// and a free-text delivery line at 0.
func newTestOrder(t *testing.T, workspaceID uuid.UUID, number string) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(workspaceID, uuid.New(), number, trade.OrderTypeStandard)
	require.NoError(t, err)

	chair := uuid.New()
	require.NoError(t, order.ReplaceItems([]trade.OrderItemInput{
		{ProductID: &chair, Description: "Chaise chêne", Quantity: dec("2"), UnitPriceHT: dec("100"), CostPriceHT: dec("60"), TaxRate: dec("20")},
		{Description: "Livraison", Quantity: dec("1"), UnitPriceHT: dec("0"), TaxRate: dec("20")},
	}))
	return order
}
