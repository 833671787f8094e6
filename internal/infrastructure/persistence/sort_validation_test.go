package persistence

import (
	"testing"

	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	tests := map[string]string{
		"":                         "DESC",
		"asc":                      "ASC",
		"  ASC ":                   "ASC",
		"desc":                     "DESC",
		"ASC; DROP TABLE orders;--": "DESC",
	}
	for input, want := range tests {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	t.Run("whitelisted order columns", func(t *testing.T) {
		for _, field := range []string{"number", "status", "total_ttc", "remaining_amount"} {
			assert.Equal(t, field, ValidateSortField(field, OrderSortFields, "created_at"))
		}
	})

	t.Run("unknown or hostile input falls back", func(t *testing.T) {
		for _, field := range []string{"", "  ", "amount_paid", "NUMBER", "number; DROP TABLE orders", "number'--"} {
			assert.Equal(t, "created_at", ValidateSortField(field, OrderSortFields, "created_at"), "input %q", field)
		}
	})

	t.Run("whitelists are per resource", func(t *testing.T) {
		assert.Equal(t, "supplier_name", ValidateSortField("supplier_name", PurchaseOrderSortFields, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("supplier_name", OrderSortFields, "created_at"))
		assert.Equal(t, "movement_type", ValidateSortField(" movement_type ", MovementSortFields, "created_at"))
	})
}

func TestApplyPagination(t *testing.T) {
	db := newSQLiteDB(t)
	render := func(filter shared.Filter) string {
		return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			var rows []models.OrderModel
			return applyPagination(tx.Model(&models.OrderModel{}), filter, OrderSortFields, "created_at").Find(&rows)
		})
	}

	sql := render(shared.Filter{Page: 3, PageSize: 10, OrderBy: "total_ttc", OrderDir: "asc"})
	assert.Contains(t, sql, "ORDER BY total_ttc ASC")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Contains(t, sql, "OFFSET 20")

	sql = render(shared.Filter{OrderBy: "1; DELETE FROM orders"})
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.NotContains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "DELETE")
}
