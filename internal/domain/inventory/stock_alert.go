package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the available quantity under which a product is low
var LowStockThreshold = decimal.NewFromInt(3)

// AlertLevel classifies a product's availability
type AlertLevel string

const (
	AlertLevelOutOfStock AlertLevel = "out_of_stock"
	AlertLevelLowStock   AlertLevel = "low_stock"
)

// StockAlert is one product flagged by ClassifyAlerts
type StockAlert struct {
	ProductID uuid.UUID       `json:"product_id"`
	Available decimal.Decimal `json:"available"`
	Level     AlertLevel      `json:"level"`
}

// StockAlerts groups flagged products
type StockAlerts struct {
	OutOfStock []StockAlert `json:"out_of_stock"`
	LowStock   []StockAlert `json:"low_stock"`
}

// ClassifyAlerts sums availability per product across all locations.
// Products at or below zero are out of stock, those under the threshold are low.
func ClassifyAlerts(levels []StockLevel) StockAlerts {
	totals := make(map[uuid.UUID]decimal.Decimal)
	products := make([]uuid.UUID, 0)
	for idx := range levels {
		productID := levels[idx].ProductID
		if _, ok := totals[productID]; !ok {
			products = append(products, productID)
			totals[productID] = decimal.Zero
		}
		totals[productID] = totals[productID].Add(levels[idx].Available())
	}
	sort.Slice(products, func(i, j int) bool { return products[i].String() < products[j].String() })

	alerts := StockAlerts{OutOfStock: make([]StockAlert, 0), LowStock: make([]StockAlert, 0)}
	for _, productID := range products {
		available := totals[productID]
		switch {
		case available.LessThanOrEqual(decimal.Zero):
			alerts.OutOfStock = append(alerts.OutOfStock, StockAlert{ProductID: productID, Available: decimal.Zero, Level: AlertLevelOutOfStock})
		case available.LessThan(LowStockThreshold):
			alerts.LowStock = append(alerts.LowStock, StockAlert{ProductID: productID, Available: available, Level: AlertLevelLowStock})
		}
	}
	return alerts
}
