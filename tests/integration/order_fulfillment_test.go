//go:build integration

package integration

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	appinv "github.com/mobilia/backend/internal/application/inventory"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOrderFulfillment_DepositThenBalance(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()
	table := uuid.New()

	_, err := ws.stock.Adjust(ctx, ws.owner, appinv.AdjustStockInput{
		ProductID:   table,
		LocationID:  ws.location,
		NewQuantity: dec("5"),
	})
	require.NoError(t, err)

	order, err := ws.orders.CreateOrder(ctx, ws.owner, apptrade.CreateOrderInput{
		Items: []apptrade.OrderItemInput{
			{ProductID: &table, Description: "Table chêne", Quantity: dec("2"), UnitPriceHT: dec("500"), TaxRate: dec("20")},
			{Description: "Livraison", Quantity: dec("1"), UnitPriceHT: dec("50"), TaxRate: dec("20")},
		},
		RequiresDelivery: true,
		Confirm:          true,
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CMD-\d{4}-\d{4}$`), order.Number)
	assert.Equal(t, string(trade.OrderStatusConfirmed), order.Status)
	assert.True(t, dec("1260").Equal(order.TotalTTC), order.TotalTTC.String())

	_, err = ws.orders.RequestInvoice(ctx, ws.owner, order.ID, trade.InvoiceCategoryDeposit)
	assert.ErrorIs(t, err, shared.ErrInvoicePreconditionUnmet, "no payment yet")

	seller := ws.as(t, identity.RoleSeller)
	deposit, err := ws.orders.ApplyPayment(ctx, seller, order.ID, apptrade.ApplyPaymentInput{
		Amount: dec("300"),
		Type:   trade.PaymentTypeDeposit,
		Method: trade.PaymentMethodCard,
	})
	require.NoError(t, err)
	assert.True(t, deposit.FirstPayment)
	assert.True(t, deposit.StockDebit.Succeeded())
	assert.True(t, deposit.StatusAdvance.Succeeded())
	assert.Equal(t, string(trade.OrderStatusPreparing), deposit.Order.Status)
	assert.True(t, dec("960").Equal(deposit.Order.RemainingAmount))
	assert.True(t, dec("3").Equal(ws.level(t, table).Quantity), "first payment debits the product line only")

	_, err = ws.orders.RequestInvoice(ctx, seller, order.ID, trade.InvoiceCategoryDeposit)
	require.NoError(t, err)
	_, err = ws.orders.RequestInvoice(ctx, seller, order.ID, trade.InvoiceCategoryDeposit)
	assert.ErrorIs(t, err, shared.ErrInvoicePreconditionUnmet, "one deposit invoice per order")
	_, err = ws.orders.RequestInvoice(ctx, seller, order.ID, trade.InvoiceCategoryStandard)
	assert.ErrorIs(t, err, shared.ErrInvoicePreconditionUnmet, "not fully paid")

	driver := ws.as(t, identity.RoleDelivery)
	balance, err := ws.orders.ApplyPayment(ctx, driver, order.ID, apptrade.ApplyPaymentInput{
		Amount: dec("960"),
		Method: trade.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.False(t, balance.FirstPayment)
	assert.False(t, balance.StockDebit.Attempted)
	assert.Equal(t, string(trade.PaymentTypeBalance), balance.Payment.Type)
	assert.Equal(t, string(trade.OrderStatusCompleted), balance.Order.Status)
	assert.True(t, balance.Order.RemainingAmount.IsZero())
	assert.True(t, dec("3").Equal(ws.level(t, table).Quantity), "later payments never debit again")

	_, err = ws.orders.ApplyPayment(ctx, driver, order.ID, apptrade.ApplyPaymentInput{Amount: dec("0.01")})
	assert.ErrorIs(t, err, shared.ErrPaymentExceedsBalance)

	_, err = ws.orders.RequestInvoice(ctx, seller, order.ID, trade.InvoiceCategoryStandard)
	require.NoError(t, err)

	var invoices int64
	require.NoError(t, ws.db.Table("invoices").Where("order_id = ?", order.ID).Count(&invoices).Error)
	assert.Equal(t, int64(2), invoices)

	err = ws.orders.DeleteOrder(ctx, ws.owner, order.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState, "completed orders are kept")

	assert.Equal(t, 2, ws.events.count(trade.EventTypePaymentApplied))
	assert.Equal(t, 2, ws.events.count(inventory.EventTypeStockMoved), "adjustment plus one debit")
}

func TestOrderFulfillment_ConcurrentPayments(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()
	chair := uuid.New()

	order, err := ws.orders.CreateOrder(ctx, ws.owner, apptrade.CreateOrderInput{
		Items: []apptrade.OrderItemInput{
			{ProductID: &chair, Quantity: dec("1"), UnitPriceHT: dec("100"), TaxRate: dec("20")},
		},
		Confirm: true,
	})
	require.NoError(t, err)
	require.True(t, dec("120").Equal(order.TotalTTC))

	const payers = 12
	var (
		wg       sync.WaitGroup
		firsts   atomic.Int32
		failures atomic.Int32
	)
	for i := 0; i < payers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ws.orders.ApplyPayment(ctx, ws.owner, order.ID, apptrade.ApplyPaymentInput{
				Amount: dec("10"),
				Method: trade.PaymentMethodCash,
			})
			if err != nil {
				failures.Add(1)
				return
			}
			if res.FirstPayment {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.Equal(t, int32(1), firsts.Load(), "exactly one payment is the first")

	got, err := ws.orders.GetOrder(ctx, ws.owner, order.ID)
	require.NoError(t, err)
	assert.True(t, dec("120").Equal(got.AmountPaid), got.AmountPaid.String())
	assert.True(t, got.RemainingAmount.IsZero())
	assert.Equal(t, string(trade.OrderStatusCompleted), got.Status)

	payments, err := ws.orders.ListPayments(ctx, ws.owner, order.ID)
	require.NoError(t, err)
	assert.Len(t, payments, payers)

	reconciled, err := ws.orders.ReconcileOrder(ctx, ws.owner, order.ID)
	require.NoError(t, err)
	assert.False(t, reconciled.Corrected)

	// no stock was ever received, the debit goes negative and raises an alert
	assert.True(t, dec("-1").Equal(ws.level(t, chair).Quantity))
	alerts, err := ws.stock.GetStockAlerts(ctx, ws.owner.WorkspaceID)
	require.NoError(t, err)
	require.Len(t, alerts.OutOfStock, 1)
	assert.Equal(t, chair, alerts.OutOfStock[0].ProductID)
}

func TestOrderFulfillment_DeleteAndReconcilePayment(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	order, err := ws.orders.CreateOrder(ctx, ws.owner, apptrade.CreateOrderInput{
		Items:   []apptrade.OrderItemInput{{Description: "Pose", Quantity: dec("1"), UnitPriceHT: dec("100"), TaxRate: dec("20")}},
		Confirm: true,
	})
	require.NoError(t, err)

	paid, err := ws.orders.ApplyPayment(ctx, ws.owner, order.ID, apptrade.ApplyPaymentInput{Amount: dec("50")})
	require.NoError(t, err)
	assert.False(t, paid.StockDebit.Attempted, "no product lines to debit")

	seller := ws.as(t, identity.RoleSeller)
	_, err = ws.orders.DeletePayment(ctx, seller, order.ID, paid.Payment.ID)
	assert.ErrorIs(t, err, shared.ErrPrivilegeDenied)

	// drift the cached total behind the service's back
	require.NoError(t, ws.db.Exec("UPDATE orders SET amount_paid = 80, remaining_amount = 40 WHERE id = ?", order.ID).Error)
	reconciled, err := ws.orders.ReconcileOrder(ctx, ws.owner, order.ID)
	require.NoError(t, err)
	assert.True(t, reconciled.Corrected)
	assert.True(t, dec("80").Equal(reconciled.PreviousAmountPaid))
	assert.True(t, dec("50").Equal(reconciled.Order.AmountPaid))

	after, err := ws.orders.DeletePayment(ctx, ws.owner, order.ID, paid.Payment.ID)
	require.NoError(t, err)
	assert.True(t, after.AmountPaid.IsZero())
	assert.True(t, dec("120").Equal(after.RemainingAmount))
	assert.Equal(t, string(trade.OrderStatusConfirmed), after.Status)

	_, err = ws.orders.DeletePayment(ctx, ws.owner, order.ID, paid.Payment.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, ws.orders.DeleteOrder(ctx, ws.owner, order.ID))
	_, err = ws.orders.GetOrder(ctx, ws.owner, order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderFulfillment_QuickSale(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()
	lamp := uuid.New()

	res, err := ws.orders.CreateQuickSale(ctx, ws.owner, apptrade.QuickSaleInput{
		Items:  []apptrade.OrderItemInput{{ProductID: &lamp, Quantity: dec("3"), UnitPriceHT: dec("40"), TaxRate: dec("20")}},
		Method: trade.PaymentMethodCard,
	})
	require.NoError(t, err)
	assert.Equal(t, string(trade.OrderStatusCompleted), res.Order.Status)
	assert.Equal(t, string(trade.OrderTypeQuickSale), res.Order.Type)
	assert.Equal(t, string(trade.PaymentTypeFull), res.Payment.Type)
	assert.True(t, dec("144").Equal(res.Payment.Amount))
	assert.True(t, res.StockDebit.Succeeded())
	assert.True(t, res.Invoice.Succeeded())
	require.NotNil(t, res.InvoiceID)
	assert.True(t, dec("-3").Equal(ws.level(t, lamp).Quantity))
}

func TestOrderFulfillment_NumbersAreUniqueUnderLoad(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	const n = 8
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := ws.orders.CreateOrder(ctx, ws.owner, apptrade.CreateOrderInput{
				Items: []apptrade.OrderItemInput{{Description: "Coussin", Quantity: dec("1"), UnitPriceHT: dec("10")}},
			})
			if assert.NoError(t, err) {
				numbers <- o.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for num := range numbers {
		assert.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}
