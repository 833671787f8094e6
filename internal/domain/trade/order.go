package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderItem is a line of an order. Prices and cost are snapshots taken when
// the line was written and are never recomputed from the catalog.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPriceHT decimal.Decimal
	CostPriceHT decimal.Decimal
	TaxRate     decimal.Decimal
	TotalHT     decimal.Decimal
	Position    int
}

// OrderItemInput describes a line to add to an order
type OrderItemInput struct {
	ProductID   *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPriceHT decimal.Decimal
	CostPriceHT decimal.Decimal
	TaxRate     decimal.Decimal
}

// NewOrderItem validates the input and computes the line total
func NewOrderItem(orderID uuid.UUID, input OrderItemInput, position int) (*OrderItem, error) {
	if input.ProductID == nil && strings.TrimSpace(input.Description) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item needs a product or a description")
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if input.UnitPriceHT.IsNegative() || input.CostPriceHT.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Prices cannot be negative")
	}
	if input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tax rate must be between 0 and 100")
	}

	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   input.ProductID,
		Description: strings.TrimSpace(input.Description),
		Quantity:    input.Quantity,
		UnitPriceHT: input.UnitPriceHT,
		CostPriceHT: input.CostPriceHT,
		TaxRate:     input.TaxRate,
		TotalHT:     valueobject.RoundMoney(input.Quantity.Mul(input.UnitPriceHT)),
		Position:    position,
	}, nil
}

// Margin returns the line margin against the cost snapshot
func (i *OrderItem) Margin() decimal.Decimal {
	return valueobject.RoundMoney(i.TotalHT.Sub(i.Quantity.Mul(i.CostPriceHT)))
}

// Order is the sale aggregate root. AmountPaid and RemainingAmount are
// derived from the payment ledger and are only changed through payments.
type Order struct {
	shared.WorkspaceAggregateRoot
	Number           string
	Type             OrderType
	Status           OrderStatus
	CustomerID       *uuid.UUID
	SourceQuoteID    *uuid.UUID
	Items            []OrderItem
	SubtotalHT       decimal.Decimal
	TotalTVA         decimal.Decimal
	TotalTTC         decimal.Decimal
	DiscountGlobal   decimal.Decimal
	DiscountType     DiscountType
	AmountPaid       decimal.Decimal
	RemainingAmount  decimal.Decimal
	RequiresDelivery bool
	DeliveryType     string
	Notes            string
	StatusChangedAt  *time.Time
}

// NewOrder creates an order in brouillon
func NewOrder(workspaceID, createdBy uuid.UUID, number string, orderType OrderType) (*Order, error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Workspace ID cannot be empty")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order number cannot be empty")
	}
	if orderType == "" {
		orderType = OrderTypeStandard
	}
	if !orderType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown order type %q", orderType))
	}

	order := &Order{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRootWithCreator(workspaceID, createdBy),
		Number:                 number,
		Type:                   orderType,
		Status:                 OrderStatusDraft,
		Items:                  make([]OrderItem, 0),
		SubtotalHT:             decimal.Zero,
		TotalTVA:               decimal.Zero,
		TotalTTC:               decimal.Zero,
		DiscountGlobal:         decimal.Zero,
		DiscountType:           DiscountTypeAmount,
		AmountPaid:             decimal.Zero,
		RemainingAmount:        decimal.Zero,
	}
	order.AddDomainEvent(NewOrderCreatedEvent(order))
	return order, nil
}

// ReplaceItems swaps all lines and recomputes totals. Only drafts are editable.
func (o *Order) ReplaceItems(inputs []OrderItemInput) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Items cannot be edited once the order is %s", o.Status))
	}

	items := make([]OrderItem, 0, len(inputs))
	for idx, input := range inputs {
		item, err := NewOrderItem(o.ID, input, idx+1)
		if err != nil {
			return err
		}
		items = append(items, *item)
	}

	previous := o.Items
	o.Items = items
	o.recalculateTotals()
	if !valueobject.FitsWithin(o.AmountPaid, o.TotalTTC) {
		o.Items = previous
		o.recalculateTotals()
		return shared.NewDomainError(shared.CodeInvalidState, "New total would be lower than the amount already paid")
	}
	o.Touch()
	return nil
}

// SetDiscount sets the global discount applied on the HT subtotal
func (o *Order) SetDiscount(value decimal.Decimal, discountType DiscountType) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, "Discount can only be changed on a draft order")
	}
	if discountType == "" {
		discountType = DiscountTypeAmount
	}
	if !discountType.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown discount type %q", discountType))
	}
	if value.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Discount cannot be negative")
	}
	if discountType == DiscountTypePercent && value.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Percent discount cannot exceed 100")
	}
	o.DiscountGlobal = value
	o.DiscountType = discountType
	o.recalculateTotals()
	o.Touch()
	return nil
}

// DiscountAmount returns the HT amount removed by the global discount
func (o *Order) DiscountAmount() decimal.Decimal {
	if o.DiscountGlobal.IsZero() {
		return decimal.Zero
	}
	var discount decimal.Decimal
	if o.DiscountType == DiscountTypePercent {
		discount = valueobject.RoundMoney(valueobject.Percent(o.SubtotalHT, o.DiscountGlobal))
	} else {
		discount = o.DiscountGlobal
	}
	if discount.GreaterThan(o.SubtotalHT) {
		return o.SubtotalHT
	}
	return discount
}

// recalculateTotals spreads the global discount proportionally over lines
// before applying each line's VAT rate.
func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalHT)
	}
	o.SubtotalHT = valueobject.RoundMoney(subtotal)

	netHT := o.SubtotalHT.Sub(o.DiscountAmount())
	tva := decimal.Zero
	if o.SubtotalHT.IsPositive() {
		ratio := netHT.Div(o.SubtotalHT)
		for _, item := range o.Items {
			tva = tva.Add(valueobject.Percent(item.TotalHT.Mul(ratio), item.TaxRate))
		}
	}
	o.TotalTVA = valueobject.RoundMoney(tva)
	o.TotalTTC = valueobject.RoundMoney(netHT.Add(o.TotalTVA))
	o.RemainingAmount = valueobject.Remaining(o.TotalTTC, o.AmountPaid)
}

// TransitionTo moves the order along the adjacency list
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot move order %s from %s to %s", o.Number, o.Status, target))
	}
	o.setStatus(target, false)
	return nil
}

// AdvanceAfterPayment applies the status chosen by StatusAfterPayment.
// It may skip intermediate steps of the adjacency list but never leaves a terminal status.
func (o *Order) AdvanceAfterPayment(target OrderStatus) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Order %s is already %s", o.Number, o.Status))
	}
	if o.Status == target {
		return nil
	}
	o.setStatus(target, true)
	return nil
}

// CompleteQuickSale moves a quick-sale draft straight to termine
func (o *Order) CompleteQuickSale() error {
	if o.Type != OrderTypeQuickSale {
		return shared.NewDomainError(shared.CodeInvalidState, "Only quick sales can be completed directly")
	}
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Quick sale is already %s", o.Status))
	}
	o.setStatus(OrderStatusCompleted, true)
	return nil
}

func (o *Order) setStatus(target OrderStatus, automatic bool) {
	from := o.Status
	now := time.Now()
	o.Status = target
	o.StatusChangedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target, automatic))
}

// RegisterPayment validates a payment against the order total and
// applies it to the in-memory totals. Persisting the row and the atomic
// increment is the repository's job.
func (o *Order) RegisterPayment(input PaymentInput, actorID uuid.UUID) (*Payment, error) {
	if o.Status == OrderStatusCancelled {
		return nil, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Order %s is cancelled", o.Number))
	}
	amount := valueobject.RoundMoney(input.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodePaymentExceedsBalance, "Payment amount must be at least 0.01")
	}
	// Cumulative guard: remaining_amount floors at zero and cannot bound a settled order
	if !valueobject.FitsWithin(o.AmountPaid.Add(amount), o.TotalTTC) {
		return nil, shared.NewDomainError(shared.CodePaymentExceedsBalance,
			fmt.Sprintf("Payment of %s would take the amount paid above the order total of %s", amount.StringFixed(2), o.TotalTTC.StringFixed(2)))
	}

	paymentType := input.Type
	if paymentType == "" {
		paymentType = o.inferPaymentType(amount)
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown payment type %q", paymentType))
	}
	method := input.Method
	if method == "" {
		method = PaymentMethodOther
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown payment method %q", method))
	}
	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	payment := &Payment{
		ID:          uuid.New(),
		OrderID:     o.ID,
		WorkspaceID: o.WorkspaceID,
		Amount:      amount,
		Type:        paymentType,
		Method:      method,
		PaymentDate: paymentDate,
		Receiver:    input.Receiver,
		Notes:       input.Notes,
		CreatedAt:   time.Now(),
	}
	if actorID != uuid.Nil {
		payment.CreatedBy = &actorID
	}

	o.AmountPaid = o.AmountPaid.Add(amount)
	o.RemainingAmount = valueobject.Remaining(o.TotalTTC, o.AmountPaid)
	o.Touch()
	o.AddDomainEvent(NewPaymentAppliedEvent(o, payment))
	return payment, nil
}

func (o *Order) inferPaymentType(amount decimal.Decimal) PaymentType {
	covers := valueobject.CoversWithin(amount, o.RemainingAmount)
	switch {
	case covers && o.AmountPaid.IsZero():
		return PaymentTypeFull
	case covers:
		return PaymentTypeBalance
	case o.AmountPaid.IsZero():
		return PaymentTypeDeposit
	default:
		return PaymentTypePartial
	}
}

// ReversePayment removes a deleted payment from the derived totals.
// The status is left as is.
func (o *Order) ReversePayment(payment *Payment) error {
	if payment.OrderID != o.ID {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payment does not belong to this order")
	}
	o.AmountPaid = valueobject.FloorZero(o.AmountPaid.Sub(payment.Amount))
	o.RemainingAmount = valueobject.Remaining(o.TotalTTC, o.AmountPaid)
	o.Touch()
	o.AddDomainEvent(NewPaymentDeletedEvent(o, payment))
	return nil
}

// SetPaidAmount rewrites the derived totals from a ledger sum
func (o *Order) SetPaidAmount(sum decimal.Decimal) {
	o.AmountPaid = valueobject.RoundMoney(sum)
	o.RemainingAmount = valueobject.Remaining(o.TotalTTC, o.AmountPaid)
	o.Touch()
}

// IsFullyPaid reports whether amount_paid covers total_ttc within one cent
func (o *Order) IsFullyPaid() bool {
	return valueobject.CoversWithin(o.AmountPaid, o.TotalTTC)
}

// StatusAfterPayment decides the automatic status change after a payment
// has been recorded. A fully paid order settles to termine; otherwise a first
// payment on a confirmed delivery order starts preparation.
func (o *Order) StatusAfterPayment(firstPayment bool) (OrderStatus, bool) {
	if o.IsFullyPaid() && o.Status.settlesOnFullPayment() {
		return OrderStatusCompleted, true
	}
	if firstPayment && o.RequiresDelivery && o.Status == OrderStatusConfirmed {
		return OrderStatusPreparing, true
	}
	return o.Status, false
}

// StockLines returns the lines that reference a product and therefore move stock
func (o *Order) StockLines() []OrderItem {
	lines := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		if item.ProductID != nil {
			lines = append(lines, item)
		}
	}
	return lines
}

// CanDelete checks that the order is not completed
func (o *Order) CanDelete() error {
	if o.Status == OrderStatusCompleted {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Order %s is completed and cannot be deleted", o.Number))
	}
	return nil
}

// MarkDeleted records the deletion event
func (o *Order) MarkDeleted(paymentCount int64) {
	o.AddDomainEvent(NewOrderDeletedEvent(o, paymentCount))
}

// CheckInvoicePrecondition applies the per-category guards. exists reports
// whether an invoice of the same category is already attached to the order.
func (o *Order) CheckInvoicePrecondition(category InvoiceCategory, exists bool) error {
	switch category {
	case InvoiceCategoryDeposit:
		if !o.AmountPaid.IsPositive() {
			return shared.NewDomainError(shared.CodeInvoicePreconditionUnmet, "A deposit invoice requires a recorded payment")
		}
		if exists {
			return shared.NewDomainError(shared.CodeInvoicePreconditionUnmet, "A deposit invoice already exists for this order")
		}
	case InvoiceCategoryStandard:
		if !o.IsFullyPaid() {
			return shared.NewDomainError(shared.CodeInvoicePreconditionUnmet, "A standard invoice requires the order to be fully paid")
		}
		if exists {
			return shared.NewDomainError(shared.CodeInvoicePreconditionUnmet, "A standard invoice already exists for this order")
		}
	case InvoiceCategoryBalance, InvoiceCategoryQuickSale:
	default:
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown invoice category %q", category))
	}
	return nil
}
