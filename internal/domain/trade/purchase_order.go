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

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft           PurchaseOrderStatus = "brouillon"
	PurchaseOrderStatusSent            PurchaseOrderStatus = "envoye"
	PurchaseOrderStatusConfirmed       PurchaseOrderStatus = "confirme"
	PurchaseOrderStatusPartialReceived PurchaseOrderStatus = "reception_partielle"
	PurchaseOrderStatusReceived        PurchaseOrderStatus = "recu"
	PurchaseOrderStatusCancelled       PurchaseOrderStatus = "annule"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSent, PurchaseOrderStatusConfirmed,
		PurchaseOrderStatusPartialReceived, PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the PO can no longer change
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusReceived || s == PurchaseOrderStatusCancelled
}

// CanReceive returns true if receiving goods is allowed in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	switch s {
	case PurchaseOrderStatusSent, PurchaseOrderStatusConfirmed, PurchaseOrderStatusPartialReceived:
		return true
	}
	return false
}

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID               uuid.UUID
	PurchaseOrderID  uuid.UUID
	ProductID        uuid.UUID
	Description      string
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	UnitCostHT       decimal.Decimal
	TaxRate          decimal.Decimal
	TotalHT          decimal.Decimal
	Position         int
}

// PurchaseOrderItemInput describes a line to order from the supplier
type PurchaseOrderItemInput struct {
	ProductID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitCostHT  decimal.Decimal
	TaxRate     decimal.Decimal
}

// RemainingQuantity returns the quantity still expected from the supplier
func (i *PurchaseOrderItem) RemainingQuantity() decimal.Decimal {
	return valueobject.FloorZero(i.QuantityOrdered.Sub(i.QuantityReceived))
}

// IsFullyReceived checks if the line has been completely received
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.QuantityReceived.GreaterThanOrEqual(i.QuantityOrdered)
}

// PurchaseOrder is the procurement aggregate root. Its status past confirme
// is always derived from the receipt state of its lines.
type PurchaseOrder struct {
	shared.WorkspaceAggregateRoot
	Number       string
	SupplierID   uuid.UUID
	SupplierName string
	Status       PurchaseOrderStatus
	Items        []PurchaseOrderItem
	ExpectedDate *time.Time
	ReceivedDate *time.Time
	SubtotalHT   decimal.Decimal
	TotalTVA     decimal.Decimal
	TotalTTC     decimal.Decimal
	Notes        string
}

// NewPurchaseOrder creates a new purchase order in brouillon
func NewPurchaseOrder(workspaceID, createdBy uuid.UUID, number string, supplierID uuid.UUID, supplierName string) (*PurchaseOrder, error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Workspace ID cannot be empty")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Purchase order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier ID cannot be empty")
	}

	po := &PurchaseOrder{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRootWithCreator(workspaceID, createdBy),
		Number:                 number,
		SupplierID:             supplierID,
		SupplierName:           supplierName,
		Status:                 PurchaseOrderStatusDraft,
		Items:                  make([]PurchaseOrderItem, 0),
		SubtotalHT:             decimal.Zero,
		TotalTVA:               decimal.Zero,
		TotalTTC:               decimal.Zero,
	}
	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))
	return po, nil
}

// ReplaceItems sets the lines of a draft purchase order
func (o *PurchaseOrder) ReplaceItems(inputs []PurchaseOrderItemInput) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot modify purchase order in %s status", o.Status))
	}

	items := make([]PurchaseOrderItem, 0, len(inputs))
	for idx, input := range inputs {
		if input.ProductID == uuid.Nil {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Line %d has no product", idx+1))
		}
		if input.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Line %d quantity must be positive", idx+1))
		}
		if input.UnitCostHT.IsNegative() || input.TaxRate.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Line %d has a negative cost or tax rate", idx+1))
		}
		items = append(items, PurchaseOrderItem{
			ID:               uuid.New(),
			PurchaseOrderID:  o.ID,
			ProductID:        input.ProductID,
			Description:      input.Description,
			QuantityOrdered:  input.Quantity,
			QuantityReceived: decimal.Zero,
			UnitCostHT:       input.UnitCostHT,
			TaxRate:          input.TaxRate,
			TotalHT:          valueobject.RoundMoney(input.Quantity.Mul(input.UnitCostHT)),
			Position:         idx + 1,
		})
	}

	o.Items = items
	o.recalculateTotals()
	o.Touch()
	return nil
}

func (o *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	tva := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalHT)
		tva = tva.Add(valueobject.Percent(item.TotalHT, item.TaxRate))
	}
	o.SubtotalHT = valueobject.RoundMoney(subtotal)
	o.TotalTVA = valueobject.RoundMoney(tva)
	o.TotalTTC = o.SubtotalHT.Add(o.TotalTVA)
}

// UpdateStatus applies a manual status change. Receiving statuses are never
// accepted here, and confirme is refused once anything has been received.
func (o *PurchaseOrder) UpdateStatus(target PurchaseOrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown purchase order status %q", target))
	}

	allowed := false
	switch target {
	case PurchaseOrderStatusSent:
		allowed = o.Status == PurchaseOrderStatusDraft
	case PurchaseOrderStatusConfirmed:
		allowed = o.Status == PurchaseOrderStatusSent && !o.HasReceivedAnyGoods()
	case PurchaseOrderStatusCancelled:
		allowed = !o.Status.IsTerminal()
	}
	if !allowed {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot move purchase order %s from %s to %s", o.Number, o.Status, target))
	}

	from := o.Status
	o.Status = target
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, from, target))
	return nil
}

// ReceiptLine is a requested quantity to add to one PO line
type ReceiptLine struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// ReceivedLine is an accepted receipt, used to feed the inventory ledger
type ReceivedLine struct {
	ItemID    uuid.UUID
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// Receive validates a goods receipt and applies it to the lines in memory.
// Either every delta is accepted or none is.
func (o *PurchaseOrder) Receive(lines []ReceiptLine) ([]ReceivedLine, error) {
	if !o.Status.CanReceive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot receive goods for purchase order in %s status", o.Status))
	}

	requested := make(map[uuid.UUID]decimal.Decimal, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Received quantity cannot be negative")
		}
		if line.Quantity.IsZero() {
			continue
		}
		if o.GetItem(line.ItemID) == nil {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Line %s not found in purchase order %s", line.ItemID, o.Number))
		}
		if _, seen := requested[line.ItemID]; !seen {
			order = append(order, line.ItemID)
		}
		requested[line.ItemID] = requested[line.ItemID].Add(line.Quantity)
	}
	if len(order) == 0 {
		return nil, shared.ErrNoQuantityProvided
	}

	for _, itemID := range order {
		item := o.GetItem(itemID)
		if requested[itemID].GreaterThan(item.RemainingQuantity()) {
			return nil, shared.NewDomainError(shared.CodeReceiptExceedsRemaining,
				fmt.Sprintf("Cannot receive %s on line %d, only %s remaining", requested[itemID], item.Position, item.RemainingQuantity()))
		}
	}

	received := make([]ReceivedLine, 0, len(order))
	for _, itemID := range order {
		item := o.GetItem(itemID)
		item.QuantityReceived = item.QuantityReceived.Add(requested[itemID])
		received = append(received, ReceivedLine{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Quantity:  requested[itemID],
			UnitCost:  item.UnitCostHT,
		})
	}

	from := o.Status
	o.DeriveStatus()
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, received))
	if from != o.Status {
		o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, from, o.Status))
	}
	return received, nil
}

// DeriveStatus recomputes the receiving status from line state and stamps
// ReceivedDate the first time the PO is fully received.
func (o *PurchaseOrder) DeriveStatus() {
	switch {
	case o.IsFullyReceived():
		o.Status = PurchaseOrderStatusReceived
		if o.ReceivedDate == nil {
			now := time.Now()
			o.ReceivedDate = &now
		}
	case o.HasReceivedAnyGoods():
		o.Status = PurchaseOrderStatusPartialReceived
	}
}

// IsFullyReceived checks if every line has been completely received
func (o *PurchaseOrder) IsFullyReceived() bool {
	for _, item := range o.Items {
		if !item.IsFullyReceived() {
			return false
		}
	}
	return len(o.Items) > 0
}

// HasReceivedAnyGoods checks if any unit has been received
func (o *PurchaseOrder) HasReceivedAnyGoods() bool {
	for _, item := range o.Items {
		if item.QuantityReceived.IsPositive() {
			return true
		}
	}
	return false
}

// GetItem returns the line with the given ID
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// TotalOrderedQuantity returns the ordered quantity across lines
func (o *PurchaseOrder) TotalOrderedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.QuantityOrdered)
	}
	return total
}

// TotalReceivedQuantity returns the received quantity across lines
func (o *PurchaseOrder) TotalReceivedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.QuantityReceived)
	}
	return total
}

// ReceiveProgress returns the receiving progress as a percentage (0-100)
func (o *PurchaseOrder) ReceiveProgress() decimal.Decimal {
	ordered := o.TotalOrderedQuantity()
	if ordered.IsZero() {
		return decimal.Zero
	}
	return o.TotalReceivedQuantity().Div(ordered).Mul(decimal.NewFromInt(100)).Round(2)
}
