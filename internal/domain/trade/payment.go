package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType classifies a payment against an order
type PaymentType string

const (
	PaymentTypeDeposit PaymentType = "deposit"
	PaymentTypePartial PaymentType = "partial"
	PaymentTypeBalance PaymentType = "balance"
	PaymentTypeFull    PaymentType = "full"
)

// IsValid checks if the payment type is known
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeDeposit, PaymentTypePartial, PaymentTypeBalance, PaymentTypeFull:
		return true
	}
	return false
}

// PaymentMethod is how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCheck    PaymentMethod = "check"
	PaymentMethodOther    PaymentMethod = "other"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is an insert-only ledger row against one order
type Payment struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	WorkspaceID uuid.UUID
	Amount      decimal.Decimal
	Type        PaymentType
	Method      PaymentMethod
	PaymentDate time.Time
	Receiver    string
	Notes       string
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
}

// PaymentInput carries a payment request before it is validated against the order
type PaymentInput struct {
	Amount      decimal.Decimal
	Type        PaymentType
	Method      PaymentMethod
	PaymentDate time.Time
	Receiver    string
	Notes       string
}
