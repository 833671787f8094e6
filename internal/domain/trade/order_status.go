package trade

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "brouillon"
	OrderStatusConfirmed  OrderStatus = "confirme"
	OrderStatusPreparing  OrderStatus = "en_preparation"
	OrderStatusDelivering OrderStatus = "en_livraison"
	OrderStatusInProgress OrderStatus = "en_cours"
	OrderStatusDelivered  OrderStatus = "livre"
	OrderStatusCompleted  OrderStatus = "termine"
	OrderStatusCancelled  OrderStatus = "annule"
)

// orderTransitions is the fixed adjacency list of allowed status changes.
// en_cours and livre form the legacy branch used by delivery-tracked orders.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:      {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusPreparing, OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusPreparing:  {OrderStatusDelivering, OrderStatusCancelled},
	OrderStatusDelivering: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks the target against the adjacency list
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	allowed := orderTransitions[s]
	out := make([]OrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// settlesOnFullPayment reports whether a fully paid order in this status moves to termine
func (s OrderStatus) settlesOnFullPayment() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusPreparing, OrderStatusDelivering, OrderStatusDelivered:
		return true
	}
	return false
}

// OrderType distinguishes regular orders from counter sales
type OrderType string

const (
	OrderTypeStandard  OrderType = "standard"
	OrderTypeQuickSale OrderType = "quick_sale"
)

// IsValid checks if the type is known
func (t OrderType) IsValid() bool {
	return t == OrderTypeStandard || t == OrderTypeQuickSale
}

// DiscountType defines how the global discount is expressed
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeAmount  DiscountType = "amount"
)

// IsValid checks if the discount type is known
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercent || t == DiscountTypeAmount
}
