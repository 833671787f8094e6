package trade

// InvoiceCategory selects which invoice is generated for an order
type InvoiceCategory string

const (
	InvoiceCategoryDeposit   InvoiceCategory = "deposit"
	InvoiceCategoryBalance   InvoiceCategory = "balance"
	InvoiceCategoryStandard  InvoiceCategory = "standard"
	InvoiceCategoryQuickSale InvoiceCategory = "quick_sale"
)

// IsValid checks if the category is known
func (c InvoiceCategory) IsValid() bool {
	switch c {
	case InvoiceCategoryDeposit, InvoiceCategoryBalance, InvoiceCategoryStandard, InvoiceCategoryQuickSale:
		return true
	}
	return false
}
