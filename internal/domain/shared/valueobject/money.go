package valueobject

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimals kept on stored monetary amounts
const MoneyScale int32 = 2

// PaymentEpsilon is the rounding tolerance used when comparing paid and due amounts
var PaymentEpsilon = decimal.New(1, -2)

// RoundMoney rounds half away from zero to two decimals
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// FloorZero returns d, or zero when d is negative
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Remaining returns max(0, total - paid) rounded to money scale
func Remaining(total, paid decimal.Decimal) decimal.Decimal {
	return RoundMoney(FloorZero(total.Sub(paid)))
}

// CoversWithin reports whether paid >= due - PaymentEpsilon
func CoversWithin(paid, due decimal.Decimal) bool {
	return paid.GreaterThanOrEqual(due.Sub(PaymentEpsilon))
}

// FitsWithin reports whether amount <= limit + PaymentEpsilon
func FitsWithin(amount, limit decimal.Decimal) bool {
	return amount.LessThanOrEqual(limit.Add(PaymentEpsilon))
}

// Percent returns base * rate / 100
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(decimal.NewFromInt(100))
}
