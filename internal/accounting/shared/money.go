package shared

import "github.com/shopspring/decimal"

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

// Tolerance is one hundredth of the minor currency unit. The write-time balance
// check and the trial balance check both compare against it.
var Tolerance = decimal.New(1, -4)

// ValidAmount reports whether d is strictly positive and fits AmountScale.
func ValidAmount(d decimal.Decimal) bool {
	if !d.IsPositive() {
		return false
	}
	return d.Equal(d.Round(AmountScale))
}

// Balanced reports whether |a - b| <= Tolerance.
func Balanced(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
