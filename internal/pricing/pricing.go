package pricing

import (
	"github.com/shopspring/decimal"
)

// FlatWithMinimum charges count units at rate, never less than minimum.
func FlatWithMinimum(count, rate, minimum float64) decimal.Decimal {
	return decimal.Max(Mul(count, rate), D(minimum))
}

// SmallAccount reports whether a non-empty account falls at or below the small-account
// threshold. A threshold of zero disables the rule.
func SmallAccount(count, threshold float64) bool {
	return count > 0 && threshold > 0 && count <= threshold
}

// VolumeRate selects the discounted rate once count reaches the volume threshold.
// A threshold of zero disables the discount.
func VolumeRate(count, threshold, baseRate, volumeRate float64) float64 {
	if threshold > 0 && count >= threshold {
		return volumeRate
	}
	return baseRate
}

// CheaperOf returns the lower of two plan prices and whether the second plan was chosen.
func CheaperOf(a, b decimal.Decimal) (decimal.Decimal, bool) {
	if b.LessThan(a) {
		return b, true
	}
	return a, false
}

// PartialInstall splits the first visit between newly installed units and units that only
// receive the ongoing service. The recurring price always covers every unit at the service rate.
func PartialInstall(total, installed, installRate, serviceRate float64) (firstVisit, recurring decimal.Decimal) {
	if total < 0 {
		total = 0
	}
	if installed < 0 {
		installed = 0
	}
	if installed > total {
		installed = total
	}
	firstVisit = Mul(installed, installRate).Add(Mul(total-installed, serviceRate))
	recurring = Mul(total, serviceRate)
	return firstVisit, recurring
}

// D converts a float input to a decimal amount.
func D(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Mul multiplies two float inputs in decimal space.
func Mul(a, b float64) decimal.Decimal {
	return D(a).Mul(D(b))
}

// Cents rounds an amount half-up to two decimal places.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Money formats an amount for summaries, e.g. "$1234.50".
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
