package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Line is one named subtotal of a per-visit price.
type Line struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Detail string          `json:"detail,omitempty"`
}

// Breakdown contains the per-visit subtotal lines in display order.
type Breakdown []Line

// Total sums every line.
func (b Breakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b {
		total = total.Add(l.Amount)
	}
	return total
}

// Get returns the line with the given key.
func (b Breakdown) Get(key string) (Line, bool) {
	for _, l := range b {
		if l.Key == key {
			return l, true
		}
	}
	return Line{}, false
}

// Map returns label-free amounts keyed by line key.
func (b Breakdown) Map() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(b))
	for _, l := range b {
		out[l.Key] = l.Amount
	}
	return out
}

// Add appends a line; zero-amount lines are kept so the breakdown shape is stable.
func (b *Breakdown) Add(key, label string, amount decimal.Decimal, detail string) {
	*b = append(*b, Line{Key: key, Label: label, Amount: amount, Detail: detail})
}

// FirstVisit describes how the first visit of an agreement is priced when it differs from the
// recurring per-visit price.
type FirstVisit struct {
	// Active is false when the first visit costs the same as every other visit.
	Active bool `json:"active"`
	// Multiplier prices the install as the effective per-visit price times Multiplier. The
	// service's first-visit convention decides whether the regular visit is charged on top.
	Multiplier float64 `json:"multiplier,omitempty"`
	// Surcharge is added to the effective per-visit price, used when Multiplier is zero.
	// Partial installs price this way.
	Surcharge decimal.Decimal `json:"surcharge"`
	Detail    string          `json:"detail,omitempty"`
}

// Install returns the install charge for perVisit and whether the service convention applies.
// A surcharge always prices the whole first visit, so the convention is bypassed.
func (f FirstVisit) Install(perVisit decimal.Decimal) (install decimal.Decimal, conventional bool) {
	switch {
	case !f.Active:
		return decimal.Zero, false
	case f.Multiplier > 0:
		return perVisit.Mul(decimal.NewFromFloat(f.Multiplier)), true
	case f.Surcharge.IsPositive():
		return perVisit.Add(f.Surcharge), false
	default:
		return decimal.Zero, false
	}
}

// Priced is what a service pricing rule returns.
type Priced struct {
	Lines      Breakdown
	FirstVisit FirstVisit
	// Notes are extra explanation lines for the quote summary.
	Notes []string
}

// RowKind distinguishes the ad-hoc rows a salesperson can append to a service.
type RowKind string

const (
	RowText  RowKind = "text"
	RowMoney RowKind = "money"
	RowCalc  RowKind = "calc"
)

// CustomRow is an ad-hoc line outside the service's fixed schema.
type CustomRow struct {
	Label  string  `json:"label"`
	Kind   RowKind `json:"kind"`
	Text   string  `json:"text,omitempty"`
	Amount float64 `json:"amount,omitempty"`
	Qty    float64 `json:"qty,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
	// Total pins the qty@rate result when set.
	Total *float64 `json:"total,omitempty"`
}

// Value is the flat amount the row contributes.
func (r CustomRow) Value() decimal.Decimal {
	switch RowKind(strings.ToLower(string(r.Kind))) {
	case RowMoney:
		return nonNegativeD(r.Amount)
	case RowCalc:
		if r.Total != nil {
			return nonNegativeD(*r.Total)
		}
		if r.Qty <= 0 || r.Rate <= 0 {
			return decimal.Zero
		}
		return Mul(r.Qty, r.Rate)
	default:
		return decimal.Zero
	}
}

// CustomRowsTotal sums the flat contribution of rows.
func CustomRowsTotal(rows []CustomRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Value())
	}
	return total
}

func nonNegativeD(f float64) decimal.Decimal {
	if f <= 0 {
		return decimal.Zero
	}
	return D(f)
}
