// Package billing converts a per-visit price into monthly and contract figures.
package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/override"
)

// FirstVisitMode is a service's convention for pricing an install visit.
type FirstVisitMode string

const (
	// InstallOnly charges the install price alone on the first visit.
	InstallOnly FirstVisitMode = "installOnly"
	// InstallPlusService charges the install price on top of the regular per-visit price.
	InstallPlusService FirstVisitMode = "installPlusService"
)

// ParseFirstVisitMode reads a mode name; unknown names yield fallback.
func ParseFirstVisitMode(s string, fallback FirstVisitMode) FirstVisitMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "installonly", "install-only", "install_only":
		return InstallOnly
	case "installplusservice", "install-plus-service", "install_plus_service":
		return InstallPlusService
	default:
		return fallback
	}
}

// Target is the total that custom flat additions land on.
type Target string

const (
	TargetContract Target = "contract"
	TargetMonthly  Target = "monthly"
)

// ParseTarget reads a target name; unknown names yield fallback.
func ParseTarget(s string, fallback Target) Target {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contract":
		return TargetContract
	case "monthly":
		return TargetMonthly
	default:
		return fallback
	}
}

// Input is everything the aggregator needs for one service.
type Input struct {
	// PerVisit is the calculated per-visit total, after component overrides.
	PerVisit decimal.Decimal
	// Install is the install charge of the first visit. Zero means no install event.
	Install decimal.Decimal
	Mode    FirstVisitMode

	Frequency frequency.Key
	// VisitsPerYear replaces the frequency table's count for visit-based frequencies when
	// positive. Services carry their own fallback counts.
	VisitsPerYear  float64
	ContractMonths int

	// FlatAdditions are custom rows, added once to Target.
	FlatAdditions decimal.Decimal
	Target        Target

	// Overrides holds aggregate-level pins: perVisitPrice, firstVisitPrice, monthlyRecurring,
	// firstMonthTotal and contractTotal.
	Overrides override.Set
}

// Totals are the billing figures of one service. Amounts are rounded to cents.
type Totals struct {
	PerVisit         decimal.Decimal `json:"perVisitPrice"`
	FirstVisit       decimal.Decimal `json:"firstVisitPrice"`
	MonthlyRecurring decimal.Decimal `json:"monthlyRecurring"`
	FirstMonthTotal  decimal.Decimal `json:"firstMonthTotal"`
	ContractTotal    decimal.Decimal `json:"contractTotal"`

	Frequency      frequency.Key `json:"frequency"`
	ContractMonths int           `json:"contractMonths"`
	VisitsPerMonth float64       `json:"visitsPerMonth"`
	// TotalVisits is set for visit-based frequencies.
	TotalVisits  int  `json:"totalVisits,omitempty"`
	VisitBased   bool `json:"visitBased"`
	InstallEvent bool `json:"installEvent"`
}

// Aggregate computes the billing figures for in. It never fails: bad months are clamped and
// unknown frequencies bill as frequency.Default.
func Aggregate(in Input) Totals {
	freq := in.Frequency
	if !freq.Valid() {
		freq = frequency.Default
	}
	months := override.ClampMonths(in.ContractMonths)
	ov := in.Overrides

	t := Totals{
		Frequency:      freq,
		ContractMonths: months,
		VisitBased:     frequency.IsVisitBased(freq),
		InstallEvent:   in.Install.IsPositive(),
	}

	perVisit := cents(ov.Decimal(override.PerVisitPrice, nonNegative(in.PerVisit)))
	t.PerVisit = perVisit
	t.FirstVisit = cents(ov.Decimal(override.FirstVisitPrice, firstVisitPrice(perVisit, in.Install, in.Mode)))

	flat := nonNegative(in.FlatAdditions)

	if t.VisitBased {
		aggregateVisits(&t, in, flat)
		return t
	}

	vpm := frequency.MonthlyMultiplier(freq)
	t.VisitsPerMonth = vpm

	monthlyFlat, contractFlat := decimal.Zero, flat
	if in.Target == TargetMonthly {
		monthlyFlat, contractFlat = flat, decimal.Zero
	}

	monthly := perVisit.Mul(decimal.NewFromFloat(vpm)).Add(monthlyFlat)
	t.MonthlyRecurring = cents(ov.Decimal(override.MonthlyRecurring, monthly))

	firstMonth := t.MonthlyRecurring
	if t.InstallEvent || ov.Has(override.FirstVisitPrice) {
		rest := decimal.Max(decimal.NewFromFloat(vpm).Sub(decimal.NewFromInt(1)), decimal.Zero)
		firstMonth = t.FirstVisit.Add(rest.Mul(perVisit)).Add(monthlyFlat)
	}
	t.FirstMonthTotal = cents(ov.Decimal(override.FirstMonthTotal, firstMonth))

	remaining := decimal.NewFromInt(int64(months - 1))
	contract := t.FirstMonthTotal.Add(remaining.Mul(t.MonthlyRecurring)).Add(contractFlat)
	t.ContractTotal = cents(ov.Decimal(override.ContractTotal, contract))
	return t
}

// aggregateVisits fills the totals of a visit-based frequency. Nothing bills monthly, so flat
// additions always land on the contract.
func aggregateVisits(t *Totals, in Input, flat decimal.Decimal) {
	ov := in.Overrides
	t.MonthlyRecurring = cents(ov.Decimal(override.MonthlyRecurring, decimal.Zero))
	t.FirstMonthTotal = cents(ov.Decimal(override.FirstMonthTotal, t.FirstVisit))

	visits := TotalVisits(t.Frequency, in.VisitsPerYear, t.ContractMonths)
	t.TotalVisits = visits
	t.VisitsPerMonth = visitsPerMonth(t.Frequency, in.VisitsPerYear)

	contract := t.FirstVisit.Add(decimal.NewFromInt(int64(visits - 1)).Mul(t.PerVisit)).Add(flat)
	t.ContractTotal = cents(ov.Decimal(override.ContractTotal, contract))
}

// TotalVisits counts the visits a visit-based agreement delivers over months, rounded to whole
// visits and never fewer than one. oneTime is always a single visit.
func TotalVisits(freq frequency.Key, visitsPerYear float64, months int) int {
	if freq == frequency.OneTime {
		return 1
	}
	if visitsPerYear <= 0 {
		visitsPerYear = frequency.VisitsPerYear(freq)
	}
	n := decimal.NewFromInt(int64(months)).
		Div(decimal.NewFromInt(12)).
		Mul(decimal.NewFromFloat(visitsPerYear)).
		Round(0).
		IntPart()
	if n < 1 {
		return 1
	}
	return int(n)
}

func visitsPerMonth(freq frequency.Key, visitsPerYear float64) float64 {
	if freq == frequency.OneTime || visitsPerYear <= 0 {
		return frequency.VisitsPerMonth(freq)
	}
	return visitsPerYear / 12
}

func firstVisitPrice(perVisit, install decimal.Decimal, mode FirstVisitMode) decimal.Decimal {
	if !install.IsPositive() {
		return perVisit
	}
	if mode == InstallPlusService {
		return install.Add(perVisit)
	}
	return install
}

func cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Describe renders totals as summary lines.
func Describe(t Totals) []string {
	var lines []string
	if t.InstallEvent {
		lines = append(lines, fmt.Sprintf("First visit: $%s", t.FirstVisit.StringFixed(2)))
	}
	if t.VisitBased {
		lines = append(lines, fmt.Sprintf("%d visit(s) over %d months (%s)", t.TotalVisits, t.ContractMonths, t.Frequency))
	} else {
		lines = append(lines,
			fmt.Sprintf("Monthly: $%s x %g visits/month = $%s", t.PerVisit.StringFixed(2), t.VisitsPerMonth, t.MonthlyRecurring.StringFixed(2)),
		)
		if !t.FirstMonthTotal.Equal(t.MonthlyRecurring) {
			lines = append(lines, fmt.Sprintf("First month: $%s", t.FirstMonthTotal.StringFixed(2)))
		}
	}
	lines = append(lines, fmt.Sprintf("Contract total (%d months): $%s", t.ContractMonths, t.ContractTotal.StringFixed(2)))
	return lines
}
