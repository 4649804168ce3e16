// Package quote computes service quotes and assembles them into proposals.
//
// Compute is pure: it rebuilds the whole result from a form and an effective config on every
// call. Session layers the interactive rules on top of it: cascade-clearing overrides when
// base inputs change, late config fetches, contract-length propagation and change recording.
package quote

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/override"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/services"
)

// Result is the full calculation of one service.
type Result struct {
	ServiceID   string `json:"serviceId"`
	DisplayName string `json:"displayName"`
	Active      bool   `json:"active"`

	// Breakdown holds the per-visit lines after component overrides.
	Breakdown pricing.Breakdown `json:"breakdown"`
	// Calculated holds the same lines before overrides.
	Calculated pricing.Breakdown `json:"calculated"`
	// Pinned lists the component lines whose value was overridden.
	Pinned []string `json:"pinned,omitempty"`

	CustomRowsTotal decimal.Decimal `json:"customRowsTotal"`
	Totals          billing.Totals  `json:"totals"`
	Notes           []string        `json:"notes,omitempty"`
	Details         []string        `json:"detailsBreakdown"`
}

// Compute prices form under rule with the effective config cfg. Rate overrides on the form are
// applied to cfg first, then component overrides, then aggregate overrides in the aggregator.
func Compute(rule services.Rule, form FormState, cfg rates.Config) Result {
	cfg = cfg.With(form.Rates)
	freq := form.Frequency
	if freq == "" {
		freq = rule.DefaultFrequency
	}
	if !freq.Valid() {
		freq = frequency.Default
	}
	in := form.Inputs()
	in.Frequency = freq

	priced := rule.Price(in, cfg)

	res := Result{
		ServiceID:   rule.ID,
		DisplayName: rule.DisplayName,
		Active:      rule.Active(in),
		Calculated:  priced.Lines,
		Notes:       priced.Notes,
	}
	res.Breakdown = make(pricing.Breakdown, len(priced.Lines))
	for i, l := range priced.Lines {
		if form.Overrides.Has(l.Key) {
			l.Amount = form.Overrides.Decimal(l.Key, l.Amount)
			res.Pinned = append(res.Pinned, l.Key)
		}
		res.Breakdown[i] = l
	}

	perVisit := form.Overrides.Decimal(override.PerVisitPrice, res.Breakdown.Total())
	install, conventional := priced.FirstVisit.Install(perVisit)
	mode := rule.FirstVisit
	if !conventional {
		mode = billing.InstallOnly
	}

	res.CustomRowsTotal = pricing.CustomRowsTotal(form.CustomRows)
	res.Totals = billing.Aggregate(billing.Input{
		PerVisit:       perVisit,
		Install:        install,
		Mode:           mode,
		Frequency:      freq,
		VisitsPerYear:  rule.VisitsPerYear(cfg, freq),
		ContractMonths: form.ContractMonths,
		FlatAdditions:  res.CustomRowsTotal,
		Target:         rule.CustomRows,
		Overrides:      form.Overrides,
	})

	res.Details = details(res, priced.FirstVisit, form.CustomRows)
	return res
}

func details(res Result, fv pricing.FirstVisit, rows []pricing.CustomRow) []string {
	var out []string
	for _, l := range res.Breakdown {
		if l.Amount.IsZero() {
			continue
		}
		line := fmt.Sprintf("%s: %s", l.Label, pricing.Money(l.Amount))
		if l.Detail != "" {
			line += " (" + l.Detail + ")"
		}
		for _, p := range res.Pinned {
			if p == l.Key {
				line += " [manual]"
			}
		}
		out = append(out, line)
	}
	out = append(out, res.Notes...)
	if res.Totals.InstallEvent && fv.Detail != "" {
		out = append(out, fv.Detail)
	}
	for _, r := range rows {
		switch v := r.Value(); {
		case v.IsPositive():
			out = append(out, fmt.Sprintf("%s: %s", r.Label, pricing.Money(v)))
		case r.Text != "":
			out = append(out, fmt.Sprintf("%s: %s", r.Label, r.Text))
		}
	}
	out = append(out, fmt.Sprintf("Per visit: %s", pricing.Money(res.Totals.PerVisit)))
	return append(out, billing.Describe(res.Totals)...)
}

// Summary is the flattened quote line handed to proposal rendering.
type Summary struct {
	ServiceID        string          `json:"serviceId"`
	DisplayName      string          `json:"displayName"`
	Frequency        frequency.Key   `json:"frequency"`
	ContractMonths   int             `json:"contractMonths"`
	PerVisitPrice    decimal.Decimal `json:"perVisitPrice"`
	MonthlyRecurring decimal.Decimal `json:"monthlyRecurring"`
	ContractTotal    decimal.Decimal `json:"contractTotal"`
	DetailsBreakdown []string        `json:"detailsBreakdown"`
}

func (r Result) Summary() Summary {
	return Summary{
		ServiceID:        r.ServiceID,
		DisplayName:      r.DisplayName,
		Frequency:        r.Totals.Frequency,
		ContractMonths:   r.Totals.ContractMonths,
		PerVisitPrice:    r.Totals.PerVisit,
		MonthlyRecurring: r.Totals.MonthlyRecurring,
		ContractTotal:    r.Totals.ContractTotal,
		DetailsBreakdown: r.Details,
	}
}

// Figure returns the effective value of an overridable field: a component line or an
// aggregate figure.
func (r Result) Figure(field string) (float64, bool) {
	var d decimal.Decimal
	switch field {
	case override.PerVisitPrice:
		d = r.Totals.PerVisit
	case override.FirstVisitPrice:
		d = r.Totals.FirstVisit
	case override.MonthlyRecurring:
		d = r.Totals.MonthlyRecurring
	case override.FirstMonthTotal:
		d = r.Totals.FirstMonthTotal
	case override.ContractTotal:
		d = r.Totals.ContractTotal
	default:
		l, ok := r.Breakdown.Get(field)
		if !ok {
			return 0, false
		}
		d = l.Amount
	}
	return d.InexactFloat64(), true
}

// Figures returns every overridable figure keyed by field.
func (r Result) Figures() map[string]float64 {
	out := make(map[string]float64, len(r.Breakdown)+5)
	for _, l := range r.Breakdown {
		out[l.Key] = l.Amount.InexactFloat64()
	}
	for _, f := range []string{override.PerVisitPrice, override.FirstVisitPrice, override.MonthlyRecurring, override.FirstMonthTotal, override.ContractTotal} {
		out[f], _ = r.Figure(f)
	}
	return out
}
