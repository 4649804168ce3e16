package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

var windowSizes = []struct {
	input, line, label, leaf string
	legacy                   string
	rate                     float64
}{
	{"smallWindows", "smallWindows", "Small Windows", "windowRates.small", "smallWindowRate", 1.5},
	{"mediumWindows", "mediumWindows", "Medium Windows", "windowRates.medium", "mediumWindowRate", 3},
	{"largeWindows", "largeWindows", "Large Windows", "windowRates.large", "largeWindowRate", 7},
}

// Window cleaning priced per pane size.
func rpmWindows() Rule {
	leaves := []rates.Leaf{
		{Key: "tripCharge", Default: 10, Label: "Trip charge"},
		{Key: "installMultiplier", Legacy: "firstTimeMultiplier", Default: 3, Label: "First-time clean multiplier"},
	}
	fields := map[string]string{"tripCharge": "Trip Charge"}
	qualifying := make([]string, 0, len(windowSizes))
	for _, w := range windowSizes {
		leaves = append(leaves, rates.Leaf{Key: w.leaf, Legacy: w.legacy, Default: w.rate, Label: w.label + " rate"})
		fields[w.line] = w.label
		qualifying = append(qualifying, w.input)
	}
	return Rule{
		ID:               "rpmWindows",
		DisplayName:      "RPM Windows",
		Schema:           schema(leaves, visitLeaves(6, 4, 2, 1)),
		Qualifying:       qualifying,
		DefaultFrequency: frequency.Monthly,
		FirstVisit:       billing.InstallOnly,
		CustomRows:       billing.TargetContract,
		Fields:           fields,
		Price:            priceWindows,
	}
}

func priceWindows(in pricing.Inputs, cfg rates.Config) pricing.Priced {
	var out pricing.Priced
	panes := 0.0
	for _, w := range windowSizes {
		n, rate := in.Qty(w.input), cfg.Get(w.leaf)
		panes += n
		out.Lines.Add(w.line, w.label, pricing.Mul(n, rate), perUnit(n, "panes", rate))
	}

	trip := decimal.Zero
	if panes > 0 {
		trip = pricing.D(cfg.Get("tripCharge"))
	}
	out.Lines.Add("tripCharge", "Trip Charge", trip, "")

	if in.On("firstTimeClean") && panes > 0 {
		mult := cfg.Get("installMultiplier")
		out.FirstVisit = pricing.FirstVisit{
			Active:     mult > 0,
			Multiplier: mult,
			Detail:     fmt.Sprintf("first-time clean %sx per-visit price", num(mult)),
		}
	}
	return out
}
