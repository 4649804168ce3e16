package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

// Feminine hygiene pod service: the cheaper of a flat per-pod plan and a base-plus-pod plan.
func sanipod() Rule {
	return Rule{
		ID:          "sanipod",
		DisplayName: "SaniPod",
		Schema: schema(
			[]rates.Leaf{
				{Key: "perPodPlan.ratePerPod", Legacy: "weeklyRatePerUnit", Default: 8, Label: "Per-pod plan rate"},
				{Key: "basePlan.ratePerPod", Legacy: "altWeeklyRatePerUnit", Default: 3, Label: "Base plan rate per pod"},
				{Key: "basePlan.weeklyBase", Legacy: "altWeeklyBase", Default: 40, Label: "Base plan weekly base"},
				{Key: "smallAccount.podThreshold", Default: 2, Label: "Small account pod threshold"},
				{Key: "smallAccount.minimumWithTrip", Default: 25, Label: "Small account minimum (incl. trip)"},
				{Key: "installRatePerPod", Legacy: "installRate", Default: 25, Label: "Install rate per pod"},
				{Key: "extraBags.ratePerBag", Legacy: "extraBagPrice", Default: 2, Label: "Extra bag rate"},
				{Key: "tripCharge", Default: 8, Label: "Trip charge"},
			},
			visitLeaves(6, 4, 2, 1),
		),
		Qualifying:       []string{"pods"},
		DefaultFrequency: frequency.Weekly,
		FirstVisit:       billing.InstallOnly,
		CustomRows:       billing.TargetMonthly,
		Fields: map[string]string{
			"pods":       "Pods",
			"extraBags":  "Extra Bags",
			"tripCharge": "Trip Charge",
		},
		Price: priceSanipod,
	}
}

func priceSanipod(in pricing.Inputs, cfg rates.Config) pricing.Priced {
	var out pricing.Priced

	pods := in.Qty("pods")
	perPodRate := cfg.Get("perPodPlan.ratePerPod")
	perPodPlan := pricing.Mul(pods, perPodRate)
	basePlan := pricing.Mul(pods, cfg.Get("basePlan.ratePerPod")).Add(pricing.D(cfg.Get("basePlan.weeklyBase")))

	trip := pricing.D(cfg.Get("tripCharge"))
	podsPrice, detail := decimal.Zero, ""
	switch {
	case pods <= 0:
		trip = decimal.Zero
	case pricing.SmallAccount(pods, cfg.Get("smallAccount.podThreshold")):
		podsPrice = pricing.D(cfg.Get("smallAccount.minimumWithTrip"))
		trip = decimal.Zero
		detail = fmt.Sprintf("small account (%s pods): flat %s incl. trip", num(pods), pricing.Money(podsPrice))
	default:
		var usedBase bool
		podsPrice, usedBase = pricing.CheaperOf(perPodPlan, basePlan)
		if usedBase {
			detail = fmt.Sprintf("%s pods x %s + %s base", num(pods), money(cfg.Get("basePlan.ratePerPod")), money(cfg.Get("basePlan.weeklyBase")))
		} else {
			detail = perUnit(pods, "pods", perPodRate)
		}
	}
	out.Lines.Add("pods", "Pods", podsPrice, detail)

	bags, bagRate := in.Qty("extraBags"), cfg.Get("extraBags.ratePerBag")
	out.Lines.Add("extraBags", "Extra Bags", pricing.Mul(bags, bagRate), perUnit(bags, "bags", bagRate))
	out.Lines.Add("tripCharge", "Trip Charge", trip, "")

	// Newly installed pods pay the install rate instead of their share of the recurring price.
	if installed := min(in.Qty("installedPods"), pods); installed > 0 && pods > 0 {
		share := podsPrice.Div(pricing.D(pods))
		surcharge := pricing.D(installed).Mul(pricing.D(cfg.Get("installRatePerPod")).Sub(share))
		if surcharge.IsPositive() {
			out.FirstVisit = pricing.FirstVisit{
				Active:    true,
				Surcharge: surcharge,
				Detail:    fmt.Sprintf("%s of %s pods installed at %s", num(installed), num(pods), money(cfg.Get("installRatePerPod"))),
			}
		}
	}
	return out
}
