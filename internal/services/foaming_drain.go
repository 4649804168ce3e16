package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

// Drain line foaming with a volume discount, grease traps, and partial installs.
func foamingDrain() Rule {
	return Rule{
		ID:          "foamingDrain",
		DisplayName: "Foaming Drain",
		Schema: schema(
			[]rates.Leaf{
				{Key: "standardDrainRate", Legacy: "ratePerDrain", Default: 10, Label: "Rate per drain"},
				{Key: "volumePricing.minimumDrains", Legacy: "volumeThreshold", Default: 10, Label: "Volume pricing threshold"},
				{Key: "volumePricing.ratePerDrain", Legacy: "volumeRatePerDrain", Default: 7, Label: "Volume rate per drain"},
				{Key: "installationRate", Legacy: "installRatePerDrain", Default: 20, Label: "Install rate per drain"},
				{Key: "greaseTrap.ratePerTrap", Legacy: "greaseTrapRate", Default: 125, Label: "Grease trap rate"},
				{Key: "tripCharge", Default: 10, Label: "Trip charge"},
			},
			// Bimonthly drain service was counted as 6.5 visits a year.
			visitLeaves(6.5, 4, 2, 1),
		),
		Qualifying:       []string{"drains", "greaseTraps"},
		DefaultFrequency: frequency.Weekly,
		FirstVisit:       billing.InstallOnly,
		CustomRows:       billing.TargetContract,
		Fields: map[string]string{
			"drains":      "Drains",
			"greaseTraps": "Grease Traps",
			"tripCharge":  "Trip Charge",
		},
		Price: priceFoamingDrain,
	}
}

func priceFoamingDrain(in pricing.Inputs, cfg rates.Config) pricing.Priced {
	var out pricing.Priced

	drains := in.Qty("drains")
	rate := pricing.VolumeRate(drains, cfg.Get("volumePricing.minimumDrains"),
		cfg.Get("standardDrainRate"), cfg.Get("volumePricing.ratePerDrain"))
	detail := perUnit(drains, "drains", rate)
	if rate != cfg.Get("standardDrainRate") {
		detail += " (volume rate)"
	}

	installed := in.Qty("installedDrains")
	firstVisit, recurring := pricing.PartialInstall(drains, installed, cfg.Get("installationRate"), rate)
	out.Lines.Add("drains", "Drains", recurring, detail)

	traps := in.Qty("greaseTraps")
	trapRate := cfg.Get("greaseTrap.ratePerTrap")
	out.Lines.Add("greaseTraps", "Grease Traps", pricing.Mul(traps, trapRate), perUnit(traps, "traps", trapRate))

	trip := decimal.Zero
	if drains > 0 || traps > 0 {
		trip = pricing.D(cfg.Get("tripCharge"))
	}
	out.Lines.Add("tripCharge", "Trip Charge", trip, "")

	if surcharge := firstVisit.Sub(recurring); installed > 0 && surcharge.IsPositive() {
		out.FirstVisit = pricing.FirstVisit{
			Active:    true,
			Surcharge: surcharge,
			Detail: fmt.Sprintf("%s of %s drains installed at %s", num(min(installed, drains)), num(drains),
				money(cfg.Get("installationRate"))),
		}
	}
	return out
}
