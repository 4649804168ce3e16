package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

const carpetArea = "carpet"

func carpetCleaning() Rule {
	return Rule{
		ID:          "carpetCleaning",
		DisplayName: "Carpet Cleaning",
		Schema: schema(
			[]rates.Leaf{
				{Key: "perVisitMinimum", Legacy: "minimumChargePerVisit", Default: 250, Label: "Per-visit minimum"},
				{Key: "installMultiplier", Legacy: "installationMultiplier", Default: 3, Label: "Install multiplier"},
			},
			stepLeaves(carpetArea, "carpet", "Carpet", 500, 250, 125),
			// Quarterly carpet work was historically sold as three visits a year.
			visitLeaves(6, 3, 2, 1),
		),
		Qualifying:       []string{"carpetSqFt"},
		DefaultFrequency: frequency.Quarterly,
		FirstVisit:       billing.InstallPlusService,
		CustomRows:       billing.TargetContract,
		Fields:           map[string]string{"carpetArea": "Carpet Area"},
		Price:            priceCarpet,
	}
}

func priceCarpet(in pricing.Inputs, cfg rates.Config) pricing.Priced {
	var out pricing.Priced

	sqFt := in.Qty("carpetSqFt")
	tier := stepTier(cfg, carpetArea)
	mode := stepMode(in, cfg, "carpetMode", carpetArea)
	price := decimal.Zero
	if sqFt > 0 {
		price = decimal.Max(tier.Price(sqFt, mode), pricing.D(cfg.Get("perVisitMinimum")))
	}
	out.Lines.Add("carpetArea", "Carpet Area", price, stepDetail(sqFt, tier, mode))

	if in.On("installation") && sqFt > 0 {
		mult := cfg.Get("installMultiplier")
		out.FirstVisit = pricing.FirstVisit{
			Active:     mult > 0,
			Multiplier: mult,
			Detail:     fmt.Sprintf("install fee %sx per-visit price plus regular service", num(mult)),
		}
	}
	return out
}
