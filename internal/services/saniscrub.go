package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

const saniscrubArea = "nonBathroom"

// Deep floor scrubbing: bathroom fixtures plus non-bathroom area.
func saniscrub() Rule {
	return Rule{
		ID:          "saniscrub",
		DisplayName: "SaniScrub",
		Schema: schema(
			[]rates.Leaf{
				{Key: "fixtureRate", Legacy: "bathroomFixtureRate", Default: 25, Label: "Rate per fixture"},
				{Key: "fixtureMinimum", Legacy: "minimumCharge", Default: 175, Label: "Fixture minimum"},
				{Key: "tripCharge", Default: 0, Label: "Trip charge"},
				{Key: "installMultiplier", Legacy: "installationMultiplier", Default: 3, Label: "Installation multiplier"},
			},
			stepLeaves(saniscrubArea, "nonBathroom", "Non-bathroom", 500, 250, 125),
			visitLeaves(6, 4, 2, 1),
		),
		Qualifying:       []string{"fixtures", "nonBathroomSqFt"},
		DefaultFrequency: frequency.Monthly,
		FirstVisit:       billing.InstallOnly,
		CustomRows:       billing.TargetContract,
		Fields: map[string]string{
			"fixtures":        "Bathroom Fixtures",
			"nonBathroomArea": "Non-Bathroom Area",
			"tripCharge":      "Trip Charge",
		},
		Price: priceSaniscrub,
	}
}

func priceSaniscrub(in pricing.Inputs, cfg rates.Config) pricing.Priced {
	var out pricing.Priced

	fixtures := in.Qty("fixtures")
	rate, minimum := cfg.Get("fixtureRate"), cfg.Get("fixtureMinimum")
	fixturePrice := decimal.Zero
	if fixtures > 0 {
		fixturePrice = pricing.FlatWithMinimum(fixtures, rate, minimum)
	}
	out.Lines.Add("fixtures", "Bathroom Fixtures", fixturePrice,
		fmt.Sprintf("%s (minimum %s)", perUnit(fixtures, "fixtures", rate), money(minimum)))

	sqFt := in.Qty("nonBathroomSqFt")
	tier := stepTier(cfg, saniscrubArea)
	mode := stepMode(in, cfg, "nonBathroomMode", saniscrubArea)
	out.Lines.Add("nonBathroomArea", "Non-Bathroom Area", tier.Price(sqFt, mode), stepDetail(sqFt, tier, mode))

	trip := decimal.Zero
	if in.Any("fixtures", "nonBathroomSqFt") {
		trip = pricing.D(cfg.Get("tripCharge"))
	}
	out.Lines.Add("tripCharge", "Trip Charge", trip, "")

	if in.On("installation") {
		mult := cfg.Get("installMultiplier")
		out.FirstVisit = pricing.FirstVisit{
			Active:     mult > 0,
			Multiplier: mult,
			Detail:     fmt.Sprintf("installation %sx per-visit price", num(mult)),
		}
	}
	return out
}
