package services

import (
	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

const (
	mopExtraArea      = "extraArea"
	mopStandaloneArea = "standalone"
)

// Microfiber mopping: bathrooms bundled with restroom service, plus extra and standalone area.
func microfiberMopping() Rule {
	return Rule{
		ID:          "microfiberMopping",
		DisplayName: "Microfiber Mopping",
		Schema: schema(
			[]rates.Leaf{
				{Key: "includedBathroomRate", Legacy: "bathroomRate", Default: 10, Label: "Rate per bathroom"},
				{Key: "standalone.minimumCharge", Legacy: "standaloneMinimum", Default: 40, Label: "Standalone minimum"},
			},
			stepLeaves(mopExtraArea, "extraArea", "Extra area", 400, 100, 10),
			stepLeaves(mopStandaloneArea, "standalone", "Standalone", 200, 40, 10),
			visitLeaves(6, 4, 2, 1),
		),
		Qualifying:       []string{"bathrooms", "extraAreaSqFt", "standaloneSqFt"},
		DefaultFrequency: frequency.Weekly,
		FirstVisit:       billing.InstallOnly,
		CustomRows:       billing.TargetMonthly,
		Fields: map[string]string{
			"bathrooms":      "Bathrooms",
			"extraArea":      "Extra Area",
			"standaloneArea": "Standalone Area",
		},
		Price: priceMicrofiber,
	}
}

func priceMicrofiber(in pricing.Inputs, cfg rates.Config) pricing.Priced {
	var out pricing.Priced

	bathrooms := in.Qty("bathrooms")
	rate := cfg.Get("includedBathroomRate")
	out.Lines.Add("bathrooms", "Bathrooms", pricing.Mul(bathrooms, rate), perUnit(bathrooms, "bathrooms", rate))

	extra := in.Qty("extraAreaSqFt")
	extraTier := stepTier(cfg, mopExtraArea)
	extraMode := stepMode(in, cfg, "extraAreaMode", mopExtraArea)
	out.Lines.Add("extraArea", "Extra Area", extraTier.Price(extra, extraMode), stepDetail(extra, extraTier, extraMode))

	standalone := in.Qty("standaloneSqFt")
	standaloneTier := stepTier(cfg, mopStandaloneArea)
	standaloneMode := stepMode(in, cfg, "standaloneMode", mopStandaloneArea)
	standalonePrice := decimal.Zero
	if standalone > 0 {
		standalonePrice = decimal.Max(standaloneTier.Price(standalone, standaloneMode), pricing.D(cfg.Get("standalone.minimumCharge")))
	}
	out.Lines.Add("standaloneArea", "Standalone Area", standalonePrice, stepDetail(standalone, standaloneTier, standaloneMode))
	return out
}
