package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

// Electrostatic disinfection, priced by room count or by floor area.
func electrostaticSpray() Rule {
	return Rule{
		ID:          "electrostaticSpray",
		DisplayName: "Electrostatic Spray",
		Schema: schema(
			[]rates.Leaf{
				{Key: "ratePerRoom", Legacy: "roomRate", Default: 20, Label: "Rate per room"},
				{Key: "ratePerThousandSqFt", Legacy: "sqFtRate", Default: 50, Label: "Rate per 1000 sq ft"},
				{Key: "minimumChargePerVisit", Legacy: "minimumCharge", Default: 50, Label: "Per-visit minimum"},
				{Key: "tripCharges.insideBeltway", Legacy: "insideBeltwayTripCharge", Default: 0, Label: "Inside beltway trip charge"},
				{Key: "tripCharges.outsideBeltway", Legacy: "outsideBeltwayTripCharge", Default: 10, Label: "Outside beltway trip charge"},
			},
			// Bimonthly spraying was counted as five visits a year.
			visitLeaves(5, 4, 2, 1),
		),
		Qualifying:       []string{"rooms", "sqFt"},
		Selected: func(in pricing.Inputs) []string {
			if sprayBySqFt(in) {
				return []string{"sqFt"}
			}
			return []string{"rooms"}
		},
		DefaultFrequency: frequency.Monthly,
		FirstVisit:       billing.InstallOnly,
		CustomRows:       billing.TargetContract,
		Fields: map[string]string{
			"service":    "Spray Service",
			"tripCharge": "Trip Charge",
		},
		Price: priceElectrostatic,
	}
}

func priceElectrostatic(in pricing.Inputs, cfg rates.Config) pricing.Priced {
	var out pricing.Priced

	var subtotal decimal.Decimal
	var detail string
	if sprayBySqFt(in) {
		sqFt, rate := in.Qty("sqFt"), cfg.Get("ratePerThousandSqFt")
		subtotal = pricing.D(sqFt).Div(decimal.NewFromInt(1000)).Mul(pricing.D(rate))
		detail = fmt.Sprintf("%s sq ft at %s per 1000 sq ft", num(sqFt), money(rate))
	} else {
		rooms, rate := in.Qty("rooms"), cfg.Get("ratePerRoom")
		subtotal = pricing.Mul(rooms, rate)
		detail = perUnit(rooms, "rooms", rate)
	}

	active := subtotal.IsPositive()
	if minimum := pricing.D(cfg.Get("minimumChargePerVisit")); active && subtotal.LessThan(minimum) {
		subtotal = minimum
		detail += fmt.Sprintf(" (minimum %s)", pricing.Money(minimum))
	}
	out.Lines.Add("service", "Spray Service", subtotal, detail)

	reg := region(in)
	trip := decimal.Zero
	if active {
		trip = pricing.D(cfg.Get("tripCharges." + reg))
	}
	out.Lines.Add("tripCharge", "Trip Charge", trip, reg)
	return out
}

func sprayBySqFt(in pricing.Inputs) bool {
	return strings.EqualFold(in.Option("method", "rooms"), "sqft")
}
