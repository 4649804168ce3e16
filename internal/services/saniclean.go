package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

// Restroom sanitation, priced per fixture by region.
func saniclean() Rule {
	return Rule{
		ID:          "saniclean",
		DisplayName: "SaniClean",
		Schema: schema(
			[]rates.Leaf{
				{Key: "geographicPricing.insideBeltway.ratePerFixture", Legacy: "insideBeltwayRatePerFixture", Default: 7, Label: "Inside beltway rate per fixture"},
				{Key: "geographicPricing.insideBeltway.weeklyMinimum", Legacy: "insideBeltwayMinimum", Default: 40, Label: "Inside beltway minimum"},
				{Key: "geographicPricing.insideBeltway.tripCharge", Legacy: "insideBeltwayTripCharge", Default: 0, Label: "Inside beltway trip charge"},
				{Key: "geographicPricing.outsideBeltway.ratePerFixture", Legacy: "outsideBeltwayRatePerFixture", Default: 6, Label: "Outside beltway rate per fixture"},
				{Key: "geographicPricing.outsideBeltway.weeklyMinimum", Legacy: "outsideBeltwayMinimum", Default: 0, Label: "Outside beltway minimum"},
				{Key: "geographicPricing.outsideBeltway.tripCharge", Legacy: "outsideBeltwayTripCharge", Default: 8, Label: "Outside beltway trip charge"},
				{Key: "smallFacility.fixtureThreshold", Legacy: "smallFacilityThreshold", Default: 2, Label: "Small facility fixture threshold"},
				{Key: "smallFacility.minimumWithTrip", Legacy: "smallFacilityMinimum", Default: 50, Label: "Small facility minimum (incl. trip)"},
				{Key: "facilityComponents.urinals.ratePerUnit", Legacy: "urinalScreenRate", Default: 8, Label: "Urinal screen rate"},
				{Key: "facilityComponents.dispensers.ratePerUnit", Legacy: "dispenserRate", Default: 2, Label: "Dispenser service rate"},
				{Key: "parking.chargePerVisit", Legacy: "parkingCharge", Default: 7, Label: "Parking charge"},
			},
			visitLeaves(6, 4, 2, 1),
		),
		Qualifying:       []string{"fixtures", "urinals", "dispensers"},
		DefaultFrequency: frequency.Weekly,
		FirstVisit:       billing.InstallOnly,
		CustomRows:       billing.TargetContract,
		Fields: map[string]string{
			"baseService":        "Base Service",
			"facilityComponents": "Facility Components",
			"tripCharge":         "Trip Charge",
			"parking":            "Parking",
		},
		Price: priceSaniclean,
	}
}

func priceSaniclean(in pricing.Inputs, cfg rates.Config) pricing.Priced {
	var out pricing.Priced
	reg := region(in)
	prefix := "geographicPricing." + reg

	fixtures := in.Qty("fixtures")
	rate := cfg.Get(prefix + ".ratePerFixture")
	minimum := cfg.Get(prefix + ".weeklyMinimum")
	trip := pricing.D(cfg.Get(prefix + ".tripCharge"))

	base := decimal.Zero
	var detail string
	switch {
	case fixtures <= 0:
	case pricing.SmallAccount(fixtures, cfg.Get("smallFacility.fixtureThreshold")):
		base = pricing.D(cfg.Get("smallFacility.minimumWithTrip"))
		trip = decimal.Zero
		detail = fmt.Sprintf("small facility (%s fixtures): flat %s incl. trip", num(fixtures), pricing.Money(base))
		out.Notes = append(out.Notes, "Small facility minimum applied; trip charge included")
	default:
		base = pricing.FlatWithMinimum(fixtures, rate, minimum)
		detail = perUnit(fixtures, "fixtures", rate)
		if minimum > 0 {
			detail += fmt.Sprintf(" (minimum %s)", money(minimum))
		}
	}
	if !in.Any("fixtures", "urinals", "dispensers") {
		trip = decimal.Zero
	}
	out.Lines.Add("baseService", "Base Service", base, detail)

	urinals, dispensers := in.Qty("urinals"), in.Qty("dispensers")
	urinalRate := cfg.Get("facilityComponents.urinals.ratePerUnit")
	dispenserRate := cfg.Get("facilityComponents.dispensers.ratePerUnit")
	components := pricing.Mul(urinals, urinalRate).Add(pricing.Mul(dispensers, dispenserRate))
	out.Lines.Add("facilityComponents", "Facility Components", components,
		perUnit(urinals, "urinal screens", urinalRate)+", "+perUnit(dispensers, "dispensers", dispenserRate))

	out.Lines.Add("tripCharge", "Trip Charge", trip, reg)

	parking := decimal.Zero
	if in.On("parking") {
		parking = pricing.D(cfg.Get("parking.chargePerVisit"))
	}
	out.Lines.Add("parking", "Parking", parking, "")
	return out
}
