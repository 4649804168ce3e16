package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

const (
	insideBeltway  = "insideBeltway"
	outsideBeltway = "outsideBeltway"
)

// region normalizes the geography option.
func region(in pricing.Inputs) string {
	switch strings.ToLower(strings.TrimSpace(in.Option("region", insideBeltway))) {
	case "outside", "outsidebeltway", "outside-beltway", "outside_beltway":
		return outsideBeltway
	default:
		return insideBeltway
	}
}

// stepLeaves declares the three rates of a step-down tier plus its exact-calculation flag.
func stepLeaves(prefix, legacyPrefix, label string, unit, first, perUnit float64) []rates.Leaf {
	legacy := func(name string) string {
		if legacyPrefix == "" {
			return ""
		}
		return legacyPrefix + name
	}
	return []rates.Leaf{
		{Key: prefix + ".unitSqFt", Legacy: legacy("UnitSqFt"), Default: unit, Label: label + " sq ft per unit"},
		{Key: prefix + ".firstUnitRate", Legacy: legacy("FirstUnitRate"), Default: first, Label: label + " first unit rate"},
		{Key: prefix + ".perUnitRate", Legacy: legacy("AdditionalUnitRate"), Default: perUnit, Label: label + " per unit rate"},
		{Key: prefix + ".useExactCalculation", Default: 1, Label: label + " exact calculation"},
	}
}

func stepTier(cfg rates.Config, prefix string) pricing.StepTier {
	return pricing.StepTier{
		UnitSqFt:      cfg.Get(prefix + ".unitSqFt"),
		FirstUnitRate: cfg.Get(prefix + ".firstUnitRate"),
		PerUnitRate:   cfg.Get(prefix + ".perUnitRate"),
	}
}

// stepMode picks the mode for a line: the form option when set, else the config flag.
func stepMode(in pricing.Inputs, cfg rates.Config, option, prefix string) pricing.StepMode {
	return pricing.ParseStepMode(in.Option(option, ""), pricing.StepModeFromFlag(cfg.Get(prefix+".useExactCalculation")))
}

func stepDetail(sqFt float64, tier pricing.StepTier, mode pricing.StepMode) string {
	return fmt.Sprintf("%s sq ft (%s, %s for first %s sq ft, %s per %s sq ft)",
		num(sqFt), mode, money(tier.FirstUnitRate), num(tier.CoverageSqFt()), money(tier.PerUnitRate), num(tier.UnitSqFt))
}

func money(f float64) string {
	return pricing.Money(pricing.D(f))
}

func num(f float64) string {
	return decimal.NewFromFloat(f).String()
}

func perUnit(count float64, unit string, rate float64) string {
	return fmt.Sprintf("%s %s x %s", num(count), unit, money(rate))
}
