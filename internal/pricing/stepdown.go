package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// StepMode selects how area above the minimum coverage is charged.
type StepMode string

const (
	// StepExact charges ceil(sqFt / unitSqFt) units over the whole area.
	StepExact StepMode = "exact"
	// StepDirect adds incremental per-square-foot cost above the coverage boundary.
	StepDirect StepMode = "direct"
)

// ParseStepMode reads a form value; anything unrecognized yields fallback.
func ParseStepMode(s string, fallback StepMode) StepMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact", "step", "stepdown", "step-down":
		return StepExact
	case "direct", "incremental":
		return StepDirect
	default:
		return fallback
	}
}

// StepModeFromFlag maps a numeric config flag (1 = exact) to a mode.
func StepModeFromFlag(flag float64) StepMode {
	if flag >= 1 {
		return StepExact
	}
	return StepDirect
}

// StepTier describes step-down area pricing: a flat first-unit price that covers a block of
// area, and a per-unit price for every unitSqFt above it.
type StepTier struct {
	UnitSqFt      float64
	FirstUnitRate float64
	PerUnitRate   float64
}

// UnitsInMinimum is how many per-unit blocks the first-unit price pays for.
func (t StepTier) UnitsInMinimum() float64 {
	if t.PerUnitRate <= 0 {
		return 0
	}
	return math.Floor(t.FirstUnitRate / t.PerUnitRate)
}

// CoverageSqFt is the area included in the first-unit price.
func (t StepTier) CoverageSqFt() float64 {
	return t.UnitsInMinimum() * t.UnitSqFt
}

// Price charges sqFt square feet under the given mode. Empty areas cost nothing.
func (t StepTier) Price(sqFt float64, mode StepMode) decimal.Decimal {
	if sqFt <= 0 {
		return decimal.Zero
	}
	if t.UnitSqFt <= 0 || t.PerUnitRate <= 0 {
		return D(t.FirstUnitRate)
	}

	coverage := t.CoverageSqFt()
	if sqFt <= coverage {
		return D(t.FirstUnitRate)
	}

	if mode == StepExact {
		units := D(sqFt).Div(D(t.UnitSqFt)).Ceil()
		return units.Mul(D(t.PerUnitRate))
	}

	perSqFt := D(t.PerUnitRate).Div(D(t.UnitSqFt))
	return D(t.FirstUnitRate).Add(D(sqFt - coverage).Mul(perSqFt))
}
