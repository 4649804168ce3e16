package quote

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/override"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/services"
)

func rule(t *testing.T, id string) services.Rule {
	t.Helper()
	r, err := services.Default().Get(id)
	require.NoError(t, err)
	return r
}

func form(id string, freq frequency.Key, months int, qty map[string]float64) FormState {
	f := NewForm(id, freq, months)
	for k, v := range qty {
		f.Quantities[k] = v
	}
	return f
}

func money(t *testing.T, want float64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.Truef(t, got.Equal(decimal.NewFromFloat(want)), "%s: got %s, want %v", msg, got, want)
}

func TestComputeSanicleanWeekly(t *testing.T) {
	r := rule(t, "saniclean")
	res := Compute(r, form("saniclean", frequency.Weekly, 12, map[string]float64{"fixtures": 3}), r.Schema.Defaults())

	assert.True(t, res.Active)
	money(t, 40, res.Totals.PerVisit, "per visit")
	money(t, 173.20, res.Totals.MonthlyRecurring, "monthly")
	money(t, 2078.40, res.Totals.ContractTotal, "contract")
	assert.NotEmpty(t, res.Details)
}

func TestComputeUsesRuleDefaultFrequency(t *testing.T) {
	r := rule(t, "carpetCleaning")
	f := form("carpetCleaning", "", 12, map[string]float64{"carpetSqFt": 400})

	res := Compute(r, f, r.Schema.Defaults())
	assert.Equal(t, frequency.Quarterly, res.Totals.Frequency)
}

func TestComputeInstallPlusService(t *testing.T) {
	r := rule(t, "carpetCleaning")
	f := form("carpetCleaning", frequency.Quarterly, 12, map[string]float64{"carpetSqFt": 400})
	f.Toggles["installation"] = true

	res := Compute(r, f, r.Schema.Defaults())

	money(t, 250, res.Totals.PerVisit, "per visit")
	money(t, 1000, res.Totals.FirstVisit, "install 3x plus the regular visit")
	assert.Equal(t, 3, res.Totals.TotalVisits, "carpet counts quarterly as three visits")
	money(t, 1500, res.Totals.ContractTotal, "contract")
}

func TestComputePartialInstallFirstMonth(t *testing.T) {
	r := rule(t, "foamingDrain")
	res := Compute(r, form("foamingDrain", frequency.Weekly, 12, map[string]float64{"drains": 12, "installedDrains": 4}), r.Schema.Defaults())

	money(t, 94, res.Totals.PerVisit, "per visit")
	money(t, 146, res.Totals.FirstVisit, "first visit")
	money(t, 407.02, res.Totals.MonthlyRecurring, "monthly")
	money(t, 459.02, res.Totals.FirstMonthTotal, "first month")
	money(t, 4936.24, res.Totals.ContractTotal, "contract")
}

func TestComponentAndAggregateOverridesCoexist(t *testing.T) {
	r := rule(t, "saniclean")
	f := form("saniclean", frequency.Weekly, 12, map[string]float64{"fixtures": 3})
	f.Overrides.Pin("baseService", 50)

	res := Compute(r, f, r.Schema.Defaults())
	money(t, 50, res.Totals.PerVisit, "component pin feeds per visit")
	assert.Equal(t, []string{"baseService"}, res.Pinned)

	f.Overrides.Pin(override.PerVisitPrice, 60)
	res = Compute(r, f, r.Schema.Defaults())
	money(t, 60, res.Totals.PerVisit, "per-visit pin wins its output")
	line, _ := res.Breakdown.Get("baseService")
	money(t, 50, line.Amount, "component pin still reported")
	calc, _ := res.Calculated.Get("baseService")
	money(t, 40, calc.Amount, "calculated value kept for transparency")
}

func TestOverrideRoundTrip(t *testing.T) {
	r := rule(t, "microfiberMopping")
	f := form("microfiberMopping", frequency.Biweekly, 18, map[string]float64{"bathrooms": 3, "extraAreaSqFt": 5000})
	cfg := r.Schema.Defaults()
	original := Compute(r, f, cfg)

	for field, v := range original.Figures() {
		pinned := f.Clone()
		pinned.Overrides.Pin(field, v)
		assert.Equal(t, original.Totals, Compute(r, pinned, cfg).Totals, "pinning %s to itself", field)

		pinned.Overrides.Unpin(field)
		assert.Equal(t, original.Totals, Compute(r, pinned, cfg).Totals, "unpinning %s", field)
	}
}

func TestRateOverridesApplyBeforePricing(t *testing.T) {
	r := rule(t, "saniclean")
	f := form("saniclean", frequency.Weekly, 12, map[string]float64{"fixtures": 10})
	f.Rates.Pin("geographicPricing.insideBeltway.ratePerFixture", 8)

	money(t, 80, Compute(r, f, r.Schema.Defaults()).Totals.PerVisit, "per visit")
}

func TestCustomRowsAddFlat(t *testing.T) {
	r := rule(t, "saniclean")
	f := form("saniclean", frequency.Weekly, 12, map[string]float64{"fixtures": 3})
	f.CustomRows = []pricing.CustomRow{
		{Label: "Deep clean", Kind: pricing.RowMoney, Amount: 100},
		{Label: "Note", Kind: pricing.RowText, Text: "after hours"},
	}

	res := Compute(r, f, r.Schema.Defaults())
	money(t, 173.20, res.Totals.MonthlyRecurring, "monthly untouched")
	money(t, 2078.40+100, res.Totals.ContractTotal, "contract")
	assert.Contains(t, res.Details, "Deep clean: $100.00")
	assert.Contains(t, res.Details, "Note: after hours")
}

func TestFormStateJSONCoercion(t *testing.T) {
	src := `{
		"serviceId": "saniclean",
		"quantities": {"fixtures": "3", "urinals": -2, "dispensers": "abc"},
		"frequency": "fortnightly",
		"contractMonths": "40",
		"overrides": {"customPerVisitPrice": "$45", "customContractTotal": "", "notAnOverride": 3},
		"rates": {"tripCharge": "12"}
	}`
	var f FormState
	require.NoError(t, json.Unmarshal([]byte(src), &f))

	assert.Equal(t, 3.0, f.Quantities["fixtures"])
	assert.Equal(t, 0.0, f.Quantities["urinals"])
	assert.Equal(t, 0.0, f.Quantities["dispensers"])
	assert.Equal(t, frequency.Weekly, f.Frequency)
	assert.Equal(t, 36, f.ContractMonths)
	assert.Equal(t, override.Set{override.PerVisitPrice: 45}, f.Overrides)
	assert.Equal(t, override.Set{"tripCharge": 12}, f.Rates)

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"customPerVisitPrice":45`)

	var empty FormState
	require.NoError(t, json.Unmarshal([]byte(`{"serviceId":"sanipod"}`), &empty))
	assert.Equal(t, frequency.Key(""), empty.Frequency)
	assert.Equal(t, override.DefaultContractMonths, empty.ContractMonths)
}

func TestSummary(t *testing.T) {
	r := rule(t, "sanipod")
	s := Compute(r, form("sanipod", frequency.Weekly, 12, map[string]float64{"pods": 10}), r.Schema.Defaults()).Summary()

	assert.Equal(t, "sanipod", s.ServiceID)
	assert.Equal(t, "SaniPod", s.DisplayName)
	money(t, 78, s.PerVisitPrice, "per visit")
	money(t, 337.74, s.MonthlyRecurring, "monthly")
	assert.NotEmpty(t, s.DetailsBreakdown)
}
