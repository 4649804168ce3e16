package quote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/audit"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/override"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/services"
)

const insideRate = "geographicPricing.insideBeltway.ratePerFixture"

func TestCascadeClearOnBaseInputChange(t *testing.T) {
	s := NewSession(rule(t, "saniclean"), nil, 12, zap.NewNop())
	s.SetQuantity("fixtures", 10)

	require.True(t, s.Pin(override.PerVisitPrice, 99))
	require.True(t, s.Pin("baseService", 55))
	require.True(t, s.Pin(insideRate, 8))

	edits := []func(){
		func() { s.SetQuantity("fixtures", 11) },
		func() { s.SetOption("region", "outside") },
		func() { s.SetToggle("parking", true) },
		func() { s.SetFrequency("biweekly") },
		func() { s.SetContractMonths(24) },
	}
	for _, edit := range edits {
		s.Pin(override.ContractTotal, 1)
		edit()
		f := s.Form()
		assert.Empty(t, f.Overrides)
		assert.Equal(t, 8.0, f.Rates[insideRate], "rate overrides survive input changes")
	}
}

func TestRefreshClearsEverything(t *testing.T) {
	s := NewSession(rule(t, "saniclean"), nil, 12, nil)
	s.SetQuantity("fixtures", 10)
	s.Pin(insideRate, 8)
	s.Pin(override.PerVisitPrice, 99)

	src := rates.StaticSource{"saniclean": {"geographicPricing": map[string]any{"insideBeltway": map[string]any{"ratePerFixture": 9.0}}}}
	eff := s.Refresh(context.Background(), rates.NewResolver(src, nil))

	assert.False(t, eff.UsingDefaults)
	f := s.Form()
	assert.Empty(t, f.Overrides)
	assert.Empty(t, f.Rates)
	money(t, 90, s.Result().Totals.PerVisit, "per visit at refreshed rate")
}

func TestLateFetchOrdering(t *testing.T) {
	r := rule(t, "saniclean")
	remote := rates.Resolve("saniclean", map[string]any{"insideBeltwayRatePerFixture": 9.0}, r.Schema)

	fresh := NewSession(r, nil, 12, nil)
	assert.True(t, fresh.ApplyFetched(remote, false), "new record takes fetched config")
	assert.Equal(t, 9.0, fresh.Effective().Config.Get(insideRate))

	saved := form("saniclean", frequency.Weekly, 12, map[string]float64{"fixtures": 10})
	existing := NewSession(r, &saved, 12, nil)
	existing.Pin(override.PerVisitPrice, 75)

	assert.False(t, existing.ApplyFetched(remote, false), "late fetch must not overwrite an existing record")
	assert.True(t, existing.Effective().UsingDefaults)
	money(t, 75, existing.Result().Totals.PerVisit, "in-progress edit kept")

	assert.True(t, existing.ApplyFetched(remote, true))
	money(t, 90, existing.Result().Totals.PerVisit, "forced refresh applies and clears")
}

func TestLoadInBackground(t *testing.T) {
	src := rates.StaticSource{"sanipod": {"tripCharge": 0.0}}
	s := NewSession(rule(t, "sanipod"), nil, 12, nil)

	<-s.Load(context.Background(), rates.NewResolver(src, zap.NewNop()))

	assert.False(t, s.Effective().UsingDefaults)
	s.SetQuantity("pods", 10)
	money(t, 70, s.Result().Totals.PerVisit, "per visit without trip")
}

func TestContractLinkTransitions(t *testing.T) {
	s := NewSession(rule(t, "saniclean"), nil, 24, nil)
	assert.Equal(t, NeverActivated, s.Link())

	s.SetGlobalContractMonths(18)
	s.SetQuantity("fixtures", 0)
	assert.Equal(t, NeverActivated, s.Link(), "zero is not a qualifying input")

	s.SetQuantity("fixtures", 4)
	assert.Equal(t, FollowingGlobal, s.Link())
	assert.Equal(t, 18, s.Form().ContractMonths, "adopts global on activation")

	s.SetGlobalContractMonths(30)
	assert.Equal(t, 30, s.Form().ContractMonths)

	s.SetContractMonths("6")
	assert.Equal(t, ExplicitlyOverridden, s.Link())
	s.SetGlobalContractMonths(12)
	assert.Equal(t, 6, s.Form().ContractMonths, "explicit length sticks")
}

func TestExplicitLengthBeforeActivationSticks(t *testing.T) {
	s := NewSession(rule(t, "sanipod"), nil, 24, nil)
	s.SetContractMonths(9)
	s.SetQuantity("pods", 3)

	assert.Equal(t, ExplicitlyOverridden, s.Link())
	assert.Equal(t, 9, s.Form().ContractMonths)
}

func TestChangeRecordingOnExistingRecord(t *testing.T) {
	saved := form("saniclean", frequency.Weekly, 12, map[string]float64{"fixtures": 10})
	s := NewSession(rule(t, "saniclean"), &saved, 12, nil)

	s.Pin(override.PerVisitPrice, 80)
	s.Pin(override.PerVisitPrice, 90)
	assert.False(t, s.Pin("noSuchField", 1))

	changes := s.PendingChanges()
	require.Len(t, changes, 1)
	c := changes[0]
	assert.Equal(t, override.PerVisitPrice, c.FieldKey)
	assert.Equal(t, "Per Visit Price", c.FieldDisplayName)
	assert.Equal(t, 70.0, c.OriginalValue)
	assert.Equal(t, 90.0, c.NewValue)
	assert.Equal(t, 10.0, c.Quantity)
	assert.Equal(t, frequency.Weekly, c.Frequency)

	s.Unpin(override.PerVisitPrice)
	assert.Empty(t, s.PendingChanges(), "back to baseline")

	s.Pin(insideRate, 7.5)
	var sink audit.MemorySink
	require.NoError(t, s.Flush(context.Background(), &sink))
	require.Len(t, sink.Changes(), 1)
	assert.Equal(t, "Inside beltway rate per fixture", sink.Changes()[0].FieldDisplayName)
}

func TestNewRecordAuditsRatesOnly(t *testing.T) {
	s := NewSession(rule(t, "saniclean"), nil, 12, nil)
	s.SetQuantity("fixtures", 10)

	s.Pin(override.PerVisitPrice, 80)
	assert.Empty(t, s.PendingChanges(), "computed figures of a new record have no baseline")

	s.Pin(insideRate, 8)
	require.Len(t, s.PendingChanges(), 1)
	assert.Equal(t, 7.0, s.PendingChanges()[0].OriginalValue)
}

func TestCascadeDropsPendingChanges(t *testing.T) {
	saved := form("saniclean", frequency.Weekly, 12, map[string]float64{"fixtures": 10})
	s := NewSession(rule(t, "saniclean"), &saved, 12, nil)
	s.Pin(override.ContractTotal, 5000)
	require.Len(t, s.PendingChanges(), 1)

	s.SetQuantity("fixtures", 12)
	assert.Empty(t, s.PendingChanges())
}

func TestAgreementProposal(t *testing.T) {
	a := NewAgreement(services.Default(), 12, nil)

	clean, err := a.Session("saniclean")
	require.NoError(t, err)
	clean.SetFrequency("weekly")
	clean.SetQuantity("fixtures", 3)

	pod, err := a.Session("sanipod")
	require.NoError(t, err)
	pod.SetQuantity("pods", 10)

	_, err = a.Session("carpetCleaning")
	require.NoError(t, err)

	_, err = a.Session("bogus")
	assert.ErrorIs(t, err, services.ErrUnknownService)

	a.LoadAll(context.Background(), rates.NewResolver(rates.StaticSource{"sanipod": {"tripCharge": 8.0}}, nil))

	p := a.Proposal()
	require.Len(t, p.Services, 2, "inactive services are left out")
	assert.Equal(t, "saniclean", p.Services[0].ServiceID)
	money(t, 40+78, p.PerVisitTotal, "per visit")
	money(t, 173.20+337.74, p.MonthlyRecurring, "monthly")
	assert.Equal(t, []string{"saniclean"}, p.UsingDefaults)

	a.SetGlobalContractMonths(24)
	assert.Equal(t, 24, clean.Form().ContractMonths)
	assert.Equal(t, 24, a.Proposal().ContractMonths)
}

func TestAgreementOpenExisting(t *testing.T) {
	a := NewAgreement(services.Default(), 12, nil)
	saved := form("sanipod", frequency.Monthly, 6, map[string]float64{"pods": 4})

	s, err := a.Open(saved)
	require.NoError(t, err)
	assert.Equal(t, ExplicitlyOverridden, s.Link())

	a.SetGlobalContractMonths(24)
	assert.Equal(t, 6, s.Form().ContractMonths)
}

func TestAssembleStatelessForms(t *testing.T) {
	forms := []FormState{
		form("saniclean", frequency.Weekly, 12, map[string]float64{"fixtures": 3}),
		form("sanipod", frequency.Weekly, 24, map[string]float64{"pods": 10}),
		form("carpetCleaning", frequency.Quarterly, 12, nil),
	}
	r := rates.NewResolver(rates.StaticSource{"sanipod": {"tripCharge": 8.0}}, nil)

	p, err := Assemble(context.Background(), services.Default(), r, forms, 18)
	require.NoError(t, err)
	require.Len(t, p.Services, 2)
	assert.Equal(t, 24, p.Services[1].ContractMonths, "each form keeps its own length")
	assert.Equal(t, 18, p.ContractMonths)
	money(t, 118, p.PerVisitTotal, "per visit")
	assert.Equal(t, []string{"saniclean"}, p.UsingDefaults)

	_, err = Assemble(context.Background(), services.Default(), r, []FormState{NewForm("nope", "", 12)}, 12)
	assert.ErrorIs(t, err, services.ErrUnknownService)
}

func TestSessionFromResolvedConfigBaselines(t *testing.T) {
	r := rule(t, "saniclean")
	eff := rates.Resolve("saniclean", map[string]any{"insideBeltwayRatePerFixture": 9.0}, r.Schema)
	saved := form("saniclean", frequency.Weekly, 12, map[string]float64{"fixtures": 10})

	s := NewSessionFrom(r, &saved, eff, 12, nil)
	assert.False(t, s.Effective().UsingDefaults)
	money(t, 90, s.Result().Totals.PerVisit, "priced from resolved config")

	s.Pin(override.PerVisitPrice, 95)
	require.Len(t, s.PendingChanges(), 1)
	assert.Equal(t, 90.0, s.PendingChanges()[0].OriginalValue)
}

func TestPinAcceptsWireNames(t *testing.T) {
	saved := form("saniclean", frequency.Weekly, 12, map[string]float64{"fixtures": 10})
	s := NewSession(rule(t, "saniclean"), &saved, 12, nil)

	require.True(t, s.Pin(override.CustomName(override.PerVisitPrice), 85))
	assert.Equal(t, 85.0, s.Form().Overrides[override.PerVisitPrice])
	money(t, 85, s.Result().Totals.PerVisit, "wire name pins the figure")

	changes := s.PendingChanges()
	require.Len(t, changes, 1)
	assert.Equal(t, override.PerVisitPrice, changes[0].FieldKey)

	s.Unpin(override.CustomName(override.PerVisitPrice))
	assert.Empty(t, s.Form().Overrides)
	assert.Empty(t, s.PendingChanges())

	assert.False(t, s.Pin("customNoSuchField", 1))
}

func TestUnchangedInputsKeepOverrides(t *testing.T) {
	s := NewSession(rule(t, "saniclean"), nil, 12, nil)
	s.SetQuantity("fixtures", 10)
	s.SetOption("region", "inside")
	s.SetFrequency("weekly")
	s.SetContractMonths(12)
	require.True(t, s.Pin(override.PerVisitPrice, 99))

	s.SetQuantity("fixtures", "10")
	s.SetOption("region", "inside")
	s.SetToggle("parking", false)
	s.SetFrequency("Weekly")
	s.SetContractMonths(12)

	assert.Equal(t, 99.0, s.Form().Overrides[override.PerVisitPrice])
	money(t, 99, s.Result().Totals.PerVisit, "override kept")

	s.SetToggle("parking", true)
	assert.Empty(t, s.Form().Overrides)
}
