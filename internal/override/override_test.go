package override

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalPrefersPinnedValue(t *testing.T) {
	calc := decimal.NewFromFloat(42.5)

	var s Set
	assert.True(t, s.Decimal(PerVisitPrice, calc).Equal(calc))

	s.Pin(PerVisitPrice, 60)
	assert.True(t, s.Decimal(PerVisitPrice, calc).Equal(decimal.NewFromInt(60)))
	assert.True(t, s.Decimal(ContractTotal, calc).Equal(calc), "other fields stay calculated")
}

func TestPinThenUnpinRoundTrips(t *testing.T) {
	calc := decimal.RequireFromString("216.50")
	s := Set{}

	s.Pin(MonthlyRecurring, calc.InexactFloat64())
	require.True(t, s.Decimal(MonthlyRecurring, calc).Equal(calc))

	s.Unpin(MonthlyRecurring)
	require.False(t, s.Has(MonthlyRecurring))
	require.True(t, s.Decimal(MonthlyRecurring, calc).Equal(calc))
}

func TestPinCoercesNegative(t *testing.T) {
	s := Set{}
	s.Pin("tripCharge", -12)
	v, ok := s.Get("tripCharge")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestWireNames(t *testing.T) {
	assert.Equal(t, "customPerVisitPrice", CustomName(PerVisitPrice))
	assert.Equal(t, "customBaseService", CustomName("baseService"))

	field, ok := FieldName("customExtraAreaPrice")
	require.True(t, ok)
	assert.Equal(t, "extraAreaPrice", field)

	_, ok = FieldName("customer")
	assert.False(t, ok)
	_, ok = FieldName("perVisitPrice")
	assert.False(t, ok)
}

func TestFromWire(t *testing.T) {
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"customPerVisitPrice": "120.50",
		"customTripCharge": 0,
		"customContractTotal": "",
		"customMonthlyRecurring": null,
		"customBaseService": "abc",
		"notes": "ignored"
	}`), &payload))

	s := FromWire(payload)
	assert.Equal(t, Set{
		PerVisitPrice: 120.5,
		"tripCharge":  0,
		"baseService": 0,
	}, s)

	wire := ToWire(s)
	assert.Equal(t, 120.5, wire["customPerVisitPrice"])
}

func TestFieldsSorted(t *testing.T) {
	s := Set{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, s.Fields())
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 12.5, 12.5},
		{"int", 3, 3},
		{"text", "7", 7},
		{"currency text", "$1,250.75", 1250.75},
		{"empty", "", 0},
		{"garbage", "ten", 0},
		{"negative", -4.0, 0},
		{"negative text", "-4", 0},
		{"json number", json.Number("9.5"), 9.5},
		{"bool", true, 1},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.in))
		})
	}
}

func TestContractMonths(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"in range", 24, 24},
		{"too small", 1, 2},
		{"too large", 60, 36},
		{"text", "18", 18},
		{"negative", -5, 2},
		{"float rounds", 11.6, 12},
		{"garbage text", "forever", DefaultContractMonths},
		{"nil", nil, DefaultContractMonths},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContractMonths(tt.in))
		})
	}
}
