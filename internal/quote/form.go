package quote

import (
	"encoding/json"
	"maps"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/override"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
)

// FormState is the user-owned state of one service on an agreement.
type FormState struct {
	ServiceID      string
	Quantities     map[string]float64
	Options        map[string]string
	Toggles        map[string]bool
	Frequency      frequency.Key
	ContractMonths int
	// Overrides pins computed figures: component lines and aggregates.
	Overrides override.Set
	// Rates pins rate leaves by key.
	Rates      override.Set
	CustomRows []pricing.CustomRow
}

// NewForm returns an empty form for a service.
func NewForm(serviceID string, freq frequency.Key, months int) FormState {
	return FormState{
		ServiceID:      serviceID,
		Quantities:     map[string]float64{},
		Options:        map[string]string{},
		Toggles:        map[string]bool{},
		Frequency:      freq,
		ContractMonths: override.ClampMonths(months),
		Overrides:      override.Set{},
		Rates:          override.Set{},
	}
}

// Inputs returns the pricing inputs of the form.
func (f FormState) Inputs() pricing.Inputs {
	return pricing.Inputs{
		Quantities: f.Quantities,
		Options:    f.Options,
		Toggles:    f.Toggles,
		Frequency:  f.Frequency,
	}
}

// Clone deep-copies the form.
func (f FormState) Clone() FormState {
	out := f
	out.Quantities = maps.Clone(f.Quantities)
	out.Options = maps.Clone(f.Options)
	out.Toggles = maps.Clone(f.Toggles)
	out.Overrides = f.Overrides.Clone()
	out.Rates = f.Rates.Clone()
	out.CustomRows = append([]pricing.CustomRow(nil), f.CustomRows...)
	return out
}

// wireForm is the JSON shape forms travel in. Numbers may arrive as text.
type wireForm struct {
	ServiceID      string              `json:"serviceId"`
	Quantities     map[string]any      `json:"quantities,omitempty"`
	Options        map[string]string   `json:"options,omitempty"`
	Toggles        map[string]bool     `json:"toggles,omitempty"`
	Frequency      string              `json:"frequency,omitempty"`
	ContractMonths any                 `json:"contractMonths,omitempty"`
	Overrides      map[string]any      `json:"overrides,omitempty"`
	Rates          map[string]any      `json:"rates,omitempty"`
	CustomRows     []pricing.CustomRow `json:"customRows,omitempty"`
}

// UnmarshalJSON coerces loosely typed form input: text numbers are parsed, bad numbers become
// zero, contract months are clamped, and unknown frequencies fall back to weekly. Overrides use
// their customX names.
func (f *FormState) UnmarshalJSON(b []byte) error {
	var w wireForm
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*f = FormState{
		ServiceID:      w.ServiceID,
		Quantities:     make(map[string]float64, len(w.Quantities)),
		Options:        w.Options,
		Toggles:        w.Toggles,
		Frequency:      frequency.Parse(w.Frequency),
		ContractMonths: override.ContractMonths(w.ContractMonths),
		Overrides:      override.FromWire(w.Overrides),
		Rates:          make(override.Set, len(w.Rates)),
		CustomRows:     w.CustomRows,
	}
	if w.Frequency == "" {
		f.Frequency = ""
	}
	for k, v := range w.Quantities {
		f.Quantities[k] = override.Number(v)
	}
	for k, v := range w.Rates {
		if v == nil {
			continue
		}
		f.Rates[k] = override.Number(v)
	}
	if f.Options == nil {
		f.Options = map[string]string{}
	}
	if f.Toggles == nil {
		f.Toggles = map[string]bool{}
	}
	return nil
}

func (f FormState) MarshalJSON() ([]byte, error) {
	w := wireForm{
		ServiceID:      f.ServiceID,
		Options:        f.Options,
		Toggles:        f.Toggles,
		Frequency:      string(f.Frequency),
		ContractMonths: f.ContractMonths,
		CustomRows:     f.CustomRows,
	}
	if len(f.Quantities) > 0 {
		w.Quantities = make(map[string]any, len(f.Quantities))
		for k, v := range f.Quantities {
			w.Quantities[k] = v
		}
	}
	if len(f.Overrides) > 0 {
		w.Overrides = make(map[string]any, len(f.Overrides))
		for k, v := range override.ToWire(f.Overrides) {
			w.Overrides[k] = v
		}
	}
	if len(f.Rates) > 0 {
		w.Rates = make(map[string]any, len(f.Rates))
		for k, v := range f.Rates {
			w.Rates[k] = v
		}
	}
	return json.Marshal(w)
}
