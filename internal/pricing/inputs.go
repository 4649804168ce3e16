package pricing

import (
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
)

// Inputs are the user-entered values a pricing rule reads.
type Inputs struct {
	Quantities map[string]float64
	Options    map[string]string
	Toggles    map[string]bool
	Frequency  frequency.Key
}

// Qty returns a quantity input, treating missing and negative values as zero.
func (in Inputs) Qty(name string) float64 {
	v := in.Quantities[name]
	if v < 0 {
		return 0
	}
	return v
}

// Option returns a selection input or fallback when unset.
func (in Inputs) Option(name, fallback string) string {
	if v, ok := in.Options[name]; ok && v != "" {
		return v
	}
	return fallback
}

// On reports whether a toggle input is set.
func (in Inputs) On(name string) bool {
	return in.Toggles[name]
}

// Any reports whether any of the named quantities is positive.
func (in Inputs) Any(names ...string) bool {
	for _, n := range names {
		if in.Qty(n) > 0 {
			return true
		}
	}
	return false
}
