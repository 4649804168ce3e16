// Package override resolves user-pinned values against calculated ones.
//
// Every computed quantity X may carry a pinned value customX. The effective value of X is the
// pinned value when one is present and the calculated value otherwise. Sets are keyed by the
// calculated field name ("perVisitPrice"); CustomName and FieldName translate to and from the
// wire names used by forms ("customPerVisitPrice").
package override

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Aggregate-level fields shared by every service.
const (
	PerVisitPrice    = "perVisitPrice"
	FirstVisitPrice  = "firstVisitPrice"
	MonthlyRecurring = "monthlyRecurring"
	FirstMonthTotal  = "firstMonthTotal"
	ContractTotal    = "contractTotal"
)

const customPrefix = "custom"

// Set holds pinned values keyed by calculated field name. A missing key means the calculated
// value is authoritative.
type Set map[string]float64

// Get returns the pinned value for field.
func (s Set) Get(field string) (float64, bool) {
	v, ok := s[field]
	return v, ok
}

func (s Set) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// Pin records v as the value for field. Negative values are coerced to zero.
func (s *Set) Pin(field string, v float64) {
	if *s == nil {
		*s = make(Set)
	}
	(*s)[field] = nonNegative(v)
}

// Unpin drops the pinned value for field.
func (s Set) Unpin(field string) {
	delete(s, field)
}

// Reset drops every pinned value.
func (s Set) Reset() {
	for k := range s {
		delete(s, k)
	}
}

func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Fields returns the pinned field names in sorted order.
func (s Set) Fields() []string {
	keys := lo.Keys(s)
	sort.Strings(keys)
	return keys
}

// Decimal returns the effective value of field given its calculated value.
func (s Set) Decimal(field string, calculated decimal.Decimal) decimal.Decimal {
	if v, ok := s[field]; ok {
		return decimal.NewFromFloat(v)
	}
	return calculated
}

// Float is Decimal for plain float values (rates, quantities).
func (s Set) Float(field string, calculated float64) float64 {
	if v, ok := s[field]; ok {
		return v
	}
	return calculated
}

// CustomName returns the wire name of the override paired with field.
func CustomName(field string) string {
	if field == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(field)
	return customPrefix + string(unicode.ToUpper(r)) + field[size:]
}

// FieldName maps a wire override name back to its calculated field name.
func FieldName(custom string) (string, bool) {
	rest, ok := strings.CutPrefix(custom, customPrefix)
	if !ok || rest == "" {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(rest)
	if !unicode.IsUpper(r) {
		return "", false
	}
	return string(unicode.ToLower(r)) + rest[size:], true
}

// FromWire builds a Set from a form payload keyed by wire names. Keys that are not
// customX names are ignored. Nil and empty-string values leave the field unpinned; any other
// value goes through Number.
func FromWire(values map[string]any) Set {
	out := make(Set)
	for k, raw := range values {
		field, ok := FieldName(k)
		if !ok || isBlank(raw) {
			continue
		}
		out[field] = Number(raw)
	}
	return out
}

// ToWire is the inverse of FromWire.
func ToWire(s Set) map[string]float64 {
	return lo.MapKeys(s, func(_ float64, field string) string {
		return CustomName(field)
	})
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	default:
		return false
	}
}
