// Package services holds the pricing rule of every service line.
//
// A Rule is a data descriptor: its rate schema, the inputs that make the service active, its
// first-visit convention, where custom rows land, and one pure pricing function built from the
// shared algorithms in package pricing.
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/override"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

// ErrUnknownService is returned for ids outside the catalog.
var ErrUnknownService = errors.New("unknown service")

// PriceFunc turns inputs and an effective config into per-visit lines.
type PriceFunc func(in pricing.Inputs, cfg rates.Config) pricing.Priced

// Rule describes one service line.
type Rule struct {
	ID          string
	DisplayName string
	Schema      rates.Schema
	// Qualifying lists the quantity inputs that make the service active when any is positive.
	Qualifying       []string
	// Selected narrows Qualifying to the inputs the current options price. Optional.
	Selected         func(in pricing.Inputs) []string
	DefaultFrequency frequency.Key
	FirstVisit       billing.FirstVisitMode
	CustomRows       billing.Target
	// Fields names the overridable component lines, keyed by line key.
	Fields map[string]string
	Price  PriceFunc
}

// Active reports whether any qualifying input is positive.
func (r Rule) Active(in pricing.Inputs) bool {
	return in.Any(r.qualifying(in)...)
}

// QualifyingCount sums the qualifying inputs; used as the quantity of audit entries.
func (r Rule) QualifyingCount(in pricing.Inputs) float64 {
	return lo.SumBy(r.qualifying(in), in.Qty)
}

func (r Rule) qualifying(in pricing.Inputs) []string {
	if r.Selected != nil {
		return r.Selected(in)
	}
	return r.Qualifying
}

// VisitsPerYear returns the service's own visit count for a visit-based frequency, or 0 when it
// carries none and the frequency table applies.
func (r Rule) VisitsPerYear(cfg rates.Config, f frequency.Key) float64 {
	return cfg.Get(visitLeafKey(f))
}

var aggregateFields = map[string]string{
	override.PerVisitPrice:    "Per Visit Price",
	override.FirstVisitPrice:  "First Visit Price",
	override.MonthlyRecurring: "Monthly Recurring",
	override.FirstMonthTotal:  "First Month Total",
	override.ContractTotal:    "Contract Total",
}

// FieldDisplayName names an overridable field for people: a component line, an aggregate
// figure, or a rate leaf.
func (r Rule) FieldDisplayName(field string) string {
	if name, ok := r.Fields[field]; ok {
		return name
	}
	if name, ok := aggregateFields[field]; ok {
		return name
	}
	if leaf, ok := r.Schema.Leaf(field); ok && leaf.Label != "" {
		return leaf.Label
	}
	return field
}

// IsRate reports whether field is a rate leaf rather than a computed figure.
func (r Rule) IsRate(field string) bool {
	_, ok := r.Schema.Leaf(field)
	return ok
}

// Validate checks the descriptor is usable.
func (r Rule) Validate() error {
	switch {
	case r.ID == "":
		return errors.New("rule without id")
	case r.Price == nil:
		return fmt.Errorf("rule %s: no pricing function", r.ID)
	case len(r.Qualifying) == 0:
		return fmt.Errorf("rule %s: no qualifying inputs", r.ID)
	}
	seen := map[string]bool{}
	for _, l := range r.Schema {
		if seen[l.Key] {
			return fmt.Errorf("rule %s: duplicate rate %q", r.ID, l.Key)
		}
		seen[l.Key] = true
	}
	return nil
}

func visitLeafKey(f frequency.Key) string {
	return "frequencyMetadata." + string(f) + ".visitsPerYear"
}

// visitLeaves declares a service's fallback visit counts for the recurring visit-based
// frequencies. Services disagree slightly on these, so each passes its own.
func visitLeaves(bimonthly, quarterly, biannual, annual float64) []rates.Leaf {
	return []rates.Leaf{
		{Key: visitLeafKey(frequency.Bimonthly), Legacy: "bimonthlyVisitsPerYear", Default: bimonthly, Label: "Bimonthly visits/year"},
		{Key: visitLeafKey(frequency.Quarterly), Legacy: "quarterlyVisitsPerYear", Default: quarterly, Label: "Quarterly visits/year"},
		{Key: visitLeafKey(frequency.Biannual), Legacy: "biannualVisitsPerYear", Default: biannual, Label: "Biannual visits/year"},
		{Key: visitLeafKey(frequency.Annual), Legacy: "annualVisitsPerYear", Default: annual, Label: "Annual visits/year"},
	}
}

func schema(groups ...[]rates.Leaf) rates.Schema {
	return rates.Schema(lo.Flatten(groups))
}

// Catalog is an ordered set of rules.
type Catalog struct {
	rules map[string]Rule
	order []string
}

// NewCatalog builds a catalog; ids must be unique.
func NewCatalog(rules ...Rule) (*Catalog, error) {
	c := &Catalog{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.rules[r.ID]; dup {
			return nil, fmt.Errorf("duplicate service %q", r.ID)
		}
		c.rules[r.ID] = r
		c.order = append(c.order, r.ID)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog(
		saniclean(),
		saniscrub(),
		foamingDrain(),
		microfiberMopping(),
		rpmWindows(),
		carpetCleaning(),
		electrostaticSpray(),
		sanipod(),
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks up a rule. Ids match case-insensitively.
func (c *Catalog) Get(id string) (Rule, error) {
	if r, ok := c.rules[id]; ok {
		return r, nil
	}
	for _, known := range c.order {
		if strings.EqualFold(known, strings.TrimSpace(id)) {
			return c.rules[known], nil
		}
	}
	return Rule{}, fmt.Errorf("%w: %q", ErrUnknownService, id)
}

// All returns the rules in catalog order.
func (c *Catalog) All() []Rule {
	return lo.Map(c.order, func(id string, _ int) Rule { return c.rules[id] })
}

// IDs returns the service ids in catalog order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Schemas returns every rule's schema keyed by id.
func (c *Catalog) Schemas() map[string]rates.Schema {
	return lo.MapValues(c.rules, func(r Rule, _ string) rates.Schema { return r.Schema })
}

func (c *Catalog) replace(r Rule) {
	c.rules[r.ID] = r
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
