package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/billing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

// RulesFile adjusts catalog descriptors per deployment:
//
//	service "carpetCleaning" {
//	  first_visit       = "installOnly"
//	  custom_rows       = "monthly"
//	  default_frequency = "biannual"
//	  visits_per_year   = { quarterly = 4 }
//	}
type RulesFile struct {
	Services []ServiceRules `hcl:"service,block"`
}

// ServiceRules is one service block. Unset attributes keep the built-in value.
type ServiceRules struct {
	ID               string             `hcl:"id,label"`
	DisplayName      *string            `hcl:"display_name,optional"`
	FirstVisit       *string            `hcl:"first_visit,optional"`
	CustomRows       *string            `hcl:"custom_rows,optional"`
	DefaultFrequency *string            `hcl:"default_frequency,optional"`
	VisitsPerYear    map[string]float64 `hcl:"visits_per_year,optional"`
}

// ParseRules decodes rules source; filename is used in diagnostics.
func ParseRules(src []byte, filename string) (RulesFile, error) {
	var rf RulesFile
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return rf, fmt.Errorf("parse rules %s: %w", filename, diags)
	}
	if diags := gohcl.DecodeBody(f.Body, nil, &rf); diags.HasErrors() {
		return rf, fmt.Errorf("decode rules %s: %w", filename, diags)
	}
	return rf, nil
}

// LoadRules reads and parses a rules file.
func LoadRules(path string) (RulesFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return RulesFile{}, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(src, path)
}

// Apply overlays rf on the catalog. Unknown services and unknown frequency or mode names are
// errors, so a typo in the file does not pass silently.
func (c *Catalog) Apply(rf RulesFile) error {
	for _, s := range rf.Services {
		r, err := c.Get(s.ID)
		if err != nil {
			return err
		}
		if s.DisplayName != nil && strings.TrimSpace(*s.DisplayName) != "" {
			r.DisplayName = strings.TrimSpace(*s.DisplayName)
		}
		if s.FirstVisit != nil {
			mode := billing.ParseFirstVisitMode(*s.FirstVisit, "")
			if mode == "" {
				return fmt.Errorf("service %s: unknown first_visit %q", r.ID, *s.FirstVisit)
			}
			r.FirstVisit = mode
		}
		if s.CustomRows != nil {
			target := billing.ParseTarget(*s.CustomRows, "")
			if target == "" {
				return fmt.Errorf("service %s: unknown custom_rows %q", r.ID, *s.CustomRows)
			}
			r.CustomRows = target
		}
		if s.DefaultFrequency != nil {
			f, ok := frequency.Lookup(*s.DefaultFrequency)
			if !ok {
				return fmt.Errorf("service %s: unknown default_frequency %q", r.ID, *s.DefaultFrequency)
			}
			r.DefaultFrequency = f
		}
		if len(s.VisitsPerYear) > 0 {
			schema, err := withVisitDefaults(r.Schema, s.VisitsPerYear)
			if err != nil {
				return fmt.Errorf("service %s: %w", r.ID, err)
			}
			r.Schema = schema
		}
		c.replace(r)
	}
	return nil
}

// withVisitDefaults copies schema with the given visit counts pinned over any remote value.
func withVisitDefaults(schema rates.Schema, counts map[string]float64) (rates.Schema, error) {
	out := append(rates.Schema(nil), schema...)
	for _, name := range sortedKeys(counts) {
		f, ok := frequency.Lookup(name)
		if !ok || !frequency.IsVisitBased(f) || f == frequency.OneTime {
			return nil, fmt.Errorf("visits_per_year: %q is not a recurring visit-based frequency", name)
		}
		if counts[name] <= 0 {
			return nil, fmt.Errorf("visits_per_year: %s must be positive", name)
		}
		key := visitLeafKey(f)
		for i := range out {
			if out[i].Key == key {
				out[i].Default = counts[name]
				out[i].Pinned = true
			}
		}
	}
	return out, nil
}
