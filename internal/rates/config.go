// Package rates resolves the effective rate configuration of a service.
//
// Remote configs are partial: they may follow the current nested shape, the legacy flat shape,
// or a mix of both, and may omit any leaf. Every leaf a service reads is declared in its Schema
// and resolved independently through remote-new-shape, then remote-legacy-shape, then the
// static default, so the effective Config is always complete.
package rates

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/override"
)

// Leaf declares one numeric rate or threshold.
type Leaf struct {
	// Key is the dotted path in the current nested shape, e.g. "geographicPricing.insideBeltway.ratePerFixture".
	Key string
	// Legacy is the dotted path in the historical flat shape. Optional.
	Legacy string
	// Default is the static fallback.
	Default float64
	// Label is shown when a user edits the rate directly.
	Label string
	// Pinned leaves always resolve to Default. Deployment rules pin the values they set.
	Pinned bool
}

// Schema lists every leaf a service reads.
type Schema []Leaf

// Defaults returns the fully static configuration.
func (s Schema) Defaults() Config {
	cfg := make(Config, len(s))
	for _, l := range s {
		cfg[l.Key] = l.Default
	}
	return cfg
}

// Leaf looks up a declared leaf by key.
func (s Schema) Leaf(key string) (Leaf, bool) {
	for _, l := range s {
		if l.Key == key {
			return l, true
		}
	}
	return Leaf{}, false
}

// Nested renders the static defaults in the current nested shape, as a remote config would
// carry them.
func (s Schema) Nested() map[string]any {
	root := map[string]any{}
	for _, l := range s {
		parts := strings.Split(l.Key, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = l.Default
	}
	return root
}

// Config is a complete set of resolved leaves keyed by Leaf.Key.
type Config map[string]float64

// Get returns the resolved value of key. Keys outside the schema read as zero.
func (c Config) Get(key string) float64 {
	return c[key]
}

// With applies user rate edits on top of the resolved values. Only keys the config already
// carries are applied.
func (c Config) With(edits override.Set) Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = edits.Float(k, v)
	}
	return out
}

// Keys returns the config keys in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Origin records where a resolved leaf came from.
type Origin string

const (
	OriginRemote  Origin = "remote"
	OriginLegacy  Origin = "legacy"
	OriginDefault Origin = "default"
	OriginPinned  Origin = "pinned"
)

// Effective is the resolved configuration of one service.
type Effective struct {
	ServiceID string            `json:"serviceId"`
	Config    Config            `json:"config"`
	Origins   map[string]Origin `json:"origins"`
	// UsingDefaults is set when no leaf came from a remote config.
	UsingDefaults bool      `json:"usingDefaults"`
	ResolvedAt    time.Time `json:"resolvedAt"`
}

// Resolve merges a remote payload over the schema's static defaults, leaf by leaf.
// A remote that supplies no usable leaf yields the static defaults with UsingDefaults set.
func Resolve(serviceID string, remote map[string]any, schema Schema) Effective {
	eff := Effective{
		ServiceID: serviceID,
		Config:    make(Config, len(schema)),
		Origins:   make(map[string]Origin, len(schema)),
	}
	remoteLeaves := 0
	for _, l := range schema {
		if l.Pinned {
			eff.Config[l.Key] = l.Default
			eff.Origins[l.Key] = OriginPinned
			continue
		}
		if v, ok := lookup(remote, l.Key); ok {
			eff.Config[l.Key] = v
			eff.Origins[l.Key] = OriginRemote
			remoteLeaves++
			continue
		}
		if l.Legacy != "" {
			if v, ok := lookup(remote, l.Legacy); ok {
				eff.Config[l.Key] = v
				eff.Origins[l.Key] = OriginLegacy
				remoteLeaves++
				continue
			}
		}
		eff.Config[l.Key] = l.Default
		eff.Origins[l.Key] = OriginDefault
	}
	eff.UsingDefaults = remoteLeaves == 0
	return eff
}

// Defaults is Resolve with no remote payload.
func Defaults(serviceID string, schema Schema) Effective {
	return Resolve(serviceID, nil, schema)
}

func lookup(root map[string]any, path string) (float64, bool) {
	if root == nil || path == "" {
		return 0, false
	}
	// A flat key containing dots wins over a nested walk.
	if v, ok := root[path]; ok {
		return number(v)
	}
	var node any = root
	for _, part := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return 0, false
		}
		node, ok = m[part]
		if !ok {
			return 0, false
		}
	}
	return number(node)
}

func number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f < 0 {
		return 0, false
	}
	return f, true
}
