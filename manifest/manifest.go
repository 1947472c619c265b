package manifest

import (
	"math"
	"math/big"
	"strconv"
)

// Manifest is the file form of a composition graph.
type Manifest struct {
	Root       string      `json:"root" yaml:"root"`
	Modules    []Module    `json:"modules" yaml:"modules"`
	Components []Component `json:"components,omitempty" yaml:"components,omitempty"`
}

// Module mirrors compose.Module with every reference given by name.
type Module struct {
	Name         string     `json:"name" yaml:"name"`
	Declarations []string   `json:"declarations,omitempty" yaml:"declarations,omitempty"`
	Imports      []string   `json:"imports,omitempty" yaml:"imports,omitempty"`
	Providers    []Provider `json:"providers,omitempty" yaml:"providers,omitempty"`
	Exports      []string   `json:"exports,omitempty" yaml:"exports,omitempty"`
	Bootstrap    []string   `json:"bootstrap,omitempty" yaml:"bootstrap,omitempty"`
}

// Component mirrors compose.Component. Its factory, if any, comes from the
// Catalog entry with the same name.
type Component struct {
	Name     string   `json:"name" yaml:"name"`
	Selector string   `json:"selector" yaml:"selector"`
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// Provider names exactly one strategy. UseClass and UseFactory are Catalog
// names; UseExisting is a token. A null UseValue counts as absent.
type Provider struct {
	Token       string   `json:"token" yaml:"token"`
	UseClass    string   `json:"useClass,omitempty" yaml:"useClass,omitempty"`
	UseValue    any      `json:"useValue,omitempty" yaml:"useValue,omitempty"`
	UseFactory  string   `json:"useFactory,omitempty" yaml:"useFactory,omitempty"`
	UseExisting string   `json:"useExisting,omitempty" yaml:"useExisting,omitempty"`
	Deps        []string `json:"deps,omitempty" yaml:"deps,omitempty"`
}

func (p Provider) strategies() int {
	n := 0
	for _, set := range []bool{p.UseClass != "", p.UseValue != nil, p.UseFactory != "", p.UseExisting != ""} {
		if set {
			n++
		}
	}
	return n
}

// normalize rewrites every UseValue so that all decoders agree: integers that
// fit are int, nested maps and lists are walked.
func (m *Manifest) normalize() {
	for i := range m.Modules {
		for j := range m.Modules[i].Providers {
			p := &m.Modules[i].Providers[j]
			p.UseValue = normalizeValue(p.UseValue)
		}
	}
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case int64:
		if x >= math.MinInt && x <= math.MaxInt {
			return int(x)
		}
	case uint64:
		if x <= math.MaxInt {
			return int(x)
		}
	case *big.Int:
		if x.IsInt64() {
			return normalizeValue(x.Int64())
		}
	case []any:
		for i := range x {
			x[i] = normalizeValue(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = normalizeValue(x[k])
		}
	case map[any]any:
		for k := range x {
			x[k] = normalizeValue(x[k])
		}
	}
	return v
}

// Module returns the module named name.
func (m *Manifest) Module(name string) (Module, bool) {
	for _, mod := range m.Modules {
		if mod.Name == name {
			return mod, true
		}
	}
	return Module{}, false
}

// Validate checks the structural rules that do not need a Catalog: names are
// present and unique, the root exists, and every provider names exactly one
// strategy. Dangling references are reported by Build.
func (m *Manifest) Validate() error {
	if m.Root == "" {
		return FieldError{Path: "root", Reason: "is required"}
	}
	if len(m.Modules) == 0 {
		return FieldError{Path: "modules", Reason: "must list at least one module"}
	}

	modules := make(map[string]bool, len(m.Modules))
	for i, mod := range m.Modules {
		at := "modules[" + strconv.Itoa(i) + "]"
		if mod.Name == "" {
			return FieldError{Path: at + ".name", Reason: "is required"}
		}
		if modules[mod.Name] {
			return FieldError{Path: at + ".name", Reason: "duplicate module " + strconv.Quote(mod.Name)}
		}
		modules[mod.Name] = true

		for j, p := range mod.Providers {
			pat := at + ".providers[" + strconv.Itoa(j) + "]"
			if p.Token == "" {
				return FieldError{Path: pat + ".token", Reason: "is required"}
			}
			if p.strategies() != 1 {
				return FieldError{Path: pat, Reason: "exactly one of useClass, useValue, useFactory, useExisting is required"}
			}
			if len(p.Deps) > 0 && p.UseFactory == "" {
				return FieldError{Path: pat + ".deps", Reason: "only allowed with useFactory"}
			}
		}
	}
	if !modules[m.Root] {
		return FieldError{Path: "root", Reason: "names unknown module " + strconv.Quote(m.Root)}
	}

	components := make(map[string]bool, len(m.Components))
	for i, c := range m.Components {
		at := "components[" + strconv.Itoa(i) + "]"
		switch {
		case c.Name == "":
			return FieldError{Path: at + ".name", Reason: "is required"}
		case c.Selector == "":
			return FieldError{Path: at + ".selector", Reason: "is required"}
		case components[c.Name]:
			return FieldError{Path: at + ".name", Reason: "duplicate component " + strconv.Quote(c.Name)}
		}
		components[c.Name] = true
	}
	return nil
}
