package manifest

import (
	"github.com/fenrir/approot/compose"
	"github.com/fenrir/approot/di"
)

// Build turns m into a linked compose.Module graph rooted at m.Root.
//
// Every module in m is built even if the root does not reach it. Component
// records are shared, so a component listed by two modules is one
// *compose.Component declared twice, which Resolve reports as duplicate
// ownership. Import cycles are representable and left to Resolve.
func Build(m *Manifest, catalog *Catalog) (*compose.Module, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	components := make(map[string]*compose.Component, len(m.Components))
	for _, c := range m.Components {
		components[c.Name] = &compose.Component{
			Name:     c.Name,
			Selector: c.Selector,
			Requires: tokens(c.Requires),
			Factory:  catalog.component(c.Name),
		}
	}

	modules := make(map[string]*compose.Module, len(m.Modules))
	for _, mod := range m.Modules {
		modules[mod.Name] = &compose.Module{Name: mod.Name, Exports: tokens(mod.Exports)}
	}

	for _, mod := range m.Modules {
		out := modules[mod.Name]

		var err error
		if out.Declarations, err = lookupComponents(components, mod.Declarations, mod.Name); err != nil {
			return nil, err
		}
		if out.Bootstrap, err = lookupComponents(components, mod.Bootstrap, mod.Name); err != nil {
			return nil, err
		}
		for _, name := range mod.Imports {
			imp, ok := modules[name]
			if !ok {
				return nil, UnknownReferenceError{Kind: "module", Name: name, Module: mod.Name}
			}
			out.Imports = append(out.Imports, imp)
		}
		for _, p := range mod.Providers {
			dp, err := provider(p, catalog, mod.Name)
			if err != nil {
				return nil, err
			}
			out.Providers = append(out.Providers, dp)
		}
	}
	return modules[m.Root], nil
}

func lookupComponents(all map[string]*compose.Component, names []string, module string) ([]*compose.Component, error) {
	var out []*compose.Component
	for _, name := range names {
		c, ok := all[name]
		if !ok {
			return nil, UnknownReferenceError{Kind: "component", Name: name, Module: module}
		}
		out = append(out, c)
	}
	return out, nil
}

func provider(p Provider, catalog *Catalog, module string) (di.Provider, error) {
	tok := di.Token(p.Token)
	switch {
	case p.UseClass != "":
		ctor, ok := catalog.class(p.UseClass)
		if !ok {
			return di.Provider{}, UnknownReferenceError{Kind: "class", Name: p.UseClass, Module: module}
		}
		return di.Provider{Token: tok, Strategy: di.UseClass, Class: ctor}, nil
	case p.UseFactory != "":
		f, ok := catalog.factory(p.UseFactory)
		if !ok {
			return di.Provider{}, UnknownReferenceError{Kind: "factory", Name: p.UseFactory, Module: module}
		}
		return di.ProvideFactory(tok, f, tokens(p.Deps)...), nil
	case p.UseExisting != "":
		return di.ProvideExisting(tok, di.Token(p.UseExisting)), nil
	default:
		return di.ProvideValue(tok, p.UseValue), nil
	}
}

func tokens(names []string) []di.Token {
	if len(names) == 0 {
		return nil
	}
	out := make([]di.Token, len(names))
	for i, n := range names {
		out[i] = di.Token(n)
	}
	return out
}
