package compose

import (
	"errors"
	"fmt"

	"github.com/fenrir/approot/di"
	"github.com/fenrir/approot/internal/dag"

	"go.uber.org/zap"
)

// Bound is a bootstrap component together with its resolved dependencies.
type Bound struct {
	Component *Component
	Module    *Module
	Deps      di.Bag
}

// Graph is the resolved application: one scope per module and the bound
// bootstrap components of the root, in declaration order.
type Graph struct {
	root    *Module
	order   []string
	modules map[string]*Module
	scopes  map[string]*di.Scope
	exports map[string]di.Source
	roots   []*Bound
	handles []*Handle
	state   State
	policy  Policy
	log     *zap.Logger
}

// Resolve builds a fully bound Graph from root.
//
// Checks run in this order, and the first failure aborts resolution with no
// provider instance left alive:
//   - declarations are well formed and module names are unique
//   - the import graph is acyclic (CyclicImportError)
//   - no component is declared twice and every bootstrap target is declared
//     by its module (DuplicateOwnershipError, NotOwnedError)
//   - every exported token and every requirement of the root's declared
//     components resolves (UnresolvedDependencyError)
func Resolve(root *Module, opts ...Option) (*Graph, error) {
	o := newOptions(opts)
	if root == nil {
		return nil, InvalidDeclarationError{Reason: "nil root module"}
	}

	modules, err := closure(root)
	if err != nil {
		return nil, err
	}
	order, err := importOrder(modules)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(modules); err != nil {
		return nil, err
	}

	g := &Graph{
		root:    root,
		order:   order,
		modules: make(map[string]*Module, len(modules)),
		scopes:  make(map[string]*di.Scope, len(modules)),
		exports: make(map[string]di.Source, len(modules)),
		state:   StateUndeclared,
		policy:  o.policy,
		log:     o.log.With(zap.String("root", root.Name)),
	}
	for _, m := range modules {
		g.modules[m.Name] = m
	}

	if err := g.buildScopes(); err != nil {
		g.disposeScopes()
		return nil, err
	}
	if err := g.bindRoots(); err != nil {
		g.disposeScopes()
		return nil, err
	}

	g.state = StateResolved
	g.log.Info("composition resolved",
		zap.Strings("modules", order),
		zap.Int("bootstrap", len(g.roots)),
		zap.Stringer("policy", g.policy),
	)
	return g, nil
}

// Root returns the module Resolve was called with.
func (g *Graph) Root() *Module { return g.root }

// Order returns module names with every import before its importers.
func (g *Graph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Roots returns the bound bootstrap components in declaration order.
func (g *Graph) Roots() []*Bound {
	out := make([]*Bound, len(g.roots))
	copy(out, g.roots)
	return out
}

// Module returns the module with the given name from the import closure.
func (g *Graph) Module(name string) (*Module, bool) {
	m, ok := g.modules[name]
	return m, ok
}

// Scope returns the injection scope built for a module.
func (g *Graph) Scope(module string) (*di.Scope, bool) {
	s, ok := g.scopes[module]
	return s, ok
}

// Policy returns the override policy the graph was resolved with.
func (g *Graph) Policy() Policy { return g.policy }

// State returns the graph's lifecycle state.
func (g *Graph) State() State { return g.state }

// closure walks the import graph breadth first from root.
func closure(root *Module) ([]*Module, error) {
	seen := map[*Module]bool{}
	byName := map[string]*Module{}
	queue := []*Module{root}
	var out []*Module

	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		if seen[m] {
			continue
		}
		seen[m] = true

		if err := m.validate(); err != nil {
			return nil, err
		}
		if other, ok := byName[m.Name]; ok && other != m {
			return nil, InvalidDeclarationError{Module: m.Name, Field: "name", Reason: "declared by two distinct modules"}
		}
		byName[m.Name] = m
		out = append(out, m)
		queue = append(queue, m.Imports...)
	}
	return out, nil
}

// importOrder sorts modules so that imports come before importers.
func importOrder(modules []*Module) ([]string, error) {
	g := dag.New()
	for _, m := range modules {
		g.AddNode(m.Name)
	}
	for _, m := range modules {
		for _, imp := range m.Imports {
			g.AddEdge(imp.Name, m.Name)
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		var ce *dag.CycleError
		if errors.As(err, &ce) {
			// edges point from import to importer; report in import direction
			cycle := make([]string, len(ce.Cycle))
			for i, n := range ce.Cycle {
				cycle[len(cycle)-1-i] = n
			}
			return nil, CyclicImportError{Cycle: cycle}
		}
		return nil, err
	}
	return order, nil
}

func checkOwnership(modules []*Module) error {
	owners := map[string]string{}
	for _, m := range modules {
		for _, c := range m.Declarations {
			if prev, ok := owners[c.Name]; ok {
				return DuplicateOwnershipError{Component: c.Name, First: prev, Second: m.Name}
			}
			owners[c.Name] = m.Name
		}
	}
	for _, m := range modules {
		for _, c := range m.Bootstrap {
			if owners[c.Name] != m.Name {
				return NotOwnedError{Component: c.Name, Module: m.Name, Owner: owners[c.Name]}
			}
		}
	}
	return nil
}

func (g *Graph) buildScopes() error {
	for _, name := range g.order {
		m := g.modules[name]

		table := di.NewTable(m.Name)
		for _, p := range m.Providers {
			table.Provide(p)
		}

		links := make([]di.Source, 0, len(m.Imports))
		for _, imp := range m.Imports {
			links = append(links, g.exports[imp.Name])
		}
		if g.policy == LastImportWins {
			for i, j := 0, len(links)-1; i < j; i, j = i+1, j-1 {
				links[i], links[j] = links[j], links[i]
			}
		}

		log := g.log.With(zap.String("module", m.Name))
		s, err := di.NewScope(table, di.WithLinks(links...), di.WithLogger(log))
		if err != nil {
			return InvalidDeclarationError{Module: m.Name, Field: "providers", Err: err}
		}
		g.scopes[m.Name] = s
		g.reportOverlaps(m, s, log)

		for _, tok := range table.Tokens() {
			if err := s.Check(tok); err != nil {
				return unresolved(err, tok, "", m.Name)
			}
		}
		for _, tok := range m.Exports {
			if err := s.Check(tok); err != nil {
				return unresolved(err, tok, "", m.Name)
			}
		}
		g.exports[m.Name] = di.Exports(s, m.Exports...)
	}
	return nil
}

// reportOverlaps logs tokens exported by more than one import of m.
func (g *Graph) reportOverlaps(m *Module, s *di.Scope, log *zap.Logger) {
	var toks []di.Token
	from := map[di.Token][]string{}
	seen := map[*Module]bool{}
	for _, imp := range m.Imports {
		if seen[imp] {
			continue
		}
		seen[imp] = true
		for _, tok := range imp.Exports {
			if _, ok := from[tok]; !ok {
				toks = append(toks, tok)
			}
			from[tok] = append(from[tok], imp.Name)
		}
	}
	for _, tok := range toks {
		if len(from[tok]) < 2 {
			continue
		}
		owner, _, ok := s.Lookup(tok)
		if !ok {
			continue
		}
		log.Warn("token exported by several imports",
			zap.String("token", string(tok)),
			zap.Strings("imports", from[tok]),
			zap.String("provided_by", owner.Name()),
			zap.Stringer("policy", g.policy),
		)
	}
}

func (g *Graph) bindRoots() error {
	root := g.root
	s := g.scopes[root.Name]

	for _, c := range root.Declarations {
		if err := s.Check(c.Requires...); err != nil {
			return unresolved(err, "", c.Name, root.Name)
		}
	}

	seen := map[string]bool{}
	for _, b := range root.Bootstrap {
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true

		c := root.declared(b.Name)
		deps, err := s.Bind(c.Requires...)
		if err != nil {
			return unresolved(err, "", c.Name, root.Name)
		}
		g.roots = append(g.roots, &Bound{Component: c, Module: root, Deps: deps})
		g.log.Debug("bootstrap component bound",
			zap.String("component", c.Name),
			zap.Stringer("deps", deps),
		)
	}
	return nil
}

func (g *Graph) disposeScopes() error {
	var errs []error
	for i := len(g.order) - 1; i >= 0; i-- {
		if s, ok := g.scopes[g.order[i]]; ok {
			if err := s.Dispose(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// unresolved maps a di error to the compose taxonomy. tok is the exported
// token being checked; it is ignored when err names the missing token itself.
func unresolved(err error, tok di.Token, component, module string) error {
	var mpe di.MissingProviderError
	if errors.As(err, &mpe) {
		return UnresolvedDependencyError{Token: mpe.Token, Component: component, Module: module, Err: err}
	}
	subject := component
	if subject == "" {
		subject = string(tok)
	}
	return fmt.Errorf("compose: resolve %q in module %q: %w", subject, module, err)
}
