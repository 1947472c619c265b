package di

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Source is anything a Scope can search for providers: another scope or a
// restricted view of one.
type Source interface {
	Name() string
	// Lookup returns the scope that owns the provider for tok.
	Lookup(tok Token) (*Scope, Provider, bool)
}

// Disposer is implemented by instances that hold resources.
// Scope.Dispose calls it for every instance the scope constructed.
type Disposer interface {
	Dispose() error
}

// Scope is one node of an explicit scope chain.
//
// A lookup searches the scope's own table first, then each linked Source in
// the order given. Instances are created in the scope that owns the provider
// and cached there, so a provider exported to many importers is instantiated
// once.
type Scope struct {
	name    string
	table   *Table
	links   []Source
	cache   map[Token]any
	created []Token
	log     *zap.Logger
}

// ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// WithLogger sets the logger used for instantiation and shadowing events.
func WithLogger(l *zap.Logger) ScopeOption {
	return func(s *Scope) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLinks appends sources searched after the scope's own table, in order.
func WithLinks(links ...Source) ScopeOption {
	return func(s *Scope) {
		for _, l := range links {
			if l != nil {
				s.links = append(s.links, l)
			}
		}
	}
}

// NewScope validates every provider in table and returns a scope over it.
//
// A nil table yields a scope with no own providers.
func NewScope(table *Table, opts ...ScopeOption) (*Scope, error) {
	if table == nil {
		table = NewTable("")
	}
	s := &Scope{
		name:  table.Name(),
		table: table,
		cache: map[Token]any{},
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, tok := range table.Tokens() {
		if err := table.MustLookup(tok).Validate(); err != nil {
			return nil, err
		}
	}
	for _, tok := range table.Shadowed() {
		s.log.Warn("provider registered more than once; last registration wins",
			zap.String("scope", s.name),
			zap.String("token", string(tok)),
		)
	}
	return s, nil
}

// Name returns the scope name.
func (s *Scope) Name() string { return s.name }

// Table returns the scope's own provider table.
func (s *Scope) Table() *Table { return s.table }

// Lookup finds the provider for tok: own table first, then links in order.
func (s *Scope) Lookup(tok Token) (*Scope, Provider, bool) {
	if p, ok := s.table.Lookup(tok); ok {
		return s, p, true
	}
	for _, l := range s.links {
		if owner, p, ok := l.Lookup(tok); ok {
			return owner, p, true
		}
	}
	return nil, Provider{}, false
}

// Get returns the instance for tok, creating it (and its deps) on first use.
func (s *Scope) Get(tok Token) (any, error) {
	return s.get(tok, "", nil)
}

// Bind resolves every token and returns them as a Bag.
// It stops at the first error.
func (s *Scope) Bind(toks ...Token) (Bag, error) {
	bag := make(Bag, len(toks))
	for _, tok := range toks {
		v, err := s.Get(tok)
		if err != nil {
			return nil, err
		}
		bag[tok] = v
	}
	return bag, nil
}

// Check verifies that every token, and transitively every factory or alias
// dependency, is resolvable without instantiating anything.
func (s *Scope) Check(toks ...Token) error {
	for _, tok := range toks {
		if err := s.check(tok, "", nil); err != nil {
			return err
		}
	}
	return nil
}

// Dispose releases instances created by this scope in reverse creation order.
// Values registered with UseValue or UseExisting are not owned and are skipped.
func (s *Scope) Dispose() error {
	var errs []error
	for i := len(s.created) - 1; i >= 0; i-- {
		tok := s.created[i]
		if d, ok := s.cache[tok].(Disposer); ok {
			if err := d.Dispose(); err != nil {
				errs = append(errs, fmt.Errorf("di: dispose %q: %w", tok, err))
			}
		}
	}
	s.created = nil
	s.cache = map[Token]any{}
	return errors.Join(errs...)
}

type frame struct {
	scope *Scope
	tok   Token
}

func (s *Scope) get(tok, requester Token, path []frame) (any, error) {
	owner, p, ok := s.Lookup(tok)
	if !ok {
		return nil, MissingProviderError{Token: tok, Scope: s.name, Requester: requester}
	}
	return owner.instantiate(p, path)
}

func (s *Scope) instantiate(p Provider, path []frame) (any, error) {
	if v, ok := s.cache[p.Token]; ok {
		return v, nil
	}
	next, err := s.enter(p.Token, path)
	if err != nil {
		return nil, err
	}

	deps := Bag{}
	for _, d := range p.Requires() {
		v, err := s.get(d, p.Token, next)
		if err != nil {
			return nil, err
		}
		deps[d] = v
	}

	v, err := s.call(p, deps)
	if err != nil {
		return nil, err
	}
	s.cache[p.Token] = v
	if p.Strategy == UseClass || p.Strategy == UseFactory {
		s.created = append(s.created, p.Token)
	}
	s.log.Debug("provider instantiated",
		zap.String("scope", s.name),
		zap.String("token", string(p.Token)),
		zap.Stringer("strategy", p.Strategy),
	)
	return v, nil
}

func (s *Scope) check(tok, requester Token, path []frame) error {
	owner, p, ok := s.Lookup(tok)
	if !ok {
		return MissingProviderError{Token: tok, Scope: s.name, Requester: requester}
	}
	if _, ok := owner.cache[p.Token]; ok {
		return nil
	}
	next, err := owner.enter(p.Token, path)
	if err != nil {
		return err
	}
	for _, d := range p.Requires() {
		if err := owner.check(d, p.Token, next); err != nil {
			return err
		}
	}
	return nil
}

// enter pushes (s, tok) on the resolution path, failing if it is already there.
func (s *Scope) enter(tok Token, path []frame) ([]frame, error) {
	for i, f := range path {
		if f.scope == s && f.tok == tok {
			cycle := make([]Token, 0, len(path)-i+1)
			for _, g := range path[i:] {
				cycle = append(cycle, g.tok)
			}
			return nil, CyclicDependencyError{Path: append(cycle, tok)}
		}
	}
	return append(path[:len(path):len(path)], frame{scope: s, tok: tok}), nil
}

func (s *Scope) call(p Provider, deps Bag) (val any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			val = nil
			err = ProviderPanicError{Token: p.Token, Recovered: rec}
		}
	}()

	switch p.Strategy {
	case UseClass:
		return p.Class(), nil
	case UseValue:
		return p.Value, nil
	case UseFactory:
		v, err := p.Factory(deps)
		if err != nil {
			return nil, fmt.Errorf("di: factory %q: %w", p.Token, err)
		}
		return v, nil
	case UseExisting:
		return deps[p.Existing], nil
	default:
		return nil, NilPrimitiveError{Token: p.Token, Strategy: p.Strategy}
	}
}

type exportView struct {
	scope  *Scope
	tokens map[Token]bool
}

// Exports returns a view of s that only answers lookups for tokens.
// Lookups through the view may still be satisfied by s's own links, which is
// how a module re-exports a token it imported.
func Exports(s *Scope, tokens ...Token) Source {
	set := make(map[Token]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return exportView{scope: s, tokens: set}
}

func (v exportView) Name() string { return v.scope.Name() }

func (v exportView) Lookup(tok Token) (*Scope, Provider, bool) {
	if !v.tokens[tok] {
		return nil, Provider{}, false
	}
	return v.scope.Lookup(tok)
}
