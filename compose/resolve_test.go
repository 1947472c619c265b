package compose_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/fenrir/approot/compose"
	"github.com/fenrir/approot/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

//
// -----------------------------------------------------------------------------
// Success paths
// -----------------------------------------------------------------------------

// TestResolve_ImportedProvider verifies M declares A, imports N (exporting
// svc) and bootstraps A: A's scope includes svc.
func TestResolve_ImportedProvider(t *testing.T) {
	t.Parallel()

	svc := &service{name: "svc"}
	n := &compose.Module{
		Name:      "N",
		Providers: []di.Provider{di.ProvideValue("svc", svc)},
		Exports:   []di.Token{"svc"},
	}
	a := component("A", "svc")
	m := &compose.Module{
		Name:         "M",
		Declarations: []*compose.Component{a},
		Imports:      []*compose.Module{n},
		Bootstrap:    []*compose.Component{a},
	}

	g, err := compose.Resolve(m)
	require.NoError(t, err)
	assert.Equal(t, compose.StateResolved, g.State())
	assert.Same(t, m, g.Root())
	assert.Equal(t, []string{"N", "M"}, g.Order())

	roots := g.Roots()
	require.Len(t, roots, 1)
	assert.Same(t, a, roots[0].Component)
	assert.Same(t, m, roots[0].Module)
	got, ok := di.GetAs[*service](roots[0].Deps, "svc")
	require.True(t, ok)
	assert.Same(t, svc, got)

	_, ok = g.Scope("N")
	assert.True(t, ok)
	_, ok = g.Module("N")
	assert.True(t, ok)
	_, ok = g.Scope("missing")
	assert.False(t, ok)
}

// TestResolve_NoBootstrap verifies a module without bootstrap targets resolves
// to an empty root list.
func TestResolve_NoBootstrap(t *testing.T) {
	t.Parallel()

	g, err := compose.Resolve(&compose.Module{Name: "Lib"})
	require.NoError(t, err)
	assert.Empty(t, g.Roots())
}

// TestResolve_BootstrapOrderAndDedup verifies roots keep declaration order and
// a repeated bootstrap target is bound once.
func TestResolve_BootstrapOrderAndDedup(t *testing.T) {
	t.Parallel()

	a, b := component("A"), component("B")
	m := &compose.Module{
		Name:         "M",
		Declarations: []*compose.Component{a, b},
		Bootstrap:    []*compose.Component{b, a, b},
	}

	g, err := compose.Resolve(m)
	require.NoError(t, err)
	roots := g.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "B", roots[0].Component.Name)
	assert.Equal(t, "A", roots[1].Component.Name)
}

// TestResolve_SharedImportInstantiatedOnce verifies a diamond import shares
// one provider instance.
func TestResolve_SharedImportInstantiatedOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	shared := &compose.Module{
		Name: "Shared",
		Providers: []di.Provider{di.ProvideFactory("svc", func(di.Bag) (any, error) {
			calls++
			return &service{name: "svc"}, nil
		})},
		Exports: []di.Token{"svc"},
	}
	left := &compose.Module{Name: "Left", Imports: []*compose.Module{shared}, Exports: []di.Token{"svc"}}
	right := &compose.Module{Name: "Right", Imports: []*compose.Module{shared}, Exports: []di.Token{"svc"}}
	a := component("A", "svc")
	b := component("B", "svc")
	m := &compose.Module{
		Name:         "M",
		Declarations: []*compose.Component{a, b},
		Imports:      []*compose.Module{left, right},
		Bootstrap:    []*compose.Component{a, b},
	}

	g, err := compose.Resolve(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shared", "Left", "Right", "M"}, g.Order())
	roots := g.Roots()
	assert.Same(t, roots[0].Deps["svc"], roots[1].Deps["svc"])
	assert.Equal(t, 1, calls)
}

// TestResolve_RandomAcyclicGraphs verifies that acyclic graphs with fully
// resolvable providers always resolve with every requirement bound.
func TestResolve_RandomAcyclicGraphs(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 50; run++ {
		size := 1 + rng.Intn(8)
		mods := make([]*compose.Module, size)
		var all []di.Token
		for i := range mods {
			tok := di.Token(fmt.Sprintf("svc%d", i))
			all = append(all, tok)
			mods[i] = &compose.Module{
				Name:      fmt.Sprintf("F%d", i),
				Providers: []di.Provider{di.ProvideValue(tok, i)},
				Exports:   []di.Token{tok},
			}
			// only import lower indices so the graph stays acyclic
			for j := 0; j < i; j++ {
				if rng.Intn(2) == 0 {
					mods[i].Imports = append(mods[i].Imports, mods[j])
				}
			}
		}
		a := component("A", all...)
		root := &compose.Module{
			Name:         "Root",
			Declarations: []*compose.Component{a},
			Imports:      mods,
			Bootstrap:    []*compose.Component{a},
		}

		g, err := compose.Resolve(root)
		require.NoError(t, err, "run %d", run)
		roots := g.Roots()
		require.Len(t, roots, 1)
		for _, tok := range all {
			assert.True(t, roots[0].Deps.Has(tok), "run %d token %s", run, tok)
		}
		assert.Equal(t, "Root", g.Order()[len(g.Order())-1])
	}
}

//
// -----------------------------------------------------------------------------
// Override policy
// -----------------------------------------------------------------------------

func overlappingImports() (*compose.Module, *compose.Component) {
	first := &compose.Module{
		Name:      "First",
		Providers: []di.Provider{di.ProvideValue("svc", "from-first")},
		Exports:   []di.Token{"svc"},
	}
	second := &compose.Module{
		Name:      "Second",
		Providers: []di.Provider{di.ProvideValue("svc", "from-second")},
		Exports:   []di.Token{"svc"},
	}
	a := component("A", "svc")
	return &compose.Module{
		Name:         "M",
		Declarations: []*compose.Component{a},
		Imports:      []*compose.Module{first, second},
		Bootstrap:    []*compose.Component{a},
	}, a
}

// TestResolve_Policy verifies which import wins under each policy.
func TestResolve_Policy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		opts []compose.Option
		want string
	}{
		{name: "default is last import wins", want: "from-second"},
		{name: "last import wins", opts: []compose.Option{compose.WithPolicy(compose.LastImportWins)}, want: "from-second"},
		{name: "first import wins", opts: []compose.Option{compose.WithPolicy(compose.FirstImportWins)}, want: "from-first"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m, _ := overlappingImports()
			g, err := compose.Resolve(m, tc.opts...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, g.Roots()[0].Deps["svc"])
		})
	}
}

// TestResolve_OwnProvidersWin verifies a module's providers beat its imports.
func TestResolve_OwnProvidersWin(t *testing.T) {
	t.Parallel()

	m, _ := overlappingImports()
	m.Providers = []di.Provider{di.ProvideValue("svc", "own")}

	g, err := compose.Resolve(m)
	require.NoError(t, err)
	assert.Equal(t, "own", g.Roots()[0].Deps["svc"])
}

// TestResolve_LogsOverlappingExports verifies overlaps are reported with the winner.
func TestResolve_LogsOverlappingExports(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	m, _ := overlappingImports()

	_, err := compose.Resolve(m, compose.WithLogger(zap.New(core)))
	require.NoError(t, err)

	entries := logs.FilterMessage("token exported by several imports").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "svc", ctx["token"])
	assert.Equal(t, "Second", ctx["provided_by"])
	assert.Equal(t, "last-import-wins", ctx["policy"])
}

// TestResolve_RepeatedImportIsNotAnOverlap verifies an import listed twice
// by one module is not reported as exported by several imports.
func TestResolve_RepeatedImportIsNotAnOverlap(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	n := &compose.Module{
		Name:      "N",
		Providers: []di.Provider{di.ProvideValue("svc", "n")},
		Exports:   []di.Token{"svc"},
	}
	a := component("A", "svc")
	m := &compose.Module{
		Name:         "M",
		Declarations: []*compose.Component{a},
		Imports:      []*compose.Module{n, n},
		Bootstrap:    []*compose.Component{a},
	}

	g, err := compose.Resolve(m, compose.WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, "n", g.Roots()[0].Deps["svc"])
	assert.Empty(t, logs.FilterMessage("token exported by several imports").All())
}

// TestParsePolicy covers configuration names.
func TestParsePolicy(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]compose.Policy{
		"":                  compose.LastImportWins,
		"last":              compose.LastImportWins,
		"Last-Import-Wins":  compose.LastImportWins,
		"first":             compose.FirstImportWins,
		" first-import-wins": compose.FirstImportWins,
	} {
		got, err := compose.ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := compose.ParsePolicy("random")
	require.Error(t, err)
	assert.Equal(t, "policy(9)", compose.Policy(9).String())
}

//
// -----------------------------------------------------------------------------
// Failures
// -----------------------------------------------------------------------------

// TestResolve_CyclicImport verifies every cycle length fails with CyclicImport.
func TestResolve_CyclicImport(t *testing.T) {
	t.Parallel()

	self := &compose.Module{Name: "M"}
	self.Imports = []*compose.Module{self}

	m2, n2 := &compose.Module{Name: "M"}, &compose.Module{Name: "N"}
	m2.Imports = []*compose.Module{n2}
	n2.Imports = []*compose.Module{m2}

	a, b, c := &compose.Module{Name: "A"}, &compose.Module{Name: "B"}, &compose.Module{Name: "C"}
	root := &compose.Module{Name: "Root", Imports: []*compose.Module{a}}
	a.Imports = []*compose.Module{b}
	b.Imports = []*compose.Module{c}
	c.Imports = []*compose.Module{a}

	cases := []struct {
		name string
		root *compose.Module
		want []string
	}{
		{name: "self import", root: self, want: []string{"M", "M"}},
		{name: "two cycle", root: m2, want: []string{"M", "N", "M"}},
		{name: "n cycle", root: root, want: []string{"A", "B", "C", "A"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g, err := compose.Resolve(tc.root)
			assert.Nil(t, g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, compose.ErrCyclicImport))

			var ce compose.CyclicImportError
			require.True(t, errors.As(err, &ce))
			require.Len(t, ce.Cycle, len(tc.want))
			assert.Equal(t, ce.Cycle[0], ce.Cycle[len(ce.Cycle)-1])
			assert.ElementsMatch(t, tc.want[1:], ce.Cycle[1:])
		})
	}
}

// TestResolve_BootstrapNotOwned verifies the ownership check runs before any
// provider is looked up or instantiated.
func TestResolve_BootstrapNotOwned(t *testing.T) {
	t.Parallel()

	calls := 0
	a := component("A", "missing")
	b := component("B")
	m := &compose.Module{
		Name:         "M",
		Declarations: []*compose.Component{a},
		Providers: []di.Provider{di.ProvideFactory("svc", func(di.Bag) (any, error) {
			calls++
			return nil, nil
		})},
		Bootstrap: []*compose.Component{b},
	}

	_, err := compose.Resolve(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, compose.ErrOwnership))
	assert.False(t, errors.Is(err, compose.ErrUnresolvedDependency))

	var noe compose.NotOwnedError
	require.True(t, errors.As(err, &noe))
	assert.Equal(t, "B", noe.Component)
	assert.Equal(t, "M", noe.Module)
	assert.Equal(t, 0, calls)
}

// TestResolve_BootstrapOwnedElsewhere verifies the owner is reported.
func TestResolve_BootstrapOwnedElsewhere(t *testing.T) {
	t.Parallel()

	b := component("B")
	feature := &compose.Module{Name: "Feature", Declarations: []*compose.Component{b}}
	m := &compose.Module{Name: "M", Imports: []*compose.Module{feature}, Bootstrap: []*compose.Component{b}}

	_, err := compose.Resolve(m)
	var noe compose.NotOwnedError
	require.True(t, errors.As(err, &noe))
	assert.Equal(t, "Feature", noe.Owner)
	assert.Equal(t, `compose: module "M" bootstraps "B" which it does not declare (declared by "Feature")`, err.Error())
}

// TestResolve_DuplicateOwnership verifies a component cannot have two owners.
func TestResolve_DuplicateOwnership(t *testing.T) {
	t.Parallel()

	shared := component("Shared")
	feature := &compose.Module{Name: "Feature", Declarations: []*compose.Component{shared}}
	m := &compose.Module{
		Name:         "M",
		Declarations: []*compose.Component{component("Shared")},
		Imports:      []*compose.Module{feature},
	}

	_, err := compose.Resolve(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, compose.ErrDuplicateOwnership))
	assert.True(t, errors.Is(err, compose.ErrOwnership))

	var de compose.DuplicateOwnershipError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Shared", de.Component)
	assert.Equal(t, "M", de.First)
	assert.Equal(t, "Feature", de.Second)
}

// TestResolve_UnresolvedDependency verifies missing tokens anywhere in the closure fail.
func TestResolve_UnresolvedDependency(t *testing.T) {
	t.Parallel()

	f := func(di.Bag) (any, error) { return "x", nil }

	cases := []struct {
		name      string
		build     func() *compose.Module
		token     di.Token
		component string
		module    string
	}{
		{
			name: "bootstrap requirement",
			build: func() *compose.Module {
				a := component("A", "svc")
				return &compose.Module{Name: "M", Declarations: []*compose.Component{a}, Bootstrap: []*compose.Component{a}}
			},
			token: "svc", component: "A", module: "M",
		},
		{
			name: "non-bootstrap declared component",
			build: func() *compose.Module {
				return &compose.Module{Name: "M", Declarations: []*compose.Component{component("Side", "svc")}}
			},
			token: "svc", component: "Side", module: "M",
		},
		{
			name: "private feature provider",
			build: func() *compose.Module {
				n := &compose.Module{Name: "N", Providers: []di.Provider{di.ProvideValue("svc", 1)}}
				a := component("A", "svc")
				return &compose.Module{Name: "M", Declarations: []*compose.Component{a}, Imports: []*compose.Module{n}, Bootstrap: []*compose.Component{a}}
			},
			token: "svc", component: "A", module: "M",
		},
		{
			name: "exported token without provider",
			build: func() *compose.Module {
				n := &compose.Module{Name: "N", Exports: []di.Token{"ghost"}}
				return &compose.Module{Name: "M", Imports: []*compose.Module{n}}
			},
			token: "ghost", module: "N",
		},
		{
			name: "factory dependency inside feature",
			build: func() *compose.Module {
				n := &compose.Module{
					Name:      "N",
					Providers: []di.Provider{di.ProvideFactory("svc", f, "config")},
					Exports:   []di.Token{"svc"},
				}
				return &compose.Module{Name: "M", Imports: []*compose.Module{n}}
			},
			token: "config", module: "N",
		},
		{
			name: "root provider nothing requires",
			build: func() *compose.Module {
				return &compose.Module{Name: "M", Providers: []di.Provider{di.ProvideFactory("svc", f, "missing")}}
			},
			token: "missing", module: "M",
		},
		{
			name: "alias to unknown token",
			build: func() *compose.Module {
				a := component("A")
				return &compose.Module{
					Name:         "M",
					Declarations: []*compose.Component{a},
					Providers:    []di.Provider{di.ProvideExisting("alias", "ghost")},
					Bootstrap:    []*compose.Component{a},
				}
			},
			token: "ghost", module: "M",
		},
		{
			name: "private feature provider nothing requires",
			build: func() *compose.Module {
				n := &compose.Module{
					Name:      "N",
					Providers: []di.Provider{di.ProvideValue("svc", 1), di.ProvideFactory("extra", f, "config")},
					Exports:   []di.Token{"svc"},
				}
				return &compose.Module{Name: "M", Imports: []*compose.Module{n}}
			},
			token: "config", module: "N",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := compose.Resolve(tc.build())
			require.Error(t, err)
			assert.True(t, errors.Is(err, compose.ErrUnresolvedDependency))
			assert.True(t, errors.Is(err, di.ErrMissingProvider))

			var ue compose.UnresolvedDependencyError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tc.token, ue.Token)
			assert.Equal(t, tc.component, ue.Component)
			assert.Equal(t, tc.module, ue.Module)
		})
	}
}

// TestResolve_ProviderCycle verifies factory loops are reported, not hung on.
func TestResolve_ProviderCycle(t *testing.T) {
	t.Parallel()

	f := func(di.Bag) (any, error) { return nil, nil }
	a := component("A", "x")
	m := &compose.Module{
		Name:         "M",
		Declarations: []*compose.Component{a},
		Providers:    []di.Provider{di.ProvideFactory("x", f, "y"), di.ProvideFactory("y", f, "x")},
		Bootstrap:    []*compose.Component{a},
	}

	_, err := compose.Resolve(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, di.ErrCyclicDependency))
	assert.Contains(t, err.Error(), `compose: resolve "x" in module "M"`)
}

// TestResolve_FailureDisposesInstances verifies no provider instance survives
// a failed resolution.
func TestResolve_FailureDisposesInstances(t *testing.T) {
	t.Parallel()

	var built *service
	a := component("A", "svc")
	b := component("B", "boom")
	m := &compose.Module{
		Name:         "M",
		Declarations: []*compose.Component{a, b},
		Providers: []di.Provider{
			di.ProvideClass("svc", func() *service { built = &service{name: "svc"}; return built }),
			di.ProvideFactory("boom", func(di.Bag) (any, error) { return nil, errors.New("boom") }),
		},
		Bootstrap: []*compose.Component{a, b},
	}

	_, err := compose.Resolve(m)
	require.Error(t, err)
	require.NotNil(t, built)
	assert.True(t, built.disposed)
}

// TestResolve_InvalidDeclarations covers malformed records.
func TestResolve_InvalidDeclarations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		root *compose.Module
	}{
		{name: "nil root", root: nil},
		{name: "empty module name", root: &compose.Module{}},
		{name: "nil declaration", root: &compose.Module{Name: "M", Declarations: []*compose.Component{nil}}},
		{name: "component without selector", root: &compose.Module{Name: "M", Declarations: []*compose.Component{{Name: "A"}}}},
		{name: "empty requirement", root: &compose.Module{Name: "M", Declarations: []*compose.Component{component("A", "")}}},
		{name: "nil import", root: &compose.Module{Name: "M", Imports: []*compose.Module{nil}}},
		{name: "nil bootstrap", root: &compose.Module{Name: "M", Bootstrap: []*compose.Component{nil}}},
		{name: "empty export", root: &compose.Module{Name: "M", Exports: []di.Token{""}}},
		{name: "duplicate module name", root: &compose.Module{Name: "M", Imports: []*compose.Module{{Name: "M"}}}},
		{name: "component declared twice", root: &compose.Module{Name: "M", Declarations: []*compose.Component{component("A"), component("A")}}},
		{name: "invalid provider", root: &compose.Module{Name: "M", Providers: []di.Provider{di.ProvideFactory("x", nil)}}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := compose.Resolve(tc.root)
			require.Error(t, err)
			assert.True(t, errors.Is(err, compose.ErrInvalidDeclaration), err.Error())
			assert.False(t, errors.Is(err, compose.ErrDuplicateOwnership), err.Error())
		})
	}
}

// TestResolve_DoesNotMutateDeclaration verifies the record is read only.
func TestResolve_DoesNotMutateDeclaration(t *testing.T) {
	t.Parallel()

	m, a := overlappingImports()
	before := *m
	_, err := compose.Resolve(m)
	require.NoError(t, err)
	assert.Equal(t, before.Imports, m.Imports)
	assert.Equal(t, before.Declarations, m.Declarations)
	assert.Equal(t, []di.Token{"svc"}, a.Requires)
	assert.True(t, m.Declares("A"))
	assert.False(t, m.Declares("B"))
}
