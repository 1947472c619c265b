package di

import "fmt"

// Table is an ordered provider table for one injection scope.
//
// Registering a token twice keeps the last registration; the earlier one is
// recorded in Shadowed so callers can report it.
//
// Expected usage:
//
//	t := di.NewTable("AppModule").
//		Provide(di.ProvideValue("apiBaseURL", "/api")).
//		Provide(di.ProvideClass("images", NewImageService))
type Table struct {
	name     string
	order    []Token
	items    map[Token]Provider
	shadowed []Token
}

// NewTable returns an empty table named after its owning scope.
func NewTable(name string) *Table {
	return &Table{name: name, items: map[Token]Provider{}}
}

// Name returns the owning scope name.
func (t *Table) Name() string { return t.name }

// Provide stores p under p.Token and returns the table for chaining.
func (t *Table) Provide(p Provider) *Table {
	if _, exists := t.items[p.Token]; exists {
		t.shadowed = append(t.shadowed, p.Token)
	} else {
		t.order = append(t.order, p.Token)
	}
	t.items[p.Token] = p
	return t
}

// Lookup returns the provider registered for tok.
func (t *Table) Lookup(tok Token) (Provider, bool) {
	p, ok := t.items[tok]
	return p, ok
}

// MustLookup returns the provider or panics with a helpful message.
// Useful in tests where missing tokens should fail fast.
func (t *Table) MustLookup(tok Token) Provider {
	p, ok := t.items[tok]
	if !ok {
		panic(fmt.Errorf("di: table %q missing token %q", t.name, tok))
	}
	return p
}

// Tokens returns registered tokens in first-registration order.
func (t *Table) Tokens() []Token {
	out := make([]Token, len(t.order))
	copy(out, t.order)
	return out
}

// Shadowed returns tokens that were registered more than once, one entry per
// overridden registration.
func (t *Table) Shadowed() []Token {
	out := make([]Token, len(t.shadowed))
	copy(out, t.shadowed)
	return out
}

// Len returns the number of distinct tokens.
func (t *Table) Len() int { return len(t.order) }
