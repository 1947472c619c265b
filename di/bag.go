package di

import (
	"reflect"
	"slices"
	"strconv"
)

// Bag holds resolved dependencies keyed by Token.
//
// It is what a factory receives and what a bound component carries after
// resolution. The bag is intentionally loose (map[Token]any) so any value can
// be attached; typed retrieval is available via GetAs / TryGetAs / MustGetAs.
type Bag map[Token]any

// Has reports whether a dependency exists for the token (regardless of type).
func (b Bag) Has(tok Token) bool {
	if b == nil {
		return false
	}
	_, ok := b[tok]
	return ok
}

// GetAny returns the raw stored dependency value without type assertions.
func (b Bag) GetAny(tok Token) (any, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b[tok]
	return v, ok
}

// Tokens returns the bag's tokens sorted for stable output.
func (b Bag) Tokens() []Token {
	out := make([]Token, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// GetAs returns the dependency typed as D.
//
// ok is false if the token is missing, nil, or the stored value is not a D.
func GetAs[D any](b Bag, tok Token) (D, bool) {
	var zero D
	if b == nil {
		return zero, false
	}
	raw, ok := b[tok]
	if !ok || raw == nil {
		return zero, false
	}
	d, ok := raw.(D)
	return d, ok
}

// TryGetAs returns the dependency typed as D.
//
// It returns:
//   - MissingProviderError if the token is not present
//   - WrongTypeDependencyError if the token exists but is not a D
func TryGetAs[D any](b Bag, tok Token) (D, error) {
	var zero D
	if b == nil {
		return zero, MissingProviderError{Token: tok, Scope: "bag"}
	}
	raw, ok := b[tok]
	if !ok || raw == nil {
		return zero, MissingProviderError{Token: tok, Scope: "bag"}
	}
	d, ok := raw.(D)
	if !ok {
		return zero, WrongTypeDependencyError{
			Token:   tok,
			GotType: reflect.TypeOf(raw).String(),
		}
	}
	return d, nil
}

// MustGetAs returns the dependency typed as D or panics.
func MustGetAs[D any](b Bag, tok Token) D {
	d, err := TryGetAs[D](b, tok)
	if err != nil {
		panic(err)
	}
	return d
}

// Clone returns a shallow copy of the bag. Values are shared.
func (b Bag) Clone() Bag {
	if b == nil {
		return nil
	}
	cp := make(Bag, len(b))
	for k, v := range b {
		cp[k] = v
	}
	return cp
}

// String renders the bag's tokens, e.g. {"db", "logger"}.
func (b Bag) String() string {
	toks := b.Tokens()
	s := "{"
	for i, t := range toks {
		if i > 0 {
			s += ", "
		}
		s += strconv.Quote(string(t))
	}
	return s + "}"
}
