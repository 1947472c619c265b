package di

import "strconv"

// Token identifies a service in a provider table.
//
// Tokens are typically defined as package-level constants to avoid typos.
//
// Example:
//
//	const (
//	  TokenDB     di.Token = "db"
//	  TokenLogger di.Token = "logger"
//	)
type Token string

// Key converts a string into a Token.
func Key(name string) Token { return Token(name) }

// Strategy selects how a provider produces its instance.
type Strategy uint8

const (
	// UseClass constructs a concrete type with a zero-argument constructor.
	UseClass Strategy = iota + 1
	// UseValue hands out an existing instance.
	UseValue
	// UseFactory calls a factory with its declared dependencies.
	UseFactory
	// UseExisting aliases another token.
	UseExisting
)

// String returns the strategy name as written in declarations.
func (s Strategy) String() string {
	switch s {
	case UseClass:
		return "useClass"
	case UseValue:
		return "useValue"
	case UseFactory:
		return "useFactory"
	case UseExisting:
		return "useExisting"
	default:
		return "strategy(" + strconv.Itoa(int(s)) + ")"
	}
}

// Provider binds a Token to an instantiation strategy.
//
// Only the field matching Strategy is consulted.
type Provider struct {
	Token    Token
	Strategy Strategy

	Class    func() any
	Value    any
	Factory  func(deps Bag) (any, error)
	Deps     []Token
	Existing Token
}

// ProvideClass registers ctor as the constructor for tok.
func ProvideClass[T any](tok Token, ctor func() *T) Provider {
	p := Provider{Token: tok, Strategy: UseClass}
	if ctor != nil {
		p.Class = func() any { return ctor() }
	}
	return p
}

// ProvideValue binds tok to an existing value. A nil value is allowed.
func ProvideValue(tok Token, val any) Provider {
	return Provider{Token: tok, Strategy: UseValue, Value: val}
}

// ProvideFactory binds tok to a factory that receives the resolved deps.
func ProvideFactory(tok Token, factory func(deps Bag) (any, error), deps ...Token) Provider {
	return Provider{Token: tok, Strategy: UseFactory, Factory: factory, Deps: deps}
}

// ProvideExisting makes tok an alias of existing.
func ProvideExisting(tok, existing Token) Provider {
	return Provider{Token: tok, Strategy: UseExisting, Existing: existing}
}

// Requires returns the tokens that must be resolvable before p can be instantiated.
func (p Provider) Requires() []Token {
	switch p.Strategy {
	case UseFactory:
		return p.Deps
	case UseExisting:
		return []Token{p.Existing}
	default:
		return nil
	}
}

// Validate checks that p has a token and the primitive its strategy needs.
func (p Provider) Validate() error {
	if p.Token == "" {
		return NilPrimitiveError{Token: p.Token, Strategy: p.Strategy}
	}
	switch p.Strategy {
	case UseClass:
		if p.Class == nil {
			return NilPrimitiveError{Token: p.Token, Strategy: p.Strategy}
		}
	case UseValue:
	case UseFactory:
		if p.Factory == nil {
			return NilPrimitiveError{Token: p.Token, Strategy: p.Strategy}
		}
	case UseExisting:
		if p.Existing == "" {
			return NilPrimitiveError{Token: p.Token, Strategy: p.Strategy}
		}
	default:
		return NilPrimitiveError{Token: p.Token, Strategy: p.Strategy}
	}
	return nil
}
