package di

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMissingProvider is matched by MissingProviderError.
	ErrMissingProvider = errors.New("di: missing provider")

	// ErrCyclicDependency is matched by CyclicDependencyError.
	ErrCyclicDependency = errors.New("di: cyclic provider dependency")

	// ErrProviderPanic is returned (wrapped) when a constructor or factory panics.
	ErrProviderPanic = errors.New("di: panic during instantiation")

	// ErrNilPrimitive is matched by NilPrimitiveError.
	ErrNilPrimitive = errors.New("di: nil instantiation primitive")
)

// MissingProviderError is returned when no provider for Token is reachable
// from Scope.
//
// Requester is the token whose factory declared the dependency, or empty when
// the token was requested directly.
type MissingProviderError struct {
	Token     Token
	Scope     string
	Requester Token
}

// Error implements the error interface.
func (e MissingProviderError) Error() string {
	// Example: di: no provider for "db" in scope "AppModule" (required by "repo")
	msg := "di: no provider for " + strconv.Quote(string(e.Token)) + " in scope " + strconv.Quote(e.Scope)
	if e.Requester != "" {
		msg += " (required by " + strconv.Quote(string(e.Requester)) + ")"
	}
	return msg
}

// Is reports whether target is ErrMissingProvider.
func (e MissingProviderError) Is(target error) bool { return target == ErrMissingProvider }

// CyclicDependencyError is returned when provider factories depend on each
// other in a loop. Path starts and ends with the same token.
type CyclicDependencyError struct{ Path []Token }

// Error implements the error interface.
func (e CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, t := range e.Path {
		parts[i] = string(t)
	}
	return "di: cyclic provider dependency: " + strings.Join(parts, " -> ")
}

// Is reports whether target is ErrCyclicDependency.
func (e CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }

// WrongTypeDependencyError is returned when a dependency exists but is of a different type.
//
// It is used by TryGetAs when a token is present but the stored value does not
// satisfy the requested type.
type WrongTypeDependencyError struct {
	// Token is the dependency token requested.
	Token Token

	// GotType is reflect.TypeOf(raw).String() for the stored value.
	GotType string
}

// Error implements the error interface.
func (e WrongTypeDependencyError) Error() string {
	// Example: di: dependency "db" has wrong type (*mypkg.Logger)
	return "di: dependency " + strconv.Quote(string(e.Token)) + " has wrong type (" + e.GotType + ")"
}

// NilPrimitiveError indicates a provider whose strategy primitive
// (constructor, factory or alias target) is missing.
type NilPrimitiveError struct {
	Token    Token
	Strategy Strategy
}

// Error implements the error interface.
func (e NilPrimitiveError) Error() string {
	// Example: di: provider "db" (useFactory) has no primitive
	return "di: provider " + strconv.Quote(string(e.Token)) + " (" + e.Strategy.String() + ") has no primitive"
}

// Is reports whether target is ErrNilPrimitive.
func (e NilPrimitiveError) Is(target error) bool { return target == ErrNilPrimitive }

// ProviderPanicError carries the recovered value of a panicking constructor.
type ProviderPanicError struct {
	Token     Token
	Recovered any
}

// Error implements the error interface.
func (e ProviderPanicError) Error() string {
	return fmt.Sprintf("%v for %q: %v", ErrProviderPanic, string(e.Token), e.Recovered)
}

// Unwrap returns ErrProviderPanic.
func (e ProviderPanicError) Unwrap() error { return ErrProviderPanic }
