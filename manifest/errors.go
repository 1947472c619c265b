package manifest

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalid is matched by FieldError and ParseError.
	ErrInvalid = errors.New("manifest: invalid manifest")

	// ErrUnknownReference is matched by UnknownReferenceError.
	ErrUnknownReference = errors.New("manifest: unknown reference")
)

// FieldError reports a structural problem at Path, e.g. "modules[1].name".
type FieldError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e FieldError) Error() string {
	// Example: manifest: modules[1].name: duplicate module "Shared"
	return "manifest: " + e.Path + ": " + e.Reason
}

// Is reports whether target is ErrInvalid.
func (e FieldError) Is(target error) bool { return target == ErrInvalid }

// ParseError reports a file that could not be decoded or failed the schema.
// Problems holds one "path: message" line per CUE error.
type ParseError struct {
	File     string
	Problems []string
	Err      error
}

// Error implements the error interface.
func (e ParseError) Error() string {
	msg := "manifest: " + e.File
	switch len(e.Problems) {
	case 0:
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
	case 1:
		msg += ": " + e.Problems[0]
	default:
		for _, p := range e.Problems {
			msg += "\n  " + p
		}
	}
	return msg
}

// Is reports whether target is ErrInvalid.
func (e ParseError) Is(target error) bool { return target == ErrInvalid }

// Unwrap returns the decoder error.
func (e ParseError) Unwrap() error { return e.Err }

// UnknownReferenceError is returned by Build when a name cannot be resolved.
// Kind is one of "module", "component", "class" or "factory".
type UnknownReferenceError struct {
	Kind   string
	Name   string
	Module string
}

// Error implements the error interface.
func (e UnknownReferenceError) Error() string {
	// Example: manifest: module "AppModule" references unknown component "Header"
	if e.Module == "" {
		return "manifest: unknown " + e.Kind + " " + strconv.Quote(e.Name)
	}
	return "manifest: module " + strconv.Quote(e.Module) + " references unknown " + e.Kind + " " + strconv.Quote(e.Name)
}

// Is reports whether target is ErrUnknownReference.
func (e UnknownReferenceError) Is(target error) bool { return target == ErrUnknownReference }
