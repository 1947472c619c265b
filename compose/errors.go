package compose

import (
	"errors"
	"strconv"
	"strings"

	"github.com/fenrir/approot/di"
)

var (
	// ErrCyclicImport is matched by CyclicImportError.
	ErrCyclicImport = errors.New("compose: cyclic import")

	// ErrOwnership is matched by every ownership violation:
	// DuplicateOwnershipError and NotOwnedError.
	ErrOwnership = errors.New("compose: ownership violation")

	// ErrDuplicateOwnership is matched by DuplicateOwnershipError.
	ErrDuplicateOwnership = errors.New("compose: duplicate ownership")

	// ErrUnresolvedDependency is matched by UnresolvedDependencyError.
	ErrUnresolvedDependency = errors.New("compose: unresolved dependency")

	// ErrMissingMountPoint is matched by MissingMountPointError.
	ErrMissingMountPoint = errors.New("compose: missing mount point")

	// ErrInvalidDeclaration is matched by InvalidDeclarationError.
	ErrInvalidDeclaration = errors.New("compose: invalid declaration")

	// ErrInvalidState is matched by InvalidStateError.
	ErrInvalidState = errors.New("compose: invalid lifecycle state")
)

// CyclicImportError is returned when the import graph loops back on itself.
// Cycle follows import direction and starts and ends with the same module.
type CyclicImportError struct{ Cycle []string }

// Error implements the error interface.
func (e CyclicImportError) Error() string {
	// Example: compose: cyclic import: AppModule -> AppModule
	return ErrCyclicImport.Error() + ": " + strings.Join(e.Cycle, " -> ")
}

// Is reports whether target is ErrCyclicImport.
func (e CyclicImportError) Is(target error) bool { return target == ErrCyclicImport }

// DuplicateOwnershipError is returned when two modules (or one module twice)
// declare the same component.
type DuplicateOwnershipError struct {
	Component string
	First     string
	Second    string
}

// Error implements the error interface.
func (e DuplicateOwnershipError) Error() string {
	// Example: compose: component "A" declared by "M" and "N"
	return "compose: component " + strconv.Quote(e.Component) +
		" declared by " + strconv.Quote(e.First) + " and " + strconv.Quote(e.Second)
}

// Is reports whether target is ErrDuplicateOwnership or ErrOwnership.
func (e DuplicateOwnershipError) Is(target error) bool {
	return target == ErrDuplicateOwnership || target == ErrOwnership
}

// NotOwnedError is returned when a module bootstraps a component it does not
// declare. Owner is the declaring module, if any.
type NotOwnedError struct {
	Component string
	Module    string
	Owner     string
}

// Error implements the error interface.
func (e NotOwnedError) Error() string {
	msg := "compose: module " + strconv.Quote(e.Module) +
		" bootstraps " + strconv.Quote(e.Component) + " which it does not declare"
	if e.Owner != "" {
		msg += " (declared by " + strconv.Quote(e.Owner) + ")"
	}
	return msg
}

// Is reports whether target is ErrOwnership.
func (e NotOwnedError) Is(target error) bool { return target == ErrOwnership }

// UnresolvedDependencyError is returned when a component requirement or an
// exported token cannot be found in the import closure. Component is empty for
// export checks.
type UnresolvedDependencyError struct {
	Token     di.Token
	Component string
	Module    string
	Err       error
}

// Error implements the error interface.
func (e UnresolvedDependencyError) Error() string {
	msg := "compose: unresolved dependency " + strconv.Quote(string(e.Token))
	if e.Component != "" {
		msg += " for component " + strconv.Quote(e.Component)
	} else {
		msg += " exported"
	}
	msg += " in module " + strconv.Quote(e.Module)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrUnresolvedDependency.
func (e UnresolvedDependencyError) Is(target error) bool { return target == ErrUnresolvedDependency }

// Unwrap returns the underlying di error.
func (e UnresolvedDependencyError) Unwrap() error { return e.Err }

// MissingMountPointError is returned by Bootstrap when a bootstrap component
// has no entry in the host's mount points.
type MissingMountPointError struct {
	Component string
	Selector  string
}

// Error implements the error interface.
func (e MissingMountPointError) Error() string {
	// Example: compose: no mount point for "AppComponent" (selector "app-root")
	return "compose: no mount point for " + strconv.Quote(e.Component) +
		" (selector " + strconv.Quote(e.Selector) + ")"
}

// Is reports whether target is ErrMissingMountPoint.
func (e MissingMountPointError) Is(target error) bool { return target == ErrMissingMountPoint }

// InvalidDeclarationError reports a malformed module record.
type InvalidDeclarationError struct {
	Module string
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e InvalidDeclarationError) Error() string {
	msg := "compose: invalid declaration"
	if e.Module != "" {
		msg += " in module " + strconv.Quote(e.Module)
	}
	if e.Field != "" {
		msg += " at " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrInvalidDeclaration.
func (e InvalidDeclarationError) Is(target error) bool { return target == ErrInvalidDeclaration }

// Unwrap returns the underlying error, if any.
func (e InvalidDeclarationError) Unwrap() error { return e.Err }

// InvalidStateError is returned when an operation is applied in the wrong
// lifecycle state, e.g. bootstrapping a graph twice.
type InvalidStateError struct {
	Op   string
	Want State
	Got  State
}

// Error implements the error interface.
func (e InvalidStateError) Error() string {
	return "compose: " + e.Op + " requires state " + e.Want.String() + ", got " + e.Got.String()
}

// Is reports whether target is ErrInvalidState.
func (e InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// MountError wraps a host failure while constructing, attaching or detaching
// a component.
type MountError struct {
	Component string
	Op        string
	Err       error
}

// Error implements the error interface.
func (e MountError) Error() string {
	return "compose: " + e.Op + " " + strconv.Quote(e.Component) + ": " + e.Err.Error()
}

// Unwrap returns the host error.
func (e MountError) Unwrap() error { return e.Err }
