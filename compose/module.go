package compose

import (
	"strconv"

	"github.com/fenrir/approot/di"
)

// Component is a named UI unit rendered at Selector.
//
// Requires lists the service tokens the component needs; they are bound from
// the declaring module's scope. Factory is an optional construction primitive
// a Host may use.
type Component struct {
	Name     string
	Selector string
	Requires []di.Token
	Factory  func(deps di.Bag) (any, error)
}

// Module is a named unit of composition.
//
// Declarations are owned by the module. Imports are shared references: the
// same module may be imported from many places. Exports lists the provider
// tokens importers may see; a module can re-export a token it imported.
type Module struct {
	Name         string
	Declarations []*Component
	Imports      []*Module
	Providers    []di.Provider
	Exports      []di.Token
	Bootstrap    []*Component
}

// Declares reports whether m owns a component with the given name.
func (m *Module) Declares(name string) bool {
	return m.declared(name) != nil
}

func (m *Module) declared(name string) *Component {
	for _, c := range m.Declarations {
		if c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

func (m *Module) validate() error {
	if m.Name == "" {
		return InvalidDeclarationError{Field: "name", Reason: "module name is empty"}
	}
	seen := make(map[string]bool, len(m.Declarations))
	for i, c := range m.Declarations {
		field := "declarations[" + strconv.Itoa(i) + "]"
		if err := c.validate(); err != nil {
			return InvalidDeclarationError{Module: m.Name, Field: field, Reason: err.Error()}
		}
		if seen[c.Name] {
			return InvalidDeclarationError{Module: m.Name, Field: field, Reason: "component " + strconv.Quote(c.Name) + " declared twice"}
		}
		seen[c.Name] = true
	}
	for i, imp := range m.Imports {
		if imp == nil {
			return InvalidDeclarationError{Module: m.Name, Field: "imports[" + strconv.Itoa(i) + "]", Reason: "nil module"}
		}
	}
	for i, c := range m.Bootstrap {
		if c == nil || c.Name == "" {
			return InvalidDeclarationError{Module: m.Name, Field: "bootstrap[" + strconv.Itoa(i) + "]", Reason: "nil or unnamed component"}
		}
	}
	for i, tok := range m.Exports {
		if tok == "" {
			return InvalidDeclarationError{Module: m.Name, Field: "exports[" + strconv.Itoa(i) + "]", Reason: "empty token"}
		}
	}
	return nil
}

type declarationError string

func (e declarationError) Error() string { return string(e) }

func (c *Component) validate() error {
	switch {
	case c == nil:
		return declarationError("nil component")
	case c.Name == "":
		return declarationError("component name is empty")
	case c.Selector == "":
		return declarationError("component " + strconv.Quote(c.Name) + " has no selector")
	}
	for _, tok := range c.Requires {
		if tok == "" {
			return declarationError("component " + strconv.Quote(c.Name) + " requires an empty token")
		}
	}
	return nil
}
