package compose

import "github.com/fenrir/approot/di"

// MountPoint is a physical location supplied by the host, such as an element
// already present in the page. Node is host specific.
type MountPoint struct {
	Selector string
	Node     any
}

// MountPoints maps component names to their mount locations.
type MountPoints map[string]MountPoint

// SelectorMounts places each component at its own selector.
func SelectorMounts(components ...*Component) MountPoints {
	mp := make(MountPoints, len(components))
	for _, c := range components {
		if c != nil {
			mp[c.Name] = MountPoint{Selector: c.Selector}
		}
	}
	return mp
}

// Host supplies the construction and mounting primitives. The composition
// root decides what to construct and where; the host decides how.
type Host interface {
	Construct(c *Component, deps di.Bag) (any, error)
	Attach(instance any, at MountPoint) error
	Detach(instance any, at MountPoint) error
}

// Instance is the value FactoryHost constructs for components without a
// Factory.
type Instance struct {
	Component *Component
	Deps      di.Bag
}

// FactoryHost constructs components through Component.Factory and attaches
// them nowhere. It is the host used when Bootstrap is given nil.
type FactoryHost struct{}

// Construct calls c.Factory, or returns an *Instance when there is none.
func (FactoryHost) Construct(c *Component, deps di.Bag) (any, error) {
	if c.Factory != nil {
		return c.Factory(deps)
	}
	return &Instance{Component: c, Deps: deps}, nil
}

// Attach is a no-op.
func (FactoryHost) Attach(any, MountPoint) error { return nil }

// Detach is a no-op.
func (FactoryHost) Detach(any, MountPoint) error { return nil }
