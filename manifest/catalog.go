package manifest

import "github.com/fenrir/approot/di"

// Catalog holds the Go code a manifest refers to by name.
//
// Expected usage:
//
//	cat := manifest.NewCatalog().
//		RegisterClass("ImageService", manifest.Class(NewImageService)).
//		RegisterFactory("newCollections", newCollections).
//		RegisterComponent("AppComponent", newAppComponent)
type Catalog struct {
	classes    map[string]func() any
	factories  map[string]func(di.Bag) (any, error)
	components map[string]func(di.Bag) (any, error)
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		classes:    map[string]func() any{},
		factories:  map[string]func(di.Bag) (any, error){},
		components: map[string]func(di.Bag) (any, error){},
	}
}

// Class adapts a typed constructor for RegisterClass.
func Class[T any](ctor func() *T) func() any {
	return func() any { return ctor() }
}

// RegisterClass names a constructor used by useClass. Last registration wins.
func (c *Catalog) RegisterClass(name string, ctor func() any) *Catalog {
	c.classes[name] = ctor
	return c
}

// RegisterFactory names a factory used by useFactory. Last registration wins.
func (c *Catalog) RegisterFactory(name string, f func(di.Bag) (any, error)) *Catalog {
	c.factories[name] = f
	return c
}

// RegisterComponent sets the factory of the component with the given name.
// Components without one are constructed by the host's default.
func (c *Catalog) RegisterComponent(name string, f func(di.Bag) (any, error)) *Catalog {
	c.components[name] = f
	return c
}

func (c *Catalog) class(name string) (func() any, bool) {
	if c == nil {
		return nil, false
	}
	f, ok := c.classes[name]
	return f, ok && f != nil
}

func (c *Catalog) factory(name string) (func(di.Bag) (any, error), bool) {
	if c == nil {
		return nil, false
	}
	f, ok := c.factories[name]
	return f, ok && f != nil
}

func (c *Catalog) component(name string) func(di.Bag) (any, error) {
	if c == nil {
		return nil
	}
	return c.components[name]
}
