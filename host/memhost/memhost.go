// Package memhost is an in-memory page that implements compose.Host.
//
// A Document holds named elements keyed by selector, in the order they were
// added. Attaching a component fills an empty element; detaching clears it.
// Render prints the page so tests and the CLI can show what was mounted.
package memhost

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/fenrir/approot/compose"
	"github.com/fenrir/approot/di"

	"go.uber.org/zap"
)

var (
	// ErrUnknownElement is matched by ElementError for selectors not in the page.
	ErrUnknownElement = errors.New("memhost: unknown element")

	// ErrOccupied is matched by ElementError when an element already holds an instance.
	ErrOccupied = errors.New("memhost: element occupied")
)

// ElementError reports a mount operation that the page cannot satisfy.
type ElementError struct {
	Selector string
	Err      error
}

// Error implements the error interface.
func (e ElementError) Error() string {
	// Example: memhost: element occupied: "app-root"
	return e.Err.Error() + ": " + strconv.Quote(e.Selector)
}

// Unwrap returns ErrUnknownElement or ErrOccupied.
func (e ElementError) Unwrap() error { return e.Err }

// Renderer is implemented by instances that know how to print themselves.
type Renderer interface {
	Render() string
}

// Element is one mount location in the page.
type Element struct {
	Selector string
	Instance any
}

// Document is the page. It is not safe for concurrent use.
type Document struct {
	order    []string
	elements map[string]*Element
	log      *zap.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithElements adds empty elements for selectors. Duplicates are ignored.
func WithElements(selectors ...string) Option {
	return func(d *Document) {
		for _, s := range selectors {
			_ = d.Add(s)
		}
	}
}

// WithLogger sets the logger for attach and detach events.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDocument returns a page configured by opts.
func NewDocument(opts ...Option) *Document {
	d := &Document{elements: map[string]*Element{}, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add appends an empty element.
func (d *Document) Add(selector string) error {
	if selector == "" {
		return errors.New("memhost: empty selector")
	}
	if _, ok := d.elements[selector]; ok {
		return fmt.Errorf("memhost: element %q already exists", selector)
	}
	d.order = append(d.order, selector)
	d.elements[selector] = &Element{Selector: selector}
	return nil
}

// Has reports whether the page contains selector.
func (d *Document) Has(selector string) bool {
	_, ok := d.elements[selector]
	return ok
}

// Selectors returns element selectors in page order.
func (d *Document) Selectors() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Content returns the instance attached at selector, if any.
func (d *Document) Content(selector string) (any, bool) {
	el, ok := d.elements[selector]
	if !ok || el.Instance == nil {
		return nil, false
	}
	return el.Instance, true
}

// MountPoints maps each component to the element matching its selector.
// Components whose selector is absent from the page are left out, so
// Bootstrap reports them as missing mount points.
func (d *Document) MountPoints(components ...*compose.Component) compose.MountPoints {
	mp := compose.MountPoints{}
	for _, c := range components {
		if c == nil {
			continue
		}
		if at, ok := d.At(c.Selector); ok {
			mp[c.Name] = at
		}
	}
	return mp
}

// At returns the mount point for the element named selector.
func (d *Document) At(selector string) (compose.MountPoint, bool) {
	el, ok := d.elements[selector]
	if !ok {
		return compose.MountPoint{}, false
	}
	return compose.MountPoint{Selector: el.Selector, Node: el}, true
}

// Construct calls c.Factory, or returns a *compose.Instance when there is none.
func (d *Document) Construct(c *compose.Component, deps di.Bag) (any, error) {
	return compose.FactoryHost{}.Construct(c, deps)
}

// Attach places instance in the element named by at.Selector.
func (d *Document) Attach(instance any, at compose.MountPoint) error {
	el, ok := d.elements[at.Selector]
	if !ok {
		return ElementError{Selector: at.Selector, Err: ErrUnknownElement}
	}
	if el.Instance != nil {
		return ElementError{Selector: at.Selector, Err: ErrOccupied}
	}
	el.Instance = instance
	d.log.Debug("element attached", zap.String("selector", at.Selector))
	return nil
}

// Detach clears the element named by at.Selector if it still holds instance.
// Detaching an instance that was already replaced is a no-op.
func (d *Document) Detach(instance any, at compose.MountPoint) error {
	el, ok := d.elements[at.Selector]
	if !ok {
		return ElementError{Selector: at.Selector, Err: ErrUnknownElement}
	}
	if !sameInstance(el.Instance, instance) {
		d.log.Debug("stale detach ignored", zap.String("selector", at.Selector))
		return nil
	}
	el.Instance = nil
	d.log.Debug("element detached", zap.String("selector", at.Selector))
	return nil
}

// sameInstance compares by identity. Maps, slices and funcs compare by
// pointer; other uncomparable values match any value of their type.
func sameInstance(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	return true
}

// Render writes one line per element in page order, e.g.
//
//	<app-root>AppComponent</app-root>
func (d *Document) Render(w io.Writer) error {
	for _, sel := range d.order {
		if _, err := fmt.Fprintf(w, "<%s>%s</%s>\n", sel, content(d.elements[sel].Instance), sel); err != nil {
			return err
		}
	}
	return nil
}

func content(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case Renderer:
		return x.Render()
	case *compose.Instance:
		return x.Component.Name
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
