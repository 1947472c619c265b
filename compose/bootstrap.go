package compose

import (
	"errors"

	"github.com/fenrir/approot/di"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is a lifecycle state of a graph or a mounted handle.
type State uint8

const (
	StateUndeclared State = iota
	StateResolved
	StateMounted
	StateTornDown
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUndeclared:
		return "undeclared"
	case StateResolved:
		return "resolved"
	case StateMounted:
		return "mounted"
	case StateTornDown:
		return "torn-down"
	default:
		return "unknown"
	}
}

// Handle is one mounted bootstrap component.
type Handle struct {
	ID        uuid.UUID
	Component *Component
	Instance  any
	Mount     MountPoint

	state State
	host  Host
	log   *zap.Logger
}

// State returns StateMounted or StateTornDown.
func (h *Handle) State() State { return h.state }

// Teardown detaches the instance and disposes it if it implements
// di.Disposer. Calling Teardown on a torn-down handle is a no-op.
//
// The handle ends torn down even when the host reports an error.
func (h *Handle) Teardown() error {
	if h.state == StateTornDown {
		return nil
	}
	h.state = StateTornDown

	var errs []error
	if err := h.host.Detach(h.Instance, h.Mount); err != nil {
		errs = append(errs, MountError{Component: h.Component.Name, Op: "detach", Err: err})
	}
	if d, ok := h.Instance.(di.Disposer); ok {
		if err := d.Dispose(); err != nil {
			errs = append(errs, MountError{Component: h.Component.Name, Op: "dispose", Err: err})
		}
	}
	h.log.Info("component torn down",
		zap.String("component", h.Component.Name),
		zap.Stringer("handle", h.ID),
	)
	return errors.Join(errs...)
}

// Bootstrap constructs every bootstrap component of g exactly once through
// host and attaches it at its mount point. A nil host means FactoryHost.
//
// Every component must have an entry in mounts; this is checked before
// anything is constructed. If construction or attaching fails, components
// already mounted are torn down and the graph stays Resolved.
func Bootstrap(g *Graph, mounts MountPoints, host Host) ([]*Handle, error) {
	if g == nil {
		return nil, InvalidStateError{Op: "bootstrap", Want: StateResolved, Got: StateUndeclared}
	}
	if g.state != StateResolved {
		return nil, InvalidStateError{Op: "bootstrap", Want: StateResolved, Got: g.state}
	}
	if host == nil {
		host = FactoryHost{}
	}

	for _, b := range g.roots {
		if _, ok := mounts[b.Component.Name]; !ok {
			return nil, MissingMountPointError{Component: b.Component.Name, Selector: b.Component.Selector}
		}
	}

	handles := make([]*Handle, 0, len(g.roots))
	rollback := func() {
		for i := len(handles) - 1; i >= 0; i-- {
			if err := handles[i].Teardown(); err != nil {
				g.log.Warn("rollback teardown failed", zap.Error(err))
			}
		}
	}

	for _, b := range g.roots {
		at := mounts[b.Component.Name]

		inst, err := host.Construct(b.Component, b.Deps.Clone())
		if err != nil {
			rollback()
			return nil, MountError{Component: b.Component.Name, Op: "construct", Err: err}
		}
		if err := host.Attach(inst, at); err != nil {
			if d, ok := inst.(di.Disposer); ok {
				_ = d.Dispose()
			}
			rollback()
			return nil, MountError{Component: b.Component.Name, Op: "attach", Err: err}
		}

		h := &Handle{
			ID:        uuid.New(),
			Component: b.Component,
			Instance:  inst,
			Mount:     at,
			state:     StateMounted,
			host:      host,
			log:       g.log,
		}
		handles = append(handles, h)
		g.log.Info("component mounted",
			zap.String("component", b.Component.Name),
			zap.String("selector", at.Selector),
			zap.Stringer("handle", h.ID),
		)
	}

	g.handles = handles
	g.state = StateMounted

	out := make([]*Handle, len(handles))
	copy(out, handles)
	return out, nil
}

// Handles returns the handles created by Bootstrap.
func (g *Graph) Handles() []*Handle {
	out := make([]*Handle, len(g.handles))
	copy(out, g.handles)
	return out
}

// Shutdown tears down every handle in reverse mount order and disposes the
// provider instances of every scope, importers before imports. It is
// idempotent and may also be called on a graph that was never bootstrapped.
func (g *Graph) Shutdown() error {
	if g.state == StateTornDown {
		return nil
	}
	var errs []error
	for i := len(g.handles) - 1; i >= 0; i-- {
		if err := g.handles[i].Teardown(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := g.disposeScopes(); err != nil {
		errs = append(errs, err)
	}
	g.state = StateTornDown
	g.log.Info("composition shut down")
	return errors.Join(errs...)
}
