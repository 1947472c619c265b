package compose_test

import (
	"errors"
	"fmt"

	"github.com/fenrir/approot/compose"
	"github.com/fenrir/approot/di"
)

type service struct {
	name     string
	disposed bool
}

func (s *service) Dispose() error {
	s.disposed = true
	return nil
}

func component(name string, requires ...di.Token) *compose.Component {
	return &compose.Component{Name: name, Selector: "app-" + name, Requires: requires}
}

// recordingHost records every host call and can fail on demand.
type recordingHost struct {
	calls         []string
	failConstruct string
	failAttach    string
	failDetach    bool
}

func (h *recordingHost) Construct(c *compose.Component, deps di.Bag) (any, error) {
	h.calls = append(h.calls, "construct:"+c.Name)
	if c.Name == h.failConstruct {
		return nil, errors.New("construct failed")
	}
	return &service{name: c.Name}, nil
}

func (h *recordingHost) Attach(instance any, at compose.MountPoint) error {
	name := instance.(*service).name
	h.calls = append(h.calls, "attach:"+name+"@"+at.Selector)
	if name == h.failAttach {
		return errors.New("attach failed")
	}
	return nil
}

func (h *recordingHost) Detach(instance any, at compose.MountPoint) error {
	h.calls = append(h.calls, fmt.Sprintf("detach:%s@%s", instance.(*service).name, at.Selector))
	if h.failDetach {
		return errors.New("detach failed")
	}
	return nil
}
