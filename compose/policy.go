package compose

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Policy decides which import wins when several imports export the same token.
// A module's own providers always win over anything imported.
type Policy uint8

const (
	// LastImportWins searches imports from last to first.
	LastImportWins Policy = iota
	// FirstImportWins searches imports in declaration order.
	FirstImportWins
)

// String returns the policy's configuration name.
func (p Policy) String() string {
	switch p {
	case LastImportWins:
		return "last-import-wins"
	case FirstImportWins:
		return "first-import-wins"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy parses a configuration name. An empty string selects the default.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-import-wins", "last":
		return LastImportWins, nil
	case "first-import-wins", "first":
		return FirstImportWins, nil
	default:
		return 0, fmt.Errorf("compose: unknown override policy %q", s)
	}
}

// Option configures Resolve.
type Option func(*options)

type options struct {
	log    *zap.Logger
	policy Policy
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop(), policy: LastImportWins}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for resolution and lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithPolicy sets the import override policy.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}
