package waf

import (
	"encoding/json"
	"time"

	"bastion-hq/rampart/pkg/appsec/addresses"
	"bastion-hq/rampart/pkg/waf/ruleset"
)

// DefaultBudget is the CPU-time allowance for one evaluation call unless
// the caller overrides it.
const DefaultBudget = 5000 * time.Microsecond

// Action is the engine's classification of an evaluation outcome.
type Action string

const (
	// ActionNone means no rule matched.
	ActionNone Action = ""

	// ActionMonitor means at least one rule matched and the event should
	// be reported without interfering with the request.
	ActionMonitor Action = "monitor"

	// ActionBlock means at least one matched rule requests blocking.
	ActionBlock Action = "block"
)

// Result is the raw output of one engine evaluation.
type Result struct {
	// Action is the classification of the outcome.
	Action Action

	// Matches is the serialized list of rule matches, empty or nil when
	// nothing matched. Its schema is the engine's appsec event format;
	// see the report package for the parsed form.
	Matches json.RawMessage
}

// HasMatches reports whether the result carries any rule matches.
func (r *Result) HasMatches() bool {
	return r != nil && len(r.Matches) > 0 && string(r.Matches) != "null" && string(r.Matches) != "[]"
}

// Handle is an engine evaluation context bound to at most one request.
// Handles are expensive to create, cheap to reuse, and must be closed
// exactly once; a closed handle must never be evaluated again.
//
// Handles are not safe for concurrent use. The caller confines each handle
// to its request's thread of control.
type Handle interface {
	// Run evaluates the given address data under the budget, a
	// cooperative CPU-time limit enforced by the engine.
	Run(data map[addresses.Address]any, budget time.Duration) (*Result, error)

	// Close releases the handle. Closing an already-closed handle is an
	// error of the binding's choosing; callers check Closed first.
	Close() error

	// Closed reports whether the handle has been released.
	Closed() bool
}

// Engine is a compiled ruleset able to hand out evaluation handles.
type Engine interface {
	// NewHandle creates a fresh evaluation handle.
	NewHandle() (Handle, error)

	// Close releases the engine and invalidates all outstanding handles.
	Close() error
}

// Loader compiles a parsed ruleset into an engine. A malformed ruleset
// fails with a *CompilationError carrying the engine's diagnostic.
type Loader func(rs *ruleset.Ruleset) (Engine, error)
