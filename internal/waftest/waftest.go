// Package waftest provides scripted fakes for the waf engine contract,
// used by package tests across the module.
package waftest

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bastion-hq/rampart/pkg/appsec/addresses"
	"bastion-hq/rampart/pkg/waf"
)

// Engine is a fake waf.Engine that records handle creation and scripts
// evaluation outcomes through OnRun.
type Engine struct {
	mu sync.Mutex

	// OnRun scripts the outcome of every handle evaluation. When nil,
	// evaluations succeed with an empty result.
	OnRun func(data map[addresses.Address]any, budget time.Duration) (*waf.Result, error)

	handles []*Handle
	closed  bool
}

// NewEngine creates a fake engine.
func NewEngine() *Engine {
	return &Engine{}
}

// NewHandle implements waf.Engine.
func (e *Engine) NewHandle() (waf.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("engine closed")
	}
	h := &Handle{engine: e}
	e.handles = append(e.handles, h)
	return h, nil
}

// Close implements waf.Engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// HandleCount returns how many handles the engine has created.
func (e *Engine) HandleCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handles)
}

// OpenHandles returns how many created handles are not yet closed.
func (e *Engine) OpenHandles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	open := 0
	for _, h := range e.handles {
		if !h.Closed() {
			open++
		}
	}
	return open
}

// Handle is a fake waf.Handle.
type Handle struct {
	engine *Engine

	mu      sync.Mutex
	closed  bool
	runs    int
	budgets []time.Duration
	lastRun map[addresses.Address]any
}

// Run implements waf.Handle.
func (h *Handle) Run(data map[addresses.Address]any, budget time.Duration) (*waf.Result, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, fmt.Errorf("handle closed")
	}
	h.runs++
	h.budgets = append(h.budgets, budget)
	h.lastRun = data
	onRun := h.engine.OnRun
	h.mu.Unlock()

	if onRun != nil {
		return onRun(data, budget)
	}
	return &waf.Result{}, nil
}

// Close implements waf.Handle.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("handle already closed")
	}
	h.closed = true
	return nil
}

// Closed implements waf.Handle.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Runs returns how many times the handle was evaluated.
func (h *Handle) Runs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs
}

// LastBudget returns the budget passed to the most recent evaluation.
func (h *Handle) LastBudget() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.budgets) == 0 {
		return 0
	}
	return h.budgets[len(h.budgets)-1]
}

// LastData returns the address data passed to the most recent evaluation.
func (h *Handle) LastData() map[addresses.Address]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastRun
}

// Handles returns every handle the engine created, in creation order.
func (e *Engine) Handles() []*Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Handle, len(e.handles))
	copy(out, e.handles)
	return out
}

// MatchResult builds a waf.Result carrying a single-event match payload in
// the appsec event schema, convenient for scripting OnRun.
func MatchResult(action waf.Action, ruleID, ruleName string) *waf.Result {
	payload, _ := json.Marshal([]map[string]any{
		{
			"rule": map[string]any{
				"id":   ruleID,
				"name": ruleName,
				"tags": map[string]string{"category": "attack_attempt"},
			},
			"rule_matches": []map[string]any{
				{
					"operator":       "match_regex",
					"operator_value": "test",
					"parameters": []map[string]any{
						{
							"address":   "server.request.query",
							"key_path":  []any{"q"},
							"value":     "test-value",
							"highlight": []string{"test"},
						},
					},
				},
			},
		},
	})
	return &waf.Result{Action: action, Matches: payload}
}
