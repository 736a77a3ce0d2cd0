package httpsec

import (
	"sync"

	"github.com/google/uuid"

	"bastion-hq/rampart/pkg/waf"
)

// RequestState is the per-request security context the middleware hands to
// the agent. It identifies the request and accumulates the security actions
// produced by rule evaluations.
type RequestState struct {
	id string

	mu     sync.Mutex
	action waf.Action
}

// NewRequestState creates a request state with a fresh identifier.
func NewRequestState() *RequestState {
	return &RequestState{id: uuid.NewString()}
}

// ID returns the request identifier.
func (s *RequestState) ID() string {
	return s.id
}

// SecurityAction records an action classification for this request. A block
// is sticky: once recorded, subsequent monitor actions do not soften it.
func (s *RequestState) SecurityAction(action waf.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.action == waf.ActionBlock {
		return
	}
	s.action = action
}

// Action returns the strongest action recorded so far.
func (s *RequestState) Action() waf.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.action
}

// Blocked reports whether a blocking rule matched this request.
func (s *RequestState) Blocked() bool {
	return s.Action() == waf.ActionBlock
}
