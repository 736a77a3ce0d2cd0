package listener

import (
	"log/slog"
	"sync"

	"bastion-hq/rampart/pkg/appsec/addresses"
)

// RequestContext is the opaque per-request identity supplied by the caller.
// It is used only as a cache key: the gateway never inspects its contents
// and never extends its lifetime. A nil RequestContext means the delivery
// has no stable request identity. Values must be comparable.
type RequestContext = any

// Callback is an analysis callback bound to a subscription. It receives the
// addresses accumulated so far for the request and the request context.
// Execution is synchronous on the dispatching goroutine; the gateway does
// not catch callback panics.
type Callback func(data map[addresses.Address]any, reqCtx RequestContext)

// subscription is one merged (address set, callback) entry.
type subscription struct {
	// order preserves first-seen registration order of the addresses.
	order []addresses.Address
	set   map[addresses.Address]struct{}
	cb    Callback
}

func (s *subscription) add(addr addresses.Address) {
	if _, ok := s.set[addr]; ok {
		return
	}
	s.set[addr] = struct{}{}
	s.order = append(s.order, addr)
}

// Gateway routes incoming address values to the interested callbacks.
//
// Subscriptions are registered once at startup and are immutable afterward;
// any number of goroutines may then dispatch concurrently for distinct
// requests. Per-request accumulated state is guarded internally.
type Gateway struct {
	cache  *ContextCache
	logger *slog.Logger

	// regMu guards subs during the registration phase.
	regMu sync.RWMutex
	subs  []*subscription

	// stateMu guards the per-request accumulated address values.
	stateMu sync.Mutex
	states  map[RequestContext]map[addresses.Address]any
}

// NewGateway creates a gateway whose per-request cached state is owned by
// the given context cache.
func NewGateway(cache *ContextCache, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		cache:  cache,
		logger: logger.With("component", "appsec.listener"),
		states: make(map[RequestContext]map[addresses.Address]any),
	}
}

// Register adds a subscription for the given ordered address set.
//
// If the set shares at least one address with an already-registered
// subscription, the entries are merged: the union of addresses under the
// first-seen callback. The merge keeps a request attribute from triggering
// evaluation once per overlapping declaration.
func (g *Gateway) Register(addrs []addresses.Address, cb Callback) error {
	if len(addrs) == 0 {
		return ErrNoAddresses
	}
	if cb == nil {
		return ErrNilCallback
	}
	for _, a := range addrs {
		if !addresses.Valid(a) {
			return &InvalidAddressError{Address: a}
		}
	}

	g.regMu.Lock()
	defer g.regMu.Unlock()

	// Collect every existing subscription overlapping the new set.
	var overlapping []*subscription
	for _, sub := range g.subs {
		for _, a := range addrs {
			if _, ok := sub.set[a]; ok {
				overlapping = append(overlapping, sub)
				break
			}
		}
	}

	if len(overlapping) == 0 {
		sub := &subscription{set: make(map[addresses.Address]struct{}, len(addrs)), cb: cb}
		for _, a := range addrs {
			sub.add(a)
		}
		g.subs = append(g.subs, sub)
		return nil
	}

	// Merge into the first-seen overlapping entry, keeping its callback.
	target := overlapping[0]
	for _, a := range addrs {
		target.add(a)
	}
	if len(overlapping) > 1 {
		drop := make(map[*subscription]struct{}, len(overlapping)-1)
		for _, sub := range overlapping[1:] {
			for _, a := range sub.order {
				target.add(a)
			}
			drop[sub] = struct{}{}
		}
		kept := g.subs[:0]
		for _, sub := range g.subs {
			if _, gone := drop[sub]; !gone {
				kept = append(kept, sub)
			}
		}
		g.subs = kept
	}

	return nil
}

// Dispatch delivers one (address, value) pair for the given request,
// invoking every subscription containing the address with the request's
// accumulated address data. Unknown addresses are ignored.
//
// A repeated delivery of an already-seen address re-fires the matching
// callbacks with the updated value.
func (g *Gateway) Dispatch(addr addresses.Address, value any, reqCtx RequestContext) {
	if !addresses.Valid(addr) {
		g.logger.Debug("dropping value for unknown address", "address", string(addr))
		return
	}

	data := g.accumulate(addr, value, reqCtx)

	g.regMu.RLock()
	subs := g.subs
	g.regMu.RUnlock()

	for _, sub := range subs {
		if _, ok := sub.set[addr]; ok {
			sub.cb(data, reqCtx)
		}
	}
}

// accumulate records the value under the request's state and returns a
// snapshot of everything seen so far. Deliveries without a request identity
// see only their own value.
func (g *Gateway) accumulate(addr addresses.Address, value any, reqCtx RequestContext) map[addresses.Address]any {
	if reqCtx == nil {
		return map[addresses.Address]any{addr: value}
	}

	g.stateMu.Lock()
	defer g.stateMu.Unlock()

	state, ok := g.states[reqCtx]
	if !ok {
		state = make(map[addresses.Address]any)
		g.states[reqCtx] = state
	}
	state[addr] = value

	// Callbacks get a copy so later deliveries cannot mutate data a
	// callback may still hold.
	snapshot := make(map[addresses.Address]any, len(state))
	for k, v := range state {
		snapshot[k] = v
	}
	return snapshot
}

// Clear drops all per-request state held for reqCtx, including the cached
// engine handle. It is called at request teardown. Subscriptions remain
// registered.
func (g *Gateway) Clear(reqCtx RequestContext) {
	if reqCtx == nil {
		return
	}

	g.stateMu.Lock()
	delete(g.states, reqCtx)
	g.stateMu.Unlock()

	if g.cache != nil {
		g.cache.Clear(reqCtx)
	}
}

// ClearAll drops the per-request state of every request, used at engine
// reconfiguration. Subscriptions remain registered.
func (g *Gateway) ClearAll() {
	g.stateMu.Lock()
	g.states = make(map[RequestContext]map[addresses.Address]any)
	g.stateMu.Unlock()

	if g.cache != nil {
		g.cache.ClearAll()
	}
}

// Subscriptions returns the number of merged subscription entries.
func (g *Gateway) Subscriptions() int {
	g.regMu.RLock()
	defer g.regMu.RUnlock()
	return len(g.subs)
}

// SubscribedAddresses returns the addresses of every merged entry, in
// registration order, for introspection and startup logging.
func (g *Gateway) SubscribedAddresses() [][]addresses.Address {
	g.regMu.RLock()
	defer g.regMu.RUnlock()

	out := make([][]addresses.Address, len(g.subs))
	for i, sub := range g.subs {
		addrs := make([]addresses.Address, len(sub.order))
		copy(addrs, sub.order)
		out[i] = addrs
	}
	return out
}
