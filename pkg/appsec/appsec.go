package appsec

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bastion-hq/rampart/pkg/appsec/addresses"
	"bastion-hq/rampart/pkg/appsec/executor"
	"bastion-hq/rampart/pkg/appsec/listener"
	"bastion-hq/rampart/pkg/report"
	"bastion-hq/rampart/pkg/telemetry/metrics"
	"bastion-hq/rampart/pkg/waf"
	"bastion-hq/rampart/pkg/waf/ruleset"
)

// ActionSink is implemented by request contexts that want to observe the
// action classification of evaluations run on their behalf (e.g. to block
// the request). The agent never inspects a request context beyond this
// optional capability check.
type ActionSink interface {
	SecurityAction(action waf.Action)
}

// Config contains configuration for the Agent.
type Config struct {
	// Loader compiles rulesets into an engine. Required.
	Loader waf.Loader

	// Reporter receives attack events. Optional; without one, matches
	// are detected but not reported.
	Reporter report.Reporter

	// Budget is the CPU-time allowance per evaluation call.
	// Default: waf.DefaultBudget (5000µs).
	Budget time.Duration

	// Logger is the structured logger. Default: slog.Default().
	Logger *slog.Logger

	// Metrics records evaluation metrics. Optional.
	Metrics *metrics.WAFMetrics
}

// pipeline bundles the per-engine state swapped atomically on reload.
type pipeline struct {
	engine  waf.Engine
	gateway *listener.Gateway
	cache   *listener.ContextCache
	exec    *executor.Executor
}

// Agent owns the full analysis pipeline for one compiled ruleset.
type Agent struct {
	cfg    Config
	logger *slog.Logger

	mu sync.RWMutex
	p  *pipeline
}

// New compiles the ruleset and builds the analysis pipeline.
//
// A ruleset the engine rejects yields a *waf.CompilationError; callers
// catch it and degrade to disabled rather than crash the host application.
func New(cfg Config, rs *ruleset.Ruleset) (*Agent, error) {
	if cfg.Loader == nil {
		return nil, waf.ErrNoEngine
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Budget <= 0 {
		cfg.Budget = waf.DefaultBudget
	}

	a := &Agent{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "appsec"),
	}

	p, err := a.build(rs)
	if err != nil {
		return nil, err
	}
	a.p = p

	a.logger.Info("security analysis enabled",
		"rule_count", len(rs.Rules),
		"subscriptions", p.gateway.Subscriptions(),
		"budget_us", cfg.Budget.Microseconds(),
	)
	return a, nil
}

// build compiles the ruleset and wires a fresh pipeline around the engine.
func (a *Agent) build(rs *ruleset.Ruleset) (*pipeline, error) {
	if rs == nil {
		return nil, &waf.CompilationError{Diagnostic: "ruleset is nil"}
	}

	engine, err := a.cfg.Loader(rs)
	if err != nil {
		var cerr *waf.CompilationError
		if errors.As(err, &cerr) {
			a.logger.Error("ruleset compilation failed", "error", err)
			return nil, err
		}
		cerr = &waf.CompilationError{Diagnostic: err.Error(), Cause: err}
		a.logger.Error("ruleset compilation failed", "error", cerr)
		return nil, cerr
	}

	cache := listener.NewContextCache(engine, a.cfg.Logger)
	gateway := listener.NewGateway(cache, a.cfg.Logger)
	interp := report.NewInterpreter(a.cfg.Reporter, a.cfg.Logger)
	exec := executor.New(a.cfg.Budget, interp, a.cfg.Logger, a.cfg.Metrics)

	p := &pipeline{
		engine:  engine,
		gateway: gateway,
		cache:   cache,
		exec:    exec,
	}

	if err := a.buildSubscriptions(p, rs); err != nil {
		gateway.ClearAll()
		engine.Close()
		return nil, err
	}
	return p, nil
}

// buildSubscriptions derives each rule's required address set and registers
// it with the gateway, which merges overlapping sets into single entries.
//
// Address names a rule references but the registry does not recognize are
// excluded from that rule's requirement set. The tolerant default keeps a
// ruleset written for a newer address vocabulary usable, but each exclusion
// is surfaced as a startup warning so a misconfigured rule is visible.
func (a *Agent) buildSubscriptions(p *pipeline, rs *ruleset.Ruleset) error {
	cb := a.wafCallback(p)

	for _, rule := range rs.Rules {
		var addrs []addresses.Address
		for _, name := range rule.AddressNames() {
			addr := addresses.Address(name)
			if !addresses.Valid(addr) {
				a.logger.Warn("rule references unknown address, excluding it",
					"rule_id", rule.ID,
					"address", name,
				)
				continue
			}
			addrs = append(addrs, addr)
		}
		if len(addrs) == 0 {
			a.logger.Warn("rule has no recognized addresses, skipping",
				"rule_id", rule.ID,
			)
			continue
		}

		if err := p.gateway.Register(addrs, cb); err != nil {
			return fmt.Errorf("failed to register subscription for rule %q: %w", rule.ID, err)
		}
	}

	if p.gateway.Subscriptions() == 0 {
		return &waf.CompilationError{Diagnostic: "no rule produced a usable address subscription"}
	}
	return nil
}

// wafCallback builds the analysis callback shared by every subscription:
// fetch (or create) the request's evaluation context, run the engine under
// budget, and surface the resulting action to the request if it listens.
func (a *Agent) wafCallback(p *pipeline) listener.Callback {
	return func(data map[addresses.Address]any, reqCtx listener.RequestContext) {
		h, transient, err := p.cache.GetOrCreate(reqCtx)
		if err != nil {
			a.logger.Error("failed to create waf evaluation context", "error", err)
			return
		}
		if transient {
			a.cfg.Metrics.RecordContextCreation("transient")
		}

		res := p.exec.Run(h, transient, data, reqCtx)
		if res == nil || res.Action == waf.ActionNone {
			return
		}
		if sink, ok := reqCtx.(ActionSink); ok {
			sink.SecurityAction(res.Action)
		}
	}
}

// Dispatch delivers one (address, value) pair for the given request.
// Safe on a nil or closed agent: the delivery is dropped.
func (a *Agent) Dispatch(addr addresses.Address, value any, reqCtx listener.RequestContext) {
	if a == nil {
		return
	}
	a.mu.RLock()
	p := a.p
	a.mu.RUnlock()
	if p == nil {
		return
	}
	p.gateway.Dispatch(addr, value, reqCtx)
}

// CloseRequest tears down all per-request state held for reqCtx. Hosts
// call it when the request completes; any handle reference still held
// becomes stale and must not be reused.
func (a *Agent) CloseRequest(reqCtx listener.RequestContext) {
	if a == nil {
		return
	}
	a.mu.RLock()
	p := a.p
	a.mu.RUnlock()
	if p == nil {
		return
	}
	p.gateway.Clear(reqCtx)
}

// Enabled reports whether the agent is inspecting requests.
func (a *Agent) Enabled() bool {
	if a == nil {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.p != nil
}

// Reload compiles a new ruleset and swaps the pipeline atomically. The
// previous engine's per-request state is dropped and the engine released.
// On compilation failure the running pipeline stays in place.
func (a *Agent) Reload(rs *ruleset.Ruleset) error {
	if a == nil {
		return waf.ErrNoEngine
	}

	next, err := a.build(rs)
	if err != nil {
		return err
	}

	a.mu.Lock()
	prev := a.p
	a.p = next
	a.mu.Unlock()

	if prev != nil {
		prev.gateway.ClearAll()
		if err := prev.engine.Close(); err != nil {
			a.logger.Debug("failed to close previous engine", "error", err)
		}
	}

	a.logger.Info("ruleset reloaded",
		"rule_count", len(rs.Rules),
		"subscriptions", next.gateway.Subscriptions(),
	)
	return nil
}

// ReloadFromFile loads a ruleset from path and applies it via Reload.
func (a *Agent) ReloadFromFile(path string) error {
	rs, err := ruleset.Load(path)
	if err != nil {
		return err
	}
	return a.Reload(rs)
}

// Close shuts the agent down, releasing every cached evaluation context
// and the engine. The agent stays disabled afterward.
func (a *Agent) Close() error {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	p := a.p
	a.p = nil
	a.mu.Unlock()

	if p == nil {
		return nil
	}
	p.gateway.ClearAll()
	return p.engine.Close()
}
