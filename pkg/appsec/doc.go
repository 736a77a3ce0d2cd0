// Package appsec is the in-process security analysis core of the request
// inspection layer.
//
// The Agent compiles a ruleset into a WAF engine through a registered
// binding, derives one address subscription per rule (merged by overlap in
// the listener gateway), and runs the engine under a strict CPU-time budget
// for every address delivery. Raw matches become reported attack events;
// engine faults are contained and the host request pipeline is never
// blocked or crashed.
//
// Data flow:
//
//	address value arrives
//	       ↓
//	listener.Gateway (merged subscriptions)
//	       ↓
//	listener.ContextCache (per-request engine handle)
//	       ↓
//	executor.Executor (budgeted, fault-isolated evaluation)
//	       ↓
//	report.Interpreter → Reporter (attack events)
//
// A ruleset compilation failure disables the agent for the process without
// crashing the host: New returns a *waf.CompilationError and every Agent
// method is safe to call on a nil receiver, degrading to "not inspected".
package appsec
