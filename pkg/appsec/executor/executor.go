package executor

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"bastion-hq/rampart/pkg/appsec/addresses"
	"bastion-hq/rampart/pkg/report"
	"bastion-hq/rampart/pkg/telemetry/metrics"
	"bastion-hq/rampart/pkg/waf"
)

// evalFailedMsg is the fixed diagnostic logged for every contained engine
// fault.
const evalFailedMsg = "waf evaluation failed, request not inspected"

// Executor invokes the engine's evaluate operation under a budget and
// forwards successful results to the interpreter.
type Executor struct {
	budget  time.Duration
	interp  *report.Interpreter
	logger  *slog.Logger
	metrics *metrics.WAFMetrics
}

// New creates an executor. A non-positive budget selects waf.DefaultBudget;
// metrics may be nil.
func New(budget time.Duration, interp *report.Interpreter, logger *slog.Logger, m *metrics.WAFMetrics) *Executor {
	if budget <= 0 {
		budget = waf.DefaultBudget
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		budget:  budget,
		interp:  interp,
		logger:  logger.With("component", "appsec.executor"),
		metrics: m,
	}
}

// Budget returns the configured per-call CPU-time allowance.
func (e *Executor) Budget() time.Duration {
	return e.budget
}

// Run evaluates the address data on the given handle. transient marks a
// handle created without a request identity, which the executor owns and
// always releases before returning, success or fault.
//
// Engine faults never propagate: they are logged and Run returns nil.
func (e *Executor) Run(h waf.Handle, transient bool, data map[addresses.Address]any, reqCtx any) *waf.Result {
	if transient {
		defer func() {
			if !h.Closed() {
				if err := h.Close(); err != nil {
					e.logger.Debug("failed to close transient waf context", "error", err)
				}
			}
		}()
	}

	start := time.Now()
	result, err := h.Run(coerce(data), e.budget)
	elapsed := time.Since(start)

	if err != nil {
		e.logger.Error(evalFailedMsg, "error", err)
		e.metrics.RecordRun(metrics.OutcomeFault, elapsed)
		return nil
	}

	if result.HasMatches() {
		e.metrics.RecordRun(metrics.OutcomeMatch, elapsed)
		e.metrics.RecordAttack(string(result.Action))
	} else {
		e.metrics.RecordRun(metrics.OutcomeOK, elapsed)
	}

	e.interp.Apply(result, reqCtx)
	return result
}

// coerce normalizes address values before submission. Values bound to
// status-code addresses are converted to their string representation; the
// engine expects homogeneous typing for that address class. Everything
// else passes through unchanged, nested structures included.
func coerce(data map[addresses.Address]any) map[addresses.Address]any {
	var out map[addresses.Address]any
	for addr, v := range data {
		if !addresses.IsStatusCode(addr) {
			continue
		}
		coerced, changed := stringifyNumber(v)
		if !changed {
			continue
		}
		if out == nil {
			out = make(map[addresses.Address]any, len(data))
			for k, val := range data {
				out[k] = val
			}
		}
		out[addr] = coerced
	}
	if out == nil {
		return data
	}
	return out
}

// stringifyNumber converts a numeric value to its string representation.
func stringifyNumber(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case json.Number:
		return n.String(), true
	default:
		return "", false
	}
}
