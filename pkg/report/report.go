package report

import (
	"encoding/json"
	"log/slog"

	"bastion-hq/rampart/pkg/waf"
)

// Reporter receives raw attack payloads. Implementations must not block
// the request path for long; slow backends buffer internally.
// Reporting failures are the reporter's to log — they never propagate back
// into the dispatch path.
type Reporter interface {
	// ReportAttack forwards one non-empty match payload and the opaque
	// request context it was observed under.
	ReportAttack(payload json.RawMessage, reqCtx any)
}

// Interpreter applies engine results: nothing matched means no reporting
// call at all.
type Interpreter struct {
	reporter Reporter
	logger   *slog.Logger
}

// NewInterpreter creates an interpreter forwarding to the given reporter.
// A nil reporter makes Apply a no-op beyond match detection.
func NewInterpreter(reporter Reporter, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{
		reporter: reporter,
		logger:   logger.With("component", "appsec.report"),
	}
}

// Apply forwards the result's raw match payload and request context to the
// reporter, exactly once, when the result carries matches. Empty or absent
// results are a no-op.
func (i *Interpreter) Apply(result *waf.Result, reqCtx any) {
	if !result.HasMatches() {
		return
	}
	if i.reporter == nil {
		i.logger.Debug("dropping attack payload, no reporter configured")
		return
	}
	i.reporter.ReportAttack(result.Matches, reqCtx)
}
