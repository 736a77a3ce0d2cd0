package report

import (
	"encoding/json"
	"log/slog"

	"bastion-hq/rampart/pkg/telemetry/logging"
)

// LogReporter writes attack events to the structured log, redacting
// credential material from the payload first.
type LogReporter struct {
	logger   *slog.Logger
	redactor *logging.Redactor
}

// NewLogReporter creates a log reporter. A nil redactor logs payloads
// verbatim.
func NewLogReporter(logger *slog.Logger, redactor *logging.Redactor) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{
		logger:   logger.With("component", "appsec.report.log"),
		redactor: redactor,
	}
}

// ReportAttack implements Reporter.
func (r *LogReporter) ReportAttack(payload json.RawMessage, reqCtx any) {
	events, err := ParseEvents(payload)
	if err != nil {
		r.logger.Error("failed to parse attack payload", "error", err)
		return
	}

	for _, ev := range events {
		r.logger.Warn("attack detected",
			"rule_id", ev.Rule.ID,
			"rule_name", ev.Rule.Name,
			"tags", ev.Rule.Tags,
			"match_count", len(ev.RuleMatches),
			"payload", r.redactor.Redact(string(payload)),
			"request", ContextID(reqCtx),
		)
	}
}

// ContextID derives a loggable identifier from an opaque request context.
func ContextID(reqCtx any) string {
	switch v := reqCtx.(type) {
	case nil:
		return ""
	case string:
		return v
	case interface{ ID() string }:
		return v.ID()
	case interface{ String() string }:
		return v.String()
	default:
		return "unidentified"
	}
}
