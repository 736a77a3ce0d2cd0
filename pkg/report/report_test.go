package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"bastion-hq/rampart/pkg/telemetry/logging"
	"bastion-hq/rampart/pkg/waf"
)

const samplePayload = `[
	{
		"rule": {
			"id": "crs-942-100",
			"name": "SQL injection attempt",
			"tags": {"type": "sql_injection", "category": "attack_attempt"}
		},
		"rule_matches": [
			{
				"operator": "match_regex",
				"operator_value": "union\\s+select",
				"parameters": [
					{
						"address": "server.request.query",
						"key_path": ["q"],
						"value": "union select password",
						"highlight": ["union select"]
					}
				]
			}
		]
	}
]`

func TestInterpreter_Apply(t *testing.T) {
	tests := []struct {
		name        string
		result      *waf.Result
		wantReports int
	}{
		{name: "nil result", result: nil, wantReports: 0},
		{name: "no matches", result: &waf.Result{}, wantReports: 0},
		{name: "null matches", result: &waf.Result{Matches: json.RawMessage("null")}, wantReports: 0},
		{name: "empty list", result: &waf.Result{Matches: json.RawMessage("[]")}, wantReports: 0},
		{name: "matches", result: &waf.Result{Action: waf.ActionMonitor, Matches: json.RawMessage(samplePayload)}, wantReports: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := NewMemoryReporter()
			interp := NewInterpreter(reporter, nil)

			interp.Apply(tt.result, "req-X")

			attacks := reporter.Attacks()
			if len(attacks) != tt.wantReports {
				t.Fatalf("got %d reports, want %d", len(attacks), tt.wantReports)
			}
			if tt.wantReports == 1 {
				if string(attacks[0].Payload) != samplePayload {
					t.Error("payload was not forwarded unchanged")
				}
				if attacks[0].ReqCtx != "req-X" {
					t.Errorf("context = %v, want req-X", attacks[0].ReqCtx)
				}
			}
		})
	}
}

func TestInterpreter_NilReporter(t *testing.T) {
	interp := NewInterpreter(nil, nil)
	// Must not panic.
	interp.Apply(&waf.Result{Matches: json.RawMessage(samplePayload)}, nil)
}

func TestParseEvents(t *testing.T) {
	events, err := ParseEvents(json.RawMessage(samplePayload))
	if err != nil {
		t.Fatalf("ParseEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	ev := events[0]
	if ev.Rule.ID != "crs-942-100" {
		t.Errorf("Rule.ID = %q, want crs-942-100", ev.Rule.ID)
	}
	if ev.Rule.Tags["type"] != "sql_injection" {
		t.Errorf("Rule.Tags = %v", ev.Rule.Tags)
	}
	if len(ev.RuleMatches) != 1 {
		t.Fatalf("got %d rule matches, want 1", len(ev.RuleMatches))
	}
	param := ev.RuleMatches[0].Parameters[0]
	if param.Address != "server.request.query" {
		t.Errorf("parameter address = %q", param.Address)
	}
	if len(param.Highlight) != 1 || param.Highlight[0] != "union select" {
		t.Errorf("highlight = %v", param.Highlight)
	}
}

func TestParseEvents_Malformed(t *testing.T) {
	if _, err := ParseEvents(json.RawMessage(`{"not": "a list"}`)); err == nil {
		t.Fatal("ParseEvents() error = nil, want error")
	}
}

func TestLogReporter_RedactsPayload(t *testing.T) {
	payload := `[{"rule": {"id": "r1", "name": "creds"}, "rule_matches": [{"operator": "match_regex", "parameters": [{"address": "server.request.query", "value": "password=hunter2"}]}]}]`

	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	r := NewLogReporter(logger, logging.NewRedactor(nil))
	r.ReportAttack(json.RawMessage(payload), "req-X")

	out := buf.String()
	if !strings.Contains(out, "attack detected") {
		t.Fatal("no attack line logged")
	}
	if strings.Contains(out, "hunter2") {
		t.Error("logged payload was not redacted")
	}
	if !strings.Contains(out, "req-X") {
		t.Error("request context missing from log line")
	}
}

func TestContextID(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "req-1", want: "req-1"},
		{name: "other", in: 42, want: "unidentified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContextID(tt.in); got != tt.want {
				t.Errorf("ContextID(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
