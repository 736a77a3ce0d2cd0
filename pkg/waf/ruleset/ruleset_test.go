package ruleset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleRuleset = `{
	"version": "2.2",
	"metadata": {"rules_version": "1.0.0"},
	"rules": [
		{
			"id": "crs-913-110",
			"name": "Acunetix scanner detected",
			"tags": {"type": "security_scanner", "category": "attack_attempt"},
			"conditions": [
				{
					"operator": "match_regex",
					"parameters": {
						"inputs": [
							{"address": "server.request.headers.no_cookies", "key_path": ["user-agent"]}
						],
						"regex": "acunetix"
					}
				}
			]
		},
		{
			"id": "crs-942-100",
			"name": "SQL injection attempt",
			"tags": {"type": "sql_injection", "category": "attack_attempt"},
			"on_match": ["block"],
			"conditions": [
				{
					"operator": "match_regex",
					"parameters": {
						"inputs": [
							{"address": "server.request.query"},
							{"address": "server.request.body"},
							{"address": "server.request.query"}
						],
						"regex": "union\\s+select"
					}
				}
			]
		}
	]
}`

func TestParse(t *testing.T) {
	rs, err := Parse([]byte(sampleRuleset), "inline")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if rs.Version != "2.2" {
		t.Errorf("Version = %q, want %q", rs.Version, "2.2")
	}
	if len(rs.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(rs.Rules))
	}
	if rs.Rules[0].Tags["type"] != "security_scanner" {
		t.Errorf("rule tags not parsed: %v", rs.Rules[0].Tags)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed json", doc: `{"rules": [`},
		{name: "no rules", doc: `{"version": "2.2", "rules": []}`},
		{name: "rule without id", doc: `{"rules": [{"name": "x", "conditions": [{"operator": "op", "parameters": {"inputs": [{"address": "a"}]}}]}]}`},
		{name: "rule without conditions", doc: `{"rules": [{"id": "r1", "conditions": []}]}`},
		{name: "condition without operator", doc: `{"rules": [{"id": "r1", "conditions": [{"parameters": {"inputs": [{"address": "a"}]}}]}]}`},
		{name: "condition without inputs", doc: `{"rules": [{"id": "r1", "conditions": [{"operator": "op", "parameters": {}}]}]}`},
		{name: "input without address", doc: `{"rules": [{"id": "r1", "conditions": [{"operator": "op", "parameters": {"inputs": [{}]}}]}]}`},
		{name: "duplicate rule ids", doc: `{"rules": [
			{"id": "r1", "conditions": [{"operator": "op", "parameters": {"inputs": [{"address": "a"}]}}]},
			{"id": "r1", "conditions": [{"operator": "op", "parameters": {"inputs": [{"address": "b"}]}}]}
		]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "inline")
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("Parse() error type = %T, want *ParseError", err)
			}
		})
	}
}

func TestRuleAddressNames(t *testing.T) {
	rs, err := Parse([]byte(sampleRuleset), "inline")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// Second rule lists server.request.query twice; AddressNames must
	// deduplicate while preserving first-seen order.
	got := rs.Rules[1].AddressNames()
	want := []string{"server.request.query", "server.request.body"}
	if len(got) != len(want) {
		t.Fatalf("AddressNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AddressNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRuleBlocking(t *testing.T) {
	rs, err := Parse([]byte(sampleRuleset), "inline")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rs.Rules[0].Blocking() {
		t.Error("monitor-only rule reported as blocking")
	}
	if !rs.Rules[1].Blocking() {
		t.Error("block rule not reported as blocking")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	if err := os.WriteFile(path, []byte(sampleRuleset), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rs.Rules) != 2 {
		t.Errorf("len(Rules) = %d, want 2", len(rs.Rules))
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()

	first := `{"version": "2.2", "rules": [{"id": "r1", "conditions": [{"operator": "op", "parameters": {"inputs": [{"address": "server.request.query"}]}}]}]}`
	second := `{"version": "2.2", "rules": [{"id": "r2", "conditions": [{"operator": "op", "parameters": {"inputs": [{"address": "server.request.body"}]}}]}]}`

	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte(first), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.json"), []byte(second), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-JSON files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("not rules"), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rs.Rules) != 2 {
		t.Errorf("len(Rules) = %d, want 2", len(rs.Rules))
	}
}

func TestLoad_DirectoryDuplicateIDs(t *testing.T) {
	dir := t.TempDir()

	doc := `{"rules": [{"id": "r1", "conditions": [{"operator": "op", "parameters": {"inputs": [{"address": "server.request.query"}]}}]}]}`
	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("Load() error = nil, want duplicate id error")
	}
}

func TestLoad_MissingPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
}
