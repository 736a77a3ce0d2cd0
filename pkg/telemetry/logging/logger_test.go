package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Error("info line emitted at warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn line missing")
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hello", "component", "test")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["component"] != "test" {
		t.Errorf("component attr = %v, want test", entry["component"])
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "bad level", cfg: Config{Level: "loud"}},
		{name: "bad format", cfg: Config{Format: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}
