package report

import (
	"encoding/json"
	"fmt"
)

// AttackEvent is one parsed rule match from a WAF result payload.
type AttackEvent struct {
	Rule        RuleInfo    `json:"rule"`
	RuleMatches []RuleMatch `json:"rule_matches"`
}

// RuleInfo identifies the matched rule and its metadata.
type RuleInfo struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Tags map[string]string `json:"tags"`
}

// RuleMatch is one operator match within a rule.
type RuleMatch struct {
	Operator      string           `json:"operator"`
	OperatorValue string           `json:"operator_value"`
	Parameters    []MatchParameter `json:"parameters"`
}

// MatchParameter describes where and what the operator matched.
type MatchParameter struct {
	// Address names the input the match was found in.
	Address string `json:"address"`

	// KeyPath is the path into the source value.
	KeyPath []any `json:"key_path"`

	// Value is the matched value.
	Value string `json:"value"`

	// Highlight contains the matched substrings.
	Highlight []string `json:"highlight"`
}

// ParseEvents parses a raw match payload into structured attack events.
func ParseEvents(payload json.RawMessage) ([]AttackEvent, error) {
	var events []AttackEvent
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, fmt.Errorf("failed to parse attack payload: %w", err)
	}
	return events, nil
}
