package ruleset

import (
	"encoding/json"
	"fmt"
)

// Ruleset is a parsed rule description document.
type Ruleset struct {
	// Version is the schema version of the document.
	Version string `json:"version"`

	// Metadata carries free-form document metadata (origin, revision).
	Metadata map[string]string `json:"metadata,omitempty"`

	// Rules contains the individual detection rules.
	Rules []Rule `json:"rules"`
}

// Rule is one detection rule.
type Rule struct {
	// ID uniquely identifies the rule within the ruleset.
	ID string `json:"id"`

	// Name is the human-readable rule name.
	Name string `json:"name"`

	// Tags carries rule metadata such as category and attack type.
	Tags map[string]string `json:"tags,omitempty"`

	// Conditions are the match conditions; a rule triggers when all of
	// its conditions are satisfied.
	Conditions []Condition `json:"conditions"`

	// OnMatch lists the actions to take when the rule matches
	// (e.g. "monitor", "block"). Empty means monitor.
	OnMatch []string `json:"on_match,omitempty"`
}

// Condition is one match condition of a rule.
type Condition struct {
	// Operator names the matching operator (e.g. "match_regex",
	// "phrase_match"). Operator semantics belong to the engine binding.
	Operator string `json:"operator"`

	// Parameters carries the operator inputs.
	Parameters Parameters `json:"parameters"`
}

// Parameters carries the inputs of a condition.
type Parameters struct {
	// Inputs names the addresses the condition reads.
	Inputs []Input `json:"inputs"`

	// Regex is the pattern for regex operators.
	Regex string `json:"regex,omitempty"`

	// List is the value list for list-based operators.
	List []string `json:"list,omitempty"`

	// Options carries operator-specific options.
	Options map[string]string `json:"options,omitempty"`
}

// Input names one address (and optionally a path within its value) read by
// a condition.
type Input struct {
	Address string   `json:"address"`
	KeyPath []string `json:"key_path,omitempty"`
}

// Parse parses and validates a ruleset document. source names the document
// origin for diagnostics (a file path, or "inline").
func Parse(data []byte, source string) (*Ruleset, error) {
	var rs Ruleset
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, &ParseError{Source: source, Cause: err}
	}

	if err := rs.validate(); err != nil {
		return nil, &ParseError{Source: source, Cause: err}
	}

	return &rs, nil
}

// validate checks the structural invariants of a parsed document.
func (rs *Ruleset) validate() error {
	if len(rs.Rules) == 0 {
		return fmt.Errorf("ruleset contains no rules")
	}

	seen := make(map[string]struct{}, len(rs.Rules))
	for i, rule := range rs.Rules {
		if rule.ID == "" {
			return fmt.Errorf("rule at index %d has no id", i)
		}
		if _, dup := seen[rule.ID]; dup {
			return fmt.Errorf("duplicate rule id %q", rule.ID)
		}
		seen[rule.ID] = struct{}{}

		if len(rule.Conditions) == 0 {
			return fmt.Errorf("rule %q has no conditions", rule.ID)
		}
		for j, cond := range rule.Conditions {
			if cond.Operator == "" {
				return fmt.Errorf("rule %q condition %d has no operator", rule.ID, j)
			}
			if len(cond.Parameters.Inputs) == 0 {
				return fmt.Errorf("rule %q condition %d has no inputs", rule.ID, j)
			}
			for k, in := range cond.Parameters.Inputs {
				if in.Address == "" {
					return fmt.Errorf("rule %q condition %d input %d has no address", rule.ID, j, k)
				}
			}
		}
	}

	return nil
}

// AddressNames returns the distinct address names read by the rule's
// conditions, in first-seen order.
func (r *Rule) AddressNames() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, cond := range r.Conditions {
		for _, in := range cond.Parameters.Inputs {
			if _, ok := seen[in.Address]; ok {
				continue
			}
			seen[in.Address] = struct{}{}
			names = append(names, in.Address)
		}
	}
	return names
}

// Blocking reports whether the rule requests blocking on match.
func (r *Rule) Blocking() bool {
	for _, a := range r.OnMatch {
		if a == "block" {
			return true
		}
	}
	return false
}
