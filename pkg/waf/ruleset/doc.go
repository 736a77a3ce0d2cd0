// Package ruleset models the JSON rule description consumed by the WAF
// engine and the address-subscription builder.
//
// The package does not define the rule format itself; it parses the
// established schema (rules carrying conditions, each condition naming the
// input addresses it operates on) far enough to validate a document and to
// derive the set of addresses a rule requires. Compiling rules into an
// executable matcher is the engine binding's concern.
//
// Rulesets are loaded from a single JSON file or a directory of JSON files,
// and can be watched for changes with a debounced fsnotify watcher to
// support hot reload.
package ruleset
