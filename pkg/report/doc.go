// Package report turns raw WAF match output into reported attack events.
//
// The Interpreter sits at the end of the evaluation path: it inspects each
// engine result and forwards the raw serialized match payload, together
// with the request context, to the configured Reporter — exactly once per
// non-empty result, and not at all when nothing matched. Reporting is
// comparatively expensive and happens on the hot path, so the "do not
// report when there is nothing to report" contract is the interpreter's
// whole job; parsing the payload into structured attack records is the
// reporter's concern, helped by ParseEvents.
//
// The package ships three reporters: a log reporter (redacted payloads via
// slog), an in-memory reporter for tests and introspection, and a
// SQLite-backed event store in the store subpackage.
package report
