// Package waf defines the narrow contract between the security analysis
// core and the pattern-matching rule engine.
//
// The engine is an opaque collaborator: it is compiled from a ruleset by a
// registered Loader, hands out per-request evaluation handles, and evaluates
// address data under a cooperative CPU-time budget. This package contains no
// matching logic; bindings to a concrete engine register themselves with
// Register, in the manner of database/sql drivers:
//
//	import _ "example.com/rampart-libwaf" // registers the "libwaf" loader
//
// When no binding is registered the analysis core degrades to disabled and
// the host application runs uninspected.
package waf
