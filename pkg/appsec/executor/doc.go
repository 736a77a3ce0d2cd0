// Package executor runs WAF evaluations under a fixed CPU-time budget and
// contains every engine fault.
//
// The guiding principle is that a security-analysis malfunction must
// degrade to "this request was not inspected", never to "this request
// failed": any fault raised by the engine is caught, logged once with a
// fixed diagnostic plus the cause, and swallowed. Transient evaluation
// contexts (those created without a request identity) are always released
// afterward, success or fault; request-cached contexts are left alive for
// reuse.
package executor
