// Package listener routes normalized request data to the analysis callbacks
// interested in it.
//
// The gateway holds the address subscriptions derived from the ruleset.
// Subscriptions whose address sets overlap are merged at registration into a
// single entry, so a request attribute triggers evaluation exactly once even
// when several rules declared interest in it. Dispatch is synchronous on the
// calling goroutine; the gateway accumulates the addresses seen so far for
// each request and hands every matching callback the growing set.
//
// The execution context cache amortizes the cost of creating engine
// evaluation handles across the multiple address deliveries of one request.
// Entries are torn down explicitly at request end; the cache never extends a
// request's lifetime.
package listener
