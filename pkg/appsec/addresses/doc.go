// Package addresses defines the namespaced keys under which normalized
// request data is handed to the security rule engine.
//
// An address names one category of request data (for example the request
// method or the response status code). The set of known addresses is fixed
// at build time; subscriptions referencing an unknown address are rejected
// at registration.
package addresses
