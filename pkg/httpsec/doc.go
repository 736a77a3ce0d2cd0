// Package httpsec adapts incoming HTTP traffic into the normalized address
// vocabulary consumed by the appsec agent.
//
// Middleware wraps an http.Handler: it extracts the request's method, raw
// URI, headers, cookies, query parameters, and client IP, delivers them to
// the agent, and lets the agent's security actions decide whether the
// wrapped handler runs. When a blocking rule matches, the middleware
// responds with 403 and never invokes the wrapped handler. The response
// status code is delivered after the handler completes, allowing rules to
// match on response characteristics.
package httpsec
