package httpsec

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"bastion-hq/rampart/pkg/appsec"
	"bastion-hq/rampart/pkg/appsec/addresses"
)

// blockResponse is the body returned for blocked requests.
type blockResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Middleware inspects each request with the agent before and after the
// wrapped handler runs. Request-side data (method, URI, headers, cookies,
// query, client IP) is delivered before the handler; if a blocking rule
// matches, the handler never runs and the client receives 403. The response
// status is delivered after the handler, so response-side matches are
// observed in monitoring mode only.
//
// Example usage:
//
//	handler = httpsec.Middleware(agent)(handler)
func Middleware(agent *appsec.Agent) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !agent.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			state := NewRequestState()
			defer agent.CloseRequest(state)

			if ip := clientIP(r); ip != "" {
				agent.Dispatch(addresses.HTTPClientIP, ip, state)
			}
			agent.Dispatch(addresses.ServerRequestMethod, r.Method, state)
			agent.Dispatch(addresses.ServerRequestRawURI, r.URL.RequestURI(), state)
			agent.Dispatch(addresses.ServerRequestHeadersNoCookies, headersNoCookies(r.Header), state)
			if cookies := cookieValues(r); len(cookies) > 0 {
				agent.Dispatch(addresses.ServerRequestCookies, cookies, state)
			}
			if query := r.URL.Query(); len(query) > 0 {
				agent.Dispatch(addresses.ServerRequestQuery, map[string][]string(query), state)
			}

			if state.Blocked() {
				writeBlockResponse(w, state)
				return
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			agent.Dispatch(addresses.ServerResponseStatus, rw.statusCode, state)
			agent.Dispatch(addresses.ServerResponseHeadersNoCookies, headersNoCookies(rw.Header()), state)
		})
	}
}

// writeBlockResponse sends the 403 block page.
func writeBlockResponse(w http.ResponseWriter, state *RequestState) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(blockResponse{
		Error:     "request blocked by security policy",
		RequestID: state.ID(),
	})
}

// headersNoCookies returns the header map with lowercased keys and the
// Cookie header removed. Cookies are delivered under their own address.
func headersNoCookies(h http.Header) map[string][]string {
	out := make(map[string][]string, len(h))
	for name, values := range h {
		lower := strings.ToLower(name)
		if lower == "cookie" || lower == "set-cookie" {
			continue
		}
		out[lower] = values
	}
	return out
}

// cookieValues returns the request's cookies keyed by name.
func cookieValues(r *http.Request) map[string][]string {
	cookies := r.Cookies()
	if len(cookies) == 0 {
		return nil
	}
	out := make(map[string][]string, len(cookies))
	for _, c := range cookies {
		out[c.Name] = append(out[c.Name], c.Value)
	}
	return out
}

// clientIP extracts the client IP, preferring the first X-Forwarded-For
// entry over the socket peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xr := r.Header.Get("X-Real-Ip"); xr != "" {
		return strings.TrimSpace(xr)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
