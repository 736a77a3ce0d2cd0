package addresses

// Address identifies one category of normalized request data evaluable by
// the rule engine. Addresses are immutable, namespaced string keys.
type Address string

// Known input addresses.
const (
	ServerRequestMethod            Address = "server.request.method"
	ServerRequestRawURI            Address = "server.request.uri.raw"
	ServerRequestHeadersNoCookies  Address = "server.request.headers.no_cookies"
	ServerRequestCookies           Address = "server.request.cookies"
	ServerRequestQuery             Address = "server.request.query"
	ServerRequestPathParams        Address = "server.request.path_params"
	ServerRequestBody              Address = "server.request.body"
	ServerResponseStatus           Address = "server.response.status"
	ServerResponseHeadersNoCookies Address = "server.response.headers.no_cookies"
	HTTPClientIP                   Address = "http.client_ip"
	UserID                         Address = "usr.id"
)

var known = map[Address]struct{}{
	ServerRequestMethod:            {},
	ServerRequestRawURI:            {},
	ServerRequestHeadersNoCookies:  {},
	ServerRequestCookies:           {},
	ServerRequestQuery:             {},
	ServerRequestPathParams:        {},
	ServerRequestBody:              {},
	ServerResponseStatus:           {},
	ServerResponseHeadersNoCookies: {},
	HTTPClientIP:                   {},
	UserID:                         {},
}

// Valid reports whether a is a recognized address name.
func Valid(a Address) bool {
	_, ok := known[a]
	return ok
}

// All returns every recognized address, in no particular order.
func All() []Address {
	out := make([]Address, 0, len(known))
	for a := range known {
		out = append(out, a)
	}
	return out
}

// IsStatusCode reports whether a carries a numeric HTTP status code.
// Values bound to such addresses are coerced to their string representation
// before submission to the rule engine, which expects homogeneous typing
// for that address class.
func IsStatusCode(a Address) bool {
	return a == ServerResponseStatus
}
