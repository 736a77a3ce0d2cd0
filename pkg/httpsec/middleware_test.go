package httpsec

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bastion-hq/rampart/internal/waftest"
	"bastion-hq/rampart/pkg/appsec"
	"bastion-hq/rampart/pkg/appsec/addresses"
	"bastion-hq/rampart/pkg/report"
	"bastion-hq/rampart/pkg/waf"
	"bastion-hq/rampart/pkg/waf/ruleset"
)

func newTestAgent(t *testing.T, engine *waftest.Engine, reporter report.Reporter, addrs ...addresses.Address) *appsec.Agent {
	t.Helper()

	inputs := make([]ruleset.Input, 0, len(addrs))
	for _, a := range addrs {
		inputs = append(inputs, ruleset.Input{Address: string(a)})
	}
	rs := &ruleset.Ruleset{
		Version: "2.2",
		Rules: []ruleset.Rule{
			{
				ID:   "test-rule",
				Name: "test rule",
				Conditions: []ruleset.Condition{
					{
						Operator:   "match_regex",
						Parameters: ruleset.Parameters{Inputs: inputs, Regex: "attack"},
					},
				},
			},
		},
	}

	agent, err := appsec.New(appsec.Config{
		Loader:   func(*ruleset.Ruleset) (waf.Engine, error) { return engine, nil },
		Reporter: reporter,
	}, rs)
	if err != nil {
		t.Fatalf("failed to build agent: %v", err)
	}
	t.Cleanup(func() { agent.Close() })
	return agent
}

func TestMiddlewarePassesCleanRequests(t *testing.T) {
	engine := waftest.NewEngine()
	agent := newTestAgent(t, engine, nil, addresses.ServerRequestRawURI)

	called := false
	handler := Middleware(agent)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthy", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("inner handler was not called")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := engine.OpenHandles(); got != 0 {
		t.Errorf("expected request state released, open handles=%d", got)
	}
}

func TestMiddlewareBlocksMatchingRequests(t *testing.T) {
	engine := waftest.NewEngine()
	engine.OnRun = func(data map[addresses.Address]any, budget time.Duration) (*waf.Result, error) {
		if uri, ok := data[addresses.ServerRequestRawURI].(string); ok && uri == "/admin/../../etc/passwd" {
			return waftest.MatchResult(waf.ActionBlock, "lfi-001", "Path traversal"), nil
		}
		return &waf.Result{}, nil
	}
	reporter := report.NewMemoryReporter()
	agent := newTestAgent(t, engine, reporter, addresses.ServerRequestRawURI)

	called := false
	handler := Middleware(agent)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/../../etc/passwd", nil)
	req.URL.RawPath = ""
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Error("inner handler ran for a blocked request")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if got := len(reporter.Attacks()); got != 1 {
		t.Errorf("expected 1 reported attack, got %d", got)
	}
}

func TestMiddlewareDeliversRequestData(t *testing.T) {
	engine := waftest.NewEngine()
	var seen map[addresses.Address]any
	engine.OnRun = func(data map[addresses.Address]any, budget time.Duration) (*waf.Result, error) {
		seen = data
		return &waf.Result{}, nil
	}
	agent := newTestAgent(t, engine, nil,
		addresses.ServerRequestMethod,
		addresses.ServerRequestRawURI,
		addresses.ServerRequestHeadersNoCookies,
		addresses.ServerRequestCookies,
		addresses.ServerRequestQuery,
		addresses.HTTPClientIP,
	)

	handler := Middleware(agent)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/search?q=term", nil)
	req.Header.Set("User-Agent", "test-client/1.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc123"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := seen[addresses.ServerRequestMethod]; got != http.MethodPost {
		t.Errorf("method = %v", got)
	}
	if got := seen[addresses.ServerRequestRawURI]; got != "/search?q=term" {
		t.Errorf("uri = %v", got)
	}
	if got := seen[addresses.HTTPClientIP]; got != "203.0.113.9" {
		t.Errorf("client ip = %v", got)
	}

	headers, ok := seen[addresses.ServerRequestHeadersNoCookies].(map[string][]string)
	if !ok {
		t.Fatalf("headers have type %T", seen[addresses.ServerRequestHeadersNoCookies])
	}
	if got := headers["user-agent"]; len(got) != 1 || got[0] != "test-client/1.0" {
		t.Errorf("user-agent = %v", got)
	}
	if _, leaked := headers["cookie"]; leaked {
		t.Error("cookie header leaked into no_cookies headers")
	}

	cookies, ok := seen[addresses.ServerRequestCookies].(map[string][]string)
	if !ok {
		t.Fatalf("cookies have type %T", seen[addresses.ServerRequestCookies])
	}
	if got := cookies["session"]; len(got) != 1 || got[0] != "abc123" {
		t.Errorf("session cookie = %v", got)
	}

	query, ok := seen[addresses.ServerRequestQuery].(map[string][]string)
	if !ok {
		t.Fatalf("query has type %T", seen[addresses.ServerRequestQuery])
	}
	if got := query["q"]; len(got) != 1 || got[0] != "term" {
		t.Errorf("query q = %v", got)
	}
}

func TestMiddlewareDeliversResponseStatus(t *testing.T) {
	engine := waftest.NewEngine()
	agent := newTestAgent(t, engine, nil, addresses.ServerResponseStatus)

	handler := Middleware(agent)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Status codes are stringified before evaluation.
	data := engine.Handles()[0].LastData()
	if got := data[addresses.ServerResponseStatus]; got != "404" {
		t.Errorf("expected status %q, got %v", "404", got)
	}
}

func TestMiddlewareDisabledAgent(t *testing.T) {
	var agent *appsec.Agent

	called := false
	handler := Middleware(agent)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("inner handler should run when inspection is disabled")
	}
}

func TestRequestStateBlockIsSticky(t *testing.T) {
	state := NewRequestState()
	if state.Blocked() {
		t.Fatal("fresh state reports blocked")
	}
	state.SecurityAction(waf.ActionBlock)
	state.SecurityAction(waf.ActionMonitor)
	if !state.Blocked() {
		t.Error("monitor action softened an earlier block")
	}
	if state.ID() == "" {
		t.Error("state has no identifier")
	}
}
