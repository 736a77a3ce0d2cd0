package logging

import (
	"regexp"
)

// Redactor redacts credential material from strings before they are
// logged. Attack payloads carry matched request values verbatim, which can
// include API keys, session cookies, and authorization headers.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// RedactPattern is a custom redaction rule.
type RedactPattern struct {
	Name        string
	Pattern     string
	Replacement string
}

// Built-in pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
	PatternCookie      = "session_cookie"
)

// NewRedactor creates a Redactor with the built-in patterns plus any custom
// ones. Custom patterns with invalid regexes are skipped.
func NewRedactor(custom []RedactPattern) *Redactor {
	r := &Redactor{}
	r.addDefaultPatterns()

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

func (r *Redactor) addDefaultPatterns() {
	defaults := []struct {
		name        string
		regex       string
		replacement string
	}{
		{
			name:        PatternAPIKey,
			regex:       `(sk-[a-zA-Z0-9]+|api[-_]?key[-_:=]\s*[a-zA-Z0-9]+)`,
			replacement: "[redacted-api-key]",
		},
		{
			name:        PatternBearerToken,
			regex:       `(?i)bearer\s+[a-zA-Z0-9._\-]+`,
			replacement: "Bearer [redacted]",
		},
		{
			name:        PatternPassword,
			regex:       `(?i)(password|passwd|pwd)[=:]\s*[^\s&"]+`,
			replacement: "$1=[redacted]",
		},
		{
			name:        PatternCookie,
			regex:       `(?i)(session|sessid|auth_token)=[^\s;&"]+`,
			replacement: "$1=[redacted]",
		},
	}

	for _, d := range defaults {
		r.patterns = append(r.patterns, &redactPattern{
			name:        d.name,
			regex:       regexp.MustCompile(d.regex),
			replacement: d.replacement,
		})
	}
}

// Redact returns s with every pattern occurrence replaced.
func (r *Redactor) Redact(s string) string {
	if r == nil {
		return s
	}
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}
