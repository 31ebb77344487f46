// Package launchurl parses the optional sales-rep bypass token from the URL
// the client was launched with: a web query string or a mobile deep link.
package launchurl

import (
	"net/url"
	"strings"
)

// DefaultParam is the query parameter carrying the bypass token.
const DefaultParam = "slpCode"

// Reader yields the bypass token parsed once at construction.
type Reader struct {
	token string
	ok    bool
}

// Options configures launch URL parsing.
type Options struct {
	// RawURL is the full launch URL, a deep link, or a bare query string.
	RawURL string
	// Param overrides the query parameter name. Defaults to DefaultParam.
	Param string
}

// New parses the launch URL. A malformed URL or missing parameter yields a
// reader with no token; parsing never fails the caller.
func New(opts Options) *Reader {
	param := opts.Param
	if param == "" {
		param = DefaultParam
	}
	token := extractToken(opts.RawURL, param)
	return &Reader{token: token, ok: token != ""}
}

// BypassToken returns the token and whether one was present.
func (r *Reader) BypassToken() (string, bool) {
	return r.token, r.ok
}

func extractToken(raw, param string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// Accept bare query strings ("slpCode=142" or "?slpCode=142") as well
	// as full URLs and deep links.
	query := raw
	if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		query = u.RawQuery
	} else if i := strings.IndexByte(raw, '?'); i >= 0 {
		query = raw[i+1:]
	}
	query = strings.TrimPrefix(query, "?")

	values, err := url.ParseQuery(query)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(values.Get(param))
}
