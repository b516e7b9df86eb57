// Package plugin discovers, caches, and loads gtuber extractor plugins:
// Go plugin.so modules built with `go build -buildmode=plugin`, each
// exporting Schemes, Hosts, and Query symbols.
package plugin

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rafostar/gtuber-go"
)

// Exported symbol names looked up in a plugin module. Only Query is
// required; Schemes and Hosts fall back to defaults when absent.
const (
	SymbolSchemes = "Schemes"
	SymbolHosts   = "Hosts"
	SymbolQuery   = "Query"
)

// SchemesFunc is the Schemes symbol's type: the URI schemes this plugin's
// extractor supports. A plugin that omits this symbol is assumed to support
// {"http", "https"}.
type SchemesFunc func() []string

// HostsFunc is the Hosts symbol's type: the hostnames this plugin's
// extractor recognizes. Empty/absent means the plugin matches a non-http(s)
// scheme alone (e.g. a scheme-specific extractor); it then matches no
// http or https URI (see Compat.MatchesURI).
type HostsFunc func() []string

// QueryFunc is the Query symbol's type: given a parsed URI and a cookie jar
// (which may be nil), return a Website ready to extract it, or nil if this
// plugin does not actually handle the URI despite matching on scheme/host.
type QueryFunc func(uri *url.URL, jar http.CookieJar) (gtuber.Website, error)

// Compat is the scheme/host compatibility declared by one plugin module,
// either read fresh by opening the module or served from the on-disk cache.
type Compat struct {
	ModulePath string
	Schemes    []string
	Hosts      []string
}

// MatchesURI reports whether uri's scheme and host fall within this
// plugin's declared compatibility.
func (c Compat) MatchesURI(uri *url.URL) bool {
	if !containsFold(c.Schemes, uri.Scheme) {
		return false
	}
	if len(c.Hosts) == 0 {
		// Matching on scheme alone is only valid for a non-http(s) scheme
		// (e.g. a custom:// extractor with no notion of hostnames); an
		// http(s) plugin with no declared hosts matches nothing, per
		// spec.md §4.3 step 2 and gtuber-cache.c:772-785.
		return !isHTTPScheme(uri.Scheme)
	}
	return containsFold(c.Hosts, stripHostPrefix(uri.Hostname()))
}

// isHTTPScheme reports whether scheme is "http" or "https", case-insensitively.
func isHTTPScheme(scheme string) bool {
	return equalFold(scheme, "http") || equalFold(scheme, "https")
}

// stripHostPrefix strips a leading "www." or "m." from host, per spec.md
// §4.3 lookup step 1 and gtuber-cache.c:739-746 (offset=4 for "www.",
// offset=2 for "m.").
func stripHostPrefix(host string) string {
	lower := strings.ToLower(host)
	switch {
	case strings.HasPrefix(lower, "www."):
		return host[4:]
	case strings.HasPrefix(lower, "m."):
		return host[2:]
	default:
		return host
	}
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if equalFold(v, want) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

var defaultSchemes = []string{"http", "https"}
