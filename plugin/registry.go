package plugin

import (
	"net/http"
	"net/url"

	"github.com/rafostar/gtuber-go"
)

// Registry is the loader's public entry point: it owns the compat cache
// and tries compatible plugin modules, in order, until one of them returns
// a non-nil Website for the requested URI.
type Registry struct {
	cache *Cache
}

// NewRegistry loads (or recomputes) the on-disk plugin compat cache and
// returns a Registry ready to serve Query.
func NewRegistry() (*Registry, error) {
	cache, err := LoadCache()
	if err != nil {
		return nil, err
	}
	return &Registry{cache: cache}, nil
}

// Query finds the first plugin module compatible with uri's scheme/host
// and whose Query symbol returns a non-nil Website. Multiple modules can
// claim compatibility (e.g. a generic fallback alongside a site-specific
// plugin); they are tried in the cache's search order — directories in
// GTUBER_PLUGIN_PATH order, modules within a directory in os.ReadDir's
// sorted order — and the first to actually produce a Website wins. This
// mirrors gtuber_loader_get_website_for_uri's try-in-order loop exactly.
func (r *Registry) Query(uri *url.URL, jar http.CookieJar) (gtuber.Website, string, error) {
	compatible := r.cache.CompatForURI(uri)
	if len(compatible) == 0 {
		return nil, "", gtuber.NewError(gtuber.NoPlugin, "no plugin declares support for "+uri.String())
	}

	var lastErr error
	for _, compat := range compatible {
		mod, err := Open(compat.ModulePath)
		if err != nil {
			lastErr = err
			continue
		}
		website, err := mod.Query(uri, jar)
		if err != nil {
			lastErr = err
			continue
		}
		if website != nil {
			return website, compat.ModulePath, nil
		}
	}

	if lastErr != nil {
		return nil, "", gtuber.WrapError(gtuber.NoPlugin, "no compatible plugin accepted "+uri.String(), lastErr)
	}
	return nil, "", gtuber.NewError(gtuber.NoPlugin, "no compatible plugin accepted "+uri.String())
}

// Refresh forces the on-disk compat cache to be recomputed on next
// NewRegistry, e.g. after installing a new plugin file.
func Refresh() error {
	return Clear()
}
