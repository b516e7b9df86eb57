package plugin

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	goplugin "plugin"
	"strings"

	"github.com/rafostar/gtuber-go"
)

// pluginSuffix is the extension Go's plugin package expects on the current
// platform. Linux is the only platform the stdlib plugin package supports;
// this mirrors the teacher's own Linux-only deployment assumption.
const pluginSuffix = ".so"

// EnvPluginPath is the environment variable used to override the plugin
// search path, analogous to GTUBER_PLUGIN_PATH in the original library.
const EnvPluginPath = "GTUBER_PLUGIN_PATH"

// DirPaths returns the ordered list of directories searched for plugin
// modules: GTUBER_PLUGIN_PATH if set (os.PathListSeparator-joined, exactly
// like PATH), otherwise a single default directory under XDG_DATA_HOME.
func DirPaths() []string {
	if envPath := os.Getenv(EnvPluginPath); envPath != "" {
		return filepath.SplitList(envPath)
	}
	return []string{defaultPluginDir()}
}

func defaultPluginDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "gtuber", "plugins")
}

// IsPluginFile reports whether name (a bare file name, no directory) looks
// like a loadable plugin module.
func IsPluginFile(name string) bool {
	return strings.HasSuffix(name, pluginSuffix)
}

// ListModules returns the plugin module file names found directly inside
// dir, in the order os.ReadDir yields them (lexical by name). A missing
// directory yields an empty slice, not an error.
func ListModules(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsPluginFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Module is a plugin .so opened via the standard library's plugin package,
// resident for the remainder of the process's lifetime (Go's plugin package
// offers no Close, matching g_module_make_resident's "never unload" choice
// the original loader makes deliberately).
type Module struct {
	Path string
	p    *goplugin.Plugin
}

// Open loads the plugin module at path, caching nothing: callers that only
// need compatibility data should call CheckCompat instead, but opening
// twice is harmless since the Go runtime memoizes plugin.Open by path.
func Open(path string) (*Module, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, gtuber.WrapError(gtuber.KindUnknown, "open plugin "+path, err)
	}
	return &Module{Path: path, p: p}, nil
}

func (m *Module) lookup(symbol string) (goplugin.Symbol, bool) {
	sym, err := m.p.Lookup(symbol)
	if err != nil {
		return nil, false
	}
	return sym, true
}

// Schemes returns the module's declared Schemes symbol, or the default
// {"http", "https"} if the module does not export one.
func (m *Module) Schemes() []string {
	sym, ok := m.lookup(SymbolSchemes)
	if !ok {
		return defaultSchemes
	}
	fn, ok := sym.(func() []string)
	if !ok {
		return defaultSchemes
	}
	schemes := fn()
	if len(schemes) == 0 {
		return defaultSchemes
	}
	return schemes
}

// Hosts returns the module's declared Hosts symbol, or nil if the module
// does not export one (meaning: match a non-http(s) scheme alone; no http
// or https URI matches).
func (m *Module) Hosts() []string {
	sym, ok := m.lookup(SymbolHosts)
	if !ok {
		return nil
	}
	fn, ok := sym.(func() []string)
	if !ok {
		return nil
	}
	return fn()
}

// Query invokes the module's Query symbol. A missing Query symbol is
// reported as an error: unlike Schemes/Hosts it has no sensible default.
func (m *Module) Query(uri *url.URL, jar http.CookieJar) (gtuber.Website, error) {
	sym, ok := m.lookup(SymbolQuery)
	if !ok {
		return nil, gtuber.NewError(gtuber.NoPlugin,
			fmt.Sprintf("plugin %s exports no Query symbol", m.Path))
	}
	fn, ok := sym.(func(*url.URL, http.CookieJar) (gtuber.Website, error))
	if !ok {
		return nil, gtuber.NewError(gtuber.NoPlugin,
			fmt.Sprintf("plugin %s Query symbol has the wrong type", m.Path))
	}
	return fn(uri, jar)
}

// CheckCompat opens path just long enough to read its Schemes/Hosts
// symbols, mirroring gtuber_loader_check_plugin_compat.
func CheckCompat(path string) (Compat, error) {
	m, err := Open(path)
	if err != nil {
		return Compat{}, err
	}
	return Compat{
		ModulePath: path,
		Schemes:    m.Schemes(),
		Hosts:      m.Hosts(),
	}, nil
}
