package plugin

import (
	"net/url"
	"testing"
)

func TestCompatMatchesURI(t *testing.T) {
	pluginA := Compat{
		ModulePath: "/plugins/a.so",
		Schemes:    []string{"http", "https"},
		Hosts:      []string{"example.com"},
	}
	pluginB := Compat{
		ModulePath: "/plugins/b.so",
		Schemes:    []string{"custom"},
	}

	tests := []struct {
		name string
		uri  string
		want bool
	}{
		{"www-prefixed host strips before matching", "https://www.example.com/foo", true},
		{"m-prefixed host strips before matching", "https://m.example.com/foo", true},
		{"bare host matches directly", "https://example.com/foo", true},
		{"unrelated host does not match", "https://other.com/foo", false},
		{"scheme mismatch does not match", "ftp://example.com", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uri, err := url.Parse(tc.uri)
			if err != nil {
				t.Fatal(err)
			}
			if got := pluginA.MatchesURI(uri); got != tc.want {
				t.Errorf("pluginA.MatchesURI(%q) = %v, want %v", tc.uri, got, tc.want)
			}
		})
	}

	t.Run("empty hosts does not match http(s) by scheme alone", func(t *testing.T) {
		noHosts := Compat{ModulePath: "/plugins/c.so", Schemes: []string{"http", "https"}}
		uri, _ := url.Parse("https://anything.example/foo")
		if noHosts.MatchesURI(uri) {
			t.Error("plugin with Schemes={http,https} and empty Hosts should not match an https URI")
		}
	})

	t.Run("empty hosts matches a non-http(s) scheme alone", func(t *testing.T) {
		uri, _ := url.Parse("custom://whatever")
		if !pluginB.MatchesURI(uri) {
			t.Error("plugin with empty Hosts and Schemes={custom} should match custom:// by scheme alone")
		}
	})
}

func TestCacheCompatForURI(t *testing.T) {
	pluginA := Compat{
		ModulePath: "/plugins/a.so",
		Schemes:    []string{"http", "https"},
		Hosts:      []string{"example.com"},
	}
	pluginB := Compat{
		ModulePath: "/plugins/b.so",
		Schemes:    []string{"custom"},
	}

	c := &Cache{
		dirs: []dirSnapshot{
			{Plugins: []Compat{pluginA, pluginB}},
		},
	}

	tests := []struct {
		name string
		uri  string
		want []string
	}{
		{"www-prefixed http host matches plugin A", "https://www.example.com/foo", []string{pluginA.ModulePath}},
		{"custom scheme matches plugin B by scheme alone", "custom://whatever", []string{pluginB.ModulePath}},
		{"scheme no plugin declares matches nothing", "ftp://example.com", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uri, err := url.Parse(tc.uri)
			if err != nil {
				t.Fatal(err)
			}
			matches := c.CompatForURI(uri)
			if len(matches) != len(tc.want) {
				t.Fatalf("CompatForURI(%q) returned %d matches, want %d", tc.uri, len(matches), len(tc.want))
			}
			for i, m := range matches {
				if m.ModulePath != tc.want[i] {
					t.Errorf("match[%d].ModulePath = %q, want %q", i, m.ModulePath, tc.want[i])
				}
			}
		})
	}
}
