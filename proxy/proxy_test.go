package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rafostar/gtuber-go"
)

func TestProxyForwardsConfiguredStream(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Test"); got != "hello" {
			t.Errorf("origin received X-Test = %q, want %q", got, "hello")
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "payload")
	}))
	defer origin.Close()

	p, err := New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Close()

	streams := []*gtuber.Stream{{Itag: 22, URI: origin.URL}}
	p.Configure("media-1", streams, nil, map[string]string{"X-Test": "hello"})

	resp, err := http.Get(streams[0].URI)
	if err != nil {
		t.Fatalf("GET proxied stream: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "payload" {
		t.Errorf("body = %q, want %q", body, "payload")
	}
}

func TestProxyReturns404ForUnknownItag(t *testing.T) {
	p, err := New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Close()

	streams := []*gtuber.Stream{{Itag: 1, URI: "http://example.invalid"}}
	p.Configure("media-1", streams, nil, nil)

	resp, err := http.Get(p.URI() + "/gtuber/media-1?itag=999")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestProxyReturns404ForWrongPath(t *testing.T) {
	p, err := New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Close()

	streams := []*gtuber.Stream{{Itag: 1, URI: "http://example.invalid"}}
	p.Configure("media-1", streams, nil, nil)

	resp, err := http.Get(p.URI() + "/gtuber/other-media?itag=1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestProxyRejectsNonGET(t *testing.T) {
	p, err := New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Close()

	streams := []*gtuber.Stream{{Itag: 1, URI: "http://example.invalid"}}
	p.Configure("media-1", streams, nil, nil)

	req, _ := http.NewRequest(http.MethodPost, p.URI()+"/gtuber/media-1?itag=1", strings.NewReader(""))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
