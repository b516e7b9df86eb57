// Package proxy serves locally-proxied access to a MediaInfo's streams,
// the Go analogue of the original library's GtuberProxy base class. Each
// stream's URI is rewritten to point at this Proxy; requests for it are
// forwarded to the real origin on demand.
package proxy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/rafostar/gtuber-go"
	"github.com/rafostar/gtuber-go/internal/httpclient"
	"github.com/rafostar/gtuber-go/internal/observability"
	"github.com/rafostar/gtuber-go/threaded"
)

// chunkSize is the buffer size used to stream a proxied response body,
// matching the original's CHUNK_SIZE.
const chunkSize = 8192

// Proxy listens on 127.0.0.1 on an OS-assigned port and serves one media
// path, "/gtuber/{mediaID}", forwarding GET requests that carry a known
// "?itag=" value through to the stream's real origin.
type Proxy struct {
	obj    *threaded.Object
	http   *httpclient.Client
	logger *slog.Logger

	listener net.Listener
	server   *http.Server

	mu        sync.Mutex
	mediaPath string
	proxyURI  string
	orgURIs   map[uint]string
	headers   map[string]string
}

// New starts a Proxy. Its listener and HTTP server both run on the
// Proxy's own goroutine (via threaded.Object), mirroring the original's
// "create SoupServer/SoupSession after thread push" construction order.
func New(logger *slog.Logger) (*Proxy, error) {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Proxy{
		http:    httpclient.NewWithDefaults(),
		logger:  observability.WithComponent(logger, "proxy"),
		orgURIs: make(map[uint]string),
		headers: make(map[string]string),
	}

	var startErr error
	p.obj = threaded.New(threaded.Hooks{
		Start: func() { startErr = p.start() },
		Stop:  p.stop,
	})
	if startErr != nil {
		p.obj.Close()
		return nil, startErr
	}
	return p, nil
}

func (p *Proxy) start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	p.listener = ln

	r := chi.NewRouter()
	r.HandleFunc("/*", p.handle)
	p.server = &http.Server{Handler: r}

	p.mu.Lock()
	p.proxyURI = fmt.Sprintf("http://%s", ln.Addr().String())
	p.mu.Unlock()
	p.logger.Debug("listening", slog.String("uri", p.proxyURI))

	go func() {
		if err := p.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("proxy server stopped", slog.String("error", err.Error()))
		}
	}()
	return nil
}

func (p *Proxy) stop() {
	if p.server != nil {
		_ = p.server.Close()
	}
}

// Configure assigns this Proxy a media path derived from mediaID and
// rewrites every stream's URI to route through it, stashing each real
// origin URI (keyed by itag) for the handler to forward to.
func (p *Proxy) Configure(mediaID string, streams []*gtuber.Stream, adaptiveStreams []*gtuber.AdaptiveStream, reqHeaders map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.mediaPath = "/gtuber/" + mediaID
	for name, value := range reqHeaders {
		p.headers[name] = value
	}

	rewrite := func(itag uint, uri string) string {
		p.orgURIs[itag] = uri
		return fmt.Sprintf("%s%s?itag=%d", p.proxyURI, p.mediaPath, itag)
	}
	for _, s := range streams {
		s.URI = rewrite(s.Itag, s.URI)
	}
	for _, s := range adaptiveStreams {
		s.URI = rewrite(s.Itag, s.URI)
	}
}

func (p *Proxy) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	p.mu.Lock()
	path := p.mediaPath
	p.mu.Unlock()

	if path == "" || r.URL.Path != path {
		http.NotFound(w, r)
		return
	}

	itagStr := r.URL.Query().Get("itag")
	if itagStr == "" {
		http.NotFound(w, r)
		return
	}
	itag64, err := strconv.ParseUint(itagStr, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	p.mu.Lock()
	orgURI, ok := p.orgURIs[uint(itag64)]
	headers := make(map[string]string, len(p.headers))
	for k, v := range p.headers {
		headers[k] = v
	}
	p.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	p.fetchAndForward(w, r, orgURI, headers)
}

// fetchAndForward issues a GET to orgURI and streams the response back.
// The client's Range header is forwarded verbatim rather than translated
// through a custom rewriting convention: extractors only ever hand the
// proxy origin URIs whose Range semantics already mean what the client
// expects, so there is nothing for the proxy itself to reinterpret.
func (p *Proxy) fetchAndForward(w http.ResponseWriter, r *http.Request, orgURI string, headers map[string]string) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, orgURI, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	if rng := r.Header.Get("Range"); rng != "" {
		req.Header.Set("Range", rng)
	}

	resp, err := p.http.DoWithContext(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	for name, values := range resp.Header {
		if name == "Host" || name == "Connection" {
			continue
		}
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(w, resp.Body, buf); err != nil {
		p.logger.Debug("stream copy ended early", slog.String("error", err.Error()))
	}
}

// URI returns the base address the Proxy listens on, empty until Start
// has run.
func (p *Proxy) URI() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.proxyURI
}

// Close stops the proxy's HTTP server and background goroutine. It
// satisfies gtuber.MediaInfo's Proxy interface.
func (p *Proxy) Close() error {
	return p.obj.Close()
}
