package gtuber

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Flow is the control-flow result an extractor hook returns alongside its
// error. FlowOk tells the engine to proceed to the next stage. FlowRestart
// tells the engine to loop back to CreateRequest with the same, possibly
// partially-populated, MediaInfo — encoding multi-step conversations
// without an explicit state field on the engine. A non-nil error always
// means the "Error" outcome regardless of the returned Flow value, and
// terminates the extraction (see client.Client).
type Flow int

const (
	FlowOk Flow = iota
	FlowRestart
)

// Request is the opaque handle an extractor builds in CreateRequest. It is
// intentionally a small, engine-owned struct rather than a raw *http.Request
// so extractor code never has to reach into the HTTP client's internals.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   io.Reader
}

// NewRequest builds a Request for method/rawURL with an empty header set.
func NewRequest(method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return &Request{
		Method: method,
		URL:    u,
		Header: make(http.Header),
	}, nil
}

// Response is the opaque handle passed to ReadResponse and the body
// consumer hooks. Header and StatusCode are available before the body is
// streamed, matching spec.md §4.1's "inspect status and headers before the
// body is streamed" requirement.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// IsSuccess reports whether StatusCode is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Website is the capability set every site-specific extractor implements.
// An instance is constructed by the plugin loader already bound to a parsed
// URL (see plugin.QueryFunc) and is driven to completion by exactly one
// client.Client, never concurrently.
//
// Hooks fire strictly in the order:
//
//	Prepare -> (CreateRequest -> ReadResponse -> body consumer)* -> SetUserRequestHeaders
//
// The body consumer is exactly one of ParseInputStream or ParseData: the
// engine selects between them with a type assertion against StreamConsumer
// and DataConsumer. A Website that implements neither, or both, is a
// programming error the engine reports as OtherWebsiteError.
type Website interface {
	// Prepare is called once, before any I/O. Side effects only (read
	// cookies, consult caches); it must not block on network.
	Prepare(ctx context.Context) error

	// CreateRequest produces the next HTTP request. info is the
	// in-progress accumulator, possibly already partially populated by a
	// prior Restart round.
	CreateRequest(ctx context.Context, info *MediaInfo) (*Request, Flow, error)

	// ReadResponse inspects status and headers before the body is
	// streamed.
	ReadResponse(ctx context.Context, resp *Response) (Flow, error)

	// SetUserRequestHeaders is called once after the final successful
	// parse; it copies selected headers from the request that just
	// completed into userHeaders, which becomes MediaInfo.RequestHeaders.
	SetUserRequestHeaders(reqHeader http.Header, userHeaders map[string]string) error
}

// StreamConsumer is implemented by extractors whose body consumer needs a
// streaming reader (large bodies: HTML pages, manifests).
type StreamConsumer interface {
	ParseInputStream(ctx context.Context, body io.Reader, info *MediaInfo) (Flow, error)
}

// DataConsumer is implemented by extractors whose body consumer wants the
// whole body buffered upfront (small JSON bodies).
type DataConsumer interface {
	ParseData(ctx context.Context, data []byte, info *MediaInfo) (Flow, error)
}

// BaseWebsite provides the default behavior spec.md §4.1 describes for
// ReadResponse and SetUserRequestHeaders, plus the URL/scheme/cookie-jar
// accessors extractors are given. Extractor types embed *BaseWebsite and
// override whichever hooks they need real behavior for; CreateRequest and
// the body consumer have no useful default and must always be implemented
// by the embedding type.
type BaseWebsite struct {
	uri    *url.URL
	scheme string
	jar    http.CookieJar
}

// NewBaseWebsite constructs a BaseWebsite bound to uri, with scheme
// defaulting to "https" unless uri or its port explicitly says "http".
func NewBaseWebsite(uri *url.URL, jar http.CookieJar) *BaseWebsite {
	scheme := "https"
	if uri != nil && (uri.Scheme == "http" || uri.Port() == "80") {
		scheme = "http"
	}
	return &BaseWebsite{uri: uri, scheme: scheme, jar: jar}
}

// Prepare is a no-op default.
func (b *BaseWebsite) Prepare(ctx context.Context) error { return nil }

// ReadResponse defaults to succeeding on any 2xx status.
func (b *BaseWebsite) ReadResponse(ctx context.Context, resp *Response) (Flow, error) {
	if resp.IsSuccess() {
		return FlowOk, nil
	}
	return FlowOk, NewError(OtherWebsiteError, httpStatusMessage(resp.StatusCode))
}

// SetUserRequestHeaders defaults to copying every request header except the
// hop-by-hop blocklist (spec.md §3).
func (b *BaseWebsite) SetUserRequestHeaders(reqHeader http.Header, userHeaders map[string]string) error {
	for name := range reqHeader {
		if IsHopByHopHeader(name) {
			continue
		}
		userHeaders[name] = reqHeader.Get(name)
	}
	return nil
}

// URI returns the parsed URL this extractor was instantiated for.
func (b *BaseWebsite) URI() *url.URL { return b.uri }

// URIString returns the URL this extractor was instantiated for, as a string.
func (b *BaseWebsite) URIString() string {
	if b.uri == nil {
		return ""
	}
	return b.uri.String()
}

// SchemePreference returns "http" or "https": the scheme the extractor
// should prefer when building request URLs, derived from the input URL.
func (b *BaseWebsite) SchemePreference() string { return b.scheme }

// CookieJar returns the opaque cookie jar lazily materialized from user
// configuration, or nil if none was configured.
func (b *BaseWebsite) CookieJar() http.CookieJar { return b.jar }

func httpStatusMessage(code int) string {
	return http.StatusText(code)
}
