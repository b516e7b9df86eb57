// Package client implements the extraction engine: the state machine that
// drives a gtuber.Website from a bare URL to a populated gtuber.MediaInfo.
package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rafostar/gtuber-go"
	"github.com/rafostar/gtuber-go/internal/httpclient"
	"github.com/rafostar/gtuber-go/internal/observability"
	"github.com/rafostar/gtuber-go/plugin"
)

// Client fetches MediaInfo for a URL by locating a compatible plugin and
// driving its Website through the Prepare -> (CreateRequest -> ReadResponse
// -> body consumer)* -> SetUserRequestHeaders sequence. A Client is safe
// for concurrent use; each Fetch call runs its own independent state
// machine against its own Website instance.
type Client struct {
	registry *plugin.Registry
	http     *httpclient.Client
	jar      http.CookieJar
	logger   *slog.Logger
}

// Option configures a Client. The functional-option shape lets callers
// override only what they need (a pre-built registry for tests, a custom
// timeout) while everything else falls back to sensible defaults — the Go
// analogue of the original library's "soup session with property bag"
// construction.
type Option func(*Client)

// WithRegistry overrides the plugin registry, useful in tests that don't
// want to touch the filesystem-backed default.
func WithRegistry(r *plugin.Registry) Option {
	return func(c *Client) { c.registry = r }
}

// WithHTTPClient overrides the resilient HTTP client used for every request.
func WithHTTPClient(h *httpclient.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout is shorthand for WithHTTPClient with only the timeout changed
// from httpclient.DefaultConfig.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		cfg := httpclient.DefaultConfig()
		cfg.Timeout = timeout
		c.http = httpclient.New(cfg)
	}
}

// WithCookieJar sets the cookie jar passed to every plugin's Query call.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) { c.jar = jar }
}

// WithLogger overrides the logger used for diagnostic output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a Client, loading the default plugin registry and a default
// resilient HTTP client unless overridden by opts.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		http:   httpclient.NewWithDefaults(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		registry, err := plugin.NewRegistry()
		if err != nil {
			return nil, err
		}
		c.registry = registry
	}
	return c, nil
}

// FetchMediaInfo synchronously obtains media info for uri. It returns a
// *gtuber.Error (see errors.go) for every failure mode: no compatible
// plugin, a malformed request, a network failure, cancellation, or a
// plugin that fails to produce usable streams.
func (c *Client) FetchMediaInfo(ctx context.Context, rawURL string) (*gtuber.MediaInfo, error) {
	log := observability.WithComponent(c.logger, "client")
	log.DebugContext(ctx, "requested uri", slog.String("uri", rawURL))

	uri, err := url.Parse(rawURL)
	if err != nil {
		return nil, gtuber.WrapError(gtuber.BadURI, "could not parse uri", err)
	}

	website, modulePath, err := c.registry.Query(uri, c.jar)
	if err != nil {
		log.DebugContext(ctx, "no plugin for uri", slog.String("uri", rawURL))
		return nil, err
	}
	log.DebugContext(ctx, "found compatible plugin", slog.String("module", modulePath))

	if err := website.Prepare(ctx); err != nil {
		return nil, wrapWebsiteErr(err)
	}

	info := gtuber.NewMediaInfo()

	for {
		select {
		case <-ctx.Done():
			return nil, gtuber.WrapError(gtuber.Cancelled, "cancelled before request created", ctx.Err())
		default:
		}

		log.DebugContext(ctx, "creating request")
		gtReq, flow, err := website.CreateRequest(ctx, info)
		if err != nil {
			return nil, wrapWebsiteErr(err)
		}
		if flow == gtuber.FlowRestart {
			continue
		}
		if gtReq == nil {
			return nil, gtuber.NewError(gtuber.RequestCreateFailed, "plugin request message has not been created")
		}

		stdReq, err := toStdRequest(ctx, gtReq)
		if err != nil {
			return nil, gtuber.WrapError(gtuber.BadURI, "could not build http request", err)
		}

		log.DebugContext(ctx, "sending request", slog.String("url", stdReq.URL.String()))
		resp, err := c.http.DoWithContext(ctx, stdReq)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, gtuber.WrapError(gtuber.Cancelled, "request cancelled", err)
			}
			return nil, gtuber.WrapError(gtuber.Network, "request failed", err)
		}

		restart, failErr := c.readAndConsume(ctx, website, resp, info)
		resp.Body.Close()
		if failErr != nil {
			return nil, failErr
		}
		if restart {
			continue
		}

		log.DebugContext(ctx, "setting user request headers")
		userHeaders := make(map[string]string)
		if err := website.SetUserRequestHeaders(stdReq.Header, userHeaders); err != nil {
			return nil, wrapWebsiteErr(err)
		}
		for name, value := range userHeaders {
			info.SetRequestHeader(name, value)
		}

		break
	}

	if !info.HasStreams() {
		return nil, gtuber.NewError(gtuber.MissingInfo, "plugin returned media info without any streams")
	}
	return info, nil
}

// readAndConsume runs ReadResponse followed by the body consumer hook
// matching website's capability (StreamConsumer or DataConsumer). restart
// is true when either hook asked for a Restart round.
func (c *Client) readAndConsume(ctx context.Context, website gtuber.Website, resp *http.Response, info *gtuber.MediaInfo) (restart bool, err error) {
	gtResp := &gtuber.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}

	flow, err := website.ReadResponse(ctx, gtResp)
	if err != nil {
		return false, wrapWebsiteErr(err)
	}
	if flow == gtuber.FlowRestart {
		return true, nil
	}

	_, isStream := website.(gtuber.StreamConsumer)
	_, isData := website.(gtuber.DataConsumer)
	if isStream && isData {
		return false, gtuber.NewError(gtuber.OtherWebsiteError,
			"plugin website implements both StreamConsumer and DataConsumer")
	}

	switch consumer := website.(type) {
	case gtuber.StreamConsumer:
		flow, err = consumer.ParseInputStream(ctx, resp.Body, info)
	case gtuber.DataConsumer:
		var data []byte
		data, err = io.ReadAll(resp.Body)
		if err == nil {
			flow, err = consumer.ParseData(ctx, data, info)
		}
	default:
		return false, gtuber.NewError(gtuber.OtherWebsiteError,
			"plugin website implements neither StreamConsumer nor DataConsumer")
	}
	if err != nil {
		return false, wrapWebsiteErr(err)
	}
	return flow == gtuber.FlowRestart, nil
}

// wrapWebsiteErr passes a *gtuber.Error through unchanged, and wraps any
// other error (a plugin returning a plain error) as OtherWebsiteError.
func wrapWebsiteErr(err error) error {
	var gerr *gtuber.Error
	if errors.As(err, &gerr) {
		return gerr
	}
	return gtuber.WrapError(gtuber.OtherWebsiteError, "plugin encountered an error", err)
}

func toStdRequest(ctx context.Context, req *gtuber.Request) (*http.Request, error) {
	stdReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), req.Body)
	if err != nil {
		return nil, err
	}
	if req.Header != nil {
		stdReq.Header = req.Header
	}
	return stdReq, nil
}

